package filter

import (
	"errors"
	"fmt"

	"github.com/rivo/uniseg"

	"github.com/example/go-vaporetto/internal/chartype"
)

// ErrInvalidWsConst reports an unrecognized wsconst class letter.
var ErrInvalidWsConst = errors.New("filter: invalid wsconst")

// BoundaryFilter rewrites boundary decisions after scoring. Filters only
// ever clear boundaries; they never introduce new splits.
type BoundaryFilter interface {
	Apply(rs []rune, types []chartype.CharType, bounds []bool)
}

// ParseWsConst maps a wsconst option string to its boundary filters, one per
// letter, applied in order. Letters D, R, H, T, K, and O keep runs of the
// matching character class unsplit; G keeps grapheme clusters unsplit.
func ParseWsConst(s string) ([]BoundaryFilter, error) {
	var filters []BoundaryFilter
	for i := 0; i < len(s); i++ {
		if s[i] == 'G' {
			filters = append(filters, GraphemeConcat{})
			continue
		}
		ct, ok := chartype.FromLetter(s[i])
		if !ok {
			return nil, fmt.Errorf("%w: unknown class letter %q (want D|R|H|T|K|O|G)", ErrInvalidWsConst, string(s[i]))
		}
		filters = append(filters, TypeConcat{Class: ct})
	}
	return filters, nil
}

// TypeConcat clears every boundary whose neighboring runes both belong to
// Class, merging runs of that class into single tokens.
type TypeConcat struct {
	Class chartype.CharType
}

func (f TypeConcat) Apply(_ []rune, types []chartype.CharType, bounds []bool) {
	for i := range bounds {
		if types[i] == f.Class && types[i+1] == f.Class {
			bounds[i] = false
		}
	}
}

// GraphemeConcat clears boundaries that fall inside a Unicode grapheme
// cluster, so combining sequences never split across tokens.
type GraphemeConcat struct{}

func (GraphemeConcat) Apply(rs []rune, _ []chartype.CharType, bounds []bool) {
	starts := make([]bool, len(rs))
	g := uniseg.NewGraphemes(string(rs))
	pos := 0
	for g.Next() {
		starts[pos] = true
		pos += len(g.Runes())
	}
	for i := range bounds {
		if !starts[i+1] {
			bounds[i] = false
		}
	}
}
