// Package predictor scores word-boundary candidates against a loaded model
// and emits token spans. Scoring is pointwise: each gap between adjacent
// runes gets an independent score from character n-grams, character-type
// n-grams, and dictionary matches; positive scores split, everything else
// keeps the token growing.
package predictor

import (
	"sort"
	"unicode/utf8"

	"github.com/example/go-vaporetto/internal/chartype"
	"github.com/example/go-vaporetto/internal/model"
)

// Span is a half-open token range [Start, End) in rune positions.
type Span struct {
	Start int
	End   int
}

// Predictor applies one immutable model. It holds no per-call state and is
// safe for concurrent use.
type Predictor struct {
	model        *model.Model
	dictLens     []int
	maxCharNgram int
	maxTypeNgram int
}

func New(m *model.Model) *Predictor {
	p := &Predictor{model: m}

	lens := make(map[int]struct{})
	for word := range m.Dict {
		lens[utf8.RuneCountInString(word)] = struct{}{}
	}
	for l := range lens {
		p.dictLens = append(p.dictLens, l)
	}
	sort.Ints(p.dictLens)

	for key := range m.CharNgrams {
		if k := utf8.RuneCountInString(key); k > p.maxCharNgram {
			p.maxCharNgram = k
		}
	}
	for key := range m.TypeNgrams {
		if k := len(key); k > p.maxTypeNgram {
			p.maxTypeNgram = k
		}
	}
	return p
}

// Scores computes the boundary score for every gap between adjacent runes.
// types must be the character classes of rs. The result has len(rs)-1
// entries; inputs shorter than two runes have no boundaries.
func (p *Predictor) Scores(rs []rune, types []chartype.CharType) []int32 {
	n := len(rs)
	if n < 2 {
		return nil
	}
	scores := make([]int32, n-1)
	for i := range scores {
		scores[i] = p.model.Bias
	}

	p.addCharNgrams(scores, rs)
	p.addTypeNgrams(scores, types)
	p.addDictWeights(scores, rs)
	return scores
}

// Boundaries decides each gap: score > 0 splits. The sign convention is part
// of the trained model's contract; ties keep tokens unsplit.
func (p *Predictor) Boundaries(rs []rune, types []chartype.CharType) []bool {
	scores := p.Scores(rs, types)
	bounds := make([]bool, len(scores))
	for i, s := range scores {
		bounds[i] = s > 0
	}
	return bounds
}

// Spans converts boundary decisions into contiguous half-open spans covering
// [0, n). n == 0 yields no spans.
func Spans(n int, bounds []bool) []Span {
	if n == 0 {
		return nil
	}
	spans := make([]Span, 0, len(bounds)+1)
	start := 0
	for i, split := range bounds {
		if split {
			spans = append(spans, Span{Start: start, End: i + 1})
			start = i + 1
		}
	}
	return append(spans, Span{Start: start, End: n})
}

// addCharNgrams adds positional n-gram weights. An n-gram of rune length k
// starting at rune p affects boundary i for index j = p-(i-W+1), so each
// occurrence touches at most 2W-k+1 boundaries around it.
func (p *Predictor) addCharNgrams(scores []int32, rs []rune) {
	w := p.model.CharWindow
	n := len(rs)
	for pos := 0; pos < n; pos++ {
		maxK := p.maxCharNgram
		if rest := n - pos; rest < maxK {
			maxK = rest
		}
		for k := 1; k <= maxK; k++ {
			weights, ok := p.model.CharNgrams[string(rs[pos:pos+k])]
			if !ok {
				continue
			}
			for j, weight := range weights {
				i := pos + w - 1 - j
				if i >= 0 && i < len(scores) {
					scores[i] += weight
				}
			}
		}
	}
}

func (p *Predictor) addTypeNgrams(scores []int32, types []chartype.CharType) {
	w := p.model.TypeWindow
	n := len(types)
	codes := make([]byte, n)
	for i, t := range types {
		codes[i] = byte(t)
	}
	for pos := 0; pos < n; pos++ {
		maxK := p.maxTypeNgram
		if rest := n - pos; rest < maxK {
			maxK = rest
		}
		for k := 1; k <= maxK; k++ {
			weights, ok := p.model.TypeNgrams[string(codes[pos:pos+k])]
			if !ok {
				continue
			}
			for j, weight := range weights {
				i := pos + w - 1 - j
				if i >= 0 && i < len(scores) {
					scores[i] += weight
				}
			}
		}
	}
}

// addDictWeights applies dictionary evidence: a word matching [pos, pos+l)
// strengthens its edges and discourages splits inside it.
func (p *Predictor) addDictWeights(scores []int32, rs []rune) {
	n := len(rs)
	for pos := 0; pos < n; pos++ {
		for _, l := range p.dictLens {
			if pos+l > n {
				break
			}
			dw, ok := p.model.Dict[string(rs[pos:pos+l])]
			if !ok {
				continue
			}
			if pos > 0 {
				scores[pos-1] += dw.Left
			}
			for i := pos; i < pos+l-1; i++ {
				scores[i] += dw.Inside
			}
			if right := pos + l - 1; right < len(scores) {
				scores[right] += dw.Right
			}
		}
	}
}
