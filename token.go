package vaporetto

import (
	"errors"
	"fmt"

	"github.com/example/go-vaporetto/internal/predictor"
)

// ErrTagIndex reports a Tag call with a layer index the token does not
// carry, either because the index exceeds the model's layer count or because
// tag prediction was not requested.
var ErrTagIndex = errors.New("vaporetto: tag index out of range")

// TokenList is the ordered result of one Tokenize call. It owns the input's
// runes and the span list; tokens are views into it. The zero value is the
// empty result.
type TokenList struct {
	runes []rune
	spans []predictor.Span
	tags  [][]string
	nTags int
}

// Len returns the number of tokens.
func (l *TokenList) Len() int {
	return len(l.spans)
}

// At returns the i-th token in textual order. It panics if i is out of
// range, like a slice index.
func (l *TokenList) At(i int) Token {
	if i < 0 || i >= len(l.spans) {
		panic(fmt.Sprintf("vaporetto: token index %d out of range [0, %d)", i, len(l.spans)))
	}
	return Token{list: l, index: i}
}

// Tokens returns all tokens in textual order.
func (l *TokenList) Tokens() []Token {
	out := make([]Token, len(l.spans))
	for i := range out {
		out[i] = Token{list: l, index: i}
	}
	return out
}

// Token is an immutable view of one token: a half-open rune span over the
// tokenized text plus its predicted tags. It stays valid for the lifetime of
// its TokenList.
type Token struct {
	list  *TokenList
	index int
}

// Surface returns the token's substring of the original input.
func (t Token) Surface() string {
	sp := t.list.spans[t.index]
	return string(t.list.runes[sp.Start:sp.End])
}

// Start returns the inclusive start position in runes.
func (t Token) Start() int {
	return t.list.spans[t.index].Start
}

// End returns the exclusive end position in runes.
func (t Token) End() int {
	return t.list.spans[t.index].End
}

// NumTags returns the number of tags assigned to this token.
func (t Token) NumTags() int {
	return t.list.nTags
}

// Tag returns the token's tag in layer k.
func (t Token) Tag(k int) (string, error) {
	if k < 0 || k >= t.list.nTags {
		return "", fmt.Errorf("%w: layer %d (token has %d)", ErrTagIndex, k, t.list.nTags)
	}
	return t.list.tags[t.index][k], nil
}

func (t Token) String() string {
	return t.Surface()
}
