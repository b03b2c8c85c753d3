// Package model loads and serializes the trained segmentation model artifact.
// The artifact is a versioned little-endian binary blob, optionally wrapped in
// a zstd or gzip container; see format.go for the byte layout. A decoded Model
// is immutable and safe for concurrent read access from any number of
// tokenizers.
package model

import "errors"

// ErrFormat reports a payload that is not a recognized model serialization:
// bad magic, unsupported version, truncation, or inconsistent section data.
var ErrFormat = errors.New("model: invalid format")

// ErrCompression reports a corrupt compressed container around the payload.
var ErrCompression = errors.New("model: corrupt compressed payload")

// DictWeights are the boundary score contributions of one dictionary word.
// When the word matches a span of the input, Left is added to the boundary
// before the span, Inside to every boundary within it, and Right to the
// boundary after it.
type DictWeights struct {
	Left   int32
	Inside int32
	Right  int32
}

// TagLayer holds the vocabulary and feature tables of one tag dimension
// (e.g. part-of-speech, reading). Score vectors are indexed by vocabulary
// position.
type TagLayer struct {
	Vocab      []string
	ContextLen int
	Surface    map[string][]int32
	Left       map[string][]int32
	Right      map[string][]int32
}

// Model is the trained pointwise segmentation model: boundary-scoring weight
// tables, the dictionary, and zero or more tag layers.
type Model struct {
	// CharWindow and TypeWindow are the half-window sizes (in runes) of the
	// character and character-type n-gram features.
	CharWindow int
	TypeWindow int

	// Bias is added to every boundary score before feature contributions.
	Bias int32

	// CharNgrams maps a character n-gram of rune length k to its
	// 2*CharWindow-k+1 positional weights.
	CharNgrams map[string][]int32

	// TypeNgrams is the same table over character-class code sequences
	// (see internal/chartype), with window TypeWindow.
	TypeNgrams map[string][]int32

	Dict map[string]DictWeights

	TagLayers []TagLayer
}

// NumTags returns the number of tag layers the model predicts.
func (m *Model) NumTags() int {
	return len(m.TagLayers)
}

// Summary describes the shape of a loaded model, for inspection surfaces.
type Summary struct {
	CharWindow int `json:"char_window"`
	TypeWindow int `json:"type_window"`
	CharNgrams int `json:"char_ngrams"`
	TypeNgrams int `json:"type_ngrams"`
	DictWords  int `json:"dict_words"`
	TagLayers  int `json:"tag_layers"`
}

func (m *Model) Summarize() Summary {
	return Summary{
		CharWindow: m.CharWindow,
		TypeWindow: m.TypeWindow,
		CharNgrams: len(m.CharNgrams),
		TypeNgrams: len(m.TypeNgrams),
		DictWords:  len(m.Dict),
		TagLayers:  len(m.TagLayers),
	}
}
