// Package vaporetto is a pointwise-prediction word segmenter for Japanese
// text with optional per-token tag layers (part-of-speech, reading). A
// Tokenizer is built from a serialized model artifact and is safe for
// concurrent use; the underlying model is immutable and may back any number
// of tokenizers.
package vaporetto

import (
	"strings"

	"github.com/example/go-vaporetto/internal/chartype"
	"github.com/example/go-vaporetto/internal/filter"
	"github.com/example/go-vaporetto/internal/model"
	"github.com/example/go-vaporetto/internal/predictor"
)

type options struct {
	predictTags bool
	wsconst     string
	normalize   bool
}

func defaultOptions() options {
	return options{normalize: true}
}

// Option configures a Tokenizer at construction time.
type Option func(*options)

// WithTagPrediction enables the tag prediction pass. Each produced token
// then carries one tag per model tag layer.
func WithTagPrediction() Option {
	return func(o *options) { o.predictTags = true }
}

// WithWsConst keeps runs of the named character classes unsplit. The string
// is a sequence of class letters: D (digit), R (roman), H (hiragana),
// T (katakana), K (kanji), O (other), G (grapheme clusters).
func WithWsConst(classes string) Option {
	return func(o *options) { o.wsconst = classes }
}

// WithNormalization toggles the fullwidth input normalization applied before
// scoring. It defaults to on; spans and surfaces always refer to the
// original text either way.
func WithNormalization(enabled bool) Option {
	return func(o *options) { o.normalize = enabled }
}

// Tokenizer segments text against one loaded model. It holds no mutable
// state across calls; every Tokenize call is independent and reentrant.
type Tokenizer struct {
	model       *model.Model
	pred        *predictor.Predictor
	postFilters []filter.BoundaryFilter
	predictTags bool
	normalize   bool
}

// New builds a Tokenizer from serialized model bytes, transparently
// unwrapping a zstd or gzip container. Errors wrap model.ErrFormat,
// model.ErrCompression, or filter.ErrInvalidWsConst.
func New(modelBytes []byte, opts ...Option) (*Tokenizer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	m, err := model.Decode(modelBytes)
	if err != nil {
		return nil, err
	}
	filters, err := filter.ParseWsConst(o.wsconst)
	if err != nil {
		return nil, err
	}

	return &Tokenizer{
		model:       m,
		pred:        predictor.New(m),
		postFilters: filters,
		predictTags: o.predictTags,
		normalize:   o.normalize,
	}, nil
}

// Tokenize segments text into a TokenList. Any input is accepted; the empty
// string yields an empty list. The returned spans contiguously cover the
// input in rune positions.
func (t *Tokenizer) Tokenize(text string) TokenList {
	if text == "" {
		return TokenList{}
	}
	rs := []rune(text)
	scored := rs
	if t.normalize {
		scored = filter.Fullwidth(rs)
	}

	types := chartype.Classify(scored)
	bounds := t.pred.Boundaries(scored, types)
	for _, f := range t.postFilters {
		f.Apply(scored, types, bounds)
	}
	spans := predictor.Spans(len(rs), bounds)

	list := TokenList{runes: rs, spans: spans}
	if t.predictTags {
		list.tags = t.pred.PredictTags(scored, spans)
		list.nTags = t.model.NumTags()
	}
	return list
}

// TokenizeToString segments text and renders the tokens space-separated.
// With tag prediction enabled each token renders as surface/tag0/tag1/...;
// the empty input renders as the empty string.
func (t *Tokenizer) TokenizeToString(text string) string {
	list := t.Tokenize(text)
	var b strings.Builder
	for i := 0; i < list.Len(); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(list.At(i).Surface())
		if t.predictTags {
			for _, tag := range list.tags[i] {
				b.WriteByte('/')
				b.WriteString(tag)
			}
		}
	}
	return b.String()
}

// NumTags returns the number of tag layers the loaded model predicts.
func (t *Tokenizer) NumTags() int {
	return t.model.NumTags()
}

// ModelInfo describes the shape of the loaded model.
type ModelInfo struct {
	CharWindow int `json:"char_window"`
	TypeWindow int `json:"type_window"`
	CharNgrams int `json:"char_ngrams"`
	TypeNgrams int `json:"type_ngrams"`
	DictWords  int `json:"dict_words"`
	TagLayers  int `json:"tag_layers"`
}

func (t *Tokenizer) ModelInfo() ModelInfo {
	s := t.model.Summarize()
	return ModelInfo{
		CharWindow: s.CharWindow,
		TypeWindow: s.TypeWindow,
		CharNgrams: s.CharNgrams,
		TypeNgrams: s.TypeNgrams,
		DictWords:  s.DictWords,
		TagLayers:  s.TagLayers,
	}
}
