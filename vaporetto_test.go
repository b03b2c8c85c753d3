package vaporetto_test

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	vaporetto "github.com/example/go-vaporetto"
	"github.com/example/go-vaporetto/internal/filter"
	"github.com/example/go-vaporetto/internal/model"
	"github.com/example/go-vaporetto/internal/testutil"
)

const sentence = "まぁ社長は火星猫だ"

func newTokenizer(t *testing.T, opts ...vaporetto.Option) *vaporetto.Tokenizer {
	t.Helper()
	tok, err := vaporetto.New(testutil.ReferenceModelBytes(t, true), opts...)
	if err != nil {
		t.Fatalf("new tokenizer: %v", err)
	}
	return tok
}

func surfaces(list vaporetto.TokenList) []string {
	out := make([]string, 0, list.Len())
	for _, tok := range list.Tokens() {
		out = append(out, tok.Surface())
	}
	return out
}

func TestTokenizeEmpty(t *testing.T) {
	tok := newTokenizer(t)

	list := tok.Tokenize("")
	if list.Len() != 0 {
		t.Fatalf("Len = %d, want 0", list.Len())
	}
	if got := list.Tokens(); len(got) != 0 {
		t.Fatalf("Tokens = %v, want none", got)
	}
}

func TestTokenizeSurfaces(t *testing.T) {
	tok := newTokenizer(t)

	got := surfaces(tok.Tokenize(sentence))
	want := []string{"まぁ", "社長", "は", "火星", "猫", "だ"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("surfaces = %v, want %v", got, want)
	}
}

func TestTokenizePositions(t *testing.T) {
	tok := newTokenizer(t)

	list := tok.Tokenize(sentence)
	want := [][2]int{{0, 2}, {2, 4}, {4, 5}, {5, 7}, {7, 8}, {8, 9}}
	if list.Len() != len(want) {
		t.Fatalf("Len = %d, want %d", list.Len(), len(want))
	}
	for i, w := range want {
		tok := list.At(i)
		if tok.Start() != w[0] || tok.End() != w[1] {
			t.Fatalf("token %d span = (%d, %d), want (%d, %d)", i, tok.Start(), tok.End(), w[0], w[1])
		}
	}
}

func TestTokenizeContiguousCover(t *testing.T) {
	tok := newTokenizer(t)

	inputs := []string{
		sentence,
		"猫",
		"abc123",
		"ｶﾀｶﾅとひらがな",
		"。、！？",
	}
	for _, input := range inputs {
		list := tok.Tokenize(input)
		runes := []rune(input)

		if list.Len() == 0 {
			t.Fatalf("input %q produced no tokens", input)
		}
		if first := list.At(0); first.Start() != 0 {
			t.Fatalf("input %q: first token starts at %d", input, first.Start())
		}
		if last := list.At(list.Len() - 1); last.End() != len(runes) {
			t.Fatalf("input %q: last token ends at %d, want %d", input, last.End(), len(runes))
		}

		var rebuilt strings.Builder
		prevEnd := 0
		for _, tok := range list.Tokens() {
			if tok.Start() != prevEnd {
				t.Fatalf("input %q: gap before span (%d, %d)", input, tok.Start(), tok.End())
			}
			prevEnd = tok.End()
			rebuilt.WriteString(tok.Surface())
		}
		if rebuilt.String() != input {
			t.Fatalf("surfaces rebuild %q, want %q", rebuilt.String(), input)
		}
	}
}

func TestTokenizeWsConst(t *testing.T) {
	tok := newTokenizer(t, vaporetto.WithWsConst("K"))

	got := surfaces(tok.Tokenize(sentence))
	want := []string{"まぁ", "社長", "は", "火星猫", "だ"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("surfaces = %v, want %v", got, want)
	}
}

func TestTokenizeWsConstOnlyAffectsClass(t *testing.T) {
	plain := newTokenizer(t)
	merged := newTokenizer(t, vaporetto.WithWsConst("K"))

	// Everything except kanji/kanji gaps must match the unfiltered result.
	input := "まぁ社長は火星猫だ"
	a := plain.Tokenize(input)
	b := merged.Tokenize(input)

	bounds := func(list vaporetto.TokenList) map[int]bool {
		out := make(map[int]bool)
		for _, tok := range list.Tokens() {
			if tok.End() < len([]rune(input)) {
				out[tok.End()] = true
			}
		}
		return out
	}
	for end := range bounds(b) {
		if !bounds(a)[end] {
			t.Fatalf("wsconst introduced a new split at %d", end)
		}
	}
}

func TestInvalidWsConst(t *testing.T) {
	_, err := vaporetto.New(testutil.ReferenceModelBytes(t, true), vaporetto.WithWsConst("Z"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, filter.ErrInvalidWsConst) {
		t.Fatalf("expected ErrInvalidWsConst, got %v", err)
	}
}

func TestTags(t *testing.T) {
	tok := newTokenizer(t, vaporetto.WithTagPrediction())

	list := tok.Tokenize(sentence)
	wantPOS := []string{"名詞", "名詞", "助詞", "名詞", "名詞", "助動詞"}
	wantReading := []string{"マー", "シャチョー", "ワ", "カセー", "ネコ", "ダ"}

	for i := 0; i < list.Len(); i++ {
		token := list.At(i)
		if token.NumTags() != 2 {
			t.Fatalf("token %d NumTags = %d, want 2", i, token.NumTags())
		}
		pos, err := token.Tag(0)
		if err != nil {
			t.Fatalf("token %d Tag(0): %v", i, err)
		}
		if pos != wantPOS[i] {
			t.Fatalf("token %d Tag(0) = %q, want %q", i, pos, wantPOS[i])
		}
		reading, err := token.Tag(1)
		if err != nil {
			t.Fatalf("token %d Tag(1): %v", i, err)
		}
		if reading != wantReading[i] {
			t.Fatalf("token %d Tag(1) = %q, want %q", i, reading, wantReading[i])
		}
	}
}

func TestTagOutOfRange(t *testing.T) {
	tok := newTokenizer(t, vaporetto.WithTagPrediction())

	list := tok.Tokenize(sentence)
	token := list.At(0)
	for _, k := range []int{-1, 2, 10} {
		if _, err := token.Tag(k); !errors.Is(err, vaporetto.ErrTagIndex) {
			t.Fatalf("Tag(%d): expected ErrTagIndex, got %v", k, err)
		}
	}
}

func TestTagWithoutPrediction(t *testing.T) {
	tok := newTokenizer(t)

	list := tok.Tokenize(sentence)
	token := list.At(0)
	if token.NumTags() != 0 {
		t.Fatalf("NumTags = %d, want 0", token.NumTags())
	}
	if _, err := token.Tag(0); !errors.Is(err, vaporetto.ErrTagIndex) {
		t.Fatalf("expected ErrTagIndex, got %v", err)
	}
}

func TestTokenizeToString(t *testing.T) {
	tok := newTokenizer(t)

	got := tok.TokenizeToString(sentence)
	want := "まぁ 社長 は 火星 猫 だ"
	if got != want {
		t.Fatalf("TokenizeToString = %q, want %q", got, want)
	}
}

func TestTokenizeToStringWithTags(t *testing.T) {
	tok := newTokenizer(t, vaporetto.WithTagPrediction())

	got := tok.TokenizeToString(sentence)
	want := "まぁ/名詞/マー 社長/名詞/シャチョー は/助詞/ワ 火星/名詞/カセー 猫/名詞/ネコ だ/助動詞/ダ"
	if got != want {
		t.Fatalf("TokenizeToString = %q, want %q", got, want)
	}
}

func TestTokenizeToStringEmpty(t *testing.T) {
	tok := newTokenizer(t, vaporetto.WithTagPrediction())

	if got := tok.TokenizeToString(""); got != "" {
		t.Fatalf("TokenizeToString(\"\") = %q, want empty", got)
	}
}

func TestNormalization(t *testing.T) {
	// The reference dictionary holds fullwidth １２３; halfwidth input only
	// matches it through the normalization pass, and the surfaces stay
	// halfwidth either way.
	input := "あ123"

	norm := newTokenizer(t)
	got := surfaces(norm.Tokenize(input))
	want := []string{"あ", "123"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("normalized surfaces = %v, want %v", got, want)
	}

	raw := newTokenizer(t, vaporetto.WithNormalization(false))
	got = surfaces(raw.Tokenize(input))
	want = []string{"あ123"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unnormalized surfaces = %v, want %v", got, want)
	}
}

func TestDeterminism(t *testing.T) {
	tok := newTokenizer(t, vaporetto.WithTagPrediction())

	first := tok.TokenizeToString(sentence)
	for i := 0; i < 50; i++ {
		if got := tok.TokenizeToString(sentence); got != first {
			t.Fatalf("run %d produced %q, first run produced %q", i, got, first)
		}
	}
}

func TestConcurrentTokenize(t *testing.T) {
	tok := newTokenizer(t, vaporetto.WithTagPrediction())
	want := tok.TokenizeToString(sentence)

	var wg sync.WaitGroup
	errCh := make(chan error, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if got := tok.TokenizeToString(sentence); got != want {
					errCh <- errors.New("concurrent result mismatch: " + got)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatal(err)
	}
}

func TestNewRejectsBadModel(t *testing.T) {
	_, err := vaporetto.New([]byte("not a model"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, model.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestUncompressedModel(t *testing.T) {
	tok, err := vaporetto.New(testutil.ReferenceModelBytes(t, false))
	if err != nil {
		t.Fatalf("new tokenizer from raw payload: %v", err)
	}
	if got := tok.TokenizeToString(sentence); got != "まぁ 社長 は 火星 猫 だ" {
		t.Fatalf("TokenizeToString = %q", got)
	}
}

func TestModelInfo(t *testing.T) {
	tok := newTokenizer(t)

	info := tok.ModelInfo()
	if info.CharWindow != 3 || info.TypeWindow != 3 {
		t.Fatalf("windows = %d/%d, want 3/3", info.CharWindow, info.TypeWindow)
	}
	if info.TagLayers != 2 {
		t.Fatalf("TagLayers = %d, want 2", info.TagLayers)
	}
	if info.DictWords == 0 || info.CharNgrams == 0 || info.TypeNgrams == 0 {
		t.Fatalf("empty tables in info: %+v", info)
	}
	if tok.NumTags() != 2 {
		t.Fatalf("NumTags = %d, want 2", tok.NumTags())
	}
}

func BenchmarkTokenize(b *testing.B) {
	data, err := model.EncodeZstd(testutil.ReferenceModel())
	if err != nil {
		b.Fatalf("encode model: %v", err)
	}
	tok, err := vaporetto.New(data)
	if err != nil {
		b.Fatalf("new tokenizer: %v", err)
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tok.Tokenize(sentence)
	}
}
