// Package testutil provides the shared reference model used across test
// packages. The model is small enough to hand-check: dictionary evidence
// dominates with weights of +-5 against a bias of -1, and the n-gram tables
// carry light weights so every feature path is exercised without flipping
// any decision.
package testutil

import (
	"testing"

	"github.com/example/go-vaporetto/internal/model"
)

// ReferenceModel returns a model that segments まぁ社長は火星猫だ into
// まぁ/社長/は/火星/猫/だ, tags the tokens with a part-of-speech layer and a
// reading layer, and splits あ from a run of digits only when fullwidth
// normalization is active (the dictionary holds １２３, not 123).
func ReferenceModel() *model.Model {
	dict := map[string]model.DictWeights{
		"まぁ":  {Left: 5, Inside: -5, Right: 5},
		"社長":  {Left: 5, Inside: -5, Right: 5},
		"は":   {Left: 5, Right: 5},
		"火星":  {Left: 5, Inside: -5, Right: 5},
		"猫":   {Left: 5, Right: 5},
		"だ":   {Left: 5, Right: 5},
		"１２３": {Left: 5, Inside: -5, Right: 5},
	}

	charNgrams := map[string][]int32{
		// k=2 inside window 3 carries 5 positional weights, k=1 carries 6.
		"社長": {0, 1, -1, 1, 0},
		"ぁ":  {0, 0, 1, 0, 0, 0},
	}
	typeNgrams := map[string][]int32{
		// Kanji→hiragana transition mildly favors a split at the gap.
		"KH": {0, 0, 1, 0, 0},
	}

	pos := model.TagLayer{
		Vocab:      []string{"名詞", "助詞", "助動詞"},
		ContextLen: 1,
		Surface: map[string][]int32{
			"まぁ": {1, 0, 0},
			"社長": {1, 0, 0},
			"は":  {0, 1, 0},
			"火星": {1, 0, 0},
			"猫":  {1, 0, 0},
			"だ":  {0, 0, 1},
		},
		Left:  map[string][]int32{"は": {1, 0, 0}},
		Right: map[string][]int32{"だ": {1, 0, 0}},
	}
	reading := model.TagLayer{
		Vocab: []string{"マー", "シャチョー", "ワ", "カセー", "ネコ", "ダ"},
		Surface: map[string][]int32{
			"まぁ": {1, 0, 0, 0, 0, 0},
			"社長": {0, 1, 0, 0, 0, 0},
			"は":  {0, 0, 1, 0, 0, 0},
			"火星": {0, 0, 0, 1, 0, 0},
			"猫":  {0, 0, 0, 0, 1, 0},
			"だ":  {0, 0, 0, 0, 0, 1},
		},
		Left:  map[string][]int32{},
		Right: map[string][]int32{},
	}

	return &model.Model{
		CharWindow: 3,
		TypeWindow: 3,
		Bias:       -1,
		CharNgrams: charNgrams,
		TypeNgrams: typeNgrams,
		Dict:       dict,
		TagLayers:  []model.TagLayer{pos, reading},
	}
}

// ReferenceModelBytes serializes the reference model, optionally inside its
// usual zstd container.
func ReferenceModelBytes(t *testing.T, compressed bool) []byte {
	t.Helper()
	m := ReferenceModel()

	var (
		data []byte
		err  error
	)
	if compressed {
		data, err = model.EncodeZstd(m)
	} else {
		data, err = model.Encode(m)
	}
	if err != nil {
		t.Fatalf("encode reference model: %v", err)
	}
	return data
}
