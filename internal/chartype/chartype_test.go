package chartype

import "testing"

func TestType(t *testing.T) {
	tests := []struct {
		name string
		r    rune
		want CharType
	}{
		{name: "ascii digit", r: '7', want: Digit},
		{name: "fullwidth digit", r: '７', want: Digit},
		{name: "ascii lower", r: 'x', want: Roman},
		{name: "ascii upper", r: 'Q', want: Roman},
		{name: "fullwidth latin", r: 'ｘ', want: Roman},
		{name: "hiragana", r: 'ま', want: Hiragana},
		{name: "small hiragana", r: 'ぁ', want: Hiragana},
		{name: "katakana", r: 'ネ', want: Katakana},
		{name: "prolonged sound mark", r: 'ー', want: Katakana},
		{name: "halfwidth katakana", r: 'ｶ', want: Katakana},
		{name: "kanji", r: '猫', want: Kanji},
		{name: "kanji two", r: '社', want: Kanji},
		{name: "space", r: ' ', want: Other},
		{name: "punctuation", r: '。', want: Other},
		{name: "symbol", r: '$', want: Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Type(tt.r); got != tt.want {
				t.Fatalf("Type(%q) = %c, want %c", tt.r, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	got := Classify([]rune("は7ネ"))
	want := []CharType{Hiragana, Digit, Katakana}
	if len(got) != len(want) {
		t.Fatalf("Classify length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Classify[%d] = %c, want %c", i, got[i], want[i])
		}
	}
}

func TestFromLetter(t *testing.T) {
	for _, c := range []byte{'D', 'R', 'H', 'T', 'K', 'O'} {
		ct, ok := FromLetter(c)
		if !ok {
			t.Fatalf("FromLetter(%c) not recognized", c)
		}
		if byte(ct) != c {
			t.Fatalf("FromLetter(%c) = %c", c, ct)
		}
	}

	for _, c := range []byte{'G', 'X', 'd', '0'} {
		if _, ok := FromLetter(c); ok {
			t.Fatalf("FromLetter(%c) unexpectedly recognized", c)
		}
	}
}
