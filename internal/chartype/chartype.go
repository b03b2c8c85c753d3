// Package chartype classifies runes into the coarse character classes the
// boundary model is trained on. The class byte values are part of the model
// artifact contract: type n-gram keys are sequences of these codes.
package chartype

import "unicode"

// CharType is a coarse character class.
type CharType byte

const (
	Digit    CharType = 'D'
	Roman    CharType = 'R'
	Hiragana CharType = 'H'
	Katakana CharType = 'T'
	Kanji    CharType = 'K'
	Other    CharType = 'O'
)

// Type returns the character class of r. Fullwidth digits and latin letters
// classify as Digit and Roman so that classification is stable across the
// fullwidth normalization pass.
func Type(r rune) CharType {
	switch {
	case r >= '0' && r <= '9', r >= '０' && r <= '９':
		return Digit
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
		r >= 'ａ' && r <= 'ｚ', r >= 'Ａ' && r <= 'Ｚ':
		return Roman
	case r >= 0x3040 && r <= 0x309F:
		return Hiragana
	case r >= 0x30A0 && r <= 0x30FF, r >= 0x31F0 && r <= 0x31FF,
		r >= 0xFF66 && r <= 0xFF9D:
		return Katakana
	case unicode.Is(unicode.Han, r):
		return Kanji
	default:
		return Other
	}
}

// Classify maps every rune of rs to its character class.
func Classify(rs []rune) []CharType {
	out := make([]CharType, len(rs))
	for i, r := range rs {
		out[i] = Type(r)
	}
	return out
}

// FromLetter maps a wsconst-style class letter to its CharType.
// The grapheme concat letter 'G' is not a character class and is rejected.
func FromLetter(c byte) (CharType, bool) {
	switch CharType(c) {
	case Digit, Roman, Hiragana, Katakana, Kanji, Other:
		return CharType(c), true
	default:
		return 0, false
	}
}
