// Package filter implements the input normalizer and the post-segmentation
// boundary filters configured through the wsconst option.
package filter

import "golang.org/x/text/width"

// Fullwidth returns a copy of rs with halfwidth runes widened to their
// fullwidth forms. The mapping is strictly per-rune, so positions in the
// result always line up with the original text; callers score the widened
// copy and keep spans on the original.
func Fullwidth(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		if wide := width.LookupRune(r).Wide(); wide != 0 {
			out[i] = wide
		} else {
			out[i] = r
		}
	}
	return out
}
