// Package sanitize normalizes raw post text before storage and scoring.
package sanitize

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize strips NUL and the other C0 control characters, collapses runs of
// whitespace (spaces, tabs, newlines, in any mix) to a single space, and trims
// leading/trailing whitespace.
//
// Downstream storage and moderation scoring both operate on the normalized
// text, so duplicated whitespace can't be used to pad length or evade scoring
// heuristics. No control character survives, not even newlines or tabs: those
// count as whitespace and get folded into the surrounding run. That is
// deliberate, not incidental.
//
// Total function, and idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	text = strings.Map(func(r rune) rune {
		// keep exactly the C0 characters the whitespace collapse handles
		switch r {
		case '\t', '\n', '\f', '\r':
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, text)
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
