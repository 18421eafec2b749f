package rewrite

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Humanize converts an identifier such as SHORT_LOCAL_NAME, peer_addr or
// HTTPServer into lowerCamelCase (shortLocalName, peerAddr, httpServer).
// Applying it twice gives the same result as applying it once.
func Humanize(s string) string {
	words := splitWords(s)
	if len(words) == 0 {
		return ""
	}

	// A Caser is stateful, so each call gets its own
	lower := cases.Lower(language.Und)

	var b strings.Builder
	b.Grow(len(s))
	for i, w := range words {
		w = lower.String(w)
		if i == 0 {
			b.WriteString(w)
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

// splitWords breaks s on every non-alphanumeric rune and on case changes.
// An upper-case run that follows lower-case text is split into single
// letters (aBC -> a B C) so that Humanize output splits back into the
// words it was built from.
func splitWords(s string) []string {
	var words []string
	for _, field := range strings.FieldsFunc(s, isSeparator) {
		words = append(words, splitCase([]rune(field))...)
	}
	return words
}

// isSeparator keeps combining marks inside words: lowercasing may
// produce them (İ -> i + U+0307).
func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
}

func splitCase(r []rune) []string {
	var words []string
	start := 0
	for i := 1; i < len(r); i++ {
		if !unicode.IsUpper(r[i]) {
			continue
		}
		prev := r[i-1]
		switch {
		case !unicode.IsUpper(prev):
			// fooBar, 1M
			words = append(words, string(r[start:i]))
			start = i
		case i+1 < len(r) && unicode.IsLower(r[i+1]):
			// HTTPServer: the last upper starts the next word
			words = append(words, string(r[start:i]))
			start = i
		case start > 0:
			// aBC: an upper run after the first word is one word per letter
			words = append(words, string(r[start:i]))
			start = i
		}
	}
	return append(words, string(r[start:]))
}
