package analyzer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var spaceRun = regexp.MustCompile(`\s+`)

// Normalize lowercases text, strips diacritics via NFKD decomposition plus
// combining-mark removal, and collapses whitespace runs. All text matching
// in the pipeline (keywords, scoring, mention detection) goes through this
// so casing and Spanish accents are handled consistently everywhere.
func Normalize(text string) string {
	text = strings.ToLower(text)
	decomposed := norm.NFKD.String(text)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.TrimSpace(spaceRun.ReplaceAllString(b.String(), " "))
}
