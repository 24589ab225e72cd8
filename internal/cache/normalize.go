package cache

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	// A hyphen at the end of a line with a lowercase continuation on the next.
	lineBreakHyphen = regexp.MustCompile(`(\p{L})-[ \t]*\r?\n\s*(\p{Ll})`)
	hyphenEnd       = regexp.MustCompile(`\p{L}-\s*$`)
	lowerStart      = regexp.MustCompile(`^\s*\p{Ll}`)
)

const softHyphen = "\u00ad"

// Normalize joins the text runs of a page into speakable text: runs are
// joined with spaces, composed to NFC, soft hyphens dropped, words broken
// across lines or runs with a hyphen rejoined and whitespace collapsed.
// Hyphens followed by a space inside a line ("pre- and post-war") are kept.
func Normalize(runs []string) string {
	text := norm.NFC.String(joinRuns(runs))
	text = strings.ReplaceAll(text, softHyphen, "")
	text = lineBreakHyphen.ReplaceAllString(text, "$1$2")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// joinRuns joins runs with single spaces, except that a run ending in a
// hyphenated word fragment is glued to a run starting in lowercase.
func joinRuns(runs []string) string {
	parts := make([]string, 0, len(runs))
	for _, run := range runs {
		if n := len(parts); n > 0 && hyphenEnd.MatchString(parts[n-1]) && lowerStart.MatchString(run) {
			head := strings.TrimSuffix(strings.TrimRightFunc(parts[n-1], unicode.IsSpace), "-")
			parts[n-1] = head + strings.TrimLeftFunc(run, unicode.IsSpace)
			continue
		}
		parts = append(parts, run)
	}
	return strings.Join(parts, " ")
}
