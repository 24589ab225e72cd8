// Package sentence splits normalized page text into sentences and packs them
// into chunks short enough for a speech backend to take in one utterance.
package sentence

import (
	"regexp"
	"strings"
	"unicode"
)

// closers may trail terminal punctuation and still belong to the sentence,
// as in `He said "stop."` or `(see above.)`.
const closers = "\"'”’»)]}"

// Split returns the sentences of text, cut after terminal punctuation that is
// followed by whitespace. Surrounding whitespace is trimmed from each
// sentence and whitespace-only text yields nil.
func Split(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}

		end := i + 1
		for end < len(runes) && (isTerminal(runes[end]) || strings.ContainsRune(closers, runes[end])) {
			end++
		}
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			// "3.14", "e.g.x" and friends are not sentence ends.
			i = end - 1
			continue
		}
		if end < len(runes) && end == i+1 && runes[i] == '.' && isAbbreviation(wordBefore(runes, i)) {
			i = end - 1
			continue
		}

		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			sentences = append(sentences, s)
		}
		start = end
		i = end - 1
	}

	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

// abbreviations end in a period without ending the sentence. Words that
// also close ordinary sentences ("in", "sun") are left out.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true, "sr": true, "jr": true,
	"llc": true, "inc": true, "ltd": true, "co": true, "corp": true,
	"etc": true, "vs": true, "cf": true, "al": true, "approx": true,
	"jan": true, "feb": true, "apr": true, "jun": true, "jul": true, "aug": true,
	"sep": true, "sept": true, "oct": true, "nov": true, "dec": true,
	"st": true, "rd": true, "ave": true, "blvd": true,
	"ft": true, "lbs": true, "oz": true, "kg": true, "km": true, "cm": true, "mm": true,
	"hr": true, "hrs": true, "mins": true, "secs": true, "fig": true, "vol": true,
}

// initialism matches dotted forms such as "e.g", "u.s" and "ph.d", seen
// without their final period.
var initialism = regexp.MustCompile(`^(\p{L}{1,2}\.)+\p{L}{1,2}$`)

func isAbbreviation(word string) bool {
	word = strings.ToLower(word)
	return abbreviations[word] || initialism.MatchString(word)
}

// wordBefore returns the word that ends just before runes[pos], without any
// opening quote or bracket.
func wordBefore(runes []rune, pos int) string {
	start := pos
	for start > 0 && !unicode.IsSpace(runes[start-1]) && !strings.ContainsRune(openers, runes[start-1]) {
		start--
	}
	return string(runes[start:pos])
}

const openers = "\"'“‘«([{"
