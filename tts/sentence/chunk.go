package sentence

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxLen is the chunk length used when a caller passes a non-positive
// limit. Lengths are counted in runes.
const DefaultMaxLen = 220

// Chunk packs the sentences of text into segments of at most maxLen runes.
//
// Consecutive sentences are joined with a single space while they fit. A
// sentence that is longer than maxLen on its own is cut into fixed-length
// slices, each emitted as its own chunk. Joining the result with single
// spaces gives back text up to whitespace at the split points.
func Chunk(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	var (
		chunks []string
		buf    strings.Builder
		bufLen int
	)

	flush := func() {
		if bufLen > 0 {
			chunks = append(chunks, buf.String())
			buf.Reset()
			bufLen = 0
		}
	}

	for _, s := range Split(text) {
		n := utf8.RuneCountInString(s)

		if n > maxLen {
			flush()
			chunks = append(chunks, hardSplit(s, maxLen)...)
			continue
		}

		if bufLen > 0 && bufLen+1+n > maxLen {
			flush()
		}
		if bufLen > 0 {
			buf.WriteByte(' ')
			bufLen++
		}
		buf.WriteString(s)
		bufLen += n
	}
	flush()

	return chunks
}

// hardSplit cuts s into slices of exactly maxLen runes; the last slice holds
// the remainder.
func hardSplit(s string, maxLen int) []string {
	runes := []rune(s)
	parts := make([]string, 0, len(runes)/maxLen+1)
	for len(runes) > maxLen {
		parts = append(parts, string(runes[:maxLen]))
		runes = runes[maxLen:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
