package sentence

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		if got := Chunk(in, 220); len(got) != 0 {
			t.Errorf("Chunk(%q) = %q, want empty", in, got)
		}
	}
}

func TestChunkHardSplit(t *testing.T) {
	text := strings.Repeat("a", 500)

	chunks := Chunk(text, 220)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	want := []int{220, 220, 60}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n != want[i] {
			t.Errorf("chunk %d has %d runes, want %d", i, n, want[i])
		}
	}
}

func TestChunkPacksSentences(t *testing.T) {
	text := "One. Two. Three. Four."

	chunks := Chunk(text, 10)
	want := []string{"One. Two.", "Three.", "Four."}
	if strings.Join(chunks, "|") != strings.Join(want, "|") {
		t.Errorf("Chunk() = %q, want %q", chunks, want)
	}
}

func TestChunkDefaultMaxLen(t *testing.T) {
	text := strings.Repeat("b", DefaultMaxLen+1)

	chunks := Chunk(text, 0)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks with default limit, got %d", len(chunks))
	}
}

func TestChunkMultibyte(t *testing.T) {
	text := strings.Repeat("é", 25)

	chunks := Chunk(text, 10)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if n := utf8.RuneCountInString(chunks[2]); n != 5 {
		t.Errorf("last chunk has %d runes, want 5", n)
	}
}

// TestChunkProperties checks reconstruction and the length bound over a
// handful of realistic page texts.
func TestChunkProperties(t *testing.T) {
	long := strings.Repeat("x", 300)
	texts := []string{
		"The court adjourned at noon. Counsel for the defense asked for a short recess, which was granted.",
		"Short. " + long + " Tail sentence here.",
		strings.Repeat("A fairly ordinary sentence that keeps going for a while. ", 20),
		"Is this it? It is! Quoted \"words.\" And (parenthetical.) Done",
	}

	for _, maxLen := range []int{40, 80, 220} {
		for _, text := range texts {
			chunks := Chunk(text, maxLen)

			joined := strings.Join(chunks, " ")
			if squash(joined) != squash(text) {
				t.Errorf("maxLen=%d: reconstruction mismatch\n got: %q\nwant: %q", maxLen, joined, text)
			}

			for _, c := range chunks {
				if utf8.RuneCountInString(c) > maxLen {
					t.Errorf("maxLen=%d: chunk of %d runes exceeds limit: %q", maxLen, utf8.RuneCountInString(c), c)
				}
			}
		}
	}
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}
