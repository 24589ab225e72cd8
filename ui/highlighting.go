package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var highlightStyle = lipgloss.NewStyle().
	Background(lipgloss.Color("226")).
	Foreground(lipgloss.Color("0")).
	Bold(true)

// highlightChunk marks the first occurrence of chunk in the paragraphs. A
// chunk spanning two paragraphs is not marked.
func highlightChunk(paragraphs []string, chunk string) []string {
	chunk = strings.TrimSpace(chunk)
	if chunk == "" {
		return paragraphs
	}

	out := make([]string, len(paragraphs))
	copy(out, paragraphs)

	for i, p := range out {
		idx := strings.Index(p, chunk)
		if idx < 0 {
			continue
		}
		out[i] = p[:idx] + highlightStyle.Render(chunk) + p[idx+len(chunk):]
		break
	}
	return out
}
