package document

import "strings"

// parseText splits plain text into pages at form feeds.
func parseText(data []byte) pages {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	var p pages
	for _, page := range strings.Split(text, "\f") {
		p = append(p, paragraphs(page))
	}
	return p
}

// paragraphs returns the blank-line separated paragraphs of text.
func paragraphs(text string) []string {
	var runs []string
	for _, para := range strings.Split(text, "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			runs = append(runs, para)
		}
	}
	return runs
}
