package document

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/dgnsrekt/readaloud/utils"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	thematicBreak = regexp.MustCompile(`^ {0,3}((\*\s*){3,}|(-\s*){3,}|(_\s*){3,})$`)
	topHeading    = regexp.MustCompile(`^ {0,3}#(\s|$)`)
	codeFence     = regexp.MustCompile("^ {0,3}(```|~~~)")
)

// parseMarkdown splits a Markdown file into pages at thematic breaks and
// before each top-level heading, then extracts the speakable text of every
// page.
func parseMarkdown(doc *Document, data []byte) error {
	src := utils.RemoveFrontmatter(data)
	doc.markdown = splitMarkdown(string(src))

	md := goldmark.New()
	p := make(pages, len(doc.markdown))
	for i, page := range doc.markdown {
		pageSrc := []byte(page)
		root := md.Parser().Parse(text.NewReader(pageSrc))

		for n := root.FirstChild(); n != nil; n = n.NextSibling() {
			if h, ok := n.(*ast.Heading); ok && h.Level == 1 && i == 0 && doc.title == titleFromPath(doc.path) {
				doc.title = extractText(h, pageSrc)
			}
			if t := extractText(n, pageSrc); t != "" {
				p[i] = append(p[i], t)
			}
		}
	}
	doc.src = p

	return nil
}

// splitMarkdown cuts src into pages, ignoring break markers inside fenced
// code. Empty pages are dropped.
func splitMarkdown(src string) []string {
	var (
		out     []string
		current []string
		inFence bool
	)

	flush := func() {
		page := strings.TrimSpace(strings.Join(current, "\n"))
		if page != "" {
			out = append(out, page)
		}
		current = nil
	}

	for _, line := range strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n") {
		if codeFence.MatchString(line) {
			inFence = !inFence
		}
		if !inFence {
			switch {
			case thematicBreak.MatchString(line) && !setextUnderline(current, line):
				flush()
				continue
			case topHeading.MatchString(line):
				flush()
			}
		}
		current = append(current, line)
	}
	flush()

	if len(out) == 0 {
		out = []string{""}
	}
	return out
}

// setextUnderline reports whether a "---" line underlines the paragraph
// above it rather than breaking the page.
func setextUnderline(before []string, line string) bool {
	if !strings.HasPrefix(strings.TrimSpace(line), "-") || len(before) == 0 {
		return false
	}
	return strings.TrimSpace(before[len(before)-1]) != ""
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	if _, ok := n.(*ast.FencedCodeBlock); ok {
		return ""
	}
	if _, ok := n.(*ast.CodeBlock); ok {
		return ""
	}
	if _, ok := n.(*ast.HTMLBlock); ok {
		return ""
	}

	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		if s := extractText(c, src); s != "" {
			if buf.Len() > 0 && c.Type() == ast.TypeBlock {
				buf.WriteByte('\n')
			}
			buf.WriteString(s)
		}
	}
	return strings.TrimSpace(buf.String())
}
