package document

import (
	"bytes"
	"strings"

	"github.com/fumiama/go-docx"
)

// parseDOCX makes every Heading 1 paragraph start a new page.
func parseDOCX(data []byte) (pages, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var (
		p       pages
		current []string
	)
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		if isDocxHeading1(para) && len(current) > 0 {
			p = append(p, current)
			current = nil
		}
		current = append(current, text)
	}
	if len(current) > 0 || len(p) == 0 {
		p = append(p, current)
	}

	return p, nil
}

func isDocxHeading1(para *docx.Paragraph) bool {
	if para.Properties == nil || para.Properties.Style == nil {
		return false
	}
	style := para.Properties.Style.Val
	return strings.EqualFold(style, "Heading1") || strings.EqualFold(style, "heading 1") ||
		strings.EqualFold(style, "Title")
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
