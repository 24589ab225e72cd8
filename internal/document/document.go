// Package document opens files as paginated documents for the read-aloud
// engine. Each supported format decides what a page is: PDF pages, form-feed
// separated text, Markdown split at thematic breaks and top-level headings,
// DOCX split at Heading 1 paragraphs, and HTML split at <hr>.
package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgnsrekt/readaloud/utils"
)

// Kind identifies a document format.
type Kind string

// Supported document kinds.
const (
	KindPDF      Kind = "pdf"
	KindDOCX     Kind = "docx"
	KindMarkdown Kind = "markdown"
	KindHTML     Kind = "html"
	KindText     Kind = "text"
)

// ErrPageRange is returned when a page outside [1, PageCount] is requested.
var ErrPageRange = errors.New("page out of range")

// source is what a format parser provides.
type source interface {
	count() int
	runs(ctx context.Context, page int) ([]string, error)
}

// Document is an opened file. It implements tts.Document.
type Document struct {
	id    string
	path  string
	title string
	kind  Kind
	src   source

	// markdown holds the raw markdown of each page for Markdown documents.
	markdown []string
}

// ID returns the SHA-256 of the file contents, so an edited file is a new
// document.
func (d *Document) ID() string { return d.id }

// Path returns the file the document was opened from.
func (d *Document) Path() string { return d.path }

// Title returns the document title, or the file name without extension.
func (d *Document) Title() string { return d.title }

// Kind returns the document format.
func (d *Document) Kind() Kind { return d.kind }

// PageCount returns the number of pages, at least 1.
func (d *Document) PageCount() int {
	if n := d.src.count(); n > 0 {
		return n
	}
	return 1
}

// PageRuns returns the text runs of a page in reading order.
func (d *Document) PageRuns(ctx context.Context, page int) ([]string, error) {
	if page < 1 || page > d.PageCount() {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageRange, page, d.PageCount())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.src.count() == 0 {
		return nil, nil
	}
	return d.src.runs(ctx, page)
}

// Markdown returns the raw markdown of a page for Markdown documents.
func (d *Document) Markdown(page int) (string, bool) {
	if d.kind != KindMarkdown || page < 1 || page > len(d.markdown) {
		return "", false
	}
	return d.markdown[page-1], true
}

// KindOf returns the kind used for a file name.
func KindOf(path string) Kind {
	if utils.IsMarkdownFile(path) {
		return KindMarkdown
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDOCX
	case ".html", ".htm", ".xhtml":
		return KindHTML
	default:
		return KindText
	}
}

// Open reads path and parses it according to its extension.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return Parse(path, data)
}

// Parse parses data as the document found at path.
func Parse(path string, data []byte) (*Document, error) {
	sum := sha256.Sum256(data)
	doc := &Document{
		id:    hex.EncodeToString(sum[:]),
		path:  path,
		title: titleFromPath(path),
		kind:  KindOf(path),
	}

	var err error
	switch doc.kind {
	case KindPDF:
		doc.src, err = parsePDF(data)
	case KindDOCX:
		doc.src, err = parseDOCX(data)
	case KindMarkdown:
		err = parseMarkdown(doc, data)
	case KindHTML:
		err = parseHTML(doc, data)
	default:
		doc.src = parseText(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", doc.kind, err)
	}

	return doc, nil
}

func titleFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// pages is a source whose pages were extracted up front.
type pages [][]string

func (p pages) count() int { return len(p) }

func (p pages) runs(_ context.Context, page int) ([]string, error) {
	return p[page-1], nil
}
