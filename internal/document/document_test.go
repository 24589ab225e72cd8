package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func pageRuns(t *testing.T, doc *Document, page int) []string {
	t.Helper()
	runs, err := doc.PageRuns(context.Background(), page)
	if err != nil {
		t.Fatalf("PageRuns(%d) error = %v", page, err)
	}
	return runs
}

func TestKindOf(t *testing.T) {
	tests := map[string]Kind{
		"a.pdf":      KindPDF,
		"B.PDF":      KindPDF,
		"c.docx":     KindDOCX,
		"README.md":  KindMarkdown,
		"page.htm":   KindHTML,
		"notes.txt":  KindText,
		"LICENSE":    KindText,
		"x.markdown": KindMarkdown,
	}
	for path, want := range tests {
		if got := KindOf(path); got != want {
			t.Errorf("KindOf(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestTextPages(t *testing.T) {
	doc, err := Parse("letter.txt", []byte("Dear reader,\n\nFirst page.\fSecond page.\f\f"))
	if err != nil {
		t.Fatal(err)
	}

	if doc.PageCount() != 4 {
		t.Fatalf("PageCount() = %d, want 4", doc.PageCount())
	}
	if got := pageRuns(t, doc, 1); len(got) != 2 || got[0] != "Dear reader," || got[1] != "First page." {
		t.Errorf("page 1 runs = %q", got)
	}
	if got := pageRuns(t, doc, 3); len(got) != 0 {
		t.Errorf("page 3 should be empty, got %q", got)
	}
	if doc.Title() != "letter" || doc.Kind() != KindText {
		t.Errorf("title=%q kind=%s", doc.Title(), doc.Kind())
	}
}

func TestPageRange(t *testing.T) {
	doc, _ := Parse("a.txt", []byte("one"))

	for _, page := range []int{0, 2} {
		if _, err := doc.PageRuns(context.Background(), page); !errors.Is(err, ErrPageRange) {
			t.Errorf("PageRuns(%d) error = %v, want ErrPageRange", page, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := doc.PageRuns(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("PageRuns with cancelled ctx error = %v", err)
	}
}

func TestIDTracksContent(t *testing.T) {
	a, _ := Parse("a.txt", []byte("same"))
	b, _ := Parse("b.txt", []byte("same"))
	c, _ := Parse("a.txt", []byte("different"))

	if a.ID() != b.ID() {
		t.Error("equal content should give equal IDs")
	}
	if a.ID() == c.ID() {
		t.Error("different content should give different IDs")
	}
	if len(a.ID()) != 64 {
		t.Errorf("ID length = %d, want 64 hex chars", len(a.ID()))
	}
}

func TestMarkdownPages(t *testing.T) {
	src := `---
title: ignored
---
# Chapter One

Some *emphasis* here.

- item one
- item two

***

Still chapter one, second page.

` + "```go\n# not a heading\n---\n```" + `

Setext heading
---

# Chapter Two

<div>raw html</div>

Final words.
`

	doc, err := Parse("book.md", []byte(src))
	if err != nil {
		t.Fatal(err)
	}

	if doc.PageCount() != 3 {
		for i := 1; i <= doc.PageCount(); i++ {
			md, _ := doc.Markdown(i)
			t.Logf("page %d:\n%s", i, md)
		}
		t.Fatalf("PageCount() = %d, want 3", doc.PageCount())
	}
	if doc.Title() != "Chapter One" {
		t.Errorf("Title() = %q, want Chapter One", doc.Title())
	}

	first := strings.Join(pageRuns(t, doc, 1), " | ")
	if first != "Chapter One | Some emphasis here. | item one\nitem two" {
		t.Errorf("page 1 = %q", first)
	}

	second := strings.Join(pageRuns(t, doc, 2), " | ")
	if strings.Contains(second, "not a heading") {
		t.Errorf("code blocks should not be spoken: %q", second)
	}
	if !strings.Contains(second, "Setext heading") {
		t.Errorf("page 2 = %q", second)
	}

	third := strings.Join(pageRuns(t, doc, 3), " | ")
	if third != "Chapter Two | Final words." {
		t.Errorf("page 3 = %q", third)
	}

	md, ok := doc.Markdown(3)
	if !ok || !strings.HasPrefix(md, "# Chapter Two") {
		t.Errorf("Markdown(3) = %q, %v", md, ok)
	}
}

func TestMarkdownWithoutBreaksIsOnePage(t *testing.T) {
	doc, err := Parse("notes.md", []byte("Just a paragraph.\n\nAnd another."))
	if err != nil {
		t.Fatal(err)
	}
	if doc.PageCount() != 1 {
		t.Fatalf("PageCount() = %d, want 1", doc.PageCount())
	}
	if got := pageRuns(t, doc, 1); len(got) != 2 {
		t.Errorf("runs = %q", got)
	}
}

func TestHTMLPages(t *testing.T) {
	src := `<html><head><title>Report</title><style>p{}</style></head>
<body>
<nav>Menu</nav>
<h1>Summary</h1>
<p>First   paragraph<br>continues.</p>
<script>alert(1)</script>
<hr>
<ul><li>Point one</li><li>Point two</li></ul>
</body></html>`

	doc, err := Parse("report.html", []byte(src))
	if err != nil {
		t.Fatal(err)
	}

	if doc.Title() != "Report" {
		t.Errorf("Title() = %q", doc.Title())
	}
	if doc.PageCount() != 2 {
		t.Fatalf("PageCount() = %d, want 2", doc.PageCount())
	}

	first := pageRuns(t, doc, 1)
	if len(first) != 2 || first[0] != "Summary" || first[1] != "First paragraph continues." {
		t.Errorf("page 1 = %q", first)
	}
	second := pageRuns(t, doc, 2)
	if len(second) != 2 || second[1] != "Point two" {
		t.Errorf("page 2 = %q", second)
	}
}

func TestInvalidBinaryFormats(t *testing.T) {
	for _, name := range []string{"broken.pdf", "broken.docx"} {
		if _, err := Parse(name, []byte("definitely not a binary document")); err == nil {
			t.Errorf("Parse(%s) should fail", name)
		}
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open() error = %v, want ErrNotExist", err)
	}
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := Watch(path, nil)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Wait(ctx) }()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := <-done; err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}
