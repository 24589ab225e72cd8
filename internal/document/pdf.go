package document

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	pdflib "github.com/ledongthuc/pdf"
)

// pdfSource extracts PDF pages on demand.
type pdfSource struct {
	mu     sync.Mutex
	reader *pdflib.Reader
	pages  int
}

func parsePDF(data []byte) (*pdfSource, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &pdfSource{reader: reader, pages: reader.NumPage()}, nil
}

func (s *pdfSource) count() int { return s.pages }

func (s *pdfSource) runs(_ context.Context, page int) (runs []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The PDF library panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			runs, err = nil, fmt.Errorf("pdf page %d: %v", page, r)
		}
	}()

	p := s.reader.Page(page)
	if p.V.IsNull() {
		return nil, nil
	}

	text, err := p.GetPlainText(nil)
	if err != nil {
		return nil, fmt.Errorf("pdf page %d: %w", page, err)
	}
	if text == "" {
		return nil, nil
	}
	return []string{text}, nil
}
