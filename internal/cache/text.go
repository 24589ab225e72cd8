package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/tts"
	"golang.org/x/sync/singleflight"
)

type pageKey struct {
	doc  string
	page int
}

func (k pageKey) String() string {
	return fmt.Sprintf("%s/%d", k.doc, k.page)
}

// TextCache memoizes normalized page text for the active document. Pages
// are extracted lazily, at most once at a time per page, and kept until the
// document changes or Reset is called. Failed extractions are not cached.
type TextCache struct {
	mu      sync.Mutex
	docID   string
	entries map[pageKey]string
	stats   CacheStats

	group  singleflight.Group
	disk   *DiskStore
	logger *log.Logger
}

// Option configures a TextCache.
type Option func(*TextCache)

// WithDiskStore persists extracted pages in ds.
func WithDiskStore(ds *DiskStore) Option {
	return func(c *TextCache) {
		c.disk = ds
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *TextCache) {
		c.logger = logger
	}
}

// NewTextCache creates an empty text cache.
func NewTextCache(opts ...Option) *TextCache {
	c := &TextCache{
		entries: make(map[pageKey]string),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PageText implements tts.TextSource. A caller that gives up through ctx
// does not abort an extraction other callers may be waiting on.
func (c *TextCache) PageText(ctx context.Context, doc tts.Document, page int) (string, error) {
	key := pageKey{doc: doc.ID(), page: page}

	c.mu.Lock()
	if c.docID != key.doc {
		if c.docID != "" {
			c.logger.Debug("Document changed, dropping cached pages", "from", c.docID, "to", key.doc)
		}
		c.docID = key.doc
		c.entries = make(map[pageKey]string)
	}
	if text, ok := c.entries[key]; ok {
		c.stats.Hits++
		c.mu.Unlock()
		return text, nil
	}
	c.stats.Misses++
	c.mu.Unlock()

	ch := c.group.DoChan(key.String(), func() (any, error) {
		text, err := c.extract(context.WithoutCancel(ctx), doc, key)
		return text, err
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.mu.Lock()
			c.stats.Shared++
			c.mu.Unlock()
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Peek returns a cached page without extracting it.
func (c *TextCache) Peek(docID string, page int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	text, ok := c.entries[pageKey{doc: docID, page: page}]
	return text, ok
}

// Reset implements tts.TextSource.
func (c *TextCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.docID = ""
	c.entries = make(map[pageKey]string)
}

// Stats returns cache statistics.
func (c *TextCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Document = c.docID
	stats.Entries = len(c.entries)
	if stats.Hits+stats.Misses > 0 {
		stats.HitRate = float64(stats.Hits) / float64(stats.Hits+stats.Misses)
	}
	return stats
}

func (c *TextCache) extract(ctx context.Context, doc tts.Document, key pageKey) (string, error) {
	if c.disk != nil {
		if data, ok := c.disk.Get(key.String()); ok {
			text := string(data)
			c.mu.Lock()
			c.stats.DiskHits++
			c.mu.Unlock()
			c.store(key, text)
			return text, nil
		}
	}

	c.mu.Lock()
	c.stats.Extractions++
	c.mu.Unlock()

	runs, err := doc.PageRuns(ctx, key.page)
	if err != nil {
		c.mu.Lock()
		c.stats.Failures++
		c.mu.Unlock()
		c.logger.Debug("Page extraction failed", "doc", key.doc, "page", key.page, "err", err)
		return "", fmt.Errorf("%w: page %d: %w", tts.ErrExtraction, key.page, err)
	}

	text := Normalize(runs)
	c.store(key, text)

	if c.disk != nil {
		if err := c.disk.Put(key.String(), []byte(text)); err != nil {
			c.logger.Warn("Could not persist page text", "page", key.page, "err", err)
		}
	}
	return text, nil
}

// store keeps text unless the active document changed during extraction.
func (c *TextCache) store(key pageKey, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.docID == key.doc {
		c.entries[key] = text
	}
}
