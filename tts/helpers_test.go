package tts_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines/mock"
)

const threeChunks = "First sentence here. Second sentence here. Third one."

var threeChunkTexts = []string{"First sentence here.", "Second sentence here.", "Third one."}

type fakeDoc struct {
	id    string
	pages []string
}

func (d *fakeDoc) ID() string     { return d.id }
func (d *fakeDoc) PageCount() int { return len(d.pages) }

func (d *fakeDoc) PageRuns(_ context.Context, page int) ([]string, error) {
	if page < 1 || page > len(d.pages) {
		return nil, fmt.Errorf("page %d out of range", page)
	}
	return []string{d.pages[page-1]}, nil
}

// numberedDoc returns a document whose pages read "Page N text."
func numberedDoc(n int) *fakeDoc {
	doc := &fakeDoc{id: fmt.Sprintf("numbered-%d", n)}
	for i := 1; i <= n; i++ {
		doc.pages = append(doc.pages, fmt.Sprintf("Page %d text.", i))
	}
	return doc
}

type fakeTexts struct {
	mu     sync.Mutex
	delay  time.Duration
	fail   map[int]error
	calls  []int
	resets int
}

func newFakeTexts() *fakeTexts {
	return &fakeTexts{fail: make(map[int]error)}
}

func (f *fakeTexts) PageText(ctx context.Context, doc tts.Document, page int) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, page)
	delay := f.delay
	failure := f.fail[page]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	if failure != nil {
		return "", fmt.Errorf("%w: %w", tts.ErrExtraction, failure)
	}

	runs, err := doc.PageRuns(ctx, page)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join(runs, " ")), nil
}

func (f *fakeTexts) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
}

type memoryPrefs struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryPrefs() *memoryPrefs {
	return &memoryPrefs{values: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *memoryPrefs) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *memoryPrefs) Set(key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.ttls[key] = ttl
	return nil
}

func testConfig() tts.Config {
	cfg := tts.DefaultConfig()
	cfg.ChunkSize = 30
	return cfg
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// newTestController returns a controller over a manual mock engine with doc
// loaded.
func newTestController(t *testing.T, doc tts.Document, opts ...tts.Option) (*tts.Controller, *mock.Engine, *fakeTexts) {
	t.Helper()

	engine := mock.New()
	engine.SetManual(true)
	texts := newFakeTexts()

	opts = append([]tts.Option{tts.WithLogger(quietLogger())}, opts...)
	c := tts.NewController(engine, texts, testConfig(), opts...)
	t.Cleanup(func() { _ = c.Close() })

	if doc != nil {
		if err := c.Load(doc); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	}
	return c, engine, texts
}

func waitFor(t *testing.T, c *tts.Controller, what string, cond func(tts.Snapshot) bool) tts.Snapshot {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		s := c.Snapshot()
		if cond(s) {
			return s
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s (state=%s page=%d chunk=%d status=%q)",
				what, s.State, s.Page, s.Chunk, s.Status.Message)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func nextUtterance(t *testing.T, e *mock.Engine) tts.Utterance {
	t.Helper()

	u, ok := e.WaitDispatch(2 * time.Second)
	if !ok {
		t.Fatal("timed out waiting for an utterance")
	}
	return u
}

func expectText(t *testing.T, u tts.Utterance, want string) {
	t.Helper()
	if u.Text != want {
		t.Fatalf("utterance text = %q, want %q", u.Text, want)
	}
}

func textsOf(us []tts.Utterance) []string {
	out := make([]string, len(us))
	for i, u := range us {
		out[i] = u.Text
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isState(state tts.StateType) func(tts.Snapshot) bool {
	return func(s tts.Snapshot) bool { return s.State == state }
}
