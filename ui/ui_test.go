package ui

import (
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/cache"
	"github.com/dgnsrekt/readaloud/internal/document"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines/mock"
	"github.com/dgnsrekt/readaloud/tts/voice"
)

func testDocument(t *testing.T) *document.Document {
	t.Helper()
	text := "First page.\n\nSecond paragraph.\fPage two.\fPage three."
	doc, err := document.Parse("notes.txt", []byte(text))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func newTestModel(t *testing.T, backend *mock.Engine) (model, *tts.Controller) {
	t.Helper()

	if backend == nil {
		backend = mock.New()
		backend.SetManual(true)
	}

	doc := testDocument(t)
	texts := cache.NewTextCache()
	ctrl := tts.NewController(backend, texts, tts.DefaultConfig(), tts.WithLogger(log.New(io.Discard)))
	if err := ctrl.Load(doc); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	t.Cleanup(func() { ctrl.Close() })

	cfg := Config{GlamourStyle: "dark", GlamourEnabled: true, Highlight: true}
	m := newModel(cfg, Deps{Controller: ctrl, Texts: texts, Document: doc, Engine: "mock"})
	t.Cleanup(m.shutdown)
	return m, ctrl
}

func keyPress(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, keys ...string) (model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyPress(k))
		m = next.(model)
	}
	return m, cmd
}

func TestNavigationKeys(t *testing.T) {
	m, ctrl := newTestModel(t, nil)

	m, _ = press(t, m, "n", "n")
	if got := ctrl.Snapshot().Page; got != 3 {
		t.Fatalf("page after n n = %d, want 3", got)
	}

	press(t, m, "p")
	if got := ctrl.Snapshot().Page; got != 2 {
		t.Errorf("page after p = %d, want 2", got)
	}
}

func TestParameterKeys(t *testing.T) {
	m, ctrl := newTestModel(t, nil)

	tests := []struct {
		key   string
		check func(tts.Snapshot) bool
	}{
		{"+", func(s tts.Snapshot) bool { return s.Rate == 1.25 }},
		{"-", func(s tts.Snapshot) bool { return s.Rate == 1.0 }},
		{"-", func(s tts.Snapshot) bool { return s.Rate == 0.75 }},
		{"m", func(s tts.Snapshot) bool { return s.Muted }},
		{"m", func(s tts.Snapshot) bool { return !s.Muted }},
		{"[", func(s tts.Snapshot) bool { return s.Volume < 1 }},
		{")", func(s tts.Snapshot) bool { return s.Pitch > 1 }},
	}

	for _, tt := range tests {
		m, _ = press(t, m, tt.key)
		// Keys read the last published snapshot.
		m.snapshot = ctrl.Snapshot()
		if !tt.check(m.snapshot) {
			t.Errorf("after %q: unexpected snapshot %+v", tt.key, m.snapshot)
		}
	}
}

func TestVoiceCycling(t *testing.T) {
	backend := mock.New()
	backend.SetManual(true)
	backend.SetVoices([]voice.Voice{
		{ID: "a", Name: "Alice", Lang: "en-GB"},
		{ID: "b", Name: "Bob", Lang: "en-GB"},
	})
	m, ctrl := newTestModel(t, backend)

	first := ctrl.Snapshot().Voice
	if first == "" {
		t.Fatal("no voice resolved")
	}

	m, _ = press(t, m, "v")
	second := ctrl.Snapshot().Voice
	if second == first {
		t.Fatalf("v kept voice %q", first)
	}

	m.snapshot = ctrl.Snapshot()
	press(t, m, "v")
	if got := ctrl.Snapshot().Voice; got != first {
		t.Errorf("cycling two voices twice = %q, want %q", got, first)
	}
}

func TestUnavailableShowsError(t *testing.T) {
	backend := mock.New()
	backend.SetAvailable(false)
	m, _ := newTestModel(t, backend)

	m, cmd := press(t, m, " ")
	if cmd == nil {
		t.Error("expected a status message timeout command")
	}
	if m.pager.state != pagerStateStatusMessage || !m.pager.statusMessage.isError {
		t.Fatalf("expected an error status message, got %+v", m.pager.statusMessage)
	}
	if !strings.Contains(m.pager.statusMessage.message, tts.ErrSynthesisUnavailable.Error()) {
		t.Errorf("status message = %q", m.pager.statusMessage.message)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, nil)

	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestLoadPage(t *testing.T) {
	doc := testDocument(t)

	msg, ok := loadPage(doc, 1)().(pageLoadedMsg)
	if !ok {
		t.Fatal("loadPage did not return pageLoadedMsg")
	}
	if msg.err != nil {
		t.Fatalf("loadPage error = %v", msg.err)
	}

	want := []string{"First page.", "Second paragraph."}
	if len(msg.page.paragraphs) != len(want) {
		t.Fatalf("paragraphs = %q, want %q", msg.page.paragraphs, want)
	}
	for i := range want {
		if msg.page.paragraphs[i] != want[i] {
			t.Errorf("paragraph %d = %q, want %q", i, msg.page.paragraphs[i], want[i])
		}
	}
}

func TestPageLoadedIgnoresStalePages(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.common.width, m.common.height = 80, 20
	m.pager.setSize(80, 20)
	m.pager.loading = 2

	m.pager, _ = m.pager.update(pageLoadedMsg{page: page{number: 1, paragraphs: []string{"old"}}})
	if m.pager.page.number != 0 {
		t.Error("a stale page should be dropped")
	}

	m.pager, _ = m.pager.update(pageLoadedMsg{page: page{number: 2, paragraphs: []string{"Page two."}}})
	if m.pager.page.number != 2 || m.pager.loading != 0 {
		t.Errorf("page = %d, loading = %d", m.pager.page.number, m.pager.loading)
	}
	if !strings.Contains(m.pager.viewport.View(), "Page two.") {
		t.Errorf("viewport does not show the page: %q", m.pager.viewport.View())
	}
}

func TestPageLoadError(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.pager.loading = 2

	m.pager, _ = m.pager.update(pageLoadedMsg{page: page{number: 2}, err: errors.New("boom")})
	if !m.pager.statusMessage.isError {
		t.Error("a failed page load should show an error")
	}
}

func TestRenderNarrationStatus(t *testing.T) {
	s := tts.Snapshot{
		State:      tts.StateSpeaking,
		Chunk:      1,
		ChunkCount: 5,
		Rate:       1.25,
		Volume:     0.8,
		Voice:      "Mock Voice",
		Available:  true,
		Status:     tts.Status{Kind: tts.StatusInfo, Message: "Reading…"},
	}

	got := renderNarrationStatus("mock", s)
	for _, want := range []string{"TTS: MOCK", "▶ Reading…", "1.25x", "vol 80%", "2/5", "Mock Voice"} {
		if !strings.Contains(got, want) {
			t.Errorf("status %q does not contain %q", got, want)
		}
	}

	s.Status = tts.Status{Kind: tts.StatusError, Message: "Speech error.", Detail: "boom"}
	got = renderNarrationStatus("mock", s)
	if !strings.Contains(got, "⚠ Speech error. boom") || strings.Contains(got, "1.25x") {
		t.Errorf("error status = %q", got)
	}

	s = tts.Snapshot{Status: tts.Status{Kind: tts.StatusUnavailable, Message: "unavailable"}}
	if got := renderNarrationStatus("espeak", s); !strings.Contains(got, "(Unavailable)") {
		t.Errorf("unavailable status = %q", got)
	}
}

func TestHighlightChunk(t *testing.T) {
	paragraphs := []string{"Alpha beta.", "Gamma delta. Epsilon.", "Gamma delta again."}

	got := highlightChunk(paragraphs, "Gamma delta.")
	if got[0] != paragraphs[0] || got[2] != paragraphs[2] {
		t.Errorf("unrelated paragraphs changed: %q", got)
	}
	if !strings.Contains(got[1], "Gamma delta.") || !strings.HasSuffix(got[1], " Epsilon.") {
		t.Errorf("highlighted paragraph = %q", got[1])
	}
	if paragraphs[1] != "Gamma delta. Epsilon." {
		t.Error("input was modified")
	}

	if got := highlightChunk(paragraphs, "  "); &got[0] != &paragraphs[0] {
		t.Error("an empty chunk should return the input")
	}
}

func TestNote(t *testing.T) {
	m, ctrl := newTestModel(t, nil)
	if err := ctrl.GoToPage(2, false); err != nil {
		t.Fatal(err)
	}
	if got := m.noteFor(ctrl.Snapshot()); !strings.HasPrefix(got, "Page 2/3 · ") {
		t.Errorf("noteFor() = %q", got)
	}
}
