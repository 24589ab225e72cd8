package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/readaloud/internal/cache"
	"github.com/dgnsrekt/readaloud/internal/document"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines/espeak"
	"github.com/dgnsrekt/readaloud/tts/engines/mock"
	"github.com/dgnsrekt/readaloud/tts/voice"
)

func TestFilterVoices(t *testing.T) {
	voices := []voice.Voice{
		{ID: "en-gb", Name: "English (Great Britain)", Lang: "en-GB"},
		{ID: "de", Name: "German", Lang: "de"},
	}

	got := filterVoices(voices, "brit")
	if len(got) != 1 || got[0].ID != "en-gb" {
		t.Fatalf("filterVoices(brit) = %v, want only en-gb", got)
	}
	if got := filterVoices(voices, "xyz"); len(got) != 0 {
		t.Errorf("filterVoices(xyz) = %v, want none", got)
	}
}

func TestWaitForVoices(t *testing.T) {
	t.Run("late", func(t *testing.T) {
		b := mock.New()
		b.SetVoices(nil)
		go func() {
			time.Sleep(20 * time.Millisecond)
			b.SetVoices([]voice.Voice{{ID: "v1", Name: "One"}})
		}()

		got := waitForVoices(b, 2*time.Second)
		if len(got) != 1 || got[0].ID != "v1" {
			t.Errorf("waitForVoices() = %v, want [v1]", got)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		b := mock.New()
		b.SetVoices(nil)

		start := time.Now()
		if got := waitForVoices(b, 20*time.Millisecond); len(got) != 0 {
			t.Errorf("waitForVoices() = %v, want none", got)
		}
		if time.Since(start) > time.Second {
			t.Errorf("waitForVoices() did not give up")
		}
	})
}

func TestPrintText(t *testing.T) {
	t.Cleanup(func() {
		textPage = 0
		textChunks = false
	})

	doc, err := document.Parse("notes.txt", []byte("One. Two.\fThree is here."))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	texts := cache.NewTextCache()

	var buf bytes.Buffer
	if err := printText(context.Background(), &buf, doc, texts, 100); err != nil {
		t.Fatalf("printText: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"page 1/2", "One. Two.", "page 2/2", "Three is here."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	textPage = 5
	textChunks = true
	buf.Reset()
	if err := printText(context.Background(), &buf, doc, texts, 100); err != nil {
		t.Fatalf("printText: %v", err)
	}
	out = buf.String()
	if strings.Contains(out, "page 1/2") {
		t.Errorf("page 1 printed when page 5 was asked for:\n%s", out)
	}
	if !strings.Contains(out, "page 2/2") || !strings.Contains(out, "Three is here.") {
		t.Errorf("last page missing:\n%s", out)
	}
}

func TestEngineName(t *testing.T) {
	tests := []struct {
		backend tts.Backend
		want    string
	}{
		{mock.New(), tts.EngineMock},
		{espeak.New(tts.EspeakConfig{Binary: "readaloud-missing-espeak"}, nil), tts.EngineEspeak},
	}
	for _, tt := range tests {
		if got := engineName(tt.backend); got != tt.want {
			t.Errorf("engineName(%T) = %q, want %q", tt.backend, got, tt.want)
		}
	}
}
