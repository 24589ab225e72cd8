package tts

import (
	"context"
	"time"

	"github.com/dgnsrekt/readaloud/tts/voice"
)

// Document is a paginated source of text. Pages are 1-based and can be read
// in any order.
type Document interface {
	// ID identifies the document content; equal IDs mean equal pages.
	ID() string

	// PageCount returns the number of pages, at least 1.
	PageCount() int

	// PageRuns returns the text runs of a page in reading order. A page
	// without text returns no runs and no error.
	PageRuns(ctx context.Context, page int) ([]string, error)
}

// TextSource returns normalized page text, typically through a cache.
type TextSource interface {
	// PageText returns the normalized text of a page. Errors wrap
	// ErrExtraction; an empty string means the page has no text.
	PageText(ctx context.Context, doc Document, page int) (string, error)

	// Reset drops everything remembered about previous documents.
	Reset()
}

// Utterance is one request to the synthesis backend.
type Utterance struct {
	Text   string
	Voice  voice.Voice
	Rate   float64 // 1.0 is the backend's normal speed
	Pitch  float64 // 1.0 is the voice's normal pitch
	Volume float64 // 0.0 to 1.0
}

// Backend is a speech synthesis backend.
type Backend interface {
	// Available reports whether the backend can synthesize at all.
	Available() bool

	// Voices returns the voices known so far. The list may be empty until
	// the backend has finished discovering voices.
	Voices() []voice.Voice

	// OnVoicesChanged registers a callback run whenever Voices changes.
	OnVoicesChanged(fn func())

	// Speak synthesizes one utterance and blocks until it has been heard
	// in full (nil), failed, or ctx was cancelled (ctx.Err()).
	Speak(ctx context.Context, u Utterance) error

	// Pause suspends the active utterance, and an utterance whose Speak
	// starts while paused waits for Resume before making any sound.
	// Backends without native pause return ErrPauseUnsupported.
	Pause() error

	// Resume continues a paused utterance. An error means the paused
	// utterance is gone and must be spoken again.
	Resume() error

	// Cancel stops any active utterance and clears a pending pause.
	// Cancelling twice is harmless.
	Cancel() error
}

// PreferenceStore persists small user preferences.
type PreferenceStore interface {
	// Get returns the stored value, or false when missing or expired.
	Get(key string) (string, bool)

	// Set stores a value. A zero ttl keeps it until overwritten.
	Set(key, value string, ttl time.Duration) error
}

// PreferenceVoice is the preference key of the saved voice name.
const PreferenceVoice = "voice"
