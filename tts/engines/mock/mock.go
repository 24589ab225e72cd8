// Package mock provides a scriptable synthesis backend for tests and demos.
package mock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/voice"
)

// ErrUtteranceLost is returned by Resume when the engine was told to forget
// paused utterances.
var ErrUtteranceLost = errors.New("paused utterance was lost")

// Engine implements tts.Backend without making any sound. By default each
// utterance "plays" for a duration derived from its length; in manual mode
// utterances stay active until Complete or Fail is called.
type Engine struct {
	mu sync.Mutex

	// Configuration
	available        bool
	manual           bool
	perRune          time.Duration
	pauseUnsupported bool
	losePaused       bool
	failures         map[string]error

	// Voices
	voices    []voice.Voice
	listeners []func()

	// State
	active   *utterance
	paused   bool
	lost     bool
	pauseCh  chan struct{} // closed while paused
	resumeCh chan struct{} // closed while running

	// Records for testing
	started    []tts.Utterance
	spoken     []tts.Utterance
	cancels    int
	dispatched chan tts.Utterance
}

type utterance struct {
	u      tts.Utterance
	done   chan error
	cancel chan struct{}
}

// New creates a mock engine with one English voice.
func New() *Engine {
	resume := make(chan struct{})
	close(resume)
	return &Engine{
		available: true,
		perRune:   time.Millisecond,
		failures:  make(map[string]error),
		voices: []voice.Voice{
			{ID: "mock-en-gb", Name: "Mock Voice", Lang: "en-GB", Gender: "neutral"},
		},
		pauseCh:    make(chan struct{}),
		resumeCh:   resume,
		dispatched: make(chan tts.Utterance, 64),
	}
}

// SetAvailable controls what Available reports.
func (e *Engine) SetAvailable(available bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.available = available
}

// SetManual switches to manual completion: utterances end only through
// Complete or Fail.
func (e *Engine) SetManual(manual bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.manual = manual
}

// SetDelayPerRune sets how long each rune takes to "speak" in automatic mode.
func (e *Engine) SetDelayPerRune(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.perRune = d
}

// SetPauseUnsupported makes Pause return tts.ErrPauseUnsupported.
func (e *Engine) SetPauseUnsupported(unsupported bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauseUnsupported = unsupported
}

// SetLosePaused makes Resume fail as if the paused utterance was dropped.
func (e *Engine) SetLosePaused(lose bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.losePaused = lose
}

// FailOn makes any utterance with exactly this text fail with err.
func (e *Engine) FailOn(text string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[text] = err
}

// SetVoices replaces the voice list and notifies listeners.
func (e *Engine) SetVoices(voices []voice.Voice) {
	e.mu.Lock()
	e.voices = append([]voice.Voice(nil), voices...)
	listeners := append([]func(){}, e.listeners...)
	e.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Available implements tts.Backend.
func (e *Engine) Available() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.available
}

// Voices implements tts.Backend.
func (e *Engine) Voices() []voice.Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]voice.Voice(nil), e.voices...)
}

// OnVoicesChanged implements tts.Backend.
func (e *Engine) OnVoicesChanged(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Speak implements tts.Backend.
func (e *Engine) Speak(ctx context.Context, u tts.Utterance) error {
	e.mu.Lock()
	if !e.available {
		e.mu.Unlock()
		return tts.ErrSynthesisUnavailable
	}
	act := &utterance{u: u, done: make(chan error, 1), cancel: make(chan struct{})}
	e.active = act
	e.started = append(e.started, u)
	failure := e.failures[u.Text]
	manual := e.manual
	remaining := time.Duration(len([]rune(u.Text))) * e.perRune
	e.mu.Unlock()

	select {
	case e.dispatched <- u:
	default:
	}

	if failure != nil {
		return e.finish(act, failure)
	}

	for {
		e.mu.Lock()
		resume, pause := e.resumeCh, e.pauseCh
		e.mu.Unlock()

		select {
		case <-ctx.Done():
			return e.finish(act, ctx.Err())
		case <-act.cancel:
			return e.finish(act, context.Canceled)
		case <-resume:
		}

		var timeout <-chan time.Time
		var timer *time.Timer
		start := time.Now()
		if !manual {
			timer = time.NewTimer(remaining)
			timeout = timer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			return e.finish(act, ctx.Err())
		case <-act.cancel:
			stopTimer(timer)
			return e.finish(act, context.Canceled)
		case err := <-act.done:
			stopTimer(timer)
			return e.finish(act, err)
		case <-timeout:
			return e.finish(act, nil)
		case <-pause:
			stopTimer(timer)
			remaining -= time.Since(start)
			if remaining < 0 {
				remaining = 0
			}
		}
	}
}

// Pause implements tts.Backend.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pauseUnsupported {
		return tts.ErrPauseUnsupported
	}
	if e.paused {
		return nil
	}

	e.paused = true
	e.lost = e.losePaused && e.active != nil
	close(e.pauseCh)
	e.resumeCh = make(chan struct{})
	return nil
}

// Resume implements tts.Backend.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.paused {
		return tts.ErrNothingToResume
	}

	e.unpauseLocked()
	if e.lost {
		e.lost = false
		if e.active != nil {
			close(e.active.cancel)
			e.active = nil
		}
		return ErrUtteranceLost
	}
	return nil
}

// Cancel implements tts.Backend.
func (e *Engine) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancels++
	if e.paused {
		e.unpauseLocked()
	}
	e.lost = false
	if e.active != nil {
		close(e.active.cancel)
		e.active = nil
	}
	return nil
}

// Complete ends the active utterance successfully (manual mode).
func (e *Engine) Complete() bool {
	return e.end(nil)
}

// Fail ends the active utterance with err (manual mode).
func (e *Engine) Fail(err error) bool {
	return e.end(err)
}

func (e *Engine) end(err error) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil {
		return false
	}
	select {
	case e.active.done <- err:
		return true
	default:
		return false
	}
}

// WaitDispatch waits for the next utterance to be dispatched.
func (e *Engine) WaitDispatch(timeout time.Duration) (tts.Utterance, bool) {
	select {
	case u := <-e.dispatched:
		return u, true
	case <-time.After(timeout):
		return tts.Utterance{}, false
	}
}

// Started returns every utterance handed to Speak, in order.
func (e *Engine) Started() []tts.Utterance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]tts.Utterance(nil), e.started...)
}

// Spoken returns the utterances that completed successfully, in order.
func (e *Engine) Spoken() []tts.Utterance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]tts.Utterance(nil), e.spoken...)
}

// Cancels returns how many times Cancel was called.
func (e *Engine) Cancels() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancels
}

// IsPaused reports whether the engine is paused.
func (e *Engine) IsPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

func (e *Engine) unpauseLocked() {
	e.paused = false
	close(e.resumeCh)
	e.pauseCh = make(chan struct{})
}

func (e *Engine) finish(act *utterance, err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == act {
		e.active = nil
	}
	if err == nil {
		e.spoken = append(e.spoken, act.u)
	}
	return err
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
