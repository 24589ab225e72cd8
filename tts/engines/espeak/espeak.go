// Package espeak speaks through the espeak-ng command line synthesizer, one
// process per utterance.
package espeak

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/voice"
)

// legacyBinary is tried when the default espeak-ng binary is missing.
const legacyBinary = "espeak"

// Engine is a tts.Backend backed by espeak-ng.
type Engine struct {
	binary string
	logger *log.Logger

	mu        sync.Mutex
	voices    []voice.Voice
	listeners []func()
	paused    bool
	resumeCh  chan struct{} // closed while not paused
	active    *run
}

type run struct {
	proc      *os.Process
	cancelled bool
	stopped   bool
}

// New locates the espeak binary and starts loading its voices in the
// background. A missing binary yields an unavailable engine.
func New(cfg tts.EspeakConfig, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}

	resume := make(chan struct{})
	close(resume)
	e := &Engine{
		logger:   logger.WithPrefix("espeak"),
		resumeCh: resume,
	}

	e.binary = lookup(cfg.Binary)
	if e.binary == "" {
		e.logger.Debug("espeak binary not found", "binary", cfg.Binary)
		return e
	}

	go e.loadVoices()
	return e
}

func lookup(binary string) string {
	if binary == "" {
		binary = tts.DefaultConfig().Espeak.Binary
	}
	if path, err := exec.LookPath(binary); err == nil {
		return path
	}
	if binary == tts.DefaultConfig().Espeak.Binary {
		if path, err := exec.LookPath(legacyBinary); err == nil {
			return path
		}
	}
	return ""
}

func (e *Engine) loadVoices() {
	out, err := exec.Command(e.binary, "--voices").Output()
	if err != nil {
		e.logger.Warn("Could not list voices", "err", err)
		return
	}

	voices := parseVoices(out)
	e.logger.Debug("Voices loaded", "count", len(voices))

	e.mu.Lock()
	e.voices = voices
	listeners := append([]func(){}, e.listeners...)
	e.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// parseVoices reads the table printed by `espeak-ng --voices`:
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  en-gb           --/M      English_(Great_Britain) gmw/en
func parseVoices(out []byte) []voice.Voice {
	var voices []voice.Voice
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 5 || fields[0] == "Pty" {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue
		}

		id := fields[1]
		if seen[id] {
			continue
		}
		seen[id] = true

		voices = append(voices, voice.Voice{
			ID:     id,
			Name:   strings.ReplaceAll(fields[3], "_", " "),
			Lang:   locale(id),
			Gender: gender(fields[2]),
		})
	}
	return voices
}

// locale turns "en-gb" into "en-GB".
func locale(code string) string {
	parts := strings.Split(code, "-")
	parts[0] = strings.ToLower(parts[0])
	for i := 1; i < len(parts); i++ {
		if len(parts[i]) == 2 {
			parts[i] = strings.ToUpper(parts[i])
		}
	}
	return strings.Join(parts, "-")
}

func gender(ageGender string) string {
	_, g, _ := strings.Cut(ageGender, "/")
	switch g {
	case "M":
		return "male"
	case "F":
		return "female"
	}
	return ""
}

// args returns the command line for one utterance.
func args(u tts.Utterance) []string {
	a := []string{
		"-s", strconv.Itoa(scale(u.Rate, 175, 80, 450)),
		"-p", strconv.Itoa(scale(u.Pitch, 50, 0, 99)),
		"-a", strconv.Itoa(scale(u.Volume, 100, 0, 200)),
	}
	if u.Voice.ID != "" {
		a = append(a, "-v", u.Voice.ID)
	}
	return append(a, "--stdin")
}

func scale(v, base float64, lo, hi int) int {
	n := int(math.Round(v * base))
	return max(lo, min(hi, n))
}

// Available reports whether an espeak binary was found.
func (e *Engine) Available() bool {
	return e.binary != ""
}

// Voices returns the voices loaded so far.
func (e *Engine) Voices() []voice.Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]voice.Voice(nil), e.voices...)
}

// OnVoicesChanged registers fn to run once the voice list has loaded.
func (e *Engine) OnVoicesChanged(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Speak runs espeak for u and waits until it exits.
func (e *Engine) Speak(ctx context.Context, u tts.Utterance) error {
	if !e.Available() {
		return tts.ErrSynthesisUnavailable
	}

	e.mu.Lock()
	resume := e.resumeCh
	e.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-resume:
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, args(u)...)
	cmd.Stdin = strings.NewReader(u.Text)
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: starting espeak: %w", tts.ErrSynthesis, err)
	}

	r := &run{proc: cmd.Process}
	e.mu.Lock()
	e.active = r
	if e.paused {
		// Paused between the latch check and Start.
		r.stopped = stopProcess(r.proc) == nil
	}
	e.mu.Unlock()

	err := cmd.Wait()

	e.mu.Lock()
	if e.active == r {
		e.active = nil
	}
	cancelled := r.cancelled
	e.mu.Unlock()

	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case cancelled:
		return context.Canceled
	case err != nil:
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("%w: espeak: %w", tts.ErrSynthesis, err)
		}
		return fmt.Errorf("%w: espeak: %w: %s", tts.ErrSynthesis, err, msg)
	}
	return nil
}

// Pause stops the running espeak process. Platforms without job control
// return tts.ErrPauseUnsupported.
func (e *Engine) Pause() error {
	if !pauseSupported {
		return tts.ErrPauseUnsupported
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return nil
	}
	if e.active != nil && !e.active.stopped {
		if err := stopProcess(e.active.proc); err != nil {
			return fmt.Errorf("pausing espeak: %w", err)
		}
		e.active.stopped = true
	}
	e.paused = true
	e.resumeCh = make(chan struct{})
	return nil
}

// Resume continues a stopped espeak process.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.paused {
		return tts.ErrNothingToResume
	}
	e.unpauseLocked()

	if e.active != nil && e.active.stopped {
		if err := continueProcess(e.active.proc); err != nil {
			return fmt.Errorf("resuming espeak: %w", err)
		}
		e.active.stopped = false
	}
	return nil
}

// Cancel kills the running process and clears a pending pause.
func (e *Engine) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		e.unpauseLocked()
	}
	if e.active == nil || e.active.cancelled {
		return nil
	}

	e.active.cancelled = true
	if err := e.active.proc.Kill(); err != nil && err != os.ErrProcessDone {
		return fmt.Errorf("cancelling espeak: %w", err)
	}
	return nil
}

func (e *Engine) unpauseLocked() {
	e.paused = false
	close(e.resumeCh)
}
