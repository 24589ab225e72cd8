package piper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/voice"
)

type fakePlayer struct {
	mu     sync.Mutex
	played [][]byte
	rates  []int
	paused bool
	resets int
}

func (p *fakePlayer) Play(ctx context.Context, pcm []byte, sampleRate int, volume float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, pcm)
	p.rates = append(p.rates, sampleRate)
	return ctx.Err()
}

func (p *fakePlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
	return nil
}

func (p *fakePlayer) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
	return nil
}

func (p *fakePlayer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
	p.resets++
}

func (p *fakePlayer) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatal(err)
	}
}

func TestScanModels(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "en_GB-alan-medium.onnx"), "", 0o644)
	writeFile(t, filepath.Join(dir, "en_GB-alan-medium.onnx.json"),
		`{"language": {"code": "en_GB"}, "audio": {"sample_rate": 16000}}`, 0o644)
	writeFile(t, filepath.Join(dir, "de_DE-thorsten-low.onnx"), "", 0o644)
	writeFile(t, filepath.Join(dir, "notes.txt"), "", 0o644)

	models, err := scanModels(dir, 22050)
	if err != nil {
		t.Fatalf("scanModels() error = %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("scanModels() found %d models, want 2", len(models))
	}

	de, en := models[0], models[1]
	if de.voice.Name != "de_DE-thorsten-low" || de.voice.Lang != "de-DE" || de.sampleRate != 22050 {
		t.Errorf("unexpected model without sidecar: %+v", de)
	}
	if en.voice.Lang != "en-GB" || en.sampleRate != 16000 {
		t.Errorf("sidecar not applied: %+v", en)
	}
	if en.voice.ID != filepath.Join(dir, "en_GB-alan-medium.onnx") {
		t.Errorf("voice ID = %q, want the model path", en.voice.ID)
	}
}

func TestLengthScale(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "1.00"},
		{2, "0.50"},
		{0.5, "2.00"},
		{0, "1.00"},
	}
	for _, tt := range tests {
		if got := lengthScale(tt.rate); got != tt.want {
			t.Errorf("lengthScale(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestUnavailable(t *testing.T) {
	e := New(tts.PiperConfig{Binary: "readaloud-no-such-piper", SampleRate: 22050}, nil, WithPlayer(&fakePlayer{}))
	if e.Available() {
		t.Fatal("engine with a missing binary should be unavailable")
	}
	if err := e.Speak(context.Background(), tts.Utterance{Text: "hi"}); !errors.Is(err, tts.ErrSynthesisUnavailable) {
		t.Errorf("Speak() error = %v, want ErrSynthesisUnavailable", err)
	}
}

// fakePiper writes a shell script that ignores its input and prints four
// bytes of "audio".
func fakePiper(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "piper")
	writeFile(t, path, "#!/bin/sh\ncat >/dev/null\n"+body+"\n", 0o755)
	return path
}

func TestSpeak(t *testing.T) {
	bin := fakePiper(t, "printf 'abcd'")
	models := t.TempDir()
	writeFile(t, filepath.Join(models, "en_US-amy-low.onnx"), "", 0o644)

	player := &fakePlayer{}
	e := New(tts.PiperConfig{Binary: bin, ModelsDir: models, SampleRate: 22050}, nil, WithPlayer(player))
	if !e.Available() {
		t.Fatal("engine should be available")
	}

	voices := e.Voices()
	if len(voices) != 1 || voices[0].Lang != "en-US" {
		t.Fatalf("Voices() = %v", voices)
	}

	err := e.Speak(context.Background(), tts.Utterance{Text: "hello", Rate: 1, Volume: 1, Voice: voices[0]})
	if err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if len(player.played) != 1 || string(player.played[0]) != "abcd" || player.rates[0] != 22050 {
		t.Errorf("played %q at %v", player.played, player.rates)
	}
}

func TestSpeakFailure(t *testing.T) {
	bin := fakePiper(t, "echo 'model broken' >&2\nexit 3")
	models := t.TempDir()
	writeFile(t, filepath.Join(models, "en_US-amy-low.onnx"), "", 0o644)

	e := New(tts.PiperConfig{Binary: bin, ModelsDir: models, SampleRate: 22050}, nil, WithPlayer(&fakePlayer{}))
	err := e.Speak(context.Background(), tts.Utterance{Text: "hello", Rate: 1, Voice: voice.Voice{ID: "unknown"}})
	if !errors.Is(err, tts.ErrSynthesis) {
		t.Errorf("Speak() error = %v, want ErrSynthesis", err)
	}
}

func TestPauseResumeCancel(t *testing.T) {
	player := &fakePlayer{}
	e := &Engine{player: player}

	if err := e.Resume(); !errors.Is(err, tts.ErrNothingToResume) {
		t.Errorf("Resume() before Pause = %v, want ErrNothingToResume", err)
	}
	if err := e.Pause(); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	if err := e.Resume(); err != nil {
		t.Errorf("Resume() error = %v", err)
	}

	_ = e.Pause()
	_ = e.Cancel()
	if player.IsPaused() || player.resets != 1 {
		t.Errorf("Cancel should clear the pause latch (paused=%v resets=%d)", player.IsPaused(), player.resets)
	}
}
