// Package piper speaks through the Piper neural synthesizer. Each utterance
// runs one piper process that writes raw PCM, which is then played through
// the audio device.
package piper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/audio"
	"github.com/dgnsrekt/readaloud/tts/voice"
	"github.com/dgnsrekt/readaloud/utils"
)

// Player plays PCM with a pause latch. *audio.Player implements it.
type Player interface {
	Play(ctx context.Context, pcm []byte, sampleRate int, volume float64) error
	Pause() error
	Resume() error
	Reset()
	IsPaused() bool
}

// model is one voice model found in the models directory.
type model struct {
	voice      voice.Voice
	sampleRate int
}

// Engine is a tts.Backend backed by piper.
type Engine struct {
	binary     string
	sampleRate int
	logger     *log.Logger
	player     Player
	models     []model
}

// Option configures an Engine.
type Option func(*Engine)

// WithPlayer replaces the audio device player.
func WithPlayer(p Player) Option {
	return func(e *Engine) {
		e.player = p
	}
}

// New scans cfg.ModelsDir for voice models. The engine is available when the
// binary, at least one model and an audio player are all present.
func New(cfg tts.PiperConfig, logger *log.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = log.Default()
	}

	e := &Engine{
		sampleRate: cfg.SampleRate,
		logger:     logger.WithPrefix("piper"),
	}
	for _, opt := range opts {
		opt(e)
	}

	binary := cfg.Binary
	if binary == "" {
		binary = "piper"
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		e.logger.Debug("piper binary not found", "binary", binary)
		return e
	}

	models, err := scanModels(utils.ExpandPath(cfg.ModelsDir), cfg.SampleRate)
	if err != nil {
		e.logger.Debug("No piper models", "dir", cfg.ModelsDir, "err", err)
		return e
	}
	if len(models) == 0 {
		e.logger.Debug("No piper models", "dir", cfg.ModelsDir)
		return e
	}

	if e.player == nil {
		p, err := audio.Shared()
		if err != nil {
			e.logger.Warn("Audio output unavailable", "err", err)
			return e
		}
		e.player = p
	}

	e.binary = path
	e.models = models
	return e
}

// sidecar is the part of a model's .onnx.json file the engine reads.
type sidecar struct {
	Language struct {
		Code string `json:"code"`
	} `json:"language"`
	Espeak struct {
		Voice string `json:"voice"`
	} `json:"espeak"`
	Audio struct {
		SampleRate int `json:"sample_rate"`
	} `json:"audio"`
}

// scanModels lists the *.onnx models in dir, reading language and sample
// rate from each model's sidecar when present.
func scanModels(dir string, defaultRate int) ([]model, error) {
	if dir == "" {
		return nil, nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.onnx"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	models := make([]model, 0, len(paths))
	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".onnx")
		m := model{
			voice:      voice.Voice{ID: path, Name: name, Lang: langFromName(name)},
			sampleRate: defaultRate,
		}

		if data, err := os.ReadFile(path + ".json"); err == nil {
			var sc sidecar
			if err := json.Unmarshal(data, &sc); err == nil {
				switch {
				case sc.Language.Code != "":
					m.voice.Lang = normalizeLang(sc.Language.Code)
				case sc.Espeak.Voice != "":
					m.voice.Lang = normalizeLang(sc.Espeak.Voice)
				}
				if sc.Audio.SampleRate > 0 {
					m.sampleRate = sc.Audio.SampleRate
				}
			}
		}

		models = append(models, m)
	}
	return models, nil
}

// langFromName reads the locale prefix of names like "en_GB-alan-medium".
func langFromName(name string) string {
	lang, _, _ := strings.Cut(name, "-")
	return normalizeLang(lang)
}

func normalizeLang(code string) string {
	code = strings.ReplaceAll(code, "_", "-")
	lang, region, ok := strings.Cut(code, "-")
	if !ok {
		return strings.ToLower(lang)
	}
	return strings.ToLower(lang) + "-" + strings.ToUpper(region)
}

// lengthScale converts a speaking rate to piper's --length-scale, where
// larger values speak slower.
func lengthScale(rate float64) string {
	if rate <= 0 {
		rate = 1
	}
	return strconv.FormatFloat(1/rate, 'f', 2, 64)
}

// Available reports whether piper can speak.
func (e *Engine) Available() bool {
	return e.binary != ""
}

// Voices returns one voice per model.
func (e *Engine) Voices() []voice.Voice {
	voices := make([]voice.Voice, len(e.models))
	for i, m := range e.models {
		voices[i] = m.voice
	}
	return voices
}

// OnVoicesChanged does nothing: models are scanned once in New.
func (e *Engine) OnVoicesChanged(func()) {}

func (e *Engine) modelFor(v voice.Voice) model {
	for _, m := range e.models {
		if m.voice.ID == v.ID {
			return m
		}
	}
	return e.models[0]
}

// Speak synthesizes u with piper and plays the result.
func (e *Engine) Speak(ctx context.Context, u tts.Utterance) error {
	if !e.Available() {
		return tts.ErrSynthesisUnavailable
	}

	m := e.modelFor(u.Voice)
	pcm, err := e.synthesize(ctx, m.voice.ID, u)
	if err != nil {
		return err
	}

	if err := e.player.Play(ctx, pcm, m.sampleRate, u.Volume); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: playing audio: %w", tts.ErrSynthesis, err)
	}
	return nil
}

func (e *Engine) synthesize(ctx context.Context, modelPath string, u tts.Utterance) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, e.binary,
		"--model", modelPath,
		"--output-raw",
		"--length-scale", lengthScale(u.Rate),
	)
	cmd.Stdin = strings.NewReader(u.Text + "\n")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: piper: %w: %s", tts.ErrSynthesis, err, msg)
		}
		return nil, fmt.Errorf("%w: piper: %w", tts.ErrSynthesis, err)
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: piper produced no audio", tts.ErrSynthesis)
	}

	e.logger.Debug("Synthesized", "bytes", stdout.Len(), "seconds", audio.Duration(stdout.Bytes(), e.sampleRate))
	return stdout.Bytes(), nil
}

// Pause pauses playback. Synthesis continues, but its audio waits.
func (e *Engine) Pause() error {
	if e.player == nil {
		return tts.ErrPauseUnsupported
	}
	return e.player.Pause()
}

// Resume continues paused playback.
func (e *Engine) Resume() error {
	if e.player == nil || !e.player.IsPaused() {
		return tts.ErrNothingToResume
	}
	return e.player.Resume()
}

// Cancel clears a pending pause. The running utterance stops when the
// caller cancels the context passed to Speak.
func (e *Engine) Cancel() error {
	if e.player != nil {
		e.player.Reset()
	}
	return nil
}

