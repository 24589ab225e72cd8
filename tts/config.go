package tts

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgnsrekt/readaloud/tts/sentence"
	"github.com/dgnsrekt/readaloud/tts/voice"
)

// Config contains all read-aloud configuration options.
type Config struct {
	// Engine selects the synthesis backend: auto, espeak, piper or mock.
	Engine string `yaml:"engine"`

	// ChunkSize is the maximum utterance length in characters.
	ChunkSize int `yaml:"chunk_size"`

	// Initial narration parameters
	Rate   float64 `yaml:"rate"`
	Pitch  float64 `yaml:"pitch"`
	Volume float64 `yaml:"volume"`
	Muted  bool    `yaml:"muted"`

	Voice VoiceConfig `yaml:"voice"`

	// Engine-specific configurations
	Espeak EspeakConfig `yaml:"espeak"`
	Piper  PiperConfig  `yaml:"piper"`
}

// VoiceConfig controls voice selection.
type VoiceConfig struct {
	// Preferred is used when nothing has been saved in the preference store.
	Preferred       string        `yaml:"preferred"`
	Ideal           []string      `yaml:"ideal"`
	FallbackLocale  string        `yaml:"fallback_locale"`
	SecondaryLocale string        `yaml:"secondary_locale"`
	Family          string        `yaml:"family"`
	SaveTTL         time.Duration `yaml:"save_ttl"`
}

// Preferences returns the resolver preferences described by the config.
func (c VoiceConfig) Preferences() voice.Preferences {
	return voice.Preferences{
		Ideal:           c.Ideal,
		FallbackLocale:  c.FallbackLocale,
		SecondaryLocale: c.SecondaryLocale,
		Family:          c.Family,
	}
}

// EspeakConfig contains espeak-ng engine specific settings.
type EspeakConfig struct {
	Binary string `yaml:"binary"`
}

// PiperConfig contains Piper engine specific settings.
type PiperConfig struct {
	Binary     string `yaml:"binary"`
	ModelsDir  string `yaml:"models_dir"`
	SampleRate int    `yaml:"sample_rate"`
}

// Engine names accepted in Config.Engine.
const (
	EngineAuto   = "auto"
	EngineEspeak = "espeak"
	EnginePiper  = "piper"
	EngineMock   = "mock"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	prefs := voice.DefaultPreferences()
	return Config{
		Engine:    EngineAuto,
		ChunkSize: sentence.DefaultMaxLen,
		Rate:      DefaultRate,
		Pitch:     DefaultPitch,
		Volume:    1.0,
		Voice: VoiceConfig{
			Ideal:           prefs.Ideal,
			FallbackLocale:  prefs.FallbackLocale,
			SecondaryLocale: prefs.SecondaryLocale,
			Family:          prefs.Family,
		},
		Espeak: EspeakConfig{Binary: "espeak-ng"},
		Piper: PiperConfig{
			Binary:     "piper",
			SampleRate: 22050,
		},
	}
}

// Validate checks the configuration for values the engine cannot use.
func (c Config) Validate() error {
	switch strings.ToLower(c.Engine) {
	case EngineAuto, EngineEspeak, EnginePiper, EngineMock:
	default:
		return fmt.Errorf("%w: invalid TTS engine %q (want auto, espeak, piper or mock)", ErrInvalidConfig, c.Engine)
	}

	if c.ChunkSize < 20 || c.ChunkSize > 4000 {
		return fmt.Errorf("%w: chunk_size must be between 20 and 4000, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.Rate < MinRate || c.Rate > MaxRate {
		return fmt.Errorf("%w: rate must be between %.1f and %.1f, got %.2f", ErrInvalidConfig, MinRate, MaxRate, c.Rate)
	}
	if c.Pitch < MinPitch || c.Pitch > MaxPitch {
		return fmt.Errorf("%w: pitch must be between %.1f and %.1f, got %.2f", ErrInvalidConfig, MinPitch, MaxPitch, c.Pitch)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("%w: volume must be between 0.0 and 1.0, got %.2f", ErrInvalidConfig, c.Volume)
	}
	if c.Voice.SaveTTL < 0 {
		return fmt.Errorf("%w: voice save_ttl must not be negative", ErrInvalidConfig)
	}
	if c.Piper.SampleRate <= 0 {
		return fmt.Errorf("%w: piper sample_rate must be positive, got %d", ErrInvalidConfig, c.Piper.SampleRate)
	}

	return nil
}
