package tts

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
	if cfg.Engine != EngineAuto {
		t.Errorf("Default engine should be auto, got %s", cfg.Engine)
	}
	if cfg.ChunkSize != 220 {
		t.Errorf("Default chunk size should be 220, got %d", cfg.ChunkSize)
	}
	if cfg.Voice.FallbackLocale != "en-GB" || cfg.Voice.SecondaryLocale != "en-US" || cfg.Voice.Family != "en" {
		t.Errorf("Unexpected voice defaults: %+v", cfg.Voice)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"engine is case insensitive", func(c *Config) { c.Engine = "Piper" }, false},
		{"invalid engine", func(c *Config) { c.Engine = "google" }, true},
		{"chunk too small", func(c *Config) { c.ChunkSize = 5 }, true},
		{"chunk too large", func(c *Config) { c.ChunkSize = 10000 }, true},
		{"rate too low", func(c *Config) { c.Rate = 0.1 }, true},
		{"rate too high", func(c *Config) { c.Rate = 3 }, true},
		{"pitch too high", func(c *Config) { c.Pitch = 2.5 }, true},
		{"volume negative", func(c *Config) { c.Volume = -0.1 }, true},
		{"negative ttl", func(c *Config) { c.Voice.SaveTTL = -time.Hour }, true},
		{"zero sample rate", func(c *Config) { c.Piper.SampleRate = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error %v should wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadConfigFromViper(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("tts.engine", "espeak")
	viper.Set("tts.chunk_size", 180)
	viper.Set("tts.rate", 1.5)
	viper.Set("tts.muted", true)
	viper.Set("tts.voice.preferred", "Daniel")
	viper.Set("tts.voice.ideal", []string{"Serena"})
	viper.Set("tts.voice.save_ttl", "720h")
	viper.Set("tts.piper.models_dir", "/opt/piper")

	cfg, err := LoadConfigFromViper()
	if err != nil {
		t.Fatalf("LoadConfigFromViper() error = %v", err)
	}

	if cfg.Engine != EngineEspeak {
		t.Errorf("Engine = %q, want espeak", cfg.Engine)
	}
	if cfg.ChunkSize != 180 {
		t.Errorf("ChunkSize = %d, want 180", cfg.ChunkSize)
	}
	if cfg.Rate != 1.5 || !cfg.Muted {
		t.Errorf("Rate = %v, Muted = %v", cfg.Rate, cfg.Muted)
	}
	if cfg.Voice.Preferred != "Daniel" || len(cfg.Voice.Ideal) != 1 || cfg.Voice.Ideal[0] != "Serena" {
		t.Errorf("Voice = %+v", cfg.Voice)
	}
	if cfg.Voice.SaveTTL != 720*time.Hour {
		t.Errorf("SaveTTL = %v, want 720h", cfg.Voice.SaveTTL)
	}
	// Unset keys keep their defaults.
	if cfg.Voice.FallbackLocale != "en-GB" {
		t.Errorf("FallbackLocale = %q, want en-GB", cfg.Voice.FallbackLocale)
	}
	if cfg.Piper.ModelsDir != "/opt/piper" || cfg.Piper.SampleRate != 22050 {
		t.Errorf("Piper = %+v", cfg.Piper)
	}
}

func TestLoadConfigFromViperInvalid(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("tts.rate", 9.0)

	if _, err := LoadConfigFromViper(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("LoadConfigFromViper() error = %v, want ErrInvalidConfig", err)
	}
}

func TestSetDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	SetDefaults()

	if got := viper.GetString("tts.engine"); got != EngineAuto {
		t.Errorf("tts.engine = %q, want auto", got)
	}
	if got := viper.GetInt("tts.chunk_size"); got != 220 {
		t.Errorf("tts.chunk_size = %d, want 220", got)
	}
	if got := viper.GetString("tts.espeak.binary"); got != "espeak-ng" {
		t.Errorf("tts.espeak.binary = %q", got)
	}

	cfg, err := LoadConfigFromViper()
	if err != nil {
		t.Fatalf("defaults should load: %v", err)
	}
	if cfg.Volume != 1 {
		t.Errorf("Volume = %v, want 1", cfg.Volume)
	}
}
