package tts

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadConfigFromViper loads read-aloud configuration from Viper.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("tts.engine") {
		cfg.Engine = viper.GetString("tts.engine")
	}
	if viper.IsSet("tts.chunk_size") {
		cfg.ChunkSize = viper.GetInt("tts.chunk_size")
	}

	// Narration parameters
	if viper.IsSet("tts.rate") {
		cfg.Rate = viper.GetFloat64("tts.rate")
	}
	if viper.IsSet("tts.pitch") {
		cfg.Pitch = viper.GetFloat64("tts.pitch")
	}
	if viper.IsSet("tts.volume") {
		cfg.Volume = viper.GetFloat64("tts.volume")
	}
	if viper.IsSet("tts.muted") {
		cfg.Muted = viper.GetBool("tts.muted")
	}

	cfg.Voice = loadVoiceConfig(cfg.Voice)

	// Engines
	if viper.IsSet("tts.espeak.binary") {
		cfg.Espeak.Binary = viper.GetString("tts.espeak.binary")
	}
	if viper.IsSet("tts.piper.binary") {
		cfg.Piper.Binary = viper.GetString("tts.piper.binary")
	}
	if viper.IsSet("tts.piper.models_dir") {
		cfg.Piper.ModelsDir = viper.GetString("tts.piper.models_dir")
	}
	if viper.IsSet("tts.piper.sample_rate") {
		cfg.Piper.SampleRate = viper.GetInt("tts.piper.sample_rate")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid TTS configuration: %w", err)
	}

	return cfg, nil
}

func loadVoiceConfig(cfg VoiceConfig) VoiceConfig {
	if viper.IsSet("tts.voice.preferred") {
		cfg.Preferred = viper.GetString("tts.voice.preferred")
	}
	if viper.IsSet("tts.voice.ideal") {
		cfg.Ideal = viper.GetStringSlice("tts.voice.ideal")
	}
	if viper.IsSet("tts.voice.fallback_locale") {
		cfg.FallbackLocale = viper.GetString("tts.voice.fallback_locale")
	}
	if viper.IsSet("tts.voice.secondary_locale") {
		cfg.SecondaryLocale = viper.GetString("tts.voice.secondary_locale")
	}
	if viper.IsSet("tts.voice.family") {
		cfg.Family = viper.GetString("tts.voice.family")
	}
	if viper.IsSet("tts.voice.save_ttl") {
		if d, err := time.ParseDuration(viper.GetString("tts.voice.save_ttl")); err == nil {
			cfg.SaveTTL = d
		}
	}
	return cfg
}

// SetDefaults sets default values in Viper for read-aloud configuration.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("tts.engine", defaults.Engine)
	viper.SetDefault("tts.chunk_size", defaults.ChunkSize)
	viper.SetDefault("tts.rate", defaults.Rate)
	viper.SetDefault("tts.pitch", defaults.Pitch)
	viper.SetDefault("tts.volume", defaults.Volume)
	viper.SetDefault("tts.muted", defaults.Muted)

	viper.SetDefault("tts.voice.ideal", defaults.Voice.Ideal)
	viper.SetDefault("tts.voice.fallback_locale", defaults.Voice.FallbackLocale)
	viper.SetDefault("tts.voice.secondary_locale", defaults.Voice.SecondaryLocale)
	viper.SetDefault("tts.voice.family", defaults.Voice.Family)

	viper.SetDefault("tts.espeak.binary", defaults.Espeak.Binary)
	viper.SetDefault("tts.piper.binary", defaults.Piper.Binary)
	viper.SetDefault("tts.piper.sample_rate", defaults.Piper.SampleRate)
}
