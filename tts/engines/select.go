// Package engines picks the synthesis backend named in the configuration.
package engines

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines/espeak"
	"github.com/dgnsrekt/readaloud/tts/engines/mock"
	"github.com/dgnsrekt/readaloud/tts/engines/piper"
)

// Select returns the backend for cfg.Engine. In auto mode piper wins when it
// is usable, then espeak. When nothing is usable the returned backend reports
// itself unavailable and the controller surfaces that to the user.
func Select(cfg tts.Config, logger *log.Logger) tts.Backend {
	if logger == nil {
		logger = log.Default()
	}

	switch strings.ToLower(cfg.Engine) {
	case tts.EngineMock:
		return mock.New()
	case tts.EngineEspeak:
		return espeak.New(cfg.Espeak, logger)
	case tts.EnginePiper:
		return piper.New(cfg.Piper, logger)
	}

	if p := piper.New(cfg.Piper, logger); p.Available() {
		logger.Debug("Using piper")
		return p
	}
	e := espeak.New(cfg.Espeak, logger)
	if e.Available() {
		logger.Debug("Using espeak")
	} else {
		logger.Warn("No speech synthesizer found; install espeak-ng or piper")
	}
	return e
}
