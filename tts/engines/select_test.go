package engines

import (
	"testing"

	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines/espeak"
	"github.com/dgnsrekt/readaloud/tts/engines/mock"
	"github.com/dgnsrekt/readaloud/tts/engines/piper"
)

func TestSelect(t *testing.T) {
	cfg := tts.DefaultConfig()
	cfg.Espeak.Binary = "readaloud-no-such-espeak"
	cfg.Piper.Binary = "readaloud-no-such-piper"

	t.Run("mock", func(t *testing.T) {
		cfg := cfg
		cfg.Engine = "MOCK"
		b := Select(cfg, nil)
		if _, ok := b.(*mock.Engine); !ok {
			t.Errorf("Select() = %T, want *mock.Engine", b)
		}
		if !b.Available() {
			t.Error("mock backend should be available")
		}
	})

	t.Run("piper", func(t *testing.T) {
		cfg := cfg
		cfg.Engine = tts.EnginePiper
		if _, ok := Select(cfg, nil).(*piper.Engine); !ok {
			t.Error("want *piper.Engine")
		}
	})

	t.Run("auto falls back to unavailable espeak", func(t *testing.T) {
		b := Select(cfg, nil)
		if _, ok := b.(*espeak.Engine); !ok {
			t.Fatalf("Select() = %T, want *espeak.Engine", b)
		}
		if b.Available() {
			t.Error("backend should be unavailable when no synthesizer exists")
		}
	})
}
