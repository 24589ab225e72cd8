package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines"
	"github.com/dgnsrekt/readaloud/tts/voice"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

var voicesWait time.Duration

var voicesCmd = &cobra.Command{
	Use:     "voices [FILTER]",
	Short:   "List the voices of the speech engine",
	Long:    paragraph(fmt.Sprintf("\nList the voices the speech engine offers. A %s narrows the list by name, id or language.", keyword("filter"))),
	Example: paragraph("readaloud voices\nreadaloud voices --engine piper\nreadaloud voices en-gb"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := tts.LoadConfigFromViper()
		if err != nil {
			return err
		}

		backend := engines.Select(cfg, log.Default())
		if !backend.Available() {
			return fmt.Errorf("%s: %w", engineName(backend), tts.ErrSynthesisUnavailable)
		}

		voices := waitForVoices(backend, voicesWait)
		if len(voices) == 0 {
			return errors.New("the speech engine reported no voices")
		}

		if len(args) == 1 {
			voices = filterVoices(voices, args[0])
		}

		saved := ""
		if store, err := openPreferences(); err == nil {
			saved, _ = store.Get(tts.PreferenceVoice)
		}

		printVoices(voices, saved)
		return nil
	},
}

// waitForVoices returns the backend's voices once it has reported some, or
// whatever it has after d.
func waitForVoices(b tts.Backend, d time.Duration) []voice.Voice {
	changed := make(chan struct{}, 1)
	b.OnVoicesChanged(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	timeout := time.After(d)
	for {
		if v := b.Voices(); len(v) > 0 {
			return v
		}
		select {
		case <-changed:
		case <-timeout:
			return b.Voices()
		}
	}
}

// voiceSource adapts a voice list to fuzzy.Source.
type voiceSource []voice.Voice

func (s voiceSource) String(i int) string {
	v := s[i]
	return v.Name + " " + v.ID + " " + v.Lang
}

func (s voiceSource) Len() int { return len(s) }

func filterVoices(voices []voice.Voice, filter string) []voice.Voice {
	matches := fuzzy.FindFrom(filter, voiceSource(voices))
	out := make([]voice.Voice, 0, len(matches))
	for _, m := range matches {
		out = append(out, voices[m.Index])
	}
	return out
}

func printVoices(voices []voice.Voice, saved string) {
	nameWidth, langWidth := len("NAME"), len("LANG")
	for _, v := range voices {
		nameWidth = max(nameWidth, runewidth.StringWidth(v.Name))
		langWidth = max(langWidth, runewidth.StringWidth(v.Lang))
	}

	fmt.Fprintln(os.Stdout, subtle("  "+runewidth.FillRight("NAME", nameWidth)+"  "+runewidth.FillRight("LANG", langWidth)+"  ID"))
	for _, v := range voices {
		mark := "  "
		if saved != "" && (strings.EqualFold(v.Name, saved) || v.ID == saved) {
			mark = keyword("* ")
		}
		fmt.Fprintln(os.Stdout, mark+runewidth.FillRight(v.Name, nameWidth)+"  "+runewidth.FillRight(v.Lang, langWidth)+"  "+v.ID)
	}
}

func init() {
	voicesCmd.Flags().DurationVar(&voicesWait, "wait", 3*time.Second, "how long to wait for the engine to list its voices")
}
