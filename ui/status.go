package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/readaloud/tts"
)

var (
	engineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	stateStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	rateStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	positionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("247"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	detailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func stateIcon(s tts.StateType) string {
	switch s {
	case tts.StateSpeaking:
		return "▶"
	case tts.StatePaused:
		return "⏸"
	case tts.StatePreparing:
		return "⟳"
	case tts.StateError:
		return "✗"
	default:
		return "■"
	}
}

// renderNarrationStatus renders the one-line narration summary shown above
// the status bar.
func renderNarrationStatus(engine string, s tts.Snapshot) string {
	var parts []string

	engineText := "TTS: " + strings.ToUpper(engine)
	if !s.Available {
		engineText += " (Unavailable)"
	}
	parts = append(parts, engineStyle.Render(engineText))

	switch s.Status.Kind {
	case tts.StatusError, tts.StatusUnavailable:
		msg := "⚠ " + s.Status.Message
		if s.Status.Detail != "" {
			msg += " " + s.Status.Detail
		}
		parts = append(parts, errorStyle.Render(msg))
		return strings.Join(parts, separatorStyle.Render(" │ "))
	}

	parts = append(parts, stateStyle.Render(stateIcon(s.State)+" "+s.Status.Message))
	parts = append(parts, rateStyle.Render(fmt.Sprintf("%gx", s.Rate)))

	if s.Muted {
		parts = append(parts, positionStyle.Render("muted"))
	} else {
		parts = append(parts, positionStyle.Render(fmt.Sprintf("vol %d%%", int(s.Volume*100+0.5))))
	}

	if s.ChunkCount > 0 && s.State.IsActive() {
		parts = append(parts, positionStyle.Render(fmt.Sprintf("%d/%d", s.Chunk+1, s.ChunkCount)))
	}
	if s.Voice != "" {
		parts = append(parts, positionStyle.Render(s.Voice))
	}
	if s.Status.Detail != "" && s.Status.Detail != "Muted." {
		parts = append(parts, detailStyle.Render(s.Status.Detail))
	}

	return strings.Join(parts, separatorStyle.Render(" │ "))
}
