package ui

import "github.com/charmbracelet/lipgloss"

var (
	fuchsia = lipgloss.Color("#EE6FF8")
	cream   = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	gray    = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	red     = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	green   = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().Foreground(gray)

	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Bold(true)
)

func logoView() string {
	return logoStyle.Render(" Read Aloud ")
}
