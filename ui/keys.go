package ui

import "github.com/charmbracelet/bubbles/key"

const keyEsc = "esc"

type keyMap struct {
	Toggle    key.Binding
	Stop      key.Binding
	StopHard  key.Binding
	NextPage  key.Binding
	PrevPage  key.Binding
	NextVoice key.Binding
	PrevVoice key.Binding
	Faster    key.Binding
	Slower    key.Binding
	PitchUp   key.Binding
	PitchDown key.Binding
	Louder    key.Binding
	Quieter   key.Binding
	Mute      key.Binding
	Copy      key.Binding
	Reload    key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Toggle:    key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "play/pause")),
	Stop:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
	StopHard:  key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "stop, back to page 1")),
	NextPage:  key.NewBinding(key.WithKeys("n", "right", "l"), key.WithHelp("n/→", "next page")),
	PrevPage:  key.NewBinding(key.WithKeys("p", "left", "h"), key.WithHelp("p/←", "previous page")),
	NextVoice: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "next voice")),
	PrevVoice: key.NewBinding(key.WithKeys("V"), key.WithHelp("V", "previous voice")),
	Faster:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
	Slower:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
	PitchUp:   key.NewBinding(key.WithKeys(")"), key.WithHelp(")", "pitch up")),
	PitchDown: key.NewBinding(key.WithKeys("("), key.WithHelp("(", "pitch down")),
	Louder:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "louder")),
	Quieter:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "quieter")),
	Mute:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
	Copy:      key.NewBinding(key.WithKeys("y", "c"), key.WithHelp("y", "copy page text")),
	Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Top:       key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g/home", "go to top")),
	Bottom:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G/end", "go to bottom")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q", keyEsc, "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp is shown in the status bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.NextPage, k.PrevPage, k.Help, k.Quit}
}

// FullHelp is shown below the page when help is open.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Stop, k.StopHard, k.NextPage, k.PrevPage},
		{k.NextVoice, k.PrevVoice, k.Faster, k.Slower, k.PitchUp, k.PitchDown},
		{k.Louder, k.Quieter, k.Mute, k.Copy, k.Reload},
		{k.Top, k.Bottom, k.Help, k.Quit},
	}
}
