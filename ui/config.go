package ui

// Config contains TUI-specific configuration.
type Config struct {
	ShowLineNumbers  bool
	GlamourMaxWidth  uint
	GlamourStyle     string `env:"GLAMOUR_STYLE"`
	EnableMouse      bool
	PreserveNewLines bool

	// Document file path
	Path string

	// Reload the document when the file changes on disk.
	Watch bool `env:"READALOUD_WATCH" envDefault:"true"`

	// For debugging the UI
	GlamourEnabled bool `env:"READALOUD_ENABLE_GLAMOUR" envDefault:"true"`
	Highlight      bool `env:"READALOUD_HIGHLIGHT"      envDefault:"true"`
}
