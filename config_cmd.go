package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# style name or JSON path (default "auto")
style: "auto"
# mouse support
mouse: false
# word-wrap at width
width: 80
# write debug messages to the log file
debug: false

# speech
tts:
  # auto, espeak, piper or mock; auto prefers piper when a model is installed
  engine: "auto"
  # longest utterance in characters
  chunk_size: 220
  # 0.5 to 2.0
  rate: 1.0
  # 0.5 to 2.0
  pitch: 1.0
  # 0.0 to 1.0
  volume: 1.0
  muted: false

  voice:
    # used until a voice is picked in the reader
    # preferred: "en-us"
    fallback_locale: "en-GB"
    secondary_locale: "en-US"
    # keep a picked voice for this long; 0 keeps it until changed
    save_ttl: 0s

  espeak:
    binary: "espeak-ng"

  piper:
    binary: "piper"
    # directory holding *.onnx voices with their .onnx.json files
    # models_dir: "~/.local/share/piper"
    sample_rate: 22050

# extracted page text
cache:
  # keep page text on disk between runs
  disk: true
  # dir: "~/.cache/readaloud/text"
  # zstd level, 0 stores text uncompressed
  compression_level: 2

# preferences such as the last voice
prefs:
  # file: "~/.local/share/readaloud/prefs.yml"

# HTTP control for the serve command
remote:
  addr: "127.0.0.1:7878"
  # control requests per second
  rate_limit: 5
  burst: 10
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the readaloud config file",
	Long:    paragraph(fmt.Sprintf("\n%s the readaloud config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("readaloud config\nreadaloud config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("readaloud", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
