// Package utils holds small helpers shared by the commands and the TUI.
package utils

import (
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/mitchellh/go-homedir"
	"github.com/muesli/termenv"
)

// RemoveFrontmatter strips a leading YAML front matter block.
func RemoveFrontmatter(content []byte) []byte {
	if frontmatterBoundaries := detectFrontmatter(content); frontmatterBoundaries[0] == 0 {
		return content[frontmatterBoundaries[1]:]
	}
	return content
}

var yamlPattern = regexp.MustCompile(`(?m)^---\r?\n(\s*\r?\n)?`)

func detectFrontmatter(c []byte) []int {
	if matches := yamlPattern.FindAllIndex(c, 2); len(matches) > 1 {
		return []int{matches[0][0], matches[1][1]}
	}
	return []int{-1, -1}
}

// ExpandPath expands tilde and all environment variables from the given path.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

// IsMarkdownFile reports whether filename has a markdown extension.
func IsMarkdownFile(filename string) bool {
	for _, ext := range []string{".md", ".mdown", ".mkdn", ".mkd", ".markdown"} {
		if strings.HasSuffix(strings.ToLower(filename), ext) {
			return true
		}
	}
	return false
}

// GlamourStyle returns the glamour option for a style name or path. The auto
// style picks dark or light from the terminal background.
func GlamourStyle(style string) glamour.TermRendererOption {
	switch style {
	case styles.AutoStyle, "":
		if termenv.HasDarkBackground() {
			return glamour.WithStandardStyle(styles.DarkStyle)
		}
		return glamour.WithStandardStyle(styles.LightStyle)
	case styles.DarkStyle, styles.LightStyle, styles.NoTTYStyle, styles.DraculaStyle,
		styles.PinkStyle, styles.AsciiStyle, styles.TokyoNightStyle:
		return glamour.WithStandardStyle(style)
	default:
		return glamour.WithStylePath(ExpandPath(style))
	}
}
