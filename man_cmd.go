package main

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:                   "man",
	Short:                 "Generates the readaloud manpage",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Hidden:                true,
	Args:                  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		page, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return err
		}

		page = page.
			WithSection("Files", "$XDG_CONFIG_HOME/readaloud/readaloud.yml holds the configuration. "+
				"Extracted page text and the log file live in the user cache directory.").
			WithSection("Environment", "READALOUD_CONFIG_HOME overrides the configuration directory. "+
				"GLAMOUR_STYLE sets the markdown style. READALOUD_WATCH=false stops reloading changed files.").
			WithSection("Copyright", "Released under MIT license.")
		fmt.Println(page.Build(roff.NewDocument()))
		return nil
	},
}
