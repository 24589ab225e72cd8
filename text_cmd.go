package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/cache"
	"github.com/dgnsrekt/readaloud/internal/document"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/sentence"
	"github.com/dgnsrekt/readaloud/utils"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	textPage   int
	textChunks bool
)

var textCmd = &cobra.Command{
	Use:   "text FILE",
	Short: "Print the text that would be read aloud",
	Long: paragraph(fmt.Sprintf("\nPrint the normalized text of a document, page by page. With %s every utterance is printed on its own line.",
		keyword("--chunks"))),
	Example: paragraph("readaloud text notes.md\nreadaloud text --page 2 --chunks paper.pdf"),
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := tts.LoadConfigFromViper()
		if err != nil {
			return err
		}
		doc, err := document.Open(utils.ExpandPath(args[0]))
		if err != nil {
			return err
		}
		texts := cache.NewTextCache(cache.WithLogger(log.Default()))
		return printText(cmd.Context(), os.Stdout, doc, texts, cfg.ChunkSize)
	},
}

func printText(ctx context.Context, w io.Writer, doc tts.Document, texts tts.TextSource, maxLen int) error {
	first, last := 1, doc.PageCount()
	if textPage > 0 {
		first = tts.ClampPage(textPage, doc.PageCount())
		last = first
	}

	for page := first; page <= last; page++ {
		text, err := texts.PageText(ctx, doc, page)
		if err != nil {
			return err
		}

		fmt.Fprintln(w, subtle(fmt.Sprintf("── page %d/%d · %s", page, doc.PageCount(), humanize.Bytes(uint64(len(text))))))
		switch {
		case text == "":
			fmt.Fprintln(w, subtle("(no text)"))
		case textChunks:
			for i, chunk := range sentence.Chunk(text, maxLen) {
				fmt.Fprintf(w, "%s %s\n", keyword(fmt.Sprintf("%3d", i+1)), chunk)
			}
		default:
			fmt.Fprintln(w, text)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func init() {
	textCmd.Flags().IntVar(&textPage, "page", 0, "print only this page")
	textCmd.Flags().BoolVar(&textChunks, "chunks", false, "print one utterance per line")
}
