package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/document"
	"github.com/dgnsrekt/readaloud/internal/remote"
	"github.com/dgnsrekt/readaloud/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveWatch bool
	servePlay  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve FILE",
	Short: "Read a document aloud under HTTP control",
	Long: paragraph(fmt.Sprintf("\nRead a document aloud without the TUI. Playback is driven over %s, and %s streams every change.",
		keyword("HTTP"), keyword("/api/events"))),
	Example: paragraph("readaloud serve book.pdf\ncurl -X POST localhost:7878/api/play"),
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Logs go to stderr here; there is no TUI to protect.
		log.SetOutput(os.Stderr)

		path, err := filepath.Abs(utils.ExpandPath(args[0]))
		if err != nil {
			return fmt.Errorf("unable to get absolute path: %w", err)
		}

		s, err := openSession(path)
		if err != nil {
			return err
		}
		defer s.Close()

		cfg := remote.Config{
			Addr:      viper.GetString("remote.addr"),
			RateLimit: viper.GetFloat64("remote.rate_limit"),
			Burst:     viper.GetInt("remote.burst"),
		}
		srv := remote.NewServer(s.ctrl, s.texts, s.doc, log.Default(), cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if serveWatch {
			go watchAndReload(ctx, s, srv)
		}
		if servePlay {
			if err := s.ctrl.Play(); err != nil {
				log.Warn("Could not start reading", "err", err)
			}
		}

		log.Info("Serving", "addr", cfg.Addr, "document", s.doc.Title(), "engine", engineName(s.backend))
		return srv.ListenAndServe(ctx)
	},
}

// watchAndReload loads the document again each time it changes on disk.
func watchAndReload(ctx context.Context, s *session, srv *remote.Server) {
	w, err := document.Watch(s.doc.Path(), log.Default())
	if err != nil {
		log.Warn("Not watching document", "err", err)
		return
	}
	defer w.Close() //nolint:errcheck

	for {
		if err := w.Wait(ctx); err != nil {
			return
		}

		doc, err := document.Open(s.doc.Path())
		if err != nil {
			log.Warn("Could not reload document", "err", err)
			continue
		}
		if doc.ID() == s.doc.ID() {
			continue
		}
		if err := s.ctrl.Load(doc); err != nil {
			log.Warn("Could not load document", "err", err)
			continue
		}
		s.doc = doc
		srv.SetDocument(doc)
		log.Info("Reloaded document", "pages", doc.PageCount())
	}
}

func init() {
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "reload the document when the file changes")
	serveCmd.Flags().BoolVar(&servePlay, "play", false, "start reading right away")
	serveCmd.Flags().StringVar(new(string), "addr", "", "listen address (default from remote.addr)")
	_ = viper.BindPFlag("remote.addr", serveCmd.Flags().Lookup("addr"))
}
