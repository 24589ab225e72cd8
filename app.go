package main

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/cache"
	"github.com/dgnsrekt/readaloud/internal/document"
	"github.com/dgnsrekt/readaloud/internal/prefs"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines"
	"github.com/dgnsrekt/readaloud/tts/engines/espeak"
	"github.com/dgnsrekt/readaloud/tts/engines/mock"
	"github.com/dgnsrekt/readaloud/tts/engines/piper"
	"github.com/dgnsrekt/readaloud/utils"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

// session wires a document to a controller the way every command needs it.
type session struct {
	cfg     tts.Config
	doc     *document.Document
	texts   *cache.TextCache
	disk    *cache.DiskStore
	backend tts.Backend
	ctrl    *tts.Controller
}

// openSession opens path and prepares narration for it. The caller must
// Close the session.
func openSession(path string) (*session, error) {
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return nil, err
	}

	doc, err := document.Open(utils.ExpandPath(path))
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, doc: doc}

	var opts []cache.Option
	opts = append(opts, cache.WithLogger(log.Default()))
	if viper.GetBool("cache.disk") {
		disk, err := openDiskStore()
		if err != nil {
			log.Warn("Disk text cache disabled", "err", err)
		} else {
			s.disk = disk
			opts = append(opts, cache.WithDiskStore(disk))
		}
	}
	s.texts = cache.NewTextCache(opts...)

	ctrlOpts := []tts.Option{tts.WithLogger(log.Default())}
	if store, err := openPreferences(); err != nil {
		log.Warn("Voice preference will not be saved", "err", err)
	} else {
		ctrlOpts = append(ctrlOpts, tts.WithPreferenceStore(store))
	}

	s.backend = engines.Select(cfg, log.Default())
	s.ctrl = tts.NewController(s.backend, s.texts, cfg, ctrlOpts...)
	if err := s.ctrl.Load(doc); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// Close stops narration and releases the disk cache.
func (s *session) Close() {
	if s.ctrl != nil {
		_ = s.ctrl.Close()
	}
	if s.disk != nil {
		if err := s.disk.Close(); err != nil {
			log.Warn("Could not close disk cache", "err", err)
		}
	}
}

// engineName names the backend for display.
func engineName(b tts.Backend) string {
	switch b.(type) {
	case *piper.Engine:
		return tts.EnginePiper
	case *espeak.Engine:
		return tts.EngineEspeak
	case *mock.Engine:
		return tts.EngineMock
	}
	return "unknown"
}

func openDiskStore() (*cache.DiskStore, error) {
	dir := viper.GetString("cache.dir")
	if dir == "" {
		d, err := gap.NewScope(gap.User, appName).CacheDir()
		if err != nil {
			return nil, fmt.Errorf("unable to get cache directory: %w", err)
		}
		dir = filepath.Join(d, "text")
	}

	cfg := cache.DefaultDiskConfig(utils.ExpandPath(dir))
	if viper.IsSet("cache.compression_level") {
		cfg.CompressionLevel = viper.GetInt("cache.compression_level")
	}
	return cache.NewDiskStore(cfg)
}

func openPreferences() (*prefs.FileStore, error) {
	path := viper.GetString("prefs.file")
	if path == "" {
		dirs, err := gap.NewScope(gap.User, appName).DataDirs()
		if err != nil || len(dirs) == 0 {
			return nil, fmt.Errorf("unable to get data directory: %w", err)
		}
		path = filepath.Join(dirs[0], "prefs.yml")
	}
	return prefs.Open(utils.ExpandPath(path))
}
