// Package remote exposes a playback controller over HTTP so that other
// programs can drive narration and follow its progress.
package remote

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// Config configures the remote server.
type Config struct {
	Addr      string  // Listen address
	RateLimit float64 // Control requests per second
	Burst     int
}

// DefaultConfig returns the default remote configuration. The server only
// listens on loopback unless configured otherwise.
func DefaultConfig() Config {
	return Config{
		Addr:      "127.0.0.1:7878",
		RateLimit: 5,
		Burst:     10,
	}
}

// Server is the HTTP control surface of a Controller.
type Server struct {
	router  chi.Router
	ctrl    *tts.Controller
	texts   tts.TextSource
	log     *log.Logger
	cfg     Config
	limiter *rate.Limiter

	mu  sync.RWMutex
	doc tts.Document
}

// NewServer creates and configures the HTTP server. doc is the document the
// controller has loaded; texts serves its page text.
func NewServer(ctrl *tts.Controller, texts tts.TextSource, doc tts.Document, logger *log.Logger, cfg Config) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		ctrl:    ctrl,
		texts:   texts,
		doc:     doc,
		log:     logger.WithPrefix("remote"),
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetDocument replaces the document served by the page text endpoint, after
// the controller has loaded it.
func (s *Server) SetDocument(doc tts.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
}

func (s *Server) document() tts.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/voices", s.handleVoices)
		r.Get("/pages/{page}/text", s.handlePageText)
		r.Get("/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(RateLimiter(s.limiter))

			r.Post("/play", s.control(s.ctrl.Play))
			r.Post("/pause", s.control(s.ctrl.Pause))
			r.Post("/resume", s.control(s.ctrl.Resume))
			r.Post("/toggle", s.control(s.ctrl.Toggle))
			r.Post("/stop", s.handleStop)
			r.Post("/next", s.control(s.ctrl.NextPage))
			r.Post("/prev", s.control(s.ctrl.PrevPage))
			r.Post("/pages/{page}", s.handleGoToPage)

			r.Post("/voice", s.handleVoice)
			r.Post("/rate", s.handleNumber(s.ctrl.SetRate))
			r.Post("/pitch", s.handleNumber(s.ctrl.SetPitch))
			r.Post("/volume", s.handleNumber(s.ctrl.SetVolume))
			r.Post("/mute", s.handleMute)
		})
	})

	s.router = r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
