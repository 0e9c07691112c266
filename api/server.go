// Package api exposes the entry operations over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Skryldev/entry-catalog/models"
	"github.com/Skryldev/entry-catalog/query"
	"github.com/Skryldev/entry-catalog/service"
)

// EntryService is the set of entry operations the handlers call.
type EntryService interface {
	List(ctx context.Context, p query.Params) (*service.ListResult, error)
	Get(ctx context.Context, id int64) (*models.Entry, error)
	Create(ctx context.Context, input map[string]any) (*models.Entry, error)
	Update(ctx context.Context, id int64, input map[string]any) (*models.Entry, error)
	Delete(ctx context.Context, id int64) error
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config wraps the knobs that impact runtime behavior.
type Config struct {
	Addr string
	// RequestTimeout bounds the work done for one request. Zero disables it.
	RequestTimeout time.Duration
	// ShutdownTimeout bounds graceful shutdown. Defaults to 10s.
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// Server serves the catalog REST API.
type Server struct {
	cfg     Config
	entries EntryService
	health  Pinger
	logger  *slog.Logger
	handler http.Handler
}

// NewServer wires routes and middleware.
func NewServer(cfg Config, entries EntryService, health Pinger) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{cfg: cfg, entries: entries, health: health, logger: cfg.Logger}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Run listens on cfg.Addr until ctx is cancelled, then drains in-flight
// requests before returning.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       time.Minute,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("catalog api listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down catalog api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
