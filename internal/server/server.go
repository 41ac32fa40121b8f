package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/textlens/textlens/internal/indexer"
	"github.com/textlens/textlens/internal/logger"
	"github.com/textlens/textlens/internal/overlay"
	"github.com/textlens/textlens/internal/pipeline"
)

// Options wires a Server's collaborators.
type Options struct {
	// Addr is the listen address, ":8080" when empty.
	Addr string

	// Pipeline runs the image analysis flow. Required.
	Pipeline *pipeline.Pipeline

	// Overlay is the baseline annotation style. Requests can override
	// individual fields; the zero value selects the package defaults.
	Overlay overlay.Options

	// Indexer talks to the video indexing service. May be nil, in which
	// case the video endpoints report that indexing is not configured.
	Indexer *indexer.Client

	// Hub fans pipeline events out to websocket clients. Required.
	Hub *Hub

	// Log defaults to a silent logger.
	Log *logger.Logger
}

// Server exposes the analysis pipeline over HTTP. It serves the
// single-page frontend, the JSON API, and the websocket activity feed.
type Server struct {
	addr    string
	pipe    *pipeline.Pipeline
	overlay overlay.Options
	indexer *indexer.Client
	hub     *Hub
	log     *logger.Logger
}

// NewServer validates the options and builds a Server.
func NewServer(opts Options) (*Server, error) {
	if opts.Pipeline == nil {
		return nil, fmt.Errorf("server requires a pipeline")
	}
	if opts.Hub == nil {
		return nil, fmt.Errorf("server requires a websocket hub")
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	return &Server{
		addr:    opts.Addr,
		pipe:    opts.Pipeline,
		overlay: opts.Overlay,
		indexer: opts.Indexer,
		hub:     opts.Hub,
		log:     opts.Log,
	}, nil
}

// Router builds the HTTP route table. It is exported so tests can drive
// the handlers through httptest without binding a socket.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/videos", s.handleVideoUpload)
	mux.HandleFunc("GET /api/videos/{id}/index", s.handleVideoIndex)
	mux.HandleFunc("GET /ws", s.handleWebsocket)

	return mux
}

// Run starts the hub and serves HTTP until ctx is cancelled, then
// drains in-flight requests before returning.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("listening on %s", s.addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}
