// Package server exposes the analysis service over HTTP.
//
// Routes:
//
//	POST /analyze  {"repoUrl": "..."} -> AnalysisResult
//	GET  /healthz  liveness check
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server wraps an http.Server with start and graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a server listening on addr.
func New(addr string, handler http.Handler, readTimeout time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: readTimeout,
			ReadTimeout:       readTimeout,
		},
		logger: logger,
	}
}

// Start listens and serves until Shutdown is called.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("server.start", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx
// is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server.shutdown")
	return s.httpServer.Shutdown(ctx)
}

// Run serves until ctx is cancelled, then shuts down within gracePeriod.
func (s *Server) Run(ctx context.Context, gracePeriod time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracePeriod)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
