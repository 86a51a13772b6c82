// Package server provides the local development server: it serves a built
// site over HTTP and can watch the sources to rebuild on change.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultPort is the port used when none is configured.
const DefaultPort = 8000

const shutdownTimeout = 5 * time.Second

// Server serves the output directory of a build.
type Server struct {
	// Dir is the directory to serve.
	Dir string
	// Port is the TCP port to listen on.
	Port int
	// Logger defaults to log.Default().
	Logger *log.Logger
}

func (s *Server) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

// Handler returns the HTTP handler for the output directory. Responses are
// never cached and directories without an index.html are not listed.
func (s *Server) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.Dir))
	logger := s.logger()

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		logger.Debug("request", "method", req.Method, "path", req.URL.Path)

		name := filepath.Join(s.Dir, filepath.FromSlash(path.Clean("/"+req.URL.Path)))
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			if _, err := os.Stat(filepath.Join(name, "index.html")); err != nil {
				http.NotFound(w, req)
				return
			}
		}

		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		files.ServeHTTP(w, req)
	})
}

// Addr is the listen address for Port.
func (s *Server) Addr() string {
	port := s.Port
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf(":%d", port)
}

// ListenAndServe serves until ctx is done, then shuts the server down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger().Info("serving", "addr", "http://localhost"+srv.Addr, "dir", s.Dir)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger().Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
