// Package preview serves a built idea book over HTTP and rebuilds it when
// the sources change.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/gorewood/ideabook/internal/book"
	"github.com/gorewood/ideabook/internal/output"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = "127.0.0.1:3000"

// shutdownTimeout bounds graceful shutdown once the context is done.
const shutdownTimeout = 5 * time.Second

// Server serves the HTML build of one book.
type Server struct {
	router   chi.Router
	root     string
	buildDir string
	log      *zap.Logger

	mu        sync.Mutex
	lastBuild *book.BuildResult
	lastErr   error
	builtAt   time.Time
}

// NewServer creates a server for the book at root. It does not build the
// book; call Rebuild before serving.
func NewServer(root string, log *zap.Logger) (*Server, error) {
	b, err := book.Load(root)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{root: root, buildDir: b.BuildDir(), log: log}
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/*", http.FileServer(http.Dir(s.buildDir)))

	s.router = r
}

// Rebuild reloads the book from disk and renders it. Concurrent calls are
// serialized.
func (s *Server) Rebuild() (*book.BuildResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	b, err := book.Load(s.root)
	if err == nil {
		s.lastBuild, err = b.Build()
	}
	s.lastErr = err
	s.builtAt = time.Now()
	if err != nil {
		s.log.Warn("rebuild failed", zap.Error(err))
		return nil, err
	}
	s.log.Info("book rebuilt",
		zap.Int("pages", s.lastBuild.Pages),
		zap.Duration("took", time.Since(start)),
	)
	return s.lastBuild, nil
}

type healthResponse struct {
	Status  string    `json:"status"`
	Pages   int       `json:"pages"`
	BuiltAt time.Time `json:"built_at"`
	Error   string    `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	resp := healthResponse{Status: "ok", BuiltAt: s.builtAt}
	if s.lastBuild != nil {
		resp.Pages = s.lastBuild.Pages
	}
	if s.lastErr != nil {
		resp.Status = "build_failed"
		resp.Error = s.lastErr.Error()
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// ListenAndServe builds the book, starts a watcher on its source directory
// and serves it on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if _, err := s.Rebuild(); err != nil {
		return err
	}

	b, err := book.Load(s.root)
	if err != nil {
		return err
	}
	watcher, err := NewWatcher(b.SourceDir(), func() error {
		_, err := s.Rebuild()
		return err
	}, s.log)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("preview server listening", zap.String("addr", addr), zap.String("dir", s.buildDir))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return output.NewSystemErrorWithCause("preview server failed on "+addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return output.NewSystemErrorWithCause("preview server shutdown failed", err)
		}
		return nil
	}
}

// RequestLogger logs each request with its status and duration.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
