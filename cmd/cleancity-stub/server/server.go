// Package server provides an importable replica of the Clean City web
// application. It serves the routes and element ids the regression suite
// drives, and each reported defect can be switched on so the suite can be
// seen failing against a buggy build and passing against a fixed one.
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cleancity/bugbusters/pkg/config"
)

// Config holds server configuration options.
type Config struct {
	Addr         string        // Listen address (e.g., ":8080" or "127.0.0.1:0" for random port)
	ReadTimeout  time.Duration // HTTP read timeout
	WriteTimeout time.Duration // HTTP write timeout
	Bugs         []string      // Defects to reproduce, see config.AllBugs
	Logger       *log.Logger   // Request log; nil discards
}

// DefaultConfig returns a configuration suitable for testing: a random
// loopback port and no defects.
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the stub application server.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	addr       string
	bugs       Bugs
	logger     *log.Logger
	mu         sync.Mutex
	running    bool
}

// Bugs is the set of enabled defects keyed by bug id.
type Bugs map[string]bool

// Has reports whether the defect is enabled.
func (b Bugs) Has(id string) bool {
	return b[id]
}

// NewServer creates a new server with the given configuration.
// The server is not started until Start() is called.
func NewServer(cfg Config) (*Server, error) {
	bugs := Bugs{}
	for _, id := range cfg.Bugs {
		if !slices.Contains(config.AllBugs, id) {
			return nil, fmt.Errorf("unknown bug %q", id)
		}
		bugs[id] = true
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Server{
		bugs:   bugs,
		logger: logger,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/login", s.handlePage("login"))
	r.Get("/register", s.handlePage("register"))
	r.Get("/dashboard", s.handleDashboard)
	r.Get("/pickup-request", s.handlePage("pickup"))
	r.Get("/feedback", s.handlePage("feedback"))
	r.Get("/admin", s.handleAdmin)
	return r
}

// requestLog writes one structured line per request.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// Start begins listening and serving HTTP requests.
// Returns the actual address the server is listening on (useful when port is 0).
// This method is non-blocking - the server runs in a goroutine.
func (s *Server) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return s.addr, nil
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	s.listener = ln
	s.addr = ln.Addr().String()
	s.running = true

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("serve failed", "err", err)
		}
	}()

	s.logger.Info("stub listening", "addr", s.addr, "bugs", len(s.bugs))
	return s.addr, nil
}

// URL returns the base URL of the running server, or "" when stopped.
func (s *Server) URL() string {
	addr := s.Addr()
	if addr == "" {
		return ""
	}
	return "http://" + addr
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the address the server is listening on.
// Returns empty string if server is not running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ""
	}
	return s.addr
}
