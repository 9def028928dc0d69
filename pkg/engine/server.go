package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mocks-server/main/pkg/logging"
)

// ServerConfig configures the mock HTTP server.
type ServerConfig struct {
	Host string
	Port int
	// CORS is applied in front of the router when enabled.
	CORS *CORSConfig
	// ReadTimeout and WriteTimeout are in seconds. Zero means no timeout.
	ReadTimeout  int
	WriteTimeout int
}

func (c ServerConfig) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Server serves the routes of a MockManager over HTTP. It keeps serving the
// latest mock state across reloads, so it never needs a restart.
type Server struct {
	cfg     ServerConfig
	log     *slog.Logger
	handler http.Handler

	mu   sync.Mutex
	srv  *http.Server
	ln   net.Listener
	done chan struct{}
}

// ServerOption configures a Server.
type ServerOption func(*Server)

func WithServerLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// NewServer creates a server for mm. It is not listening until Start.
func NewServer(mm *MockManager, cfg ServerConfig, opts ...ServerOption) *Server {
	s := &Server{cfg: cfg, log: logging.Nop(), handler: mm.Router()}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.CORS != nil && cfg.CORS.Enabled {
		s.handler = NewCORSMiddleware(s.handler, cfg.CORS, mm)
	}
	return s
}

// Handler returns the handler the server mounts, including middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves in the background.
// Port 0 picks a free port; Addr returns the actual address.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return errors.New("mock server is already running")
	}
	ln, err := net.Listen("tcp", s.cfg.addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.addr(), err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.WriteTimeout) * time.Second,
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("mock server failed", "error", err)
		}
	}()

	s.srv, s.ln, s.done = srv, ln, done
	s.log.Info("mock server started", "addr", ln.Addr().String())
	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx is
// done. Stopping a stopped server is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv == nil {
		return nil
	}
	srv, done := s.srv, s.done
	s.srv, s.ln, s.done = nil, nil, nil

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("mock server shutdown: %w", err)
	}
	<-done
	s.log.Info("mock server stopped")
	return nil
}

// Addr returns the address the server listens on, or "" when stopped.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.srv != nil
}
