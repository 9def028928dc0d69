// Package admin provides the REST API used to inspect and drive a running
// mock server.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mocks-server/main/pkg/alerts"
	"github.com/mocks-server/main/pkg/logging"
	"github.com/mocks-server/main/pkg/mock"
)

// BasePath is the prefix of every admin route.
const BasePath = "/api"

// Mock is the part of the mock manager the admin API drives.
type Mock interface {
	Alerts() *alerts.Alerts
	SelectedCollection() string
	SelectCollection(id string)
	Delay() int
	SetDelay(ms int)
	PlainRoutes() []mock.PlainRoute
	PlainVariants() []mock.PlainVariant
	PlainCollections() []mock.PlainCollection
	CustomRouteVariants() []string
	UseRouteVariant(id string) error
	RestoreRouteVariants()
}

// API exposes the admin REST API.
type API struct {
	mock    Mock
	alerts  *alerts.Alerts
	version string
	log     *slog.Logger
	handler http.Handler

	mu         sync.RWMutex
	httpServer *http.Server
	listener   net.Listener
	startTime  time.Time
}

// Option configures an API.
type Option func(*API)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// WithVersion sets the version reported by GET /api/about.
func WithVersion(version string) Option {
	return func(a *API) {
		a.version = version
	}
}

// WithAlerts sets the alerts tree reported by GET /api/alerts.
// By default only the mock alerts are reported.
func WithAlerts(root *alerts.Alerts) Option {
	return func(a *API) {
		if root != nil {
			a.alerts = root
		}
	}
}

// NewAPI creates an admin API for m.
func NewAPI(m Mock, opts ...Option) *API {
	a := &API{
		mock:      m,
		version:   "dev",
		log:       logging.Nop(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.alerts == nil {
		a.alerts = m.Alerts()
	}

	mux := http.NewServeMux()
	a.registerRoutes(mux)
	a.handler = requestLogger(mux, a.log)
	return a
}

// Handler returns the admin API handler.
func (a *API) Handler() http.Handler {
	return a.handler
}

// Start listens on addr and serves the API in the background.
func (a *API) Start(addr string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.httpServer != nil {
		return errors.New("admin API already running")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	a.httpServer = srv
	a.listener = ln
	a.startTime = time.Now()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("admin API error", "error", err)
		}
	}()

	a.log.Info("admin API started", "addr", ln.Addr().String())
	return nil
}

// Stop gracefully shuts the API down. Stopping a stopped API is a no-op.
func (a *API) Stop(ctx context.Context) error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.listener = nil
	a.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Addr returns the listening address, or "" when stopped.
func (a *API) Addr() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Uptime returns the API uptime in seconds.
func (a *API) Uptime() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return int(time.Since(a.startTime).Seconds())
}
