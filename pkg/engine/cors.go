package engine

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

var (
	defaultCORSMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"}
	defaultCORSHeaders = []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"}
)

const defaultCORSMaxAge = 86400

// CORSConfig configures the CORS headers added to mock responses.
type CORSConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// AllowOrigins may contain "*" to allow any origin.
	AllowOrigins     []string `json:"allowOrigins,omitempty" yaml:"allowOrigins,omitempty"`
	AllowMethods     []string `json:"allowMethods,omitempty" yaml:"allowMethods,omitempty"`
	AllowHeaders     []string `json:"allowHeaders,omitempty" yaml:"allowHeaders,omitempty"`
	AllowCredentials bool     `json:"allowCredentials,omitempty" yaml:"allowCredentials,omitempty"`
	// MaxAge is in seconds.
	MaxAge int `json:"maxAge,omitempty" yaml:"maxAge,omitempty"`
	// PreflightContinue passes every preflight request to the mock routes
	// instead of answering it.
	PreflightContinue bool `json:"preflightContinue,omitempty" yaml:"preflightContinue,omitempty"`
}

// DefaultCORSConfig allows every origin.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		Enabled:      true,
		AllowOrigins: []string{"*"},
		AllowMethods: slices.Clone(defaultCORSMethods),
		AllowHeaders: slices.Clone(defaultCORSHeaders),
		MaxAge:       defaultCORSMaxAge,
	}
}

// AllowOriginValue returns the Access-Control-Allow-Origin value for a request
// origin, or "" when the origin is not allowed. A wildcard is echoed back as
// the request origin when credentials are allowed.
func (c *CORSConfig) AllowOriginValue(origin string) string {
	switch {
	case c == nil || !c.Enabled:
		return ""
	case slices.Contains(c.AllowOrigins, "*"):
		if c.AllowCredentials {
			return origin
		}
		return "*"
	case origin != "" && slices.Contains(c.AllowOrigins, origin):
		return origin
	}
	return ""
}

// MockChecker reports whether a mock route answers a request.
type MockChecker interface {
	HasMatch(r *http.Request) bool
}

// HasMatch reports whether a route variant currently answers the request.
func (mm *MockManager) HasMatch(r *http.Request) bool {
	rv, _ := mm.current.Load().match(r.Method, r.URL.Path)
	return rv != nil
}

// CORSMiddleware adds CORS headers in front of the mock router and answers
// preflight requests no OPTIONS route handles.
type CORSMiddleware struct {
	next    http.Handler
	config  *CORSConfig
	checker MockChecker

	methods string
	headers string
	maxAge  string
}

// NewCORSMiddleware wraps next. A nil cfg means DefaultCORSConfig and a nil
// checker means no OPTIONS route ever takes precedence.
func NewCORSMiddleware(next http.Handler, cfg *CORSConfig, checker MockChecker) *CORSMiddleware {
	if cfg == nil {
		cfg = DefaultCORSConfig()
	}
	m := &CORSMiddleware{next: next, config: cfg, checker: checker}

	m.methods = strings.Join(orDefault(cfg.AllowMethods, defaultCORSMethods), ", ")
	m.headers = strings.Join(orDefault(cfg.AllowHeaders, defaultCORSHeaders), ", ")
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = defaultCORSMaxAge
	}
	m.maxAge = strconv.Itoa(maxAge)
	return m
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}

func (m *CORSMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !m.config.Enabled {
		m.next.ServeHTTP(w, r)
		return
	}

	allowOrigin := m.config.AllowOriginValue(r.Header.Get("Origin"))
	if allowOrigin != "" {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", allowOrigin)
		if allowOrigin != "*" {
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Methods", m.methods)
		h.Set("Access-Control-Allow-Headers", m.headers)
		h.Set("Access-Control-Max-Age", m.maxAge)
		if m.config.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
	}

	if r.Method != http.MethodOptions || m.config.PreflightContinue || (m.checker != nil && m.checker.HasMatch(r)) {
		m.next.ServeHTTP(w, r)
		return
	}
	if allowOrigin == "" {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
