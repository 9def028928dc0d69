package engine

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mocks-server/main/pkg/httputil"
)

// RequestIDHeader is set on every mock response.
const RequestIDHeader = "X-Mocks-Request-Id"

// Router returns the handler serving the mock. It can be mounted once and
// always serves the latest state.
func (mm *MockManager) Router() http.Handler {
	return http.HandlerFunc(mm.serveHTTP)
}

func (mm *MockManager) serveHTTP(w http.ResponseWriter, r *http.Request) {
	s := mm.current.Load()
	requestID := uuid.NewString()
	w.Header().Set(RequestIDHeader, requestID)

	rv, params := s.match(r.Method, r.URL.Path)
	if rv == nil && r.Method == http.MethodHead {
		rv, params = s.match(http.MethodGet, r.URL.Path)
	}
	if rv == nil {
		mm.log.Debug("no route matched", "method", r.Method, "path", r.URL.Path, "request_id", requestID)
		httputil.WriteRouteNotFound(w, r)
		return
	}

	for name, value := range params {
		r.SetPathValue(name, value)
	}

	mm.log.Debug("request matched",
		"method", r.Method,
		"path", r.URL.Path,
		"route", rv.RouteID,
		"variant", rv.ID,
		"request_id", requestID,
	)

	if delay := mm.delayOf(rv); delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-r.Context().Done():
			timer.Stop()
			return
		}
	}

	rv.Handler.ServeHTTP(w, r)
}

// delayOf returns the delay of a route variant, or the global delay when it has none.
func (mm *MockManager) delayOf(rv *RouteVariant) time.Duration {
	if d, ok := rv.Delay.Duration(); ok {
		return d
	}
	return time.Duration(mm.delay.Load()) * time.Millisecond
}

// match returns the first enabled route variant answering method and path.
func (s *snapshot) match(method, path string) (*RouteVariant, map[string]string) {
	if s == nil {
		return nil, nil
	}
	for _, rv := range s.effective {
		if rv.Disabled {
			continue
		}
		if params, ok := rv.Matches(method, path); ok {
			return rv, params
		}
	}
	return nil, nil
}
