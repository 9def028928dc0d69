package engine

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mocks-server/main/pkg/alerts"
	"github.com/mocks-server/main/pkg/handlers"
	"github.com/mocks-server/main/pkg/mock"
	"github.com/mocks-server/main/pkg/validation"
)

// ============================================================================
// Fixtures
// ============================================================================

func jsonVariant(id string, body string) mock.VariantDefinition {
	return mock.VariantDefinition{
		ID:          id,
		HandlerType: handlers.JSONHandlerID,
		Options:     json.RawMessage(fmt.Sprintf(`{"status":200,"body":%s}`, body)),
	}
}

func statusVariant(id string, status int) mock.VariantDefinition {
	return mock.VariantDefinition{
		ID:          id,
		HandlerType: handlers.StatusHandlerID,
		Options:     json.RawMessage(fmt.Sprintf(`{"status":%d}`, status)),
	}
}

func route(id, method, path string, variants ...mock.VariantDefinition) mock.RouteDefinition {
	return mock.RouteDefinition{
		ID:       id,
		Method:   mock.MethodList(method),
		Path:     mock.Path(path),
		Variants: variants,
	}
}

func collection(id, from string, routes ...string) mock.CollectionDefinition {
	if routes == nil {
		routes = []string{}
	}
	return mock.CollectionDefinition{ID: id, From: from, Routes: routes}
}

func newTestValidator(t *testing.T) *validation.Validator {
	t.Helper()
	v, err := validation.New(handlers.DefaultRegistry())
	require.NoError(t, err)
	return v
}

// newLoadedManager returns an initialized manager with one loaded definition source.
func newLoadedManager(t *testing.T, routes []mock.RouteDefinition, collections []mock.CollectionDefinition, opts ...Option) *MockManager {
	t.Helper()
	mm := NewMockManager(opts...)
	require.NoError(t, mm.Init(handlers.DefaultRegistry()))
	loadRoutes, loadCollections := mm.CreateLoaders()
	loadRoutes(routes)
	loadCollections(collections)
	require.Equal(t, StateReady, mm.State())
	return mm
}

func doRequest(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func doRequestWithOrigin(h http.Handler, method, path, origin string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Origin", origin)
	h.ServeHTTP(rec, req)
	return rec
}

func splitHostPort(addr string) (string, int, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	n, err := strconv.Atoi(port)
	return host, n, err
}

// alertIDs returns the flat ids of every alert under a.
func alertIDs(a *alerts.Alerts) []string {
	var ids []string
	for _, alert := range a.Flat() {
		ids = append(ids, alert.ID)
	}
	return ids
}

// userRoutes is the get-user route with two json variants.
func userRoutes() []mock.RouteDefinition {
	return []mock.RouteDefinition{
		route("get-user", "GET", "/api/user",
			jsonVariant("1", `{"email":"a@x.com"}`),
			jsonVariant("2", `{"email":"b@x.com"}`),
		),
	}
}
