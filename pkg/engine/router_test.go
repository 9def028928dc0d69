package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mocks-server/main/pkg/handlers"
	"github.com/mocks-server/main/pkg/logging"
	"github.com/mocks-server/main/pkg/mock"
)

func TestRouter_NotFound(t *testing.T) {
	t.Parallel()

	mm := newLoadedManager(t, userRoutes(), []mock.CollectionDefinition{collection("base", "", "get-user:1")})

	rec := doRequest(mm.Router(), http.MethodPost, "/api/user")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["error"])
	assert.Equal(t, "Cannot POST /api/user", body["message"])
}

func TestRouter_NotFoundBeforeLoad(t *testing.T) {
	t.Parallel()

	rec := doRequest(NewMockManager().Router(), http.MethodGet, "/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Matching(t *testing.T) {
	t.Parallel()

	routes := []mock.RouteDefinition{
		route("users", "GET", "/api/users/:id", jsonVariant("ok", `{"found":true}`)),
		route("create", "POST", "/api/users", statusVariant("created", 201)),
		{
			ID:       "any",
			Method:   mock.MethodList("*"),
			Path:     mock.Path("/any"),
			Variants: []mock.VariantDefinition{statusVariant("ok", 204)},
		},
		{
			ID:       "multi",
			Method:   mock.MethodList("PUT", "PATCH"),
			Path:     mock.Path("/multi"),
			Variants: []mock.VariantDefinition{statusVariant("ok", 202)},
		},
	}
	mm := newLoadedManager(t, routes, []mock.CollectionDefinition{
		collection("base", "", "users:ok", "create:created", "any:ok", "multi:ok"),
	})
	router := mm.Router()

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"path param", http.MethodGet, "/api/users/42", http.StatusOK},
		{"trailing slash", http.MethodGet, "/api/users/42/", http.StatusOK},
		{"case insensitive", http.MethodGet, "/API/Users/42", http.StatusOK},
		{"method mismatch", http.MethodDelete, "/api/users/42", http.StatusNotFound},
		{"post", http.MethodPost, "/api/users", http.StatusCreated},
		{"any method", http.MethodDelete, "/any", http.StatusNoContent},
		{"method list put", http.MethodPut, "/multi", http.StatusAccepted},
		{"method list patch", http.MethodPatch, "/multi", http.StatusAccepted},
		{"method list get", http.MethodGet, "/multi", http.StatusNotFound},
		{"unknown path", http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := doRequest(router, tt.method, tt.path)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRouter_HeadFallsBackToGet(t *testing.T) {
	t.Parallel()

	mm := newLoadedManager(t, userRoutes(), []mock.CollectionDefinition{collection("base", "", "get-user:1")})

	rec := doRequest(mm.Router(), http.MethodHead, "/api/user")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Body.String())
}

func TestRouter_DisabledVariantFallsThrough(t *testing.T) {
	t.Parallel()

	routes := []mock.RouteDefinition{
		route("specific", "GET", "/api/users/me",
			statusVariant("enabled", 201),
			mock.VariantDefinition{ID: "disabled", HandlerType: "status", Disabled: true},
		),
		route("generic", "GET", "/api/users/:id", statusVariant("ok", 200)),
	}
	mm := newLoadedManager(t, routes, []mock.CollectionDefinition{
		collection("base", "", "specific:disabled", "generic:ok"),
	})
	router := mm.Router()

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/api/users/me").Code)

	require.NoError(t, mm.UseRouteVariant("specific:enabled"))
	assert.Equal(t, http.StatusCreated, doRequest(router, http.MethodGet, "/api/users/me").Code)
}

// echoParams is a handler answering with the value of the "id" path parameter.
type echoParams struct{}

func (echoParams) Preview() any { return nil }

func (echoParams) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(r.PathValue("id")))
}

func TestRouter_PathParams(t *testing.T) {
	t.Parallel()

	defs := append(handlers.Builtins(), handlers.Definition{
		ID:     "echo",
		Schema: json.RawMessage(`{}`),
		New: func(json.RawMessage, handlers.Env) (handlers.Handler, error) {
			return echoParams{}, nil
		},
	})
	registry, err := handlers.NewRegistry(defs...)
	require.NoError(t, err)

	mm := NewMockManager()
	require.NoError(t, mm.Init(registry))
	loadRoutes, loadCollections := mm.CreateLoaders()
	loadRoutes([]mock.RouteDefinition{
		route("user", "GET", "/users/:id", mock.VariantDefinition{ID: "echo", HandlerType: "echo"}),
	})
	loadCollections([]mock.CollectionDefinition{collection("base", "", "user:echo")})

	rec := doRequest(mm.Router(), http.MethodGet, "/users/42")
	assert.Equal(t, "42", rec.Body.String())
}

func TestRouter_Delay(t *testing.T) {
	t.Parallel()

	delayed := route("slow", "GET", "/slow", statusVariant("ok", 200))
	delayed.Delay = mock.DelayMs(50)
	global := route("global", "GET", "/global", mock.VariantDefinition{
		ID:          "ok",
		HandlerType: "status",
		Delay:       mock.DelayNull(),
		Options:     json.RawMessage(`{"status":200}`),
	})
	global.Delay = mock.DelayMs(5000)

	mm := newLoadedManager(t,
		[]mock.RouteDefinition{delayed, global},
		[]mock.CollectionDefinition{collection("base", "", "slow:ok", "global:ok")},
		WithDelay(50),
	)
	router := mm.Router()

	t.Run("route delay", func(t *testing.T) {
		t.Parallel()
		start := time.Now()
		rec := doRequest(router, http.MethodGet, "/slow")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("null variant delay uses the global delay", func(t *testing.T) {
		t.Parallel()
		start := time.Now()
		rec := doRequest(router, http.MethodGet, "/global")
		assert.Equal(t, http.StatusOK, rec.Code)
		elapsed := time.Since(start)
		assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
		assert.Less(t, elapsed, 5*time.Second)
	})
}

// matchSignal is a log output that signals every "request matched" record.
type matchSignal chan struct{}

func (m matchSignal) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte("request matched")) {
		m <- struct{}{}
	}
	return len(p), nil
}

func TestRouter_DelayedResponseKeepsItsVariant(t *testing.T) {
	t.Parallel()

	slow := userRoutes()
	slow[0].Delay = mock.DelayMs(200)
	defs := []mock.CollectionDefinition{
		collection("base", "", "get-user:1"),
		collection("other", "", "get-user:2"),
	}

	tests := []struct {
		name   string
		change func(t *testing.T, mm *MockManager, loadRoutes LoadFunc[mock.RouteDefinition])
	}{
		{"use route variant", func(t *testing.T, mm *MockManager, _ LoadFunc[mock.RouteDefinition]) {
			require.NoError(t, mm.UseRouteVariant("get-user:2"))
		}},
		{"select collection", func(_ *testing.T, mm *MockManager, _ LoadFunc[mock.RouteDefinition]) {
			mm.SelectCollection("other")
		}},
		{"reload", func(_ *testing.T, _ *MockManager, loadRoutes LoadFunc[mock.RouteDefinition]) {
			reloaded := []mock.RouteDefinition{route("get-user", "GET", "/api/user",
				jsonVariant("1", `{"email":"b@x.com"}`),
				jsonVariant("2", `{"email":"b@x.com"}`),
			)}
			loadRoutes(reloaded)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			matched := make(matchSignal, 1)
			mm := NewMockManager(
				WithSelectedCollection("base"),
				WithLogger(logging.New(logging.Config{Level: logging.LevelDebug, Output: matched})),
			)
			require.NoError(t, mm.Init(handlers.DefaultRegistry()))
			loadRoutes, loadCollections := mm.CreateLoaders()
			loadRoutes(slow)
			loadCollections(defs)
			router := mm.Router()

			done := make(chan *httptest.ResponseRecorder, 1)
			go func() { done <- doRequest(router, http.MethodGet, "/api/user") }()

			select {
			case <-matched:
			case <-time.After(5 * time.Second):
				t.Fatal("request was never matched")
			}
			tt.change(t, mm, loadRoutes)

			rec := <-done
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"email":"a@x.com"}`, rec.Body.String(), "in-flight request answers with the variant it matched")

			go func() { done <- doRequest(router, http.MethodGet, "/api/user") }()
			<-matched
			assert.JSONEq(t, `{"email":"b@x.com"}`, (<-done).Body.String())
		})
	}
}

func TestRouter_DelayCancelledWithRequest(t *testing.T) {
	t.Parallel()

	mm := newLoadedManager(t, userRoutes(),
		[]mock.CollectionDefinition{collection("base", "", "get-user:1")},
		WithDelay(10_000),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/user", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	start := time.Now()
	mm.Router().ServeHTTP(rec, req)
	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, rec.Body.String())
}

func TestMockManager_HasMatch(t *testing.T) {
	t.Parallel()

	mm := newLoadedManager(t, userRoutes(), []mock.CollectionDefinition{collection("base", "", "get-user:1")})

	assert.True(t, mm.HasMatch(httptest.NewRequest(http.MethodGet, "/api/user", nil)))
	assert.False(t, mm.HasMatch(httptest.NewRequest(http.MethodOptions, "/api/user", nil)))
}
