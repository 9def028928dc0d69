package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mocks-server/main/pkg/handlers"
	"github.com/mocks-server/main/pkg/mock"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New(handlers.DefaultRegistry())
	require.NoError(t, err)
	return v
}

func route(t *testing.T, data string) mock.RouteDefinition {
	t.Helper()
	var r mock.RouteDefinition
	require.NoError(t, json.Unmarshal([]byte(data), &r))
	return r
}

func variant(t *testing.T, data string) mock.VariantDefinition {
	t.Helper()
	var v mock.VariantDefinition
	require.NoError(t, json.Unmarshal([]byte(data), &v))
	return v
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires a registry", func(t *testing.T) {
		t.Parallel()
		_, err := New(nil)
		assert.Error(t, err)
	})

	t.Run("fails on invalid handler schema", func(t *testing.T) {
		t.Parallel()
		registry, err := handlers.NewRegistry(handlers.Definition{
			ID:     "broken",
			Schema: json.RawMessage(`{"type": 12}`),
			New: func(json.RawMessage, handlers.Env) (handlers.Handler, error) {
				return nil, nil
			},
		})
		require.NoError(t, err)
		_, err = New(registry)
		assert.ErrorContains(t, err, "broken")
	})
}

func TestValidateRoute(t *testing.T) {
	t.Parallel()
	v := newValidator(t)

	tests := []struct {
		name  string
		route string
		valid bool
	}{
		{name: "valid", route: `{"id": "users", "method": "get", "path": "/api/users"}`, valid: true},
		{name: "method list", route: `{"id": "users", "method": ["get", "post"], "path": "/api/users"}`, valid: true},
		{name: "any method", route: `{"id": "users", "method": "*", "path": "/api/users"}`, valid: true},
		{name: "regexp path", route: `{"id": "users", "method": "get", "path": {"regexp": "^/api/users/\\d+$"}}`, valid: true},
		{name: "null delay", route: `{"id": "users", "method": "get", "path": "/a", "delay": null}`, valid: true},
		{name: "zero delay", route: `{"id": "users", "method": "get", "path": "/a", "delay": 0}`, valid: true},
		{name: "missing id", route: `{"method": "get", "path": "/api/users"}`},
		{name: "unknown method", route: `{"id": "users", "method": "fetch", "path": "/api/users"}`},
		{name: "duplicated methods", route: `{"id": "users", "method": ["get", "GET"], "path": "/api/users"}`},
		{name: "empty method list", route: `{"id": "users", "method": [], "path": "/api/users"}`},
		{name: "missing path", route: `{"id": "users", "method": "get"}`},
		{name: "invalid regexp", route: `{"id": "users", "method": "get", "path": {"regexp": "("}}`},
		{name: "negative delay", route: `{"id": "users", "method": "get", "path": "/a", "delay": -1}`},
		{name: "longest delay", route: `{"id": "users", "method": "get", "path": "/a", "delay": 86400000}`, valid: true},
		{name: "delay too long", route: `{"id": "users", "method": "get", "path": "/a", "delay": 86400001}`},
		{name: "delay overflowing a duration", route: `{"id": "users", "method": "get", "path": "/a", "delay": 10000000000000}`},
		{name: "fractional delay", route: `{"id": "users", "method": "get", "path": "/a", "delay": 1.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			diags := v.ValidateRoute(route(t, tt.route))
			if tt.valid {
				assert.Nil(t, diags)
				return
			}
			require.NotNil(t, diags)
			assert.NotEmpty(t, diags.Errors)
			assert.NotEmpty(t, diags.Error())
		})
	}
}

func TestValidateRoute_IgnoresVariants(t *testing.T) {
	t.Parallel()
	v := newValidator(t)

	r := route(t, `{"id": "users", "method": "get", "path": "/a", "variants": [{"type": "json"}]}`)
	assert.Nil(t, v.ValidateRoute(r))
}

func TestValidateVariant(t *testing.T) {
	t.Parallel()
	v := newValidator(t)

	t.Run("valid json variant", func(t *testing.T) {
		t.Parallel()
		diags := v.ValidateVariant(variant(t, `{"id": "1", "handlerType": "json", "options": {"status": 200, "body": {"a": 1}}}`))
		assert.Nil(t, diags)
	})

	t.Run("legacy type key selects the handler", func(t *testing.T) {
		t.Parallel()
		diags := v.ValidateVariant(variant(t, `{"id": "1", "type": "file", "options": {"status": 200, "path": "a.json"}}`))
		assert.Nil(t, diags)
	})

	t.Run("default type accepts no options", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, v.ValidateVariant(mock.VariantDefinition{ID: "1"}))
	})

	t.Run("unknown handler", func(t *testing.T) {
		t.Parallel()
		diags := v.ValidateVariant(variant(t, `{"id": "1", "handlerType": "no-such-handler", "options": {"status": 201}}`))
		require.NotNil(t, diags)
		require.Len(t, diags.Errors, 1)
		assert.Equal(t, "handlerType", diags.Errors[0].Field)
		assert.Equal(t, ErrCodeHandler, diags.Errors[0].Code)
	})

	t.Run("options are checked against the handler schema", func(t *testing.T) {
		t.Parallel()
		diags := v.ValidateVariant(variant(t, `{"id": "1", "handlerType": "json", "options": {"body": {}}}`))
		require.NotNil(t, diags)
		for _, e := range diags.Errors {
			assert.True(t, strings.HasPrefix(e.Field, "options"), e.Field)
		}
	})

	t.Run("disabled variants skip options", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, v.ValidateVariant(variant(t, `{"id": "1", "type": "json", "disabled": true}`)))
	})

	t.Run("missing id and negative delay", func(t *testing.T) {
		t.Parallel()
		diags := v.ValidateVariant(variant(t, `{"type": "status", "delay": -5, "options": {"status": 200}}`))
		require.NotNil(t, diags)
		assert.GreaterOrEqual(t, len(diags.Errors), 2)
	})
}

func TestValidateCollection(t *testing.T) {
	t.Parallel()
	v := newValidator(t)

	assert.Nil(t, v.ValidateCollection(mock.CollectionDefinition{ID: "base", Routes: []string{"a:1"}}))
	assert.Nil(t, v.ValidateCollection(mock.CollectionDefinition{ID: "base", Routes: []string{}}))
	assert.Nil(t, v.ValidateCollection(mock.CollectionDefinition{ID: "legacy", RouteVariants: []string{"a:1"}}))
	assert.Nil(t, v.ValidateCollection(mock.CollectionDefinition{ID: "child", From: "base", Routes: []string{}}))

	assert.NotNil(t, v.ValidateCollection(mock.CollectionDefinition{Routes: []string{}}))
	assert.NotNil(t, v.ValidateCollection(mock.CollectionDefinition{ID: "no-routes"}))
}

func TestValidateCollectionReferences(t *testing.T) {
	t.Parallel()
	v := newValidator(t)

	known := map[string]string{
		"users:success": "users",
		"users:error":   "users",
		"books:success": "books",
	}
	routeOf := func(id string) (string, bool) {
		r, ok := known[id]
		return r, ok
	}

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		c := mock.CollectionDefinition{ID: "base", Routes: []string{"users:success", "books:success"}}
		assert.Nil(t, v.ValidateCollectionReferences(c, routeOf))
	})

	t.Run("missing and duplicated routes", func(t *testing.T) {
		t.Parallel()
		c := mock.CollectionDefinition{ID: "base", Routes: []string{"users:success", "users:error", "authors:success"}}
		diags := v.ValidateCollectionReferences(c, routeOf)
		require.NotNil(t, diags)
		require.Len(t, diags.Errors, 2)

		assert.Equal(t, "routes.1", diags.Errors[0].Field)
		assert.Equal(t, ErrCodeDuplicated, diags.Errors[0].Code)
		assert.Equal(t, "routes.2", diags.Errors[1].Field)
		assert.Equal(t, ErrCodeNotFound, diags.Errors[1].Code)
	})

	t.Run("legacy alias field", func(t *testing.T) {
		t.Parallel()
		c := mock.CollectionDefinition{ID: "base", RouteVariants: []string{"unknown:1"}}
		diags := v.ValidateCollectionReferences(c, routeOf)
		require.NotNil(t, diags)
		assert.Equal(t, "routeVariants.0", diags.Errors[0].Field)
	})
}

func TestDiagnostics_Error(t *testing.T) {
	t.Parallel()

	d := &Diagnostics{}
	d.Add(&FieldError{Field: "id", Code: ErrCodeRequired, Message: "is required"})
	d.Merge("options", &Diagnostics{Errors: []*FieldError{
		{Code: ErrCodeRequired, Message: "missing properties: 'status'"},
		{Field: "body", Code: ErrCodeType, Message: "expected string"},
	}})

	assert.Equal(t, "id: is required. options: missing properties: 'status'. options.body: expected string", d.Error())
}
