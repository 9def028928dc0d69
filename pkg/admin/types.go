package admin

import "github.com/mocks-server/main/pkg/httputil"

// AboutResponse is returned by GET /api/about.
type AboutResponse struct {
	Version string `json:"version"`
	Uptime  int    `json:"uptime"`
}

// ConfigResponse is returned by GET /api/config.
type ConfigResponse struct {
	Mock MockConfig `json:"mock"`
}

// MockConfig holds the runtime options of the mock.
type MockConfig struct {
	Collections CollectionsConfig `json:"collections"`
	Routes      RoutesConfig      `json:"routes"`
}

// CollectionsConfig holds the collection options.
type CollectionsConfig struct {
	Selected string `json:"selected"`
}

// RoutesConfig holds the route options.
type RoutesConfig struct {
	// Delay is the global delay in milliseconds.
	Delay int `json:"delay"`
}

// ConfigPatch is the body of PATCH /api/config. Absent fields are left unchanged.
type ConfigPatch struct {
	Mock *MockConfigPatch `json:"mock,omitempty"`
}

// MockConfigPatch is the mock part of a ConfigPatch.
type MockConfigPatch struct {
	Collections *CollectionsConfigPatch `json:"collections,omitempty"`
	Routes      *RoutesConfigPatch      `json:"routes,omitempty"`
}

// CollectionsConfigPatch is the collections part of a ConfigPatch.
type CollectionsConfigPatch struct {
	Selected *string `json:"selected,omitempty"`
}

// RoutesConfigPatch is the routes part of a ConfigPatch.
type RoutesConfigPatch struct {
	Delay *int `json:"delay,omitempty"`
}

// CustomRouteVariantRequest is the body of POST /api/mock/custom-route-variants.
type CustomRouteVariantRequest struct {
	ID string `json:"id"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse = httputil.ErrorBody
