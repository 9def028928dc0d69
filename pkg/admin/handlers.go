package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/mocks-server/main/pkg/engine"
	"github.com/mocks-server/main/pkg/httputil"
	"github.com/mocks-server/main/pkg/mock"
)

// maxBodySize limits request bodies.
const maxBodySize = 1 << 20

// decodeJSONBody decodes a JSON request body into dst, rejecting unknown fields.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.WriteError(w, http.StatusRequestEntityTooLarge, httputil.CodeBodyTooLarge, "Request body too large")
			return false
		}
		httputil.WriteBadRequest(w, httputil.CodeInvalidJSON, "Invalid JSON in request body: "+err.Error())
		return false
	}
	return true
}

// handleAbout handles GET /api/about.
func (a *API) handleAbout(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, AboutResponse{
		Version: a.version,
		Uptime:  a.Uptime(),
	})
}

// handleAlerts handles GET /api/alerts.
func (a *API) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, a.alerts.Flat())
}

// handleGetConfig handles GET /api/config.
func (a *API) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, a.config())
}

func (a *API) config() ConfigResponse {
	return ConfigResponse{Mock: MockConfig{
		Collections: CollectionsConfig{Selected: a.mock.SelectedCollection()},
		Routes:      RoutesConfig{Delay: a.mock.Delay()},
	}}
}

// handlePatchConfig handles PATCH /api/config.
func (a *API) handlePatchConfig(w http.ResponseWriter, r *http.Request) {
	var patch ConfigPatch
	if !decodeJSONBody(w, r, &patch) {
		return
	}
	if patch.Mock == nil {
		httputil.WriteNoContent(w)
		return
	}

	if routes := patch.Mock.Routes; routes != nil && routes.Delay != nil && (*routes.Delay < 0 || *routes.Delay > mock.MaxDelayMs) {
		httputil.WriteBadRequest(w, httputil.CodeValidation, fmt.Sprintf("mock.routes.delay must be between 0 and %d", mock.MaxDelayMs))
		return
	}

	if routes := patch.Mock.Routes; routes != nil && routes.Delay != nil {
		a.mock.SetDelay(*routes.Delay)
		a.log.Info("global delay changed", "delay", *routes.Delay)
	}
	if collections := patch.Mock.Collections; collections != nil && collections.Selected != nil {
		a.mock.SelectCollection(*collections.Selected)
		a.log.Info("collection selected", "collection", *collections.Selected)
	}
	httputil.WriteNoContent(w)
}

// handleListRoutes handles GET /api/mock/routes.
func (a *API) handleListRoutes(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, a.mock.PlainRoutes())
}

// handleGetRoute handles GET /api/mock/routes/{id}.
func (a *API) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	routes := a.mock.PlainRoutes()
	i := slices.IndexFunc(routes, func(p mock.PlainRoute) bool { return p.ID == id })
	if i < 0 {
		httputil.WriteNotFound(w, httputil.CodeNotFound, fmt.Sprintf("Route with id '%s' was not found", id))
		return
	}
	httputil.WriteOK(w, routes[i])
}

// handleListVariants handles GET /api/mock/variants.
func (a *API) handleListVariants(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, a.mock.PlainVariants())
}

// handleGetVariant handles GET /api/mock/variants/{id}.
func (a *API) handleGetVariant(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	variants := a.mock.PlainVariants()
	i := slices.IndexFunc(variants, func(p mock.PlainVariant) bool { return p.ID == id })
	if i < 0 {
		httputil.WriteNotFound(w, httputil.CodeNotFound, fmt.Sprintf("Route variant with id '%s' was not found", id))
		return
	}
	httputil.WriteOK(w, variants[i])
}

// handleListCollections handles GET /api/mock/collections.
func (a *API) handleListCollections(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, a.mock.PlainCollections())
}

// handleGetCollection handles GET /api/mock/collections/{id}.
func (a *API) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	collections := a.mock.PlainCollections()
	i := slices.IndexFunc(collections, func(p mock.PlainCollection) bool { return p.ID == id })
	if i < 0 {
		httputil.WriteNotFound(w, httputil.CodeNotFound, fmt.Sprintf("Collection with id '%s' was not found", id))
		return
	}
	httputil.WriteOK(w, collections[i])
}

// handleListCustomRouteVariants handles GET /api/mock/custom-route-variants.
func (a *API) handleListCustomRouteVariants(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, a.mock.CustomRouteVariants())
}

// handleAddCustomRouteVariant handles POST /api/mock/custom-route-variants.
func (a *API) handleAddCustomRouteVariant(w http.ResponseWriter, r *http.Request) {
	var req CustomRouteVariantRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.ID == "" {
		httputil.WriteBadRequest(w, httputil.CodeValidation, "id is required")
		return
	}

	if err := a.mock.UseRouteVariant(req.ID); err != nil {
		if errors.Is(err, engine.ErrRouteVariantNotFound) {
			httputil.WriteBadRequest(w, httputil.CodeRouteVariantNotFound, fmt.Sprintf("Route variant with id '%s' was not found", req.ID))
			return
		}
		a.log.Error("failed to use route variant", "id", req.ID, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "An internal error occurred")
		return
	}
	httputil.WriteNoContent(w)
}

// handleRestoreRouteVariants handles DELETE /api/mock/custom-route-variants.
func (a *API) handleRestoreRouteVariants(w http.ResponseWriter, _ *http.Request) {
	a.mock.RestoreRouteVariants()
	httputil.WriteNoContent(w)
}

func (a *API) handleNotFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteRouteNotFound(w, r)
}
