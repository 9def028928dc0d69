package admin

import "net/http"

// registerRoutes sets up all API routes.
func (a *API) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET "+BasePath+"/about", a.handleAbout)
	mux.HandleFunc("GET "+BasePath+"/alerts", a.handleAlerts)

	mux.HandleFunc("GET "+BasePath+"/config", a.handleGetConfig)
	mux.HandleFunc("PATCH "+BasePath+"/config", a.handlePatchConfig)

	// Ids may contain slashes (generated OpenAPI routes), so they take the rest of the path.
	mux.HandleFunc("GET "+BasePath+"/mock/routes", a.handleListRoutes)
	mux.HandleFunc("GET "+BasePath+"/mock/routes/{id...}", a.handleGetRoute)
	mux.HandleFunc("GET "+BasePath+"/mock/variants", a.handleListVariants)
	mux.HandleFunc("GET "+BasePath+"/mock/variants/{id...}", a.handleGetVariant)
	mux.HandleFunc("GET "+BasePath+"/mock/collections", a.handleListCollections)
	mux.HandleFunc("GET "+BasePath+"/mock/collections/{id...}", a.handleGetCollection)

	mux.HandleFunc("GET "+BasePath+"/mock/custom-route-variants", a.handleListCustomRouteVariants)
	mux.HandleFunc("POST "+BasePath+"/mock/custom-route-variants", a.handleAddCustomRouteVariant)
	mux.HandleFunc("DELETE "+BasePath+"/mock/custom-route-variants", a.handleRestoreRouteVariants)

	mux.HandleFunc(BasePath+"/", a.handleNotFound)
}
