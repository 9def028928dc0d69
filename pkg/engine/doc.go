// Package engine resolves mock definitions into a servable mock and serves it.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────┐
//	│  Definition sources (files loader, OpenAPI, Go code)          │
//	│        │ loadRoutes([]RouteDefinition)                        │
//	│        │ loadCollections([]CollectionDefinition)              │
//	│        ▼                                                      │
//	│  ┌────────────────────────────────────────────────────────┐   │
//	│  │ MockManager                                            │   │
//	│  │   Loaders ─► ResolveRouteVariants ─► ResolveCollections│   │
//	│  │                     │                                  │   │
//	│  │                     ▼                                  │   │
//	│  │   snapshot (selected collection + custom variants)     │   │
//	│  └────────────────────────────────────────────────────────┘   │
//	│        │ Router()                                             │
//	│        ▼                                                      │
//	│  Server (CORS ─► router ─► variant handler)                   │
//	└──────────────────────────────────────────────────────────────┘
//
// Every definition source gets its own pair of load functions from
// CreateLoaders. The manager rebuilds everything whenever a source pushes new
// definitions, once both routes and collections have been pushed at least
// once. Invalid routes, variants and collections never stop a load: they are
// skipped and reported as alerts.
//
// # Basic Usage
//
//	mm := engine.NewMockManager(engine.WithSelectedCollection("base"))
//	if err := mm.Init(handlers.DefaultRegistry()); err != nil {
//	    return err
//	}
//	loadRoutes, loadCollections := mm.CreateLoaders()
//	loadRoutes(routes)
//	loadCollections(collections)
//
//	srv := engine.NewServer(mm, engine.ServerConfig{Port: 3100})
//	srv.Start()
//	defer srv.Stop(ctx)
//
// At runtime the served variants can be changed with SelectCollection,
// UseRouteVariant and RestoreRouteVariants. Each change is published
// atomically, so a request is always answered by one consistent state.
package engine
