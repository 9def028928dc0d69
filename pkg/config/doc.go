// Package config loads mock definitions from a mocks folder and watches it
// for changes.
//
// A mocks folder looks like this:
//
//	mocks/
//	├── collections.json      (or .yaml / .yml)
//	└── routes/
//	    ├── users.json
//	    └── admin/
//	        └── settings.yaml
//
// Every route file holds an array of routes and the collections file an array
// of collections, in the same format in JSON and YAML:
//
//	- id: get-user
//	  method: GET
//	  path: /api/users/:id
//	  variants:
//	    - id: success
//	      handlerType: json
//	      options:
//	        status: 200
//	        body: {id: 1, name: John}
//
// FilesLoader reads the whole folder and pushes the definitions to the load
// functions of a mock manager. Problems with single files or entries become
// alerts, so one broken file never prevents the others from loading.
//
// Watcher re-runs the loader when files change:
//
//	loadRoutes, loadCollections := mm.CreateLoaders()
//	loader := config.NewFilesLoader("mocks", loadRoutes, loadCollections)
//	if err := loader.Load(); err != nil {
//	    return err
//	}
//	w, err := config.NewWatcher(config.WatcherConfig{
//	    BaseDir: loader.Path(),
//	    OnChange: func(context.Context, []string) error { return loader.Load() },
//	})
//	go w.Run(ctx)
package config
