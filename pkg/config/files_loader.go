package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mocks-server/main/pkg/alerts"
	"github.com/mocks-server/main/pkg/logging"
	"github.com/mocks-server/main/pkg/mock"
)

// Layout of a mocks folder.
const (
	RoutesDir      = "routes"
	RoutesPattern  = RoutesDir + "/**/*.{json,yaml,yml}"
	collectionBase = "collections"
)

// collectionFiles are tried in order; the first one found is used.
var collectionFiles = []string{collectionBase + ".json", collectionBase + ".yaml", collectionBase + ".yml"}

// FilesLoader reads route and collection definitions from a mocks folder and
// pushes them to a pair of load functions.
//
//	<path>/routes/**/*.{json,yaml,yml}   arrays of routes
//	<path>/collections.{json,yaml,yml}   array of collections
//
// Unreadable files and undecodable entries are reported as alerts under
// "files:load" and skipped; everything else is still loaded.
type FilesLoader struct {
	path            string
	log             *slog.Logger
	alerts          *alerts.Alerts
	loadRoutes      func([]mock.RouteDefinition)
	loadCollections func([]mock.CollectionDefinition)

	// mu serialises loads triggered by the watcher and by callers.
	mu sync.Mutex
}

// FilesLoaderOption configures a FilesLoader.
type FilesLoaderOption func(*FilesLoader)

// WithFilesLogger sets the operational logger.
func WithFilesLogger(log *slog.Logger) FilesLoaderOption {
	return func(l *FilesLoader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithFilesAlerts sets the alerts root. The loader uses its "files" collection.
func WithFilesAlerts(root *alerts.Alerts) FilesLoaderOption {
	return func(l *FilesLoader) {
		if root != nil {
			l.alerts = root.Collection("files")
		}
	}
}

// NewFilesLoader creates a loader for the mocks folder at path.
func NewFilesLoader(path string, loadRoutes func([]mock.RouteDefinition), loadCollections func([]mock.CollectionDefinition), opts ...FilesLoaderOption) *FilesLoader {
	l := &FilesLoader{
		path:            path,
		log:             logging.Nop(),
		loadRoutes:      loadRoutes,
		loadCollections: loadCollections,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.alerts == nil {
		l.alerts = alerts.New("files", l.log)
	}
	return l
}

// Path returns the mocks folder.
func (l *FilesLoader) Path() string {
	return l.path
}

// Alerts returns the "files" alerts collection.
func (l *FilesLoader) Alerts() *alerts.Alerts {
	return l.alerts
}

// Load reads the whole mocks folder and pushes routes and collections.
// It only fails when the folder itself cannot be read.
func (l *FilesLoader) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, err := os.Stat(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, l.path)
		}
		return fmt.Errorf("failed to access mocks folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("mocks path is not a directory: %s", l.path)
	}

	loadAlerts := l.alerts.Collection("load")
	loadAlerts.Clean()

	routes, routeFiles := l.readRoutes(loadAlerts)
	collections := l.readCollections(loadAlerts)

	l.log.Info("definition files loaded",
		"path", l.path,
		"route_files", routeFiles,
		"routes", len(routes),
		"collections", len(collections),
	)

	l.loadRoutes(routes)
	l.loadCollections(collections)
	return nil
}

// RouteFiles returns the route files of the folder, relative to it, sorted.
func (l *FilesLoader) RouteFiles() ([]string, error) {
	files, err := doublestar.Glob(os.DirFS(l.path), RoutesPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern: %w", err)
	}
	slices.Sort(files)
	return files, nil
}

func (l *FilesLoader) readRoutes(loadAlerts *alerts.Alerts) ([]mock.RouteDefinition, int) {
	files, err := l.RouteFiles()
	if err != nil {
		loadAlerts.Set(RoutesDir, "Error searching route files", err)
		return nil, 0
	}

	var routes []mock.RouteDefinition
	for _, rel := range files {
		defs, entryErrs, err := LoadRoutesFile(filepath.Join(l.path, filepath.FromSlash(rel)))
		if err != nil {
			loadAlerts.Set(rel, fmt.Sprintf("Error loading routes from file '%s'", rel), err)
			continue
		}
		for _, entryErr := range entryErrs {
			loadAlerts.Collection(rel).Set(fmt.Sprint(entryErr.Index), fmt.Sprintf("Error decoding route %d of file '%s'", entryErr.Index, rel), entryErr)
		}
		l.log.Debug("route file loaded", "file", rel, "routes", len(defs))
		routes = append(routes, defs...)
	}
	return routes, len(files)
}

func (l *FilesLoader) readCollections(loadAlerts *alerts.Alerts) []mock.CollectionDefinition {
	for _, name := range collectionFiles {
		path := filepath.Join(l.path, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		defs, entryErrs, err := LoadCollectionsFile(path)
		if err != nil {
			loadAlerts.Set(name, fmt.Sprintf("Error loading collections from file '%s'", name), err)
			return nil
		}
		for _, entryErr := range entryErrs {
			loadAlerts.Collection(name).Set(fmt.Sprint(entryErr.Index), fmt.Sprintf("Error decoding collection %d of file '%s'", entryErr.Index, name), entryErr)
		}
		return defs
	}

	loadAlerts.Set(collectionBase, fmt.Sprintf("No collections file found in '%s'", l.path), nil)
	return nil
}
