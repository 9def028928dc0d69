package openapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mocks-server/main/pkg/alerts"
	"github.com/mocks-server/main/pkg/logging"
	"github.com/mocks-server/main/pkg/mock"
)

// Layout of the OpenAPI documents inside a mocks folder.
const (
	Dir     = "openapi"
	Pattern = "*.{json,yaml,yml}"

	// DefaultCollectionID is the id of the generated collection.
	DefaultCollectionID = "openapi"
)

// Loader turns the OpenAPI documents of <path>/openapi into routes and one
// collection, and pushes them to a pair of load functions.
type Loader struct {
	path            string
	collectionID    string
	from            string
	log             *slog.Logger
	alerts          *alerts.Alerts
	loadRoutes      func([]mock.RouteDefinition)
	loadCollections func([]mock.CollectionDefinition)

	mu sync.Mutex
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithAlerts sets the alerts root. The loader uses its "openapi" collection.
func WithAlerts(root *alerts.Alerts) Option {
	return func(l *Loader) {
		if root != nil {
			l.alerts = root.Collection("openapi")
		}
	}
}

// WithCollection changes the id of the generated collection and the
// collection it inherits from.
func WithCollection(id, from string) Option {
	return func(l *Loader) {
		if id != "" {
			l.collectionID = id
		}
		l.from = from
	}
}

// NewLoader creates a loader for the mocks folder at path.
func NewLoader(path string, loadRoutes func([]mock.RouteDefinition), loadCollections func([]mock.CollectionDefinition), opts ...Option) *Loader {
	l := &Loader{
		path:            path,
		collectionID:    DefaultCollectionID,
		log:             logging.Nop(),
		loadRoutes:      loadRoutes,
		loadCollections: loadCollections,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.alerts == nil {
		l.alerts = alerts.New("openapi", l.log)
	}
	return l
}

// Dir returns the folder the documents are read from.
func (l *Loader) Dir() string {
	return filepath.Join(l.path, Dir)
}

// Alerts returns the "openapi" alerts collection.
func (l *Loader) Alerts() *alerts.Alerts {
	return l.alerts
}

// Files returns the documents of the folder, relative to it, sorted.
// A missing folder has no documents.
func (l *Loader) Files() ([]string, error) {
	dir := l.Dir()
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	files, err := doublestar.Glob(os.DirFS(dir), Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern: %w", err)
	}
	slices.Sort(files)
	return files, nil
}

// Load reads every document and pushes the routes and the collection.
// Invalid documents become alerts; definitions are always pushed, so the mock
// manager never waits for this source.
func (l *Loader) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.alerts.Clean()

	files, err := l.Files()
	if err != nil {
		l.loadRoutes(nil)
		l.loadCollections(nil)
		return err
	}

	var routes []mock.RouteDefinition
	for _, rel := range files {
		doc, err := l.loadDocument(ctx, filepath.Join(l.Dir(), filepath.FromSlash(rel)))
		if err != nil {
			l.alerts.Set(rel, fmt.Sprintf("Error loading OpenAPI document '%s'", rel), err)
			continue
		}
		converted := Routes(doc)
		l.log.Debug("openapi document loaded", "file", rel, "routes", len(converted))
		routes = append(routes, converted...)
	}

	var collections []mock.CollectionDefinition
	if len(routes) > 0 {
		collections = []mock.CollectionDefinition{Collection(l.collectionID, l.from, routes)}
	}

	if len(files) > 0 {
		l.log.Info("openapi documents loaded", "documents", len(files), "routes", len(routes))
	}

	l.loadRoutes(routes)
	l.loadCollections(collections)
	return nil
}

func (l *Loader) loadDocument(ctx context.Context, path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = true

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return doc, nil
}

// Collection builds a collection holding the first variant of every route.
func Collection(id, from string, routes []mock.RouteDefinition) mock.CollectionDefinition {
	ids := []string{}
	for _, r := range routes {
		if len(r.Variants) > 0 {
			ids = append(ids, mock.VariantID(r.ID, r.Variants[0].ID))
		}
	}
	return mock.CollectionDefinition{ID: id, From: from, Routes: ids}
}
