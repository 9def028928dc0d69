package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/mocks-server/main/pkg/alerts"
	"github.com/mocks-server/main/pkg/handlers"
	"github.com/mocks-server/main/pkg/logging"
	"github.com/mocks-server/main/pkg/mock"
	"github.com/mocks-server/main/pkg/validation"
)

// Sentinel errors returned by MockManager operations.
var (
	// ErrNotInitialized is returned by operations that need Init to have run.
	ErrNotInitialized = errors.New("mock manager is not initialized")

	// ErrAlreadyInitialized is returned when Init is called twice.
	ErrAlreadyInitialized = errors.New("mock manager is already initialized")

	// ErrRouteVariantNotFound is returned by UseRouteVariant for unknown ids.
	ErrRouteVariantNotFound = errors.New("route variant not found")
)

// State is the lifecycle state of a MockManager.
type State int32

// Lifecycle states. A manager goes back to StateLoading during every reload.
const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// snapshot is one immutable view of the resolved mock. It is replaced, never
// modified, once published.
type snapshot struct {
	routes          []*Route
	variants        []*RouteVariant
	variantsByID    map[string]*RouteVariant
	collections     []*Collection
	collectionsByID map[string]*Collection
	selected        *Collection
	custom          []string

	// effective is the dispatch order: the selected collection with custom variants on top.
	effective []*RouteVariant
}

func newSnapshot(routes []*Route, variants []*RouteVariant, collections []*Collection) *snapshot {
	s := &snapshot{
		routes:          routes,
		variants:        variants,
		variantsByID:    make(map[string]*RouteVariant, len(variants)),
		collections:     collections,
		collectionsByID: make(map[string]*Collection, len(collections)),
	}
	for _, rv := range variants {
		s.variantsByID[rv.ID] = rv
	}
	for _, c := range collections {
		s.collectionsByID[c.ID] = c
	}
	return s
}

// derive returns a shallow copy sharing the resolved definitions.
func (s *snapshot) derive() *snapshot {
	next := *s
	return &next
}

// applyCustom recomputes effective from selected and custom.
func (s *snapshot) applyCustom() {
	var effective []*RouteVariant
	if s.selected != nil {
		effective = slices.Clone(s.selected.RouteVariants)
	}
	for _, id := range s.custom {
		rv := s.variantsByID[id]
		idx := slices.IndexFunc(effective, func(e *RouteVariant) bool { return e.RouteID == rv.RouteID })
		if idx >= 0 {
			effective[idx] = rv
		} else {
			effective = append(effective, rv)
		}
	}
	s.effective = effective
}

// Option configures a MockManager.
type Option func(*MockManager)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(mm *MockManager) {
		if log != nil {
			mm.log = log
		}
	}
}

// WithAlerts sets the alerts root. The manager uses its "mock" collection.
func WithAlerts(root *alerts.Alerts) Option {
	return func(mm *MockManager) {
		if root != nil {
			mm.alertsRoot = root
		}
	}
}

// WithSelectedCollection sets the collection selected on load.
func WithSelectedCollection(id string) Option {
	return func(mm *MockManager) {
		mm.selectedOption = id
	}
}

// WithDelay sets the global delay in milliseconds.
func WithDelay(ms int) Option {
	return func(mm *MockManager) {
		mm.delay.Store(int64(ms))
	}
}

// WithFilesPath sets the base directory handlers resolve relative files against.
func WithFilesPath(path string) Option {
	return func(mm *MockManager) {
		mm.filesPath = path
	}
}

// MockManager holds the resolved routes, route variants and collections, the
// selected collection and the custom route variants, and serves requests
// through Router.
//
// Mutations are serialised; each one publishes a new snapshot atomically, so
// readers and in-flight requests always see a consistent state.
type MockManager struct {
	// mu serialises every mutation.
	mu        sync.Mutex
	log       *slog.Logger
	filesPath string
	validator *validation.Validator
	state     atomic.Int32

	alertsRoot       *alerts.Alerts
	alerts           *alerts.Alerts
	routeAlerts      *alerts.Alerts
	collectionAlerts *alerts.Alerts
	selectionAlerts  *alerts.Alerts

	routeLoaders      *Loaders[mock.RouteDefinition]
	collectionLoaders *Loaders[mock.CollectionDefinition]
	routesLoaded      bool
	collectionsLoaded bool

	selectedOption string
	delay          atomic.Int64

	current atomic.Pointer[snapshot]

	listenersMu    sync.Mutex
	listeners      []changeListener
	nextListenerID int
}

type changeListener struct {
	id int
	fn func()
}

// NewMockManager creates an uninitialized manager.
func NewMockManager(opts ...Option) *MockManager {
	mm := &MockManager{
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(mm)
	}
	if mm.alertsRoot == nil {
		mm.alertsRoot = alerts.New("", mm.log)
	}

	mm.alerts = mm.alertsRoot.Collection("mock")
	mm.routeAlerts = mm.alerts.Collection("routes").Collection("load")
	mm.collectionAlerts = mm.alerts.Collection("collections").Collection("load")
	mm.selectionAlerts = mm.alerts.Collection("collections")

	mm.routeLoaders = NewLoaders[mock.RouteDefinition](func() { mm.definitionsLoaded(&mm.routesLoaded) })
	mm.collectionLoaders = NewLoaders[mock.CollectionDefinition](func() { mm.definitionsLoaded(&mm.collectionsLoaded) })
	return mm
}

// Init compiles the validator for registry. Definitions already pushed are
// loaded immediately if both routes and collections have been reported.
func (mm *MockManager) Init(registry *handlers.Registry) error {
	validator, err := validation.New(registry)
	if err != nil {
		return fmt.Errorf("failed to initialize mock: %w", err)
	}

	mm.mu.Lock()
	if mm.State() != StateUninitialized {
		mm.mu.Unlock()
		return ErrAlreadyInitialized
	}
	mm.validator = validator
	mm.state.Store(int32(StateLoading))
	changed := mm.loadLocked()
	mm.mu.Unlock()

	if changed {
		mm.notify()
	}
	return nil
}

// CreateLoaders returns a new pair of load functions, one for routes and one
// for collections. Every definition source should use its own pair.
func (mm *MockManager) CreateLoaders() (LoadFunc[mock.RouteDefinition], LoadFunc[mock.CollectionDefinition]) {
	return mm.routeLoaders.Create(), mm.collectionLoaders.Create()
}

// Load rebuilds the mock from the latest definitions. It does nothing until
// both routes and collections have been loaded at least once.
func (mm *MockManager) Load() error {
	mm.mu.Lock()
	if mm.State() == StateUninitialized {
		mm.mu.Unlock()
		return ErrNotInitialized
	}
	changed := mm.loadLocked()
	mm.mu.Unlock()

	if changed {
		mm.notify()
	}
	return nil
}

func (mm *MockManager) definitionsLoaded(flag *bool) {
	mm.mu.Lock()
	*flag = true
	changed := mm.loadLocked()
	mm.mu.Unlock()

	if changed {
		mm.notify()
	}
}

// loadLocked resolves everything again and publishes the result.
// Returns false when the manager is not ready to load.
func (mm *MockManager) loadLocked() bool {
	if mm.validator == nil || !mm.routesLoaded || !mm.collectionsLoaded {
		return false
	}
	mm.state.Store(int32(StateLoading))

	env := handlers.Env{FilesPath: mm.filesPath, Logger: logging.Component(mm.log, "handler")}
	routes, variants := ResolveRouteVariants(mm.routeLoaders.Definitions(), mm.validator, env, mm.routeAlerts)
	collections := ResolveCollections(mm.collectionLoaders.Definitions(), variants, mm.validator, mm.collectionAlerts)

	next := newSnapshot(routes, variants, collections)
	if prev := mm.current.Load(); prev != nil {
		for _, id := range prev.custom {
			if _, ok := next.variantsByID[id]; ok {
				next.custom = append(next.custom, id)
			} else {
				mm.log.Info("custom route variant no longer exists, removing it", "variant", id)
			}
		}
	}
	mm.selectLocked(next, mm.selectedOption)
	next.applyCustom()

	mm.current.Store(next)
	mm.state.Store(int32(StateReady))

	mm.log.Info("mock loaded",
		"routes", len(routes),
		"variants", len(variants),
		"collections", len(collections),
		"selected", mm.selectedID(next),
	)
	return true
}

// selectLocked sets the selected collection of s, falling back to the first one.
func (mm *MockManager) selectLocked(s *snapshot, id string) {
	if len(s.collections) == 0 {
		s.selected = nil
		mm.selectionAlerts.Remove("selected")
		mm.selectionAlerts.Set("empty", "No collections found", nil)
		return
	}
	mm.selectionAlerts.Remove("empty")

	if id == "" {
		s.selected = s.collections[0]
		mm.selectionAlerts.Set("selected", "Option 'mock.collections.selected' was not defined. Selecting the first collection found", nil)
		return
	}
	c, ok := s.collectionsByID[id]
	if !ok {
		s.selected = s.collections[0]
		mm.selectionAlerts.Set("selected", fmt.Sprintf("Collection '%s' was not found. Selecting the first one found", id), nil)
		return
	}
	s.selected = c
	mm.selectionAlerts.Remove("selected")
}

func (mm *MockManager) selectedID(s *snapshot) string {
	if s == nil || s.selected == nil {
		return ""
	}
	return s.selected.ID
}

// State returns the lifecycle state.
func (mm *MockManager) State() State {
	return State(mm.state.Load())
}

// Alerts returns the "mock" alerts collection.
func (mm *MockManager) Alerts() *alerts.Alerts {
	return mm.alerts
}

// SelectCollection selects a collection and removes all custom route variants.
// Unknown or empty ids select the first collection and raise an alert.
// Before the first load the id is only stored.
func (mm *MockManager) SelectCollection(id string) {
	mm.mu.Lock()
	mm.selectedOption = id
	prev := mm.current.Load()
	if prev == nil {
		mm.mu.Unlock()
		return
	}
	next := prev.derive()
	next.custom = nil
	mm.selectLocked(next, id)
	next.applyCustom()
	mm.current.Store(next)
	mm.mu.Unlock()

	mm.log.Info("collection selected", "collection", mm.selectedID(next))
	mm.notify()
}

// SelectedCollection returns the id of the selected collection, or "" when there is none.
func (mm *MockManager) SelectedCollection() string {
	return mm.selectedID(mm.current.Load())
}

// UseRouteVariant adds a custom route variant, replacing the one of the same route if any.
func (mm *MockManager) UseRouteVariant(id string) error {
	mm.mu.Lock()
	prev := mm.current.Load()
	if prev == nil {
		mm.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRouteVariantNotFound, id)
	}
	rv, ok := prev.variantsByID[id]
	if !ok {
		mm.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRouteVariantNotFound, id)
	}

	next := prev.derive()
	next.custom = slices.Clone(prev.custom)
	idx := slices.IndexFunc(next.custom, func(custom string) bool {
		return prev.variantsByID[custom].RouteID == rv.RouteID
	})
	if idx >= 0 {
		next.custom[idx] = id
	} else {
		next.custom = append(next.custom, id)
	}
	next.applyCustom()
	mm.current.Store(next)
	mm.mu.Unlock()

	mm.log.Info("custom route variant added", "variant", id)
	mm.notify()
	return nil
}

// RestoreRouteVariants removes all custom route variants.
func (mm *MockManager) RestoreRouteVariants() {
	mm.mu.Lock()
	prev := mm.current.Load()
	if prev == nil {
		mm.mu.Unlock()
		return
	}
	next := prev.derive()
	next.custom = nil
	next.applyCustom()
	mm.current.Store(next)
	mm.mu.Unlock()

	mm.log.Info("custom route variants restored")
	mm.notify()
}

// CustomRouteVariants returns the ids of the custom route variants, in insertion order.
func (mm *MockManager) CustomRouteVariants() []string {
	s := mm.current.Load()
	if s == nil {
		return []string{}
	}
	return append([]string{}, s.custom...)
}

// EffectiveRouteVariants returns the ids of the route variants currently served, in dispatch order.
func (mm *MockManager) EffectiveRouteVariants() []string {
	s := mm.current.Load()
	if s == nil {
		return []string{}
	}
	return variantIDs(s.effective)
}

// SetDelay changes the global delay. Only later requests are affected.
func (mm *MockManager) SetDelay(ms int) {
	mm.delay.Store(int64(ms))
}

// Delay returns the global delay in milliseconds.
func (mm *MockManager) Delay() int {
	return int(mm.delay.Load())
}

// PlainRoutes returns the presentation form of the routes.
func (mm *MockManager) PlainRoutes() []mock.PlainRoute {
	s := mm.current.Load()
	if s == nil {
		return []mock.PlainRoute{}
	}
	out := make([]mock.PlainRoute, len(s.routes))
	for i, r := range s.routes {
		out[i] = r.Plain()
	}
	return out
}

// PlainVariants returns the presentation form of the route variants.
func (mm *MockManager) PlainVariants() []mock.PlainVariant {
	s := mm.current.Load()
	if s == nil {
		return []mock.PlainVariant{}
	}
	out := make([]mock.PlainVariant, len(s.variants))
	for i, rv := range s.variants {
		out[i] = rv.Plain()
	}
	return out
}

// PlainCollections returns the presentation form of the collections.
func (mm *MockManager) PlainCollections() []mock.PlainCollection {
	s := mm.current.Load()
	if s == nil {
		return []mock.PlainCollection{}
	}
	out := make([]mock.PlainCollection, len(s.collections))
	for i, c := range s.collections {
		out[i] = c.Plain()
	}
	return out
}

// OnChange registers fn to be called after every change, in registration order.
// The returned function removes it.
func (mm *MockManager) OnChange(fn func()) func() {
	mm.listenersMu.Lock()
	id := mm.nextListenerID
	mm.nextListenerID++
	mm.listeners = append(mm.listeners, changeListener{id: id, fn: fn})
	mm.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			mm.listenersMu.Lock()
			defer mm.listenersMu.Unlock()
			mm.listeners = slices.DeleteFunc(mm.listeners, func(l changeListener) bool { return l.id == id })
		})
	}
}

func (mm *MockManager) notify() {
	mm.listenersMu.Lock()
	listeners := slices.Clone(mm.listeners)
	mm.listenersMu.Unlock()

	for _, l := range listeners {
		l.fn()
	}
}
