package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

// DefaultHandlerID is used for variants that do not declare a handler type.
const DefaultHandlerID = "default"

// Handler produces the response of one route variant.
type Handler interface {
	http.Handler

	// Preview returns a serializable summary of the response, for presentation layers.
	Preview() any
}

// Env carries what handler factories may need from the running server.
type Env struct {
	// FilesPath is the base directory for relative file paths.
	FilesPath string

	// Logger is never nil when passed by the engine.
	Logger *slog.Logger
}

// Factory builds a handler from its already validated options.
type Factory func(options json.RawMessage, env Env) (Handler, error)

// Definition describes a variant handler type.
type Definition struct {
	// ID is the value variants use in their "handlerType" field.
	ID string

	// Schema is the JSON schema of the variant options. Nil accepts anything.
	Schema json.RawMessage

	// New creates a handler instance for one variant.
	New Factory
}

// Registry holds handler definitions in registration order.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	defs  []Definition
	index map[string]int
}

// NewRegistry creates a registry with the given definitions.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{index: make(map[string]int)}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns a registry containing the built-in handlers.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(Builtins()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds a definition.
// Returns an error if the id is empty, the factory is missing or the id is taken.
func (r *Registry) Register(def Definition) error {
	if def.ID == "" {
		return ErrEmptyHandlerID
	}
	if def.New == nil {
		return fmt.Errorf("%w: %s", ErrNilFactory, def.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[def.ID]; exists {
		return fmt.Errorf("%w: %s", ErrHandlerExists, def.ID)
	}
	r.index[def.ID] = len(r.defs)
	r.defs = append(r.defs, def)
	return nil
}

// Get returns a definition by id.
func (r *Registry) Get(id string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Resolve returns the definition for a variant type, using DefaultHandlerID when empty.
func (r *Registry) Resolve(variantType string) (Definition, error) {
	if variantType == "" {
		variantType = DefaultHandlerID
	}
	def, ok := r.Get(variantType)
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrHandlerNotFound, variantType)
	}
	return def, nil
}

// Definitions returns a copy of the definitions in registration order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// IDs returns the registered handler ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.defs))
	for i, def := range r.defs {
		ids[i] = def.ID
	}
	return ids
}
