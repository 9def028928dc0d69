// Package alerts collects non-fatal diagnostics raised while loading and
// resolving mock definitions.
//
// Alerts are organised in a tree of named collections. Each subsystem owns a
// collection (for example "mock" → "routes" → "load") and replaces its content
// wholesale on every load cycle, so stale alerts never linger. The flat view
// joins collection names with ":" to build a context id such as
// "mock:routes:load:get-user:variants:2:validation".
package alerts

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/mocks-server/main/pkg/logging"
)

// Separator joins collection ids in flat alert ids.
const Separator = ":"

// Alert is a single diagnostic.
type Alert struct {
	ID      string
	Message string
	Error   error
}

// FlatAlert is the presentation form of an alert, with its full context id.
type FlatAlert struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// tree holds state shared by every collection of one root.
type tree struct {
	mu  sync.RWMutex
	log *slog.Logger
}

// Alerts is a named collection of alerts and child collections.
// All collections derived from the same root share one lock.
type Alerts struct {
	tree     *tree
	id       string
	parent   *Alerts
	items    []*Alert
	children []*Alerts
}

// New creates a root collection. A nil logger disables alert logging.
// A root with an empty id does not appear in flat ids.
func New(id string, log *slog.Logger) *Alerts {
	if log == nil {
		log = logging.Nop()
	}
	return &Alerts{
		tree: &tree{log: log},
		id:   id,
	}
}

// ID returns the collection id (not including its parents).
func (a *Alerts) ID() string {
	return a.id
}

// Collection returns the child collection with the given id, creating it when missing.
func (a *Alerts) Collection(id string) *Alerts {
	a.tree.mu.Lock()
	defer a.tree.mu.Unlock()
	for _, child := range a.children {
		if child.id == id {
			return child
		}
	}
	child := &Alerts{tree: a.tree, id: id, parent: a}
	a.children = append(a.children, child)
	return child
}

// Set adds or replaces the alert with the given id in this collection.
func (a *Alerts) Set(id, message string, err error) {
	a.tree.mu.Lock()
	alert := &Alert{ID: id, Message: message, Error: err}
	idx := slices.IndexFunc(a.items, func(item *Alert) bool { return item.ID == id })
	if idx >= 0 {
		a.items[idx] = alert
	} else {
		a.items = append(a.items, alert)
	}
	context := a.contextLocked(id)
	a.tree.mu.Unlock()

	attrs := []any{"alert", context}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	a.tree.log.Warn(message, attrs...)
}

// Remove deletes the alert with the given id from this collection.
func (a *Alerts) Remove(id string) {
	a.tree.mu.Lock()
	before := len(a.items)
	a.items = slices.DeleteFunc(a.items, func(item *Alert) bool { return item.ID == id })
	removed := len(a.items) != before
	context := a.contextLocked(id)
	a.tree.mu.Unlock()

	if removed {
		a.tree.log.Debug("alert removed", "alert", context)
	}
}

// Clean removes every alert in this collection and in all of its descendants.
// The child collections themselves are kept.
func (a *Alerts) Clean() {
	a.tree.mu.Lock()
	defer a.tree.mu.Unlock()
	a.cleanLocked()
}

func (a *Alerts) cleanLocked() {
	a.items = nil
	for _, child := range a.children {
		child.cleanLocked()
	}
}

// Items returns a copy of the alerts held directly by this collection.
func (a *Alerts) Items() []Alert {
	a.tree.mu.RLock()
	defer a.tree.mu.RUnlock()
	out := make([]Alert, 0, len(a.items))
	for _, item := range a.items {
		out = append(out, *item)
	}
	return out
}

// Flat returns every alert of this collection and its descendants, depth first,
// with ids prefixed by the full collection path.
func (a *Alerts) Flat() []FlatAlert {
	a.tree.mu.RLock()
	defer a.tree.mu.RUnlock()
	var out []FlatAlert
	a.flatLocked(&out)
	return out
}

func (a *Alerts) flatLocked(out *[]FlatAlert) {
	for _, item := range a.items {
		flat := FlatAlert{ID: a.contextLocked(item.ID), Message: item.Message}
		if item.Error != nil {
			flat.Error = item.Error.Error()
		}
		*out = append(*out, flat)
	}
	for _, child := range a.children {
		child.flatLocked(out)
	}
}

// contextLocked builds the full ":"-joined id of an item in this collection.
func (a *Alerts) contextLocked(id string) string {
	var parts []string
	for node := a; node != nil; node = node.parent {
		if node.id != "" {
			parts = append(parts, node.id)
		}
	}
	slices.Reverse(parts)
	if id != "" {
		parts = append(parts, id)
	}
	return strings.Join(parts, Separator)
}
