package engine

import (
	"fmt"

	"github.com/mocks-server/main/pkg/alerts"
	"github.com/mocks-server/main/pkg/mock"
	"github.com/mocks-server/main/pkg/validation"
)

// Collection is a resolved collection.
type Collection struct {
	ID   string
	From string

	// DefinedRoutes are the VariantIDs written in the definition itself.
	DefinedRoutes []string

	// RouteVariants holds one route variant per route: the collection's own
	// entries first, then the ones inherited through From.
	RouteVariants []*RouteVariant
}

// Plain returns the presentation form of the collection.
func (c *Collection) Plain() mock.PlainCollection {
	plain := mock.PlainCollection{
		ID:            c.ID,
		DefinedRoutes: append([]string{}, c.DefinedRoutes...),
		Routes:        variantIDs(c.RouteVariants),
	}
	if c.From != "" {
		from := c.From
		plain.From = &from
	}
	return plain
}

// ResolveCollections turns collection definitions into collections.
//
// Duplicated and invalid definitions are skipped. Dangling references, routes
// used twice, missing ancestors and inheritance cycles raise alerts but the
// collection is still resolved without the offending entries.
func ResolveCollections(defs []mock.CollectionDefinition, routeVariants []*RouteVariant, validator *validation.Validator, alertsRoot *alerts.Alerts) []*Collection {
	alertsRoot.Clean()

	r := &collectionResolver{
		variants: make(map[string]*RouteVariant, len(routeVariants)),
		defs:     make(map[string]mock.CollectionDefinition),
	}
	for _, rv := range routeVariants {
		r.variants[rv.ID] = rv
	}

	var valid []mock.CollectionDefinition
	for i, def := range defs {
		collectionAlerts := alertsRoot.Collection(alertKey(def.ID, i))

		if _, exists := r.defs[def.ID]; exists && def.ID != "" {
			collectionAlerts.Set("duplicated", fmt.Sprintf("Collection with duplicated id '%s' detected. It has been ignored", def.ID), nil)
			continue
		}

		if diags := validator.ValidateCollection(def); diags != nil {
			collectionAlerts.Set("validation", fmt.Sprintf("Collection with id '%s' is invalid: %s", def.ID, diags.Error()), diags)
			continue
		}

		if diags := validator.ValidateCollectionReferences(def, r.routeOf); diags != nil {
			collectionAlerts.Set("validation", fmt.Sprintf("Collection with id '%s' is invalid: %s", def.ID, diags.Error()), diags)
		}

		r.defs[def.ID] = def
		valid = append(valid, def)
	}

	collections := make([]*Collection, 0, len(valid))
	for _, def := range valid {
		collections = append(collections, &Collection{
			ID:            def.ID,
			From:          def.From,
			DefinedRoutes: append([]string{}, def.RouteIDs()...),
			RouteVariants: r.resolve(def, alertsRoot.Collection(def.ID)),
		})
	}
	return collections
}

type collectionResolver struct {
	variants map[string]*RouteVariant
	defs     map[string]mock.CollectionDefinition
}

func (r *collectionResolver) routeOf(variantID string) (string, bool) {
	rv, ok := r.variants[variantID]
	if !ok {
		return "", false
	}
	return rv.RouteID, true
}

// own maps the definition entries to route variants, dropping unknown ones and
// keeping only the first entry of each route.
func (r *collectionResolver) own(def mock.CollectionDefinition) []*RouteVariant {
	var result []*RouteVariant
	for _, id := range def.RouteIDs() {
		rv, ok := r.variants[id]
		if !ok || containsRoute(result, rv.RouteID) {
			continue
		}
		result = append(result, rv)
	}
	return result
}

// resolve walks the From chain. Every ancestor adds the routes not yet present,
// in its own order. A collection whose chain leads back to itself keeps only its
// own routes. A chain that loops further up stops at the first revisited
// ancestor and keeps what was merged so far; the looping ancestors carry the alert.
func (r *collectionResolver) resolve(def mock.CollectionDefinition, collectionAlerts *alerts.Alerts) []*RouteVariant {
	result := r.own(def)

	visited := map[string]bool{def.ID: true}
	current := def
	for current.From != "" {
		if current.From == def.ID {
			collectionAlerts.Set("from", fmt.Sprintf("Collection with id '%s' has a cyclic inheritance through '%s'. Its 'from' has been ignored", def.ID, current.ID), nil)
			return r.own(def)
		}
		if visited[current.From] {
			break
		}
		parent, ok := r.defs[current.From]
		if !ok {
			if current.ID == def.ID {
				collectionAlerts.Set("from", fmt.Sprintf("Collection with invalid 'from' property detected, '%s' was not found", current.From), nil)
			}
			break
		}
		visited[parent.ID] = true

		for _, rv := range r.own(parent) {
			if !containsRoute(result, rv.RouteID) {
				result = append(result, rv)
			}
		}
		current = parent
	}
	return result
}

func containsRoute(variants []*RouteVariant, routeID string) bool {
	for _, rv := range variants {
		if rv.RouteID == routeID {
			return true
		}
	}
	return false
}

func variantIDs(variants []*RouteVariant) []string {
	ids := make([]string, len(variants))
	for i, rv := range variants {
		ids[i] = rv.ID
	}
	return ids
}
