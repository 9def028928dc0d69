package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mocks-server/main/internal/matching"
	"github.com/mocks-server/main/pkg/alerts"
	"github.com/mocks-server/main/pkg/handlers"
	"github.com/mocks-server/main/pkg/mock"
	"github.com/mocks-server/main/pkg/validation"
)

// Route is a resolved route definition.
type Route struct {
	ID      string
	Methods []string
	Path    mock.RoutePath
	Delay   mock.Delay

	// Variants holds the VariantIDs of the route variants that resolved, in definition order.
	Variants []string
}

// Plain returns the presentation form of the route.
func (r *Route) Plain() mock.PlainRoute {
	variants := make([]string, len(r.Variants))
	copy(variants, r.Variants)
	return mock.PlainRoute{
		ID:       r.ID,
		Path:     r.Path,
		Method:   mock.Methods(r.Methods),
		Delay:    r.Delay,
		Variants: variants,
	}
}

// RouteVariant is the pairing of a route and one of its variants.
// It is immutable once resolved.
type RouteVariant struct {
	// ID is the VariantID, "<routeId>:<variantId>".
	ID        string
	RouteID   string
	VariantID string
	Type      string
	Methods   []string
	Path      mock.RoutePath

	// Delay is the variant delay, or the route delay when the variant has none.
	Delay    mock.Delay
	Disabled bool

	// Handler is nil for disabled variants.
	Handler handlers.Handler

	matcher *matching.PathMatcher
}

// Plain returns the presentation form of the route variant.
func (rv *RouteVariant) Plain() mock.PlainVariant {
	var preview any
	if rv.Handler != nil {
		preview = rv.Handler.Preview()
	}
	return mock.PlainVariant{
		ID:       rv.ID,
		Route:    rv.RouteID,
		Type:     rv.Type,
		Disabled: rv.Disabled,
		Preview:  preview,
		Delay:    rv.Delay,
	}
}

// Matches reports whether the route variant answers method and path.
func (rv *RouteVariant) Matches(method, path string) (map[string]string, bool) {
	if !matching.MatchMethod(rv.Methods, method) {
		return nil, false
	}
	return rv.matcher.Match(path)
}

// ResolveRouteVariants turns route definitions into routes and route variants.
//
// Invalid definitions never fail the whole resolution: duplicated or invalid
// routes are skipped entirely, and invalid, duplicated or failing variants are
// skipped alone. Every skipped definition raises an alert in alertsRoot, which
// is cleaned first.
func ResolveRouteVariants(defs []mock.RouteDefinition, validator *validation.Validator, env handlers.Env, alertsRoot *alerts.Alerts) ([]*Route, []*RouteVariant) {
	alertsRoot.Clean()

	var routes []*Route
	var variants []*RouteVariant
	routeIDs := make(map[string]bool)
	variantIDs := make(map[string]bool)

	for i, def := range defs {
		routeAlerts := alertsRoot.Collection(alertKey(def.ID, i))

		if def.ID != "" && routeIDs[def.ID] {
			routeAlerts.Set("duplicated", fmt.Sprintf("Route with duplicated id '%s' detected. Route has been ignored", def.ID), nil)
			continue
		}

		if diags := validator.ValidateRoute(def); diags != nil {
			routeAlerts.Set("validation", fmt.Sprintf("Route with id '%s' is invalid: %s", def.ID, diags.Error()), diags)
			continue
		}

		matcher, err := matching.CompilePath(def.Path)
		if err != nil {
			routeAlerts.Set("validation", fmt.Sprintf("Route with id '%s' is invalid: %s", def.ID, err), err)
			continue
		}
		routeIDs[def.ID] = true

		route := &Route{
			ID:      def.ID,
			Methods: def.Method.Normalized(),
			Path:    def.Path,
			Delay:   def.Delay,
		}

		bareIDs := make(map[string]bool)
		for j, variantDef := range def.Variants {
			variantAlerts := routeAlerts.Collection("variants").Collection(alertKey(variantDef.ID, j))

			rv, err := resolveVariant(route, variantDef, validator, env)
			if err != nil {
				variantAlerts.Set(err.kind, err.Error(), err.cause)
				continue
			}
			if bareIDs[rv.VariantID] || variantIDs[rv.ID] {
				variantAlerts.Set("duplicated", fmt.Sprintf("Route variant with duplicated id '%s' detected in route '%s'. It has been ignored", rv.VariantID, route.ID), nil)
				continue
			}
			bareIDs[rv.VariantID] = true
			variantIDs[rv.ID] = true

			rv.matcher = matcher
			route.Variants = append(route.Variants, rv.ID)
			variants = append(variants, rv)
		}

		routes = append(routes, route)
	}

	return routes, variants
}

// variantError tells which alert a failing variant raises.
type variantError struct {
	kind    string
	message string
	cause   error
}

func (e *variantError) Error() string { return e.message }

func resolveVariant(route *Route, def mock.VariantDefinition, validator *validation.Validator, env handlers.Env) (*RouteVariant, *variantError) {
	if diags := validator.ValidateVariant(def); diags != nil {
		return nil, &variantError{
			kind:    "validation",
			message: fmt.Sprintf("Variant with id '%s' in route '%s' is invalid: %s", def.ID, route.ID, diags.Error()),
			cause:   diags,
		}
	}

	handlerDef, err := validator.Registry().Resolve(def.HandlerType)
	if err != nil {
		return nil, &variantError{kind: "validation", message: err.Error(), cause: err}
	}

	rv := &RouteVariant{
		ID:        mock.VariantID(route.ID, def.ID),
		RouteID:   route.ID,
		VariantID: def.ID,
		Type:      handlerDef.ID,
		Methods:   route.Methods,
		Path:      route.Path,
		Delay:     def.Delay.Or(route.Delay),
		Disabled:  def.Disabled,
	}
	if def.Disabled {
		return rv, nil
	}

	handler, err := newHandler(handlerDef, def.Options, env)
	if err != nil {
		return nil, &variantError{
			kind:    "process",
			message: fmt.Sprintf("Error creating variant handler of variant '%s' in route '%s': %s", def.ID, route.ID, err),
			cause:   err,
		}
	}
	rv.Handler = handler
	return rv, nil
}

// newHandler runs a handler factory, converting panics into errors.
func newHandler(def handlers.Definition, options json.RawMessage, env handlers.Env) (h handlers.Handler, err error) {
	defer func() {
		if r := recover(); r != nil {
			h, err = nil, fmt.Errorf("handler %q panicked: %v", def.ID, r)
		}
	}()

	h, err = def.New(options, env)
	if err == nil && h == nil {
		err = errors.New("handler factory returned no handler")
	}
	return h, err
}

// alertKey returns the alert collection id of a definition, falling back to its position.
func alertKey(id string, index int) string {
	if id != "" {
		return id
	}
	return strconv.Itoa(index)
}
