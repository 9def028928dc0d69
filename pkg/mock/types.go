// Package mock defines the raw route, variant and collection definitions the
// mock engine consumes, and the plain views it exposes to presentation layers.
//
// Definitions are plain data: they may be malformed. Nothing in this package
// validates them; see package validation for that.
package mock

import (
	"encoding/json"
	"strings"
)

// IDSeparator separates the route id and the variant id in a VariantID.
const IDSeparator = ":"

// RouteDefinition describes a route and its response variants.
type RouteDefinition struct {
	// ID identifies the route. Must be unique among routes.
	ID string `json:"id,omitempty"`

	// Method is one or more HTTP verbs, or "*" for any verb.
	Method Methods `json:"method,omitempty"`

	// Path is an express-style path pattern or a regular expression.
	Path RoutePath `json:"path,omitzero"`

	// Delay applies to every variant of the route unless the variant sets its own.
	Delay Delay `json:"delay,omitzero"`

	// Variants are the possible responses of the route.
	Variants []VariantDefinition `json:"variants,omitzero"`
}

// VariantDefinition describes one possible response of a route.
type VariantDefinition struct {
	// ID identifies the variant within its route.
	ID string `json:"id,omitempty"`

	// HandlerType is the id of the handler producing the response.
	// When empty the default handler is used. Files may still use the older
	// "type" key; see UnmarshalJSON.
	HandlerType string `json:"handlerType,omitempty"`

	// Disabled variants can be selected, but their route is not served while they are in use.
	Disabled bool `json:"disabled,omitempty"`

	// Delay overrides the route delay.
	Delay Delay `json:"delay,omitzero"`

	// Options are handler-specific. They are validated against the handler schema.
	Options json.RawMessage `json:"options,omitempty"`
}

// UnmarshalJSON decodes a variant, accepting "type" as an alias of
// "handlerType". When both are present "handlerType" wins.
func (v *VariantDefinition) UnmarshalJSON(data []byte) error {
	type plain VariantDefinition
	var raw struct {
		plain
		LegacyType string `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = VariantDefinition(raw.plain)
	if v.HandlerType == "" {
		v.HandlerType = raw.LegacyType
	}
	return nil
}

// CollectionDefinition groups route variants under an id.
type CollectionDefinition struct {
	// ID identifies the collection. Must be unique among collections.
	ID string `json:"id,omitempty"`

	// From is the id of a collection to inherit route variants from.
	From string `json:"from,omitempty"`

	// Routes lists the VariantIDs of the collection.
	Routes []string `json:"routes,omitzero"`

	// RouteVariants is the deprecated name of Routes. Used only when Routes is nil.
	RouteVariants []string `json:"routeVariants,omitzero"`
}

// RouteIDs returns the VariantIDs defined by the collection itself, honouring the deprecated alias.
func (c CollectionDefinition) RouteIDs() []string {
	if c.Routes != nil {
		return c.Routes
	}
	return c.RouteVariants
}

// VariantID builds the composite "<routeId>:<variantId>" key.
// Ids are concatenated verbatim; colons inside them are not escaped.
func VariantID(routeID, variantID string) string {
	return routeID + IDSeparator + variantID
}

// SplitVariantID splits a composite id at its first separator.
// It is only a best-effort helper for display: ids containing ":" are ambiguous,
// so lookups must always use the full composite id.
func SplitVariantID(id string) (routeID, variantID string, ok bool) {
	return strings.Cut(id, IDSeparator)
}
