package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mocks-server/main/pkg/handlers"
	"github.com/mocks-server/main/pkg/mock"
)

// Validator validates definitions against compiled schemas.
// It is immutable once created and safe for concurrent use.
type Validator struct {
	registry   *handlers.Registry
	route      *jsonschema.Schema
	variant    *jsonschema.Schema
	collection *jsonschema.Schema
	options    map[string]*jsonschema.Schema
}

// New compiles the definition schemas and the options schema of every handler in registry.
func New(registry *handlers.Registry) (*Validator, error) {
	if registry == nil {
		return nil, errors.New("handler registry is required")
	}

	v := &Validator{
		registry: registry,
		options:  make(map[string]*jsonschema.Schema),
	}

	var err error
	if v.route, err = compileSchema("route.json", routeSchema); err != nil {
		return nil, fmt.Errorf("failed to compile route schema: %w", err)
	}
	if v.variant, err = compileSchema("variant.json", variantSchema); err != nil {
		return nil, fmt.Errorf("failed to compile variant schema: %w", err)
	}
	if v.collection, err = compileSchema("collection.json", collectionSchema); err != nil {
		return nil, fmt.Errorf("failed to compile collection schema: %w", err)
	}

	for _, def := range registry.Definitions() {
		if len(bytes.TrimSpace(def.Schema)) == 0 {
			continue
		}
		schema, err := compileSchema("handlers/"+def.ID+".json", string(def.Schema))
		if err != nil {
			return nil, fmt.Errorf("failed to compile options schema of handler %q: %w", def.ID, err)
		}
		v.options[def.ID] = schema
	}

	return v, nil
}

// Registry returns the handler registry the validator was compiled for.
func (v *Validator) Registry() *handlers.Registry {
	return v.registry
}

// ValidateRoute checks the route fields. Variants are validated separately.
func (v *Validator) ValidateRoute(route mock.RouteDefinition) *Diagnostics {
	route.Variants = nil
	instance, diags := toInstance(route)
	if diags != nil {
		return diags
	}
	return validateSchema(v.route, instance)
}

// ValidateVariant checks a variant and, unless it is disabled, its handler options.
func (v *Validator) ValidateVariant(variant mock.VariantDefinition) *Diagnostics {
	instance, diags := toInstance(variant)
	if diags != nil {
		return diags
	}

	result := &Diagnostics{}
	result.Merge("", validateSchema(v.variant, instance))

	def, err := v.registry.Resolve(variant.HandlerType)
	if err != nil {
		result.addf("handlerType", ErrCodeHandler, "handler %q is not registered", variant.HandlerType)
		return result.orNil()
	}

	if variant.Disabled {
		return result.orNil()
	}

	schema, ok := v.options[def.ID]
	if !ok {
		return result.orNil()
	}

	var options any
	if len(bytes.TrimSpace(variant.Options)) > 0 {
		if err := json.Unmarshal(variant.Options, &options); err != nil {
			result.Add(&FieldError{Field: "options", Code: ErrCodeInvalidJSON, Message: err.Error()})
			return result
		}
	}
	result.Merge("options", validateSchema(schema, options))

	return result.orNil()
}

// ValidateCollection checks the collection fields.
func (v *Validator) ValidateCollection(collection mock.CollectionDefinition) *Diagnostics {
	instance, diags := toInstance(collection)
	if diags != nil {
		return diags
	}
	return validateSchema(v.collection, instance)
}

// ValidateCollectionReferences checks that every variant id of the collection exists
// and that no route is referenced twice. routeOf returns the route id of a known variant id.
func (v *Validator) ValidateCollectionReferences(collection mock.CollectionDefinition, routeOf func(variantID string) (string, bool)) *Diagnostics {
	field := "routes"
	if collection.Routes == nil && collection.RouteVariants != nil {
		field = "routeVariants"
	}

	result := &Diagnostics{}
	seen := make(map[string]string)
	for i, id := range collection.RouteIDs() {
		routeID, ok := routeOf(id)
		if !ok {
			result.addf(fmt.Sprintf("%s.%d", field, i), ErrCodeNotFound, "route variant %q not found", id)
			continue
		}
		if previous, dup := seen[routeID]; dup {
			result.addf(fmt.Sprintf("%s.%d", field, i), ErrCodeDuplicated, "route %q is used more than once (%q and %q)", routeID, previous, id)
			continue
		}
		seen[routeID] = id
	}
	return result.orNil()
}

// compileSchema compiles a JSON Schema
func compileSchema(url, schema string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	if err := compiler.AddResource(url, strings.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	return compiler.Compile(url)
}

// toInstance converts a definition into the generic JSON value schemas validate.
func toInstance(def any) (any, *Diagnostics) {
	data, err := json.Marshal(def)
	if err != nil {
		return nil, &Diagnostics{Errors: []*FieldError{{Code: ErrCodeInvalidJSON, Message: err.Error()}}}
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, &Diagnostics{Errors: []*FieldError{{Code: ErrCodeInvalidJSON, Message: err.Error()}}}
	}
	return instance, nil
}

func validateSchema(schema *jsonschema.Schema, instance any) *Diagnostics {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}

	result := &Diagnostics{}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		parseSchemaErrors(validationErr, result)
	} else {
		result.Add(&FieldError{Code: ErrCodeSchema, Message: err.Error()})
	}
	return result.orNil()
}

// parseSchemaErrors extracts the leaf errors of a schema validation error
func parseSchemaErrors(err *jsonschema.ValidationError, result *Diagnostics) {
	if len(err.Causes) == 0 {
		result.Add(&FieldError{
			Field:   extractFieldFromPath(err.InstanceLocation),
			Code:    extractKeyword(err.KeywordLocation),
			Message: err.Message,
		})
		return
	}

	for _, cause := range err.Causes {
		parseSchemaErrors(cause, result)
	}
}

// extractFieldFromPath converts a JSON Pointer into dot notation
func extractFieldFromPath(path string) string {
	if path == "" || path == "/" {
		return ""
	}
	path = strings.TrimPrefix(path, "/")
	return strings.ReplaceAll(path, "/", ".")
}

// extractKeyword returns the failing keyword of a keyword location.
func extractKeyword(location string) string {
	i := strings.LastIndex(location, "/")
	keyword := location[i+1:]
	switch keyword {
	case "":
		return ErrCodeSchema
	case "additionalProperties":
		return ErrCodeUnknownField
	default:
		return keyword
	}
}
