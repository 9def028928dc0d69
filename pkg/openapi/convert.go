package openapi

import (
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"mime"
	"slices"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mocks-server/main/pkg/handlers"
	"github.com/mocks-server/main/pkg/mock"
)

// Variant kinds, used as the middle part of generated variant ids.
const (
	kindJSON   = "json"
	kindText   = "text"
	kindStatus = "status"
)

// Routes converts every operation of doc into a route definition.
//
// Routes are ordered by path and then by method. The route id is the
// operationId, or "<method>-<path>" when the operation has none. Each response
// example becomes a variant "<status>-<json|text>[-<exampleName>]"; responses
// without examples become a "<status>-status" variant.
func Routes(doc *openapi3.T) []mock.RouteDefinition {
	if doc == nil || doc.Paths == nil {
		return nil
	}

	items := doc.Paths.Map()
	var routes []mock.RouteDefinition
	for _, path := range slices.Sorted(maps.Keys(items)) {
		item := items[path]
		if item == nil {
			continue
		}
		ops := item.Operations()
		for _, method := range mock.KnownMethods {
			op, ok := ops[method]
			if !ok || op == nil {
				continue
			}
			routes = append(routes, operationToRoute(path, method, op))
		}
	}
	return routes
}

func operationToRoute(path, method string, op *openapi3.Operation) mock.RouteDefinition {
	id := op.OperationID
	if id == "" {
		id = strings.ToLower(method) + "-" + path
	}
	return mock.RouteDefinition{
		ID:       id,
		Method:   mock.MethodList(method),
		Path:     mock.Path(convertOpenAPIPath(path)),
		Variants: responsesToVariants(op.Responses),
	}
}

func responsesToVariants(responses *openapi3.Responses) []mock.VariantDefinition {
	if responses == nil {
		return nil
	}

	refs := responses.Map()
	var variants []mock.VariantDefinition
	seen := make(map[string]bool)
	add := func(v mock.VariantDefinition) {
		if seen[v.ID] {
			return
		}
		seen[v.ID] = true
		variants = append(variants, v)
	}

	for _, code := range sortedStatusCodes(refs) {
		ref := refs[code]
		if ref == nil || ref.Value == nil {
			continue
		}
		status, _ := strconv.Atoi(code)

		found := false
		content := ref.Value.Content
		for _, contentType := range slices.Sorted(maps.Keys(content)) {
			media := content[contentType]
			if media == nil {
				continue
			}
			kind := mediaKind(contentType)
			for name, value := range mediaExamples(media) {
				id := code + "-" + kind
				if name != "" {
					id += "-" + name
				}
				v, err := exampleVariant(id, kind, status, contentType, value)
				if err != nil {
					continue
				}
				add(v)
				found = true
			}
		}
		if !found {
			add(mock.VariantDefinition{
				ID:          code + "-" + kindStatus,
				HandlerType: handlers.StatusHandlerID,
				Options:     json.RawMessage(fmt.Sprintf(`{"status":%d}`, status)),
			})
		}
	}
	return variants
}

// sortedStatusCodes returns the numeric response codes in ascending order.
// "default" and range codes such as "2XX" cannot be served and are skipped.
func sortedStatusCodes(refs map[string]*openapi3.ResponseRef) []string {
	var codes []string
	for code := range refs {
		if n, err := strconv.Atoi(code); err == nil && n >= 100 && n <= 599 {
			codes = append(codes, code)
		}
	}
	slices.Sort(codes)
	return codes
}

// mediaExamples yields the examples of a media type. A single example has an
// empty name; named examples are yielded in name order.
func mediaExamples(media *openapi3.MediaType) iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if media.Example != nil {
			if !yield("", media.Example) {
				return
			}
		}
		for _, name := range slices.Sorted(maps.Keys(media.Examples)) {
			ref := media.Examples[name]
			if ref == nil || ref.Value == nil || ref.Value.Value == nil {
				continue
			}
			if !yield(name, ref.Value.Value) {
				return
			}
		}
		if media.Example == nil && len(media.Examples) == 0 &&
			media.Schema != nil && media.Schema.Value != nil && media.Schema.Value.Example != nil {
			yield("", media.Schema.Value.Example)
		}
	}
}

func exampleVariant(id, kind string, status int, contentType string, value any) (mock.VariantDefinition, error) {
	options := map[string]any{"status": status}
	variantType := handlers.JSONHandlerID
	if kind == kindText {
		variantType = handlers.TextHandlerID
		options["headers"] = map[string]string{"Content-Type": contentType}
		if s, ok := value.(string); ok {
			options["body"] = s
		} else {
			options["body"] = fmt.Sprint(value)
		}
	} else {
		options["body"] = value
	}

	raw, err := json.Marshal(options)
	if err != nil {
		return mock.VariantDefinition{}, err
	}
	return mock.VariantDefinition{ID: id, HandlerType: variantType, Options: raw}, nil
}

// mediaKind tells whether a content type is served as JSON or as text.
func mediaKind(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	if mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") {
		return kindJSON
	}
	return kindText
}

// convertOpenAPIPath converts OpenAPI path params {param} to :param.
func convertOpenAPIPath(path string) string {
	result := path
	for {
		start := strings.Index(result, "{")
		end := strings.Index(result, "}")
		if start < 0 || end <= start {
			return result
		}
		result = result[:start] + ":" + result[start+1:end] + result[end+1:]
	}
}
