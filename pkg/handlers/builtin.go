package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mocks-server/main/pkg/httputil"
)

// Built-in handler ids.
const (
	JSONHandlerID   = "json"
	TextHandlerID   = "text"
	StatusHandlerID = "status"
	FileHandlerID   = "file"
)

// Preview is the summary returned by built-in handlers.
type Preview struct {
	Status int `json:"status"`
	Body   any `json:"body,omitempty"`
}

// Builtins returns the definitions of the built-in handlers, default last.
func Builtins() []Definition {
	return []Definition{
		{ID: JSONHandlerID, Schema: json.RawMessage(jsonSchema), New: newJSONHandler},
		{ID: TextHandlerID, Schema: json.RawMessage(textSchema), New: newTextHandler},
		{ID: StatusHandlerID, Schema: json.RawMessage(statusSchema), New: newStatusHandler},
		{ID: FileHandlerID, Schema: json.RawMessage(fileSchema), New: newFileHandler},
		{ID: DefaultHandlerID, Schema: json.RawMessage(defaultSchema), New: newDefaultHandler},
	}
}

const (
	jsonSchema = `{
		"type": "object",
		"properties": {
			"status": {"type": "integer", "minimum": 100, "maximum": 599},
			"headers": {"type": "object", "additionalProperties": {"type": "string"}},
			"body": {"type": ["object", "array", "string", "number", "boolean", "null"]}
		},
		"required": ["status", "body"],
		"additionalProperties": false
	}`

	textSchema = `{
		"type": "object",
		"properties": {
			"status": {"type": "integer", "minimum": 100, "maximum": 599},
			"headers": {"type": "object", "additionalProperties": {"type": "string"}},
			"body": {"type": "string"}
		},
		"required": ["status", "body"],
		"additionalProperties": false
	}`

	statusSchema = `{
		"type": "object",
		"properties": {
			"status": {"type": "integer", "minimum": 100, "maximum": 599},
			"headers": {"type": "object", "additionalProperties": {"type": "string"}}
		},
		"required": ["status"],
		"additionalProperties": false
	}`

	fileSchema = `{
		"type": "object",
		"properties": {
			"status": {"type": "integer", "minimum": 100, "maximum": 599},
			"headers": {"type": "object", "additionalProperties": {"type": "string"}},
			"path": {"type": "string", "minLength": 1}
		},
		"required": ["status", "path"],
		"additionalProperties": false
	}`

	defaultSchema = `{
		"type": ["object", "null"],
		"properties": {
			"status": {"type": "integer", "minimum": 100, "maximum": 599},
			"headers": {"type": "object", "additionalProperties": {"type": "string"}},
			"body": {}
		},
		"additionalProperties": false
	}`
)

// responseOptions are the options shared by all built-in handlers.
type responseOptions struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers,omitempty"`
}

// staticResponse writes a response fully known at construction time.
type staticResponse struct {
	status      int
	headers     map[string]string
	contentType string
	body        []byte
	preview     Preview
}

func (s *staticResponse) Preview() any {
	return s.preview
}

func (s *staticResponse) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httputil.WriteBody(w, r, s.status, s.headers, s.contentType, s.body)
}

// decodeOptions unmarshals options into v. Empty options leave v untouched.
func decodeOptions(options json.RawMessage, v any) error {
	if len(bytes.TrimSpace(options)) == 0 {
		return nil
	}
	if err := json.Unmarshal(options, v); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

func newJSONHandler(options json.RawMessage, _ Env) (Handler, error) {
	var opts struct {
		responseOptions
		Body json.RawMessage `json:"body"`
	}
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	if opts.Status == 0 {
		return nil, errors.New("status is required")
	}
	return newJSONResponse(opts.responseOptions, opts.Body)
}

func newJSONResponse(opts responseOptions, body json.RawMessage) (*staticResponse, error) {
	if len(body) == 0 {
		body = json.RawMessage("null")
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return nil, fmt.Errorf("invalid body: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(compact.Bytes(), &decoded); err != nil {
		return nil, fmt.Errorf("invalid body: %w", err)
	}
	return &staticResponse{
		status:      opts.Status,
		headers:     opts.Headers,
		contentType: "application/json; charset=utf-8",
		body:        compact.Bytes(),
		preview:     Preview{Status: opts.Status, Body: decoded},
	}, nil
}

func newTextHandler(options json.RawMessage, _ Env) (Handler, error) {
	var opts struct {
		responseOptions
		Body string `json:"body"`
	}
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	if opts.Status == 0 {
		return nil, errors.New("status is required")
	}
	return newTextResponse(opts.responseOptions, opts.Body), nil
}

func newTextResponse(opts responseOptions, body string) *staticResponse {
	return &staticResponse{
		status:      opts.Status,
		headers:     opts.Headers,
		contentType: "text/plain; charset=utf-8",
		body:        []byte(body),
		preview:     Preview{Status: opts.Status, Body: body},
	}
}

func newStatusHandler(options json.RawMessage, _ Env) (Handler, error) {
	var opts responseOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	if opts.Status == 0 {
		return nil, errors.New("status is required")
	}
	return &staticResponse{
		status:  opts.Status,
		headers: opts.Headers,
		preview: Preview{Status: opts.Status},
	}, nil
}

// newDefaultHandler serves variants without type. Strings are sent as text
// and any other body as JSON; status defaults to 200.
func newDefaultHandler(options json.RawMessage, _ Env) (Handler, error) {
	var opts struct {
		responseOptions
		Body json.RawMessage `json:"body"`
	}
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	if opts.Status == 0 {
		opts.Status = http.StatusOK
	}

	body := bytes.TrimSpace(opts.Body)
	switch {
	case len(body) == 0:
		return &staticResponse{
			status:  opts.Status,
			headers: opts.Headers,
			preview: Preview{Status: opts.Status},
		}, nil
	case body[0] == '"':
		var text string
		if err := json.Unmarshal(body, &text); err != nil {
			return nil, fmt.Errorf("invalid body: %w", err)
		}
		return newTextResponse(opts.responseOptions, text), nil
	default:
		return newJSONResponse(opts.responseOptions, body)
	}
}
