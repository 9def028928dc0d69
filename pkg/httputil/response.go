// Package httputil writes the HTTP responses of the mock router, the variant
// handlers and the admin API.
package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes of ErrorBody.
const (
	CodeNotFound             = "not_found"
	CodeInvalidJSON          = "invalid_json"
	CodeBodyTooLarge         = "body_too_large"
	CodeValidation           = "validation_error"
	CodeRouteVariantNotFound = "route_variant_not_found"
	CodeFile                 = "file_error"
	CodeInternal             = "internal_error"
)

// ErrorBody is the body of every JSON error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes data as JSON. A nil data writes no body.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes an ErrorBody.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorBody{Error: code, Message: message})
}

func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func WriteBadRequest(w http.ResponseWriter, code, message string) {
	WriteError(w, http.StatusBadRequest, code, message)
}

func WriteNotFound(w http.ResponseWriter, code, message string) {
	WriteError(w, http.StatusNotFound, code, message)
}

// WriteRouteNotFound answers a request no route matched.
func WriteRouteNotFound(w http.ResponseWriter, r *http.Request) {
	WriteNotFound(w, CodeNotFound, fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path))
}

// WriteBody writes a mock response. The configured headers are set first and
// contentType only fills in a missing Content-Type. HEAD requests get no body.
func WriteBody(w http.ResponseWriter, r *http.Request, status int, headers map[string]string, contentType string, body []byte) {
	for name, value := range headers {
		w.Header().Set(name, value)
	}
	if contentType != "" && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	if len(body) > 0 && r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
}
