package validation

import (
	"fmt"
	"strings"
)

// Codes of FieldError.
const (
	ErrCodeRequired     = "required"
	ErrCodeType         = "type"
	ErrCodeSchema       = "schema"
	ErrCodeInvalidJSON  = "invalid_json"
	ErrCodeHandler      = "handler"
	ErrCodeNotFound     = "not_found"
	ErrCodeDuplicated   = "duplicated"
	ErrCodeUnknownField = "unknown_field"
)

// FieldError is one problem of a definition. Field is a dotted path such as
// "variants.0.options.status", empty when the problem is the whole definition.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Diagnostics collects the problems of one definition. Validation functions
// return nil instead of an empty Diagnostics.
type Diagnostics struct {
	Errors []*FieldError `json:"errors"`
}

// Error joins the messages with ". ", the format used in alert messages.
func (d *Diagnostics) Error() string {
	var sb strings.Builder
	for i, e := range d.Errors {
		if i > 0 {
			sb.WriteString(". ")
		}
		sb.WriteString(e.Error())
	}
	return sb.String()
}

func (d *Diagnostics) Add(err *FieldError) {
	d.Errors = append(d.Errors, err)
}

func (d *Diagnostics) addf(field, code, format string, args ...any) {
	d.Add(&FieldError{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Merge appends the problems of a nested definition under prefix.
func (d *Diagnostics) Merge(prefix string, nested *Diagnostics) {
	if nested == nil {
		return
	}
	for _, e := range nested.Errors {
		d.Add(&FieldError{Field: joinField(prefix, e.Field), Code: e.Code, Message: e.Message})
	}
}

func joinField(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	}
	return prefix + "." + field
}

func (d *Diagnostics) orNil() *Diagnostics {
	if d == nil || len(d.Errors) == 0 {
		return nil
	}
	return d
}
