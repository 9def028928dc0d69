package mock

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
)

// AnyMethod matches every HTTP method.
const AnyMethod = "*"

// KnownMethods are the HTTP verbs a route may declare.
var KnownMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodHead,
	http.MethodOptions,
	http.MethodTrace,
}

// Methods is the method list of a route. In files it can be written as a
// single string ("get", "*") or as a list of strings.
type Methods []string

// MethodList returns a Methods value with the given verbs.
func MethodList(methods ...string) Methods {
	return Methods(methods)
}

// Normalized returns the methods upper-cased, in declaration order.
func (m Methods) Normalized() []string {
	out := make([]string, len(m))
	for i, method := range m {
		out[i] = strings.ToUpper(strings.TrimSpace(method))
	}
	return out
}

// MarshalJSON encodes a single method as a string and several as a list.
// Methods are upper-cased so that duplicates differing only in case are detected.
func (m Methods) MarshalJSON() ([]byte, error) {
	normalized := m.Normalized()
	if len(normalized) == 1 {
		return json.Marshal(normalized[0])
	}
	return json.Marshal(normalized)
}

// UnmarshalJSON accepts a string or a list of strings.
func (m *Methods) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*m = Methods{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.New("method must be a string or a list of strings")
	}
	*m = Methods(list)
	return nil
}

// RoutePath is either an express-style pattern ("/api/users/:id") or a regular expression.
type RoutePath struct {
	// Value is the pattern or the regular expression source.
	Value string
	// IsRegexp marks Value as a regular expression.
	IsRegexp bool
}

// Path returns an express-style route path.
func Path(pattern string) RoutePath {
	return RoutePath{Value: pattern}
}

// PathRegexp returns a regular-expression route path.
func PathRegexp(re *regexp.Regexp) RoutePath {
	return RoutePath{Value: re.String(), IsRegexp: true}
}

// IsZero reports whether no path was given.
func (p RoutePath) IsZero() bool {
	return p.Value == "" && !p.IsRegexp
}

// String implements fmt.Stringer.
func (p RoutePath) String() string {
	if p.IsRegexp {
		return "/" + p.Value + "/"
	}
	return p.Value
}

type regexpPath struct {
	Regexp string `json:"regexp"`
}

// MarshalJSON encodes a pattern as a string and a regular expression as {"regexp": "..."}.
func (p RoutePath) MarshalJSON() ([]byte, error) {
	if p.IsRegexp {
		return json.Marshal(regexpPath{Regexp: p.Value})
	}
	return json.Marshal(p.Value)
}

// UnmarshalJSON accepts a string or an object with a "regexp" member.
// The regular expression is not compiled here.
func (p *RoutePath) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = RoutePath{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = RoutePath{Value: s}
		return nil
	case len(data) > 0 && data[0] == '{':
		var rp regexpPath
		if err := json.Unmarshal(data, &rp); err != nil {
			return errors.New(`path object must be {"regexp": "<expression>"}`)
		}
		*p = RoutePath{Value: rp.Regexp, IsRegexp: true}
		return nil
	default:
		return errors.New("path must be a string or a regular expression")
	}
}
