package matching

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mocks-server/main/pkg/mock"
)

// paramToken finds the dynamic parts of an express-style pattern.
var paramToken = regexp.MustCompile(`:(\w+)\??|\{(\w+)\}|\*`)

// PathMatcher matches request paths against one compiled route path.
// It is immutable and safe for concurrent use.
type PathMatcher struct {
	re     *regexp.Regexp
	params []string
}

// CompilePath compiles a route path.
//
// Express-style patterns support:
//   - Named params: "/api/users/:id" or "/api/users/{id}" matches "/api/users/123"
//   - Optional params: "/api/users/:id?" also matches "/api/users"
//   - Wildcards: "/api/*" matches "/api/users/123"
//
// Express patterns match case-insensitively, the whole path, with an optional trailing slash.
// Regular expressions use RE2 syntax and match as written.
func CompilePath(path mock.RoutePath) (*PathMatcher, error) {
	if path.IsRegexp {
		re, err := regexp.Compile(path.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid path regexp %q: %w", path.Value, err)
		}
		params := make([]string, len(re.SubexpNames()))
		for i, name := range re.SubexpNames() {
			params[i] = name
		}
		return &PathMatcher{re: re, params: params}, nil
	}

	expr, params := expressToRegexp(path.Value)
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path.Value, err)
	}
	return &PathMatcher{re: re, params: params}, nil
}

// expressToRegexp returns the regular expression of an express-style pattern and
// the parameter name of each capture group. Index 0 is the whole match.
func expressToRegexp(pattern string) (string, []string) {
	pattern = strings.TrimSuffix(pattern, "/")

	var b strings.Builder
	b.WriteString("(?i)^")
	params := []string{""}
	wildcards := 0

	last := 0
	for _, loc := range paramToken.FindAllStringSubmatchIndex(pattern, -1) {
		start, end := loc[0], loc[1]
		literal := pattern[last:start]
		token := pattern[start:end]
		last = end

		switch {
		case loc[2] >= 0 && strings.HasSuffix(token, "?") && strings.HasSuffix(literal, "/"):
			// "/:id?" makes the whole segment optional.
			b.WriteString(regexp.QuoteMeta(strings.TrimSuffix(literal, "/")))
			b.WriteString("(?:/([^/]+))?")
			params = append(params, pattern[loc[2]:loc[3]])
		case loc[2] >= 0:
			b.WriteString(regexp.QuoteMeta(literal))
			b.WriteString("([^/]+)")
			if strings.HasSuffix(token, "?") {
				b.WriteString("?")
			}
			params = append(params, pattern[loc[2]:loc[3]])
		case loc[4] >= 0:
			b.WriteString(regexp.QuoteMeta(literal))
			b.WriteString("([^/]+)")
			params = append(params, pattern[loc[4]:loc[5]])
		default:
			b.WriteString(regexp.QuoteMeta(literal))
			b.WriteString("(.*)")
			params = append(params, strconv.Itoa(wildcards))
			wildcards++
		}
	}
	b.WriteString(regexp.QuoteMeta(pattern[last:]))
	b.WriteString("/?$")

	return b.String(), params
}

// Match reports whether path matches and returns the captured parameters.
// Wildcards are captured as "0", "1"... in order. Unnamed regexp groups are not captured.
func (m *PathMatcher) Match(path string) (map[string]string, bool) {
	match := m.re.FindStringSubmatch(path)
	if match == nil {
		return nil, false
	}

	params := make(map[string]string)
	for i := 1; i < len(match) && i < len(m.params); i++ {
		if m.params[i] != "" {
			params[m.params[i]] = match[i]
		}
	}
	return params, true
}

// String returns the compiled regular expression.
func (m *PathMatcher) String() string {
	return m.re.String()
}
