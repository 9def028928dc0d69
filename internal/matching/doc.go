// Package matching provides request matching for mock routes.
//
// Route paths are compiled once per load into a PathMatcher:
//
//   - Exact paths: "/api/users" matches "/api/users" and "/api/users/"
//   - Named params: "/api/users/:id" and "/api/users/{id}"
//   - Optional params: "/api/users/:id?"
//   - Wildcards: "/api/*"
//   - Regular expressions (RE2), with named groups captured as params
//
// Methods are matched by MatchMethod, where "*" matches any method.
package matching
