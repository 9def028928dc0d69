// Package handlers provides the variant handler types of the mock server.
//
// A route variant declares a "handlerType" ("type" in older files) and
// handler-specific "options". The handler type selects a Definition in a Registry: its Schema validates the options and its
// factory turns them into a Handler that serves the response.
//
// Built-in types:
//
//   - json: {status, headers?, body} responds with a JSON body
//   - text: {status, headers?, body} responds with a text body
//   - status: {status, headers?} responds with an empty body
//   - file: {status, headers?, path} responds with the content of a file
//   - default: {status?, headers?, body?} used when a variant has no handler type
//
// New types are added by registering a Definition; the engine never needs to
// know about them.
package handlers
