// Package openapi is a definition source built from OpenAPI 3 documents.
//
// Documents are read from <mocks>/openapi/*.{json,yaml,yml}. Every operation
// becomes a route and every response example a variant, so a document with
// examples is enough to get a working mock. A collection, "openapi" by
// default, selects the first variant of each route.
package openapi
