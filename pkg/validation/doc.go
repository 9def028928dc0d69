// Package validation checks raw route, variant and collection definitions
// before the engine resolves them.
//
// A Validator is compiled once per handler registry: it holds JSON schemas
// (Draft 2020-12) for routes, variants and collections, plus the options
// schema of every registered handler type.
//
//	v, err := validation.New(handlers.DefaultRegistry())
//	if err != nil {
//	    return err
//	}
//	if diags := v.ValidateRoute(route); diags != nil {
//	    log.Warn("route is invalid", "error", diags)
//	}
//
// Validation never fails on malformed input: every check returns nil or a
// *Diagnostics value describing all problems found, and the caller decides
// what to drop.
package validation
