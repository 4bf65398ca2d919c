// Package resolver turns a request intent into a fully resolved request
// template.
//
// Resolution happens in a fixed order and performs no network I/O:
//  1. CLI header overrides are parsed, so malformed headers fail first.
//  2. The resource and then the endpoint are chosen and expanded. The
//     endpoint comes from the first of: an absolute-URL resource, an explicit
//     endpoint, the template's endpoint, the environment's endpoint, the
//     environment's "endpoint" variable, the configured default.
//  3. The body and every header value are expanded.
//  4. Headers are merged: template < environment defaults < CLI overrides.
//  5. The result is validated.
//
// Any failure aborts resolution; a partially substituted template is never
// returned.
package resolver
