// Package http executes resolved request templates.
//
// It wraps the standard library's http package with additional features:
//   - Configurable timeouts
//   - Redirect handling
//   - TLS verification and proxy settings
//   - Classification of failures into transport and protocol errors
//   - Response summaries for the history log
package http
