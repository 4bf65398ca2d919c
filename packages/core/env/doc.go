// Package env manages named environments and placeholder resolution for spag.
//
// It provides functionality for:
//   - Persisting environments (endpoint, variables, default headers) and
//     tracking which one is active
//   - Loading extra variables from .env files
//   - Expanding {{placeholder}} syntax, including $OS_VARS, built-in
//     function calls, fallback lists and remembered responses
package env
