// Package request defines the Request Template, spag's canonical HTTP request.
//
// It provides functionality for:
//   - The closed set of supported methods
//   - Ordered, duplicate-preserving header lists and their merge rules
//   - Template validation (method, resource, header names, endpoint URL)
//   - Loading and saving templates as YAML request files
package request
