// Package output renders spag results for the terminal or as JSON.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output, one document per call
//
// Both formatters render responses, resolved requests, history listings and
// entries, and environment listings.
package output
