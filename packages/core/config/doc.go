// Package config handles configuration loading and management for spag.
//
// It provides functionality for:
//   - Loading configuration from .spag.config.json or .spagrc files
//   - Default configuration values
//   - Merging command-line overrides over file settings
package config
