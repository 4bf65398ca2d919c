// Package cmd implements the spag CLI commands using Cobra.
//
// Available commands:
//   - env: Manage environments (set, show, list, activate, deactivate, unset)
//   - get, post, put, patch, delete: Send an ad-hoc request
//   - request: Send, show or validate request files
//   - history: List past requests or show one
//   - init: Create a config file and an example request
//   - version, completion
//
// Every failure is mapped to an exit status in exitcodes.go.
package cmd
