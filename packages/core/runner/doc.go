// Package runner executes one spag request from intent to recorded result.
//
// A run loads the environment, resolves the request, sends it, appends it to
// the history log and remembers it for later placeholders. Resolution
// failures are reported before any network call is made; a dry run stops
// after resolution and records nothing.
package runner
