// Package history records every executed request in .spag/history.yml.
//
// Entries are stored oldest first. Each gets the next index when appended;
// indices start at 0 and are never reused, even after old entries are pruned.
package history
