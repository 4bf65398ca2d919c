// Package store persists spag's YAML documents.
//
// It provides:
//   - A rooted Store that loads and saves named documents
//   - Atomic replace-on-save (temp file, then rename)
//   - Pure filename helpers (EnsureExtension, SplitPath)
//   - Lookup, an index of request files by unqualified name
package store
