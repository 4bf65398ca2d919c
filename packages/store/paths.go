package store

import (
	"path/filepath"
	"strings"
)

// Extension is the canonical extension for spag documents.
const Extension = ".yml"

// ValidExtensions lists the extensions recognised as YAML documents.
var ValidExtensions = []string{".yml", ".yaml"}

// HasValidExtension reports whether name ends with a YAML extension.
func HasValidExtension(name string) bool {
	for _, ext := range ValidExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// EnsureExtension appends ext to filename unless it already ends with it.
// Trailing dots on filename and leading dots on ext are ignored, so
//
//	EnsureExtension("a", "yml")     == "a.yml"
//	EnsureExtension("a.", ".yml")   == "a.yml"
//	EnsureExtension("a.yml", "yml") == "a.yml"
//	EnsureExtension("a.poo", "yml") == "a.poo.yml"
//
// Applying it twice gives the same result as applying it once.
func EnsureExtension(filename, ext string) string {
	ext = strings.Trim(ext, ".")
	filename = strings.TrimRight(filename, ".")
	if ext == "" {
		return filename
	}
	if strings.HasSuffix(filename, "."+ext) {
		return filename
	}
	return filename + "." + ext
}

// EnsureYAMLExtension adds the canonical extension unless name already has
// one of ValidExtensions.
func EnsureYAMLExtension(name string) string {
	if HasValidExtension(name) {
		return name
	}
	return EnsureExtension(name, Extension)
}

// SplitPath splits a path into its components: "a/b/c.yml" -> [a b c.yml].
// A leading separator is kept as its own component.
func SplitPath(path string) []string {
	path = filepath.ToSlash(filepath.Clean(path))
	if path == "." || path == "" {
		return nil
	}
	var parts []string
	if strings.HasPrefix(path, "/") {
		parts = append(parts, "/")
		path = strings.TrimLeft(path, "/")
	}
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
