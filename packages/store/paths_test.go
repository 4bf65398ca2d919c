package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureExtension(t *testing.T) {
	tests := []struct {
		filename string
		ext      string
		expected string
	}{
		{"abc", "yml", "abc.yml"},
		{"abc.", ".yml", "abc.yml"},
		{"abc.yml", "yml", "abc.yml"},
		{"abc.poo", "yml", "abc.poo.yml"},
		{"abcyml", "yml", "abcyml.yml"},
		{"dir/abc", ".yaml", "dir/abc.yaml"},
		{"abc", "", "abc"},
		{"abc", "yml.", "abc.yml"},
	}

	for _, tt := range tests {
		t.Run(tt.filename+"+"+tt.ext, func(t *testing.T) {
			once := EnsureExtension(tt.filename, tt.ext)
			assert.Equal(t, tt.expected, once)
			assert.Equal(t, once, EnsureExtension(once, tt.ext), "must be idempotent")
		})
	}
}

func TestEnsureYAMLExtension(t *testing.T) {
	assert.Equal(t, "req.yml", EnsureYAMLExtension("req"))
	assert.Equal(t, "req.yaml", EnsureYAMLExtension("req.yaml"))
	assert.Equal(t, "req.yml", EnsureYAMLExtension("req.yml"))
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path     string
		expected []string
	}{
		{"a/b/c.yml", []string{"a", "b", "c.yml"}},
		{"/a/b", []string{"/", "a", "b"}},
		{"c.yml", []string{"c.yml"}},
		{"a//b/", []string{"a", "b"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitPath(tt.path))
		})
	}
}
