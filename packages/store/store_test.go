package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string            `yaml:"name"`
	Items map[string]string `yaml:"items,omitempty"`
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), ".spag"))

	in := doc{Name: "dev", Items: map[string]string{"id": "42"}}
	require.NoError(t, s.Save("environments/dev.yml", in))
	assert.True(t, s.Exists("environments/dev.yml"))

	var out doc
	require.NoError(t, s.Load("environments/dev.yml", &out))
	assert.Equal(t, in, out)
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	require.NoError(t, s.Save("history.yml", []string{"a"}))
	require.NoError(t, s.Save("history.yml", []string{"a", "b"}))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "history.yml", entries[0].Name())
}

func TestStore_LoadMissing(t *testing.T) {
	s := New(t.TempDir())

	var out doc
	err := s.Load("missing.yml", &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, errdef.ErrDocumentIO)
	assert.Contains(t, err.Error(), "not found")

	found, err := s.LoadOptional("missing.yml", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_LoadMalformed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.yml"), []byte("name: [unclosed"), 0644))

	var out doc
	err := New(root).Load("bad.yml", &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, errdef.ErrDocumentIO)
	assert.Contains(t, err.Error(), "parse")
}

func TestStore_LoadEmptyDocument(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "empty.yml"), nil, 0644))

	out := doc{Name: "kept"}
	found, err := New(root).LoadOptional("empty.yml", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "kept", out.Name)
}

func TestStore_EnsureDirRegularFileInTheWay(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "remembers"), []byte("x"), 0644))

	err := New(root).EnsureDir("remembers")
	require.Error(t, err)
	assert.ErrorIs(t, err, errdef.ErrDocumentIO)
}

func TestStore_Remove(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Save("active.yml", map[string]string{"environment": "dev"}))

	require.NoError(t, s.Remove("active.yml"))
	assert.False(t, s.Exists("active.yml"))
	assert.NoError(t, s.Remove("active.yml"))
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.yml"))
	assert.ErrorIs(t, err, errdef.ErrDocumentIO)
}
