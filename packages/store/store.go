package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultDir is the state directory created in the working directory
	DefaultDir = ".spag"

	dirPerm  = 0755
	filePerm = 0644
)

// Store reads and writes YAML documents below a root directory.
// Document names are slash-separated paths relative to the root.
type Store struct {
	root string
}

func New(root string) *Store {
	if root == "" {
		root = DefaultDir
	}
	return &Store{root: root}
}

// Root returns the directory documents are stored under.
func (s *Store) Root() string {
	return s.root
}

// Path returns the filesystem path of the named document.
func (s *Store) Path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Exists reports whether the named document is present.
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && !info.IsDir()
}

// EnsureDir creates the named directory below the root. It fails if a regular
// file is in the way.
func (s *Store) EnsureDir(name string) error {
	return ensureDir(s.Path(name))
}

// Load decodes the named document into v.
func (s *Store) Load(name string, v any) error {
	found, err := s.LoadOptional(name, v)
	if err != nil {
		return err
	}
	if !found {
		return errdef.New(errdef.CodeDocumentIO, "document %s not found", s.Path(name)).WithSubject(name)
	}
	return nil
}

// LoadOptional decodes the named document into v. It returns false, and
// leaves v untouched, when the document does not exist. An empty document
// counts as present.
func (s *Store) LoadOptional(name string, v any) (bool, error) {
	path := s.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, errdef.Wrap(errdef.CodeDocumentIO, err, "read %s", path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return true, nil
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return false, errdef.Wrap(errdef.CodeDocumentIO, err, "parse %s", path)
	}
	return true, nil
}

// Save encodes v as YAML and atomically replaces the named document.
func (s *Store) Save(name string, v any) error {
	path := s.Path(name)
	data, err := Marshal(v)
	if err != nil {
		return errdef.Wrap(errdef.CodeDocumentIO, err, "encode %s", path)
	}
	if err := WriteFileAtomic(path, data); err != nil {
		return err
	}
	log.Debug().Str("path", path).Int("bytes", len(data)).Msg("document saved")
	return nil
}

// Remove deletes the named document. Removing a missing document is not an
// error.
func (s *Store) Remove(name string) error {
	path := s.Path(name)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errdef.Wrap(errdef.CodeDocumentIO, err, "remove %s", path)
	}
	return nil
}

// Marshal encodes v as YAML with two-space indentation.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it into
// place, so readers never observe a partial document.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := ensureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errdef.Wrap(errdef.CodeDocumentIO, err, "create temp file for %s", path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errdef.Wrap(errdef.CodeDocumentIO, err, "write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errdef.Wrap(errdef.CodeDocumentIO, err, "close %s", tmpName)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		os.Remove(tmpName)
		return errdef.Wrap(errdef.CodeDocumentIO, err, "chmod %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errdef.Wrap(errdef.CodeDocumentIO, err, "replace %s", path)
	}
	return nil
}

func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errdef.New(errdef.CodeDocumentIO, "cannot create directory %s: a regular file is in the way", dir)
		}
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return errdef.Wrap(errdef.CodeDocumentIO, err, "stat %s", dir)
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return errdef.Wrap(errdef.CodeDocumentIO, err, "create directory %s", dir)
	}
	return nil
}

// ReadFile reads a file outside the store, classifying failures as document
// errors.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errdef.New(errdef.CodeDocumentIO, "file %s not found", path).WithSubject(path)
		}
		return nil, errdef.Wrap(errdef.CodeDocumentIO, err, "read %s", path)
	}
	return data, nil
}
