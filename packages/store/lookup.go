package store

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/abdul-hamid-achik/spag/packages/errdef"
)

// Lookup indexes request files by their unqualified filename. Given
//
//	requests/
//	  v1/create_thing.yml
//	  v2/create_thing.yml
//	  delete_thing.yml
//
// "delete_thing" resolves directly, while "create_thing.yml" is ambiguous and
// must be qualified as "v1/create_thing.yml".
type Lookup struct {
	dirs  []string
	files map[string][]string
}

// NewLookup walks each directory and indexes every YAML file found.
func NewLookup(dirs ...string) (*Lookup, error) {
	l := &Lookup{files: make(map[string][]string)}
	for _, dir := range dirs {
		if err := l.AddDir(dir); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// AddDir indexes the YAML files below dir. Directories already added are
// ignored.
func (l *Lookup) AddDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errdef.Wrap(errdef.CodeDocumentIO, err, "resolve directory %s", dir)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return errdef.New(errdef.CodeRequestNotFound, "request directory %s not found", dir).WithSubject(dir)
	}
	if slices.Contains(l.dirs, abs) {
		return nil
	}
	l.dirs = append(l.dirs, abs)

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !HasValidExtension(d.Name()) {
			return nil
		}
		if !slices.Contains(l.files[d.Name()], path) {
			l.files[d.Name()] = append(l.files[d.Name()], path)
		}
		return nil
	})
	if err != nil {
		return errdef.Wrap(errdef.CodeDocumentIO, err, "walk %s", dir)
	}
	return nil
}

// Path returns the unique file matching key. Keys may omit the extension and
// may be qualified with parent directories to disambiguate.
func (l *Lookup) Path(key string) (string, error) {
	key = strings.Trim(filepath.ToSlash(key), "/")
	if key == "" {
		return "", errdef.New(errdef.CodeRequestNotFound, "empty request name")
	}

	candidates := []string{key}
	if !HasValidExtension(key) {
		candidates = nil
		for _, ext := range ValidExtensions {
			candidates = append(candidates, key+ext)
		}
	}

	var matches []string
	for _, candidate := range candidates {
		matches = append(matches, l.match(candidate)...)
	}

	switch len(matches) {
	case 0:
		return "", errdef.New(errdef.CodeRequestNotFound, "no request files matching '%s'", key).WithSubject(key)
	case 1:
		return matches[0], nil
	default:
		slices.Sort(matches)
		return "", errdef.New(errdef.CodeRequestNotFound, "ambiguous request name '%s', pick from %s", key, strings.Join(matches, ", ")).WithSubject(key)
	}
}

func (l *Lookup) match(key string) []string {
	parts := SplitPath(key)
	if len(parts) == 0 {
		return nil
	}
	paths := l.files[parts[len(parts)-1]]
	if len(parts) == 1 {
		return slices.Clone(paths)
	}

	var matches []string
	for _, path := range paths {
		pathParts := SplitPath(path)
		if len(pathParts) < len(parts) {
			continue
		}
		if slices.Equal(pathParts[len(pathParts)-len(parts):], parts) {
			matches = append(matches, path)
		}
	}
	return matches
}

// Files returns every indexed file, sorted.
func (l *Lookup) Files() []string {
	var all []string
	for _, paths := range l.files {
		all = append(all, paths...)
	}
	slices.Sort(all)
	return all
}

// Dirs returns the absolute directories that were indexed.
func (l *Lookup) Dirs() []string {
	return slices.Clone(l.dirs)
}
