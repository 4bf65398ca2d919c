package remember

import (
	"path"
	"strings"

	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/abdul-hamid-achik/spag/packages/http"
	"github.com/abdul-hamid-achik/spag/packages/store"
)

const (
	// LastName is the document every execution is remembered under.
	LastName = "last"

	dir = "remembers"
)

// Document is a remembered request and, if it completed, its response.
type Document struct {
	Request  *request.Template `yaml:"request"`
	Response *http.Summary     `yaml:"response,omitempty"`
}

// Remembers reads and writes remembered documents in a Store.
type Remembers struct {
	store *store.Store
}

func New(s *store.Store) *Remembers {
	return &Remembers{store: s}
}

func docName(name string) (string, error) {
	name = strings.Trim(path.Clean("/"+strings.ReplaceAll(name, `\`, "/")), "/")
	if name == "" || name == "." {
		return "", errdef.New(errdef.CodeUsage, "remembered request name is empty")
	}
	return path.Join(dir, store.EnsureYAMLExtension(name)), nil
}

// Save writes doc under name and under LastName.
func (r *Remembers) Save(name string, doc *Document) error {
	names := []string{LastName}
	if name != "" && name != LastName {
		names = append(names, name)
	}
	for _, n := range names {
		dn, err := docName(n)
		if err != nil {
			return err
		}
		if err := r.store.Save(dn, doc); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the document remembered under name. found is false if there
// is none.
func (r *Remembers) Load(name string) (doc *Document, found bool, err error) {
	dn, err := docName(name)
	if err != nil {
		return nil, false, err
	}
	doc = &Document{}
	found, err = r.store.LoadOptional(dn, doc)
	if err != nil || !found {
		return nil, found, err
	}
	return doc, true, nil
}

// Lookup resolves a dotted path whose first segment names a remembered
// document, e.g. last.response.body.id. A missing document or field is
// reported with found false.
func (r *Remembers) Lookup(p string) (string, bool, error) {
	name, rest, ok := strings.Cut(p, ".")
	if !ok || name == "" || rest == "" {
		return "", false, nil
	}
	doc, found, err := r.Load(name)
	if err != nil || !found {
		return "", false, err
	}
	v, ok := NewExtractor(doc).Extract(rest)
	return v, ok, nil
}
