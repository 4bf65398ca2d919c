package env

import (
	"maps"
	"strings"

	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/errdef"
)

// EndpointKey is the reserved variable name that sets an environment's
// endpoint instead of a variable.
const EndpointKey = "endpoint"

// Environment is a named set of variables with an optional endpoint and
// default headers.
type Environment struct {
	Name           string            `yaml:"-" json:"name"`
	Endpoint       string            `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	Variables      map[string]string `yaml:"variables" json:"variables"`
	DefaultHeaders request.Headers   `yaml:"default_headers,omitempty" json:"defaultHeaders,omitempty"`
	Active         bool              `yaml:"-" json:"active"`
}

func newEnvironment(name string) *Environment {
	return &Environment{Name: name, Variables: make(map[string]string)}
}

// Clone returns a deep copy.
func (e *Environment) Clone() *Environment {
	if e == nil {
		return nil
	}
	c := *e
	c.Variables = maps.Clone(e.Variables)
	c.DefaultHeaders = e.DefaultHeaders.Clone()
	return &c
}

// Lookup returns the variable named key. It is safe on a nil environment.
func (e *Environment) Lookup(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	v, ok := e.Variables[key]
	return v, ok
}

// ValidateName rejects names that cannot be used as a document filename.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errdef.New(errdef.CodeUsage, "environment name is empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errdef.New(errdef.CodeUsage, "invalid environment name %q", name).WithSubject(name)
	}
	return nil
}

// MergeVariables layers variable maps; later sources win.
func MergeVariables(sources ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, src := range sources {
		maps.Copy(result, src)
	}
	return result
}
