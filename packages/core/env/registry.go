package env

import (
	"errors"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/abdul-hamid-achik/spag/packages/store"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultName is the environment written to by env set when none is
	// active.
	DefaultName = "default"

	environmentsDir = "environments"
	activeDoc       = "active.yml"
)

type activeState struct {
	Environment string `yaml:"environment"`
}

// Listing is one row of List.
type Listing struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Registry persists environments in a Store. Every mutation is saved before
// the method returns.
type Registry struct {
	store *store.Store
}

func NewRegistry(s *store.Store) *Registry {
	return &Registry{store: s}
}

func docName(name string) string {
	return path.Join(environmentsDir, store.EnsureYAMLExtension(name))
}

// ActiveName returns the name of the active environment, or "" if none is
// active.
func (r *Registry) ActiveName() (string, error) {
	var state activeState
	if _, err := r.store.LoadOptional(activeDoc, &state); err != nil {
		return "", err
	}
	return strings.TrimSpace(state.Environment), nil
}

// Target returns the environment a mutation without an explicit name applies
// to: the active one, or DefaultName.
func (r *Registry) Target(name string) (string, error) {
	if name != "" {
		return name, ValidateName(name)
	}
	active, err := r.ActiveName()
	if err != nil {
		return "", err
	}
	if active == "" {
		return DefaultName, nil
	}
	return active, nil
}

func (r *Registry) load(name string) (*Environment, bool, error) {
	if err := ValidateName(name); err != nil {
		return nil, false, err
	}
	env := newEnvironment(name)
	found, err := r.store.LoadOptional(docName(name), env)
	if err != nil {
		return nil, false, err
	}
	if env.Variables == nil {
		env.Variables = make(map[string]string)
	}
	env.Name = name
	return env, found, nil
}

func (r *Registry) save(env *Environment) error {
	if err := r.store.Save(docName(env.Name), env); err != nil {
		return err
	}
	// The first environment ever written becomes active.
	active, err := r.ActiveName()
	if err != nil {
		return err
	}
	if active == "" {
		return r.store.Save(activeDoc, activeState{Environment: env.Name})
	}
	return nil
}

// Get returns the named environment.
func (r *Registry) Get(name string) (*Environment, error) {
	env, found, err := r.load(name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errdef.New(errdef.CodeEnvironmentNotFound, "environment %q not found", name).WithSubject(name)
	}
	active, err := r.ActiveName()
	if err != nil {
		return nil, err
	}
	env.Active = active == name
	return env, nil
}

// Active returns the active environment.
func (r *Registry) Active() (*Environment, error) {
	name, err := r.ActiveName()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errdef.New(errdef.CodeNoActiveEnvironment, "no active environment, run 'spag env set' or 'spag env activate'")
	}
	return r.Get(name)
}

// Set upserts key in the named environment, creating the environment if
// needed. The reserved key "endpoint" sets the endpoint.
func (r *Registry) Set(name, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errdef.New(errdef.CodeUsage, "variable name is empty")
	}
	env, _, err := r.load(name)
	if err != nil {
		return err
	}
	if key == EndpointKey {
		env.Endpoint = value
	} else {
		env.Variables[key] = value
	}
	if err := r.save(env); err != nil {
		return err
	}
	log.Debug().Str("environment", name).Str("key", key).Msg("variable set")
	return nil
}

// SetHeader upserts a default header. An existing header with the same name,
// compared case-insensitively, keeps its position.
func (r *Registry) SetHeader(name string, h request.Header) error {
	env, _, err := r.load(name)
	if err != nil {
		return err
	}
	env.DefaultHeaders = env.DefaultHeaders.Set(h.Name, h.Value)
	if err := r.save(env); err != nil {
		return err
	}
	log.Debug().Str("environment", name).Str("header", h.Name).Msg("default header set")
	return nil
}

// Unset removes key from the named environment. Removing a missing key is
// not an error. A key naming a default header removes that header too.
func (r *Registry) Unset(name, key string) error {
	env, err := r.Get(name)
	if err != nil {
		return err
	}
	if key == EndpointKey {
		env.Endpoint = ""
	}
	delete(env.Variables, key)
	env.DefaultHeaders = env.DefaultHeaders.Del(key)
	return r.store.Save(docName(name), env)
}

// Clear deletes the named environment. If it was active, no environment is
// active afterwards.
func (r *Registry) Clear(name string) error {
	if _, err := r.Get(name); err != nil {
		return err
	}
	if err := r.store.Remove(docName(name)); err != nil {
		return err
	}
	active, err := r.ActiveName()
	if err != nil {
		return err
	}
	if active == name {
		return r.Deactivate()
	}
	return nil
}

// Activate marks the named environment active.
func (r *Registry) Activate(name string) error {
	if _, err := r.Get(name); err != nil {
		return err
	}
	return r.store.Save(activeDoc, activeState{Environment: name})
}

// Deactivate leaves no environment active.
func (r *Registry) Deactivate() error {
	return r.store.Remove(activeDoc)
}

// List returns every environment, sorted by name.
func (r *Registry) List() ([]Listing, error) {
	entries, err := os.ReadDir(r.store.Path(environmentsDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errdef.Wrap(errdef.CodeDocumentIO, err, "list environments")
	}
	active, err := r.ActiveName()
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !store.HasValidExtension(e.Name()) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	slices.Sort(names)
	names = slices.Compact(names)

	listing := make([]Listing, 0, len(names))
	for _, name := range names {
		listing = append(listing, Listing{Name: name, Active: name == active})
	}
	return listing, nil
}

type snapshot struct {
	Name           string            `yaml:"name"`
	Active         bool              `yaml:"active"`
	Endpoint       string            `yaml:"endpoint,omitempty"`
	Variables      map[string]string `yaml:"variables"`
	DefaultHeaders request.Headers   `yaml:"default_headers,omitempty"`
}

// Show renders the named environment as YAML. An empty name shows the active
// environment.
func (r *Registry) Show(name string) (string, error) {
	var (
		env *Environment
		err error
	)
	if name == "" {
		env, err = r.Active()
	} else {
		env, err = r.Get(name)
	}
	if err != nil {
		return "", err
	}
	data, err := store.Marshal(snapshot{
		Name:           env.Name,
		Active:         env.Active,
		Endpoint:       env.Endpoint,
		Variables:      env.Variables,
		DefaultHeaders: env.DefaultHeaders,
	})
	if err != nil {
		return "", errdef.Wrap(errdef.CodeDocumentIO, err, "render environment %s", env.Name)
	}
	return string(data), nil
}
