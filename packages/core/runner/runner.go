package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/spag/packages/core/config"
	"github.com/abdul-hamid-achik/spag/packages/core/env"
	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/core/resolver"
	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/abdul-hamid-achik/spag/packages/history"
	"github.com/abdul-hamid-achik/spag/packages/http"
	"github.com/abdul-hamid-achik/spag/packages/remember"
	"github.com/abdul-hamid-achik/spag/packages/store"
	"github.com/rs/zerolog/log"
)

// UserAgent is sent when a request sets no User-Agent header. The CLI
// appends its version at startup.
var UserAgent = "spag"

// Executor sends a resolved template.
type Executor interface {
	Execute(ctx context.Context, t *request.Template) (*http.Response, error)
}

type Runner struct {
	config    *config.Config
	store     *store.Store
	registry  *env.Registry
	history   *history.Log
	remembers *remember.Remembers
	resolver  *resolver.Resolver
	client    Executor
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor replaces the HTTP client.
func WithExecutor(e Executor) Option {
	return func(r *Runner) {
		r.client = e
	}
}

// WithHistoryOptions passes options to the history log.
func WithHistoryOptions(opts ...history.Option) Option {
	return func(r *Runner) {
		r.history = history.New(r.store, append([]history.Option{history.WithSize(r.config.HistorySize)}, opts...)...)
	}
}

func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	st := store.New(cfg.StateDir)
	rem := remember.New(st)

	r := &Runner{
		config:    cfg,
		store:     st,
		registry:  env.NewRegistry(st),
		history:   history.New(st, history.WithSize(cfg.HistorySize)),
		remembers: rem,
		resolver: resolver.New(
			resolver.WithDefaultEndpoint(cfg.DefaultEndpoint),
			resolver.WithRemembered(rem),
		),
		client:   http.NewClient(clientOptions(cfg)...),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func clientOptions(cfg *config.Config) []http.ClientOption {
	opts := []http.ClientOption{
		http.WithTimeout(cfg.TimeoutDuration()),
		http.WithFollowRedirects(cfg.GetFollowRedirects()),
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithProxy(cfg.Proxy),
		http.WithUserAgent(UserAgent),
	}
	if cfg.MaxRedirects > 0 {
		opts = append(opts, http.WithMaxRedirects(cfg.MaxRedirects))
	}
	return opts
}

// Registry returns the environment registry the runner reads from.
func (r *Runner) Registry() *env.Registry {
	return r.registry
}

// History returns the history log the runner appends to.
func (r *Runner) History() *history.Log {
	return r.history
}

// Options describes one run.
type Options struct {
	Intent resolver.Intent
	// Headers are raw "Name: Value" overrides in command-line order.
	Headers []string
	// Environment names the environment to use instead of the active one.
	Environment string
	// EnvFile is an optional .env file whose variables sit under the
	// environment's.
	EnvFile string
	// With holds variables that override the environment's.
	With map[string]string
	// RememberAs names the remembered document. It defaults to the
	// lower-case method.
	RememberAs string
	DryRun     bool
}

// Result is the outcome of a run. Index is -1 for a dry run.
type Result struct {
	Request     *request.Template
	Response    *http.Response
	Index       int
	Environment string
}

// Run resolves, executes and records one request.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	environment, err := r.environment(opts.Environment)
	if err != nil {
		return nil, err
	}

	var defaults map[string]string
	if opts.EnvFile != "" {
		if defaults, err = env.LoadDotEnv(opts.EnvFile); err != nil {
			return nil, err
		}
	}

	resolved, err := r.resolver.Resolve(resolver.Input{
		Intent:      opts.Intent,
		Headers:     opts.Headers,
		Environment: environment,
		Defaults:    defaults,
		Overrides:   opts.With,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Request: resolved, Index: -1}
	if environment != nil {
		result.Environment = environment.Name
	}
	if opts.DryRun {
		return result, nil
	}

	resp, err := r.client.Execute(ctx, resolved)
	if err != nil {
		return nil, err
	}
	result.Response = resp

	index, err := r.history.Append(resolved, resp.Summary(r.config.HistoryBodyLimit))
	if err != nil {
		return result, err
	}
	result.Index = index

	name := opts.RememberAs
	if name == "" {
		name = strings.ToLower(resolved.Method.String())
	}
	if err := r.remembers.Save(name, &remember.Document{Request: resolved, Response: resp.Summary(0)}); err != nil {
		log.Warn().Err(err).Str("name", name).Msg("could not remember request")
	}

	return result, nil
}

// environment returns the named environment, or the active one. No active
// environment is not an error here; resolution fails later if a variable
// is needed.
func (r *Runner) environment(name string) (*env.Environment, error) {
	if name != "" {
		return r.registry.Get(name)
	}
	e, err := r.registry.Active()
	if errors.Is(err, errdef.ErrNoActiveEnvironment) {
		return nil, nil
	}
	return e, err
}

// FindRequest locates a request file. key is tried as a path first, then
// looked up by name below the configured request directory.
func (r *Runner) FindRequest(key, dir string) (string, error) {
	if info, err := os.Stat(key); err == nil && !info.IsDir() {
		return key, nil
	}
	if dir == "" {
		dir = r.config.RequestDir
	}
	if dir == "" {
		dir = "."
	}
	lookup, err := store.NewLookup(dir)
	if err != nil {
		return "", err
	}
	return lookup.Path(key)
}

// LoadRequest finds and parses a request file.
func (r *Runner) LoadRequest(key, dir string) (string, *request.Template, error) {
	path, err := r.FindRequest(key, dir)
	if err != nil {
		return "", nil, err
	}
	t, err := request.LoadFile(path)
	if err != nil {
		return "", nil, err
	}
	return path, t, nil
}

// RequestName is the name a request file is remembered under: its file
// name without extension.
func RequestName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
