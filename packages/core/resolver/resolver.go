package resolver

import (
	"github.com/abdul-hamid-achik/spag/packages/builtin"
	"github.com/abdul-hamid-achik/spag/packages/core/env"
	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/rs/zerolog/log"
)

// Intent is what the user asked for: either a method and resource, or a
// template loaded from a request file.
type Intent struct {
	Method   request.Method
	Resource string
	// Template, when set, supplies method, resource, endpoint, headers and
	// body. Method and Resource above are then ignored.
	Template *request.Template
	// Endpoint overrides every other endpoint source except an absolute
	// resource URL.
	Endpoint string
	// Body replaces the template body when HasBody is set.
	Body    string
	HasBody bool
}

// Input is everything a resolution depends on.
type Input struct {
	Intent Intent
	// Headers are raw "Name: Value" overrides in command-line order.
	Headers []string
	// Environment is the active environment, or nil.
	Environment *env.Environment
	// Defaults are variables layered under the environment's, e.g. from a
	// .env file.
	Defaults map[string]string
	// Overrides are variables layered over the environment's, e.g. --with.
	Overrides map[string]string
}

type Resolver struct {
	defaultEndpoint string
	envOpts         []env.ResolverOption
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDefaultEndpoint sets the endpoint used when nothing else provides one.
func WithDefaultEndpoint(endpoint string) Option {
	return func(r *Resolver) {
		r.defaultEndpoint = endpoint
	}
}

// WithRemembered enables {{last.response.body.id}} style placeholders.
func WithRemembered(rem env.Remembered) Option {
	return func(r *Resolver) {
		r.envOpts = append(r.envOpts, env.WithRemembered(rem))
	}
}

// WithFuncs replaces the built-in function registry.
func WithFuncs(funcs *builtin.Registry) Option {
	return func(r *Resolver) {
		r.envOpts = append(r.envOpts, env.WithFuncs(funcs))
	}
}

// WithLookupEnv replaces os.LookupEnv for {{$NAME}} placeholders.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(r *Resolver) {
		r.envOpts = append(r.envOpts, env.WithLookupEnv(fn))
	}
}

func New(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve produces a validated template with every placeholder substituted.
func (r *Resolver) Resolve(in Input) (*request.Template, error) {
	cliHeaders, err := request.ParseHeaders(in.Headers)
	if err != nil {
		return nil, err
	}

	base, err := baseTemplate(in.Intent)
	if err != nil {
		return nil, err
	}

	var vars map[string]string
	if in.Environment != nil {
		vars = in.Environment.Variables
	}
	expander := env.NewResolver(env.MergeVariables(in.Defaults, vars, in.Overrides), r.envOpts...)

	resource, err := expander.Expand(base.Resource)
	if err != nil {
		return nil, err
	}

	var endpoint, source string
	if absEndpoint, path, ok := request.SplitURL(resource); ok {
		endpoint, source, resource = absEndpoint, "resource", path
	} else {
		var raw string
		raw, source = r.endpoint(in, base)
		if raw == "" {
			return nil, errdef.New(errdef.CodeNoEndpoint, "no endpoint: pass --endpoint, use an absolute URL or run 'spag env set endpoint <url>'")
		}
		if endpoint, err = expander.Expand(raw); err != nil {
			return nil, err
		}
	}

	body, err := expander.Expand(base.Body)
	if err != nil {
		return nil, err
	}

	var envHeaders request.Headers
	if in.Environment != nil {
		envHeaders = in.Environment.DefaultHeaders
	}
	layers := make([]request.Headers, 0, 3)
	for _, hs := range []request.Headers{base.Headers, envHeaders, cliHeaders} {
		expanded, err := expandHeaders(expander, hs)
		if err != nil {
			return nil, err
		}
		layers = append(layers, expanded)
	}

	resolved := &request.Template{
		Method:   base.Method,
		Endpoint: endpoint,
		Resource: resource,
		Headers:  request.Merge(layers[0], layers[1:]...),
		Body:     body,
	}
	if err := resolved.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("method", resolved.Method.String()).
		Str("url", resolved.URL()).
		Str("endpoint_source", source).
		Int("headers", len(resolved.Headers)).
		Msg("request resolved")
	return resolved, nil
}

func baseTemplate(intent Intent) (*request.Template, error) {
	var base *request.Template
	if intent.Template != nil {
		base = intent.Template.Clone()
	} else {
		method, err := request.ParseMethod(intent.Method.String())
		if err != nil {
			return nil, err
		}
		base = &request.Template{Method: method, Resource: intent.Resource}
	}
	if intent.HasBody {
		base.Body = intent.Body
	}
	if base.Resource == "" {
		return nil, errdef.MalformedTemplate("resource is empty")
	}
	return base, nil
}

// endpoint picks the unexpanded endpoint and names where it came from.
func (r *Resolver) endpoint(in Input, base *request.Template) (string, string) {
	e := in.Environment
	switch {
	case in.Intent.Endpoint != "":
		return in.Intent.Endpoint, "flag"
	case base.Endpoint != "":
		return base.Endpoint, "template"
	case e != nil && e.Endpoint != "":
		return e.Endpoint, "environment"
	case e != nil && e.Variables[env.EndpointKey] != "":
		return e.Variables[env.EndpointKey], "variable"
	case r.defaultEndpoint != "":
		return r.defaultEndpoint, "config"
	}
	return "", ""
}

func expandHeaders(expander *env.Resolver, hs request.Headers) (request.Headers, error) {
	if len(hs) == 0 {
		return nil, nil
	}
	out := make(request.Headers, 0, len(hs))
	for _, h := range hs {
		value, err := expander.Expand(h.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, request.Header{Name: h.Name, Value: value})
	}
	return out, nil
}
