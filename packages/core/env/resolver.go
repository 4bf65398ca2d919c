package env

import (
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/abdul-hamid-achik/spag/packages/builtin"
	"github.com/abdul-hamid-achik/spag/packages/errdef"
)

var variablePattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Remembered resolves dotted paths such as last.response.body.id against
// previously saved requests.
type Remembered interface {
	Lookup(path string) (string, bool, error)
}

// Resolver expands {{placeholders}}. Expansion is all-or-nothing: either every
// placeholder in the input resolves or an UnresolvedVariable error is
// returned.
//
// A placeholder holds a comma-separated list of items tried in order:
//
//	{{name}}            a variable
//	{{$HOME}}           an OS environment variable
//	{{uuid()}}          a built-in function call
//	{{last.status}}     a remembered response
//	{{token, 'anon'}}   a quoted literal, usually as the final fallback
type Resolver struct {
	variables  map[string]string
	funcs      *builtin.Registry
	remembered Remembered
	lookupEnv  func(string) (string, bool)
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFuncs replaces the built-in function registry.
func WithFuncs(funcs *builtin.Registry) ResolverOption {
	return func(r *Resolver) {
		r.funcs = funcs
	}
}

// WithRemembered enables dotted lookups into remembered requests.
func WithRemembered(rem Remembered) ResolverOption {
	return func(r *Resolver) {
		r.remembered = rem
	}
}

// WithLookupEnv replaces os.LookupEnv for {{$NAME}} placeholders.
func WithLookupEnv(fn func(string) (string, bool)) ResolverOption {
	return func(r *Resolver) {
		r.lookupEnv = fn
	}
}

func NewResolver(variables map[string]string, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		variables: variables,
		funcs:     builtin.NewRegistry(),
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HasPlaceholders reports whether s contains any {{...}} sequence.
func HasPlaceholders(s string) bool {
	return strings.Contains(s, "{{")
}

// Expand substitutes every placeholder in s. Substituted values are not
// expanded again.
func (r *Resolver) Expand(s string) (string, error) {
	if !HasPlaceholders(s) {
		return s, nil
	}

	var b strings.Builder
	last := 0
	for _, loc := range variablePattern.FindAllStringSubmatchIndex(s, -1) {
		literal := s[last:loc[0]]
		if strings.Contains(literal, "{{") {
			return "", unclosed(literal)
		}
		b.WriteString(literal)

		expr := s[loc[2]:loc[3]]
		value, ok, err := r.evaluate(expr)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", errdef.UnresolvedVariable(strings.TrimSpace(expr))
		}
		b.WriteString(value)
		last = loc[1]
	}
	tail := s[last:]
	if strings.Contains(tail, "{{") {
		return "", unclosed(tail)
	}
	b.WriteString(tail)
	return b.String(), nil
}

// Unresolved returns the placeholders in s that cannot be resolved, in order
// of first appearance.
func (r *Resolver) Unresolved(s string) []string {
	var missing []string
	for _, m := range variablePattern.FindAllStringSubmatch(s, -1) {
		expr := strings.TrimSpace(m[1])
		if _, ok, err := r.evaluate(expr); (ok && err == nil) || slices.Contains(missing, expr) {
			continue
		}
		missing = append(missing, expr)
	}
	return missing
}

func (r *Resolver) evaluate(expr string) (string, bool, error) {
	items := splitItems(expr)
	if len(items) == 0 {
		return "", false, errdef.MalformedTemplate("empty placeholder {{%s}}", expr)
	}
	for _, item := range items {
		value, ok, err := r.evaluateItem(item)
		if err != nil {
			return "", false, err
		}
		if ok {
			return value, true, nil
		}
	}
	return "", false, nil
}

func (r *Resolver) evaluateItem(item string) (string, bool, error) {
	if literal, ok := unquote(item); ok {
		return literal, true, nil
	}

	if name, ok := strings.CutPrefix(item, "$"); ok && !builtin.IsCall(item) {
		v, found := r.lookupEnv(name)
		return v, found, nil
	}

	if builtin.IsCall(item) {
		value, ok, err := r.funcs.Call(item)
		if err != nil {
			return "", false, errdef.MalformedTemplate("{{%s}}: %v", item, err)
		}
		return value, ok, nil
	}

	if v, ok := r.variables[item]; ok {
		return v, true, nil
	}

	if strings.Contains(item, ".") && r.remembered != nil {
		return r.remembered.Lookup(item)
	}
	return "", false, nil
}

// splitItems splits a fallback list on commas that are not inside quotes or
// a function call's parentheses.
func splitItems(expr string) []string {
	var (
		items []string
		cur   strings.Builder
		depth int
		quote byte
	)
	flush := func() {
		if item := strings.TrimSpace(cur.String()); item != "" {
			items = append(items, item)
		}
		cur.Reset()
	}
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == ',' && depth == 0:
			flush()
			continue
		}
		cur.WriteByte(c)
	}
	flush()
	return items
}

func unquote(item string) (string, bool) {
	if len(item) >= 2 && (item[0] == '"' || item[0] == '\'') && item[len(item)-1] == item[0] {
		return item[1 : len(item)-1], true
	}
	return "", false
}

func unclosed(s string) error {
	i := strings.Index(s, "{{")
	end := min(i+20, len(s))
	return errdef.MalformedTemplate("unclosed placeholder near %q", s[i:end])
}
