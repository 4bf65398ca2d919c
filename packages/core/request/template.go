package request

import (
	"fmt"
	neturl "net/url"
	"strings"

	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"golang.org/x/net/http/httpguts"
)

// Method is one of the supported HTTP verbs.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// Methods lists the supported verbs in display order.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete}

// ParseMethod accepts a verb in any case.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", errdef.MalformedTemplate("unsupported method %q", s)
	}
	return m, nil
}

// Valid reports whether m is one of Methods.
func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

func (m Method) String() string {
	return string(m)
}

// Template is a single HTTP request. Before resolution Resource, Body and
// header values may hold {{placeholders}}; a resolved Template holds none.
type Template struct {
	Method   Method  `yaml:"method" json:"method"`
	Endpoint string  `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	Resource string  `yaml:"resource" json:"resource"`
	Headers  Headers `yaml:"headers,omitempty" json:"headers"`
	Body     string  `yaml:"body,omitempty" json:"body,omitempty"`
}

// Clone returns a deep copy of t.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	c := *t
	c.Headers = t.Headers.Clone()
	return &c
}

// URL joins the endpoint and resource with exactly one slash between them.
// Resources starting with '?' or '#' are appended verbatim.
func (t *Template) URL() string {
	return JoinURL(t.Endpoint, t.Resource)
}

// JoinURL joins an endpoint and a resource path.
func JoinURL(endpoint, resource string) string {
	if resource == "" {
		return endpoint
	}
	if strings.HasPrefix(resource, "?") || strings.HasPrefix(resource, "#") {
		return endpoint + resource
	}
	return strings.TrimRight(endpoint, "/") + "/" + strings.TrimLeft(resource, "/")
}

// Validate checks that t is well formed: a supported method, a non-empty
// resource, sendable header names and values, and an http(s) endpoint with a
// host.
func (t *Template) Validate() error {
	if !t.Method.Valid() {
		return errdef.MalformedTemplate("unsupported method %q", t.Method)
	}
	if strings.TrimSpace(t.Resource) == "" {
		return errdef.MalformedTemplate("resource is empty")
	}
	for i, h := range t.Headers {
		if err := validateHeader(h); err != nil {
			return errdef.MalformedTemplate("header %d: %v", i+1, err)
		}
	}
	if err := ValidateURL(t.Endpoint); err != nil {
		return errdef.MalformedTemplate("endpoint %q: %v", t.Endpoint, err)
	}
	return nil
}

func validateHeader(h Header) error {
	if h.Name == "" {
		return fmt.Errorf("empty header name")
	}
	if !httpguts.ValidHeaderFieldName(h.Name) {
		return fmt.Errorf("header name %q is not a valid HTTP token", h.Name)
	}
	if strings.ContainsAny(h.Value, "\r\n") {
		return fmt.Errorf("header %s value contains a line break", h.Name)
	}
	if !httpguts.ValidHeaderFieldValue(h.Value) {
		return fmt.Errorf("header %s value contains a control character", h.Name)
	}
	return nil
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL is empty")
	}

	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	// Check for valid scheme
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", u.Scheme)
	}

	// Check for valid host
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}

// SplitURL separates an absolute URL into its endpoint (scheme, userinfo and
// host) and resource (path, query and fragment). Both halves keep the raw
// text, placeholders included. ok is false for relative references.
func SplitURL(raw string) (endpoint, resource string, ok bool) {
	u, err := neturl.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", "", false
	}
	sep := strings.Index(raw, "://")
	if sep < 0 {
		return "", "", false
	}
	authority := raw[sep+len("://"):]
	end := strings.IndexAny(authority, "/?#")
	if end < 0 {
		end = len(authority)
	}
	endpoint = raw[:sep+len("://")+end]
	resource = authority[end:]
	if resource == "" {
		resource = "/"
	}
	return endpoint, resource, true
}
