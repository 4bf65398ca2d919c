// Package curl converts curl command lines into spag request templates.
package curl

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/abdul-hamid-achik/spag/packages/store"
)

var (
	namePattern    = regexp.MustCompile(`[^a-z0-9]+`)
	urlPathPattern = regexp.MustCompile(`^(?:https?://[^/?#]+)?(/[^?#]*)?`)
)

// Converter converts curl commands to request templates.
type Converter struct {
	keepEndpoint bool
}

// Option is a functional option for Converter.
type Option func(*Converter)

// WithEndpoint controls whether the command's scheme and host are kept in the
// template. Without them the request is sent to the environment's endpoint.
func WithEndpoint(keep bool) Option {
	return func(c *Converter) {
		c.keepEndpoint = keep
	}
}

func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		keepEndpoint: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Converted is a parsed curl command.
type Converted struct {
	Name     string
	Template *request.Template
	// Insecure and FollowRedirects record -k and -L. They have no place in a
	// request file and are reported to the caller only.
	Insecure        bool
	FollowRedirects bool
}

// Convert parses a single curl command.
func (c *Converter) Convert(curlCmd string) (*Converted, error) {
	curlCmd = strings.TrimSpace(curlCmd)
	if curlCmd == "curl" {
		return nil, errdef.MalformedTemplate("no URL specified")
	}
	tokens := tokenize(strings.TrimPrefix(curlCmd, "curl "))

	var (
		method    string
		rawURL    string
		basicAuth string
		headers   request.Headers
		body      string
		hasBody   bool
		out       = &Converted{}
	)

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		value := func() (string, error) {
			if i+1 >= len(tokens) {
				return "", errdef.MalformedTemplate("missing value for %s", token)
			}
			i++
			return tokens[i], nil
		}

		switch token {
		case "-X", "--request":
			v, err := value()
			if err != nil {
				return nil, err
			}
			method = strings.ToUpper(v)
		case "-H", "--header":
			v, err := value()
			if err != nil {
				return nil, err
			}
			h, err := request.ParseHeader(v)
			if err != nil {
				return nil, err
			}
			headers = headers.Add(h.Name, h.Value)
		case "-d", "--data", "--data-raw", "--data-binary":
			v, err := value()
			if err != nil {
				return nil, err
			}
			if hasBody {
				body += "&" + v
			} else {
				body = v
			}
			hasBody = true
		case "-u", "--user":
			v, err := value()
			if err != nil {
				return nil, err
			}
			basicAuth = v
		case "-A", "--user-agent":
			v, err := value()
			if err != nil {
				return nil, err
			}
			headers = headers.Set("User-Agent", v)
		case "-e", "--referer":
			v, err := value()
			if err != nil {
				return nil, err
			}
			headers = headers.Set("Referer", v)
		case "-b", "--cookie":
			v, err := value()
			if err != nil {
				return nil, err
			}
			headers = headers.Set("Cookie", v)
		case "-k", "--insecure":
			out.Insecure = true
		case "-L", "--location":
			out.FollowRedirects = true
		case "--url":
			v, err := value()
			if err != nil {
				return nil, err
			}
			rawURL = v
		default:
			if strings.HasPrefix(token, "-") {
				// Skip unknown flags with potential values
				if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") && !isURL(tokens[i+1]) {
					i++
				}
				continue
			}
			if rawURL == "" && isURL(token) {
				rawURL = token
			}
		}
	}

	if rawURL == "" {
		return nil, errdef.MalformedTemplate("no URL found in curl command")
	}

	if method == "" {
		method = "GET"
		if hasBody {
			method = "POST"
		}
	}
	m, err := request.ParseMethod(method)
	if err != nil {
		return nil, err
	}

	if basicAuth != "" {
		token := base64.StdEncoding.EncodeToString([]byte(basicAuth))
		headers = headers.Set("Authorization", "Basic "+token)
	}

	t := &request.Template{Method: m, Resource: rawURL, Headers: headers, Body: body}
	if endpoint, resource, ok := request.SplitURL(rawURL); ok {
		t.Resource = resource
		if c.keepEndpoint {
			t.Endpoint = endpoint
		}
	}
	out.Template = t
	out.Name = generateName(rawURL, m)
	return out, nil
}

// ConvertAll converts every command in data. Commands are separated by
// newlines, may continue over several lines with a trailing backslash, and
// lines starting with # are ignored.
func (c *Converter) ConvertAll(data []byte) ([]*Converted, error) {
	var (
		commands   []string
		currentCmd strings.Builder
	)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasSuffix(line, "\\") {
			currentCmd.WriteString(strings.TrimSuffix(line, "\\"))
			currentCmd.WriteString(" ")
			continue
		}
		currentCmd.WriteString(line)
		commands = append(commands, currentCmd.String())
		currentCmd.Reset()
	}
	if err := scanner.Err(); err != nil {
		return nil, errdef.Wrap(errdef.CodeDocumentIO, err, "read curl commands")
	}
	if currentCmd.Len() > 0 {
		commands = append(commands, currentCmd.String())
	}

	converted := make([]*Converted, 0, len(commands))
	seen := make(map[string]int)
	for i, cmd := range commands {
		conv, err := c.Convert(cmd)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i+1, err)
		}
		seen[conv.Name]++
		if n := seen[conv.Name]; n > 1 {
			conv.Name = fmt.Sprintf("%s_%d", conv.Name, n)
		}
		converted = append(converted, conv)
	}
	return converted, nil
}

// ConvertFile converts the curl commands in the file at path.
func (c *Converter) ConvertFile(path string) ([]*Converted, error) {
	data, err := store.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.ConvertAll(data)
}

// tokenize splits a curl command into tokens, respecting quotes.
func tokenize(cmd string) []string {
	var tokens []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false
	escaped := false

	for _, r := range cmd {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			if inSingleQuote {
				current.WriteRune(r)
			} else {
				escaped = true
			}
		case '\'':
			if !inDoubleQuote {
				inSingleQuote = !inSingleQuote
			} else {
				current.WriteRune(r)
			}
		case '"':
			if !inSingleQuote {
				inDoubleQuote = !inDoubleQuote
			} else {
				current.WriteRune(r)
			}
		case ' ', '\t':
			if inSingleQuote || inDoubleQuote {
				current.WriteRune(r)
			} else if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "{{") || strings.HasPrefix(s, "/")
}

// generateName derives a request file name such as get_users_42 from the
// method and URL path.
func generateName(rawURL string, method request.Method) string {
	path := "/"
	if m := urlPathPattern.FindStringSubmatch(rawURL); len(m) > 1 && m[1] != "" {
		path = m[1]
	}
	name := strings.Trim(namePattern.ReplaceAllString(strings.ToLower(path), "_"), "_")
	if name == "" {
		name = "root"
	}
	return strings.ToLower(method.String()) + "_" + name
}
