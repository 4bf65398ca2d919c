package request

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"gopkg.in/yaml.v3"
)

// Header is a single name/value pair.
type Header struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

func (h Header) String() string {
	return h.Name + ": " + h.Value
}

// Headers is an ordered header list. Names are matched case-insensitively and
// duplicates are allowed.
type Headers []Header

// ParseHeader parses a raw "Name: Value" string, splitting on the first colon
// and trimming whitespace around both parts.
func ParseHeader(raw string) (Header, error) {
	name, value, found := strings.Cut(raw, ":")
	if !found {
		return Header{}, errdef.MalformedHeader(raw, "expected 'Name: Value'")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Header{}, errdef.MalformedHeader(raw, "empty header name")
	}
	return Header{Name: name, Value: strings.TrimSpace(value)}, nil
}

// ParseHeaders parses each raw header in order. It stops at the first
// malformed header.
func ParseHeaders(raw []string) (Headers, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(Headers, 0, len(raw))
	for _, r := range raw {
		h, err := ParseHeader(r)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	return headers, nil
}

func (hs Headers) index(name string) int {
	for i, h := range hs {
		if strings.EqualFold(h.Name, name) {
			return i
		}
	}
	return -1
}

// Get returns the value of the first header named name.
func (hs Headers) Get(name string) (string, bool) {
	if i := hs.index(name); i >= 0 {
		return hs[i].Value, true
	}
	return "", false
}

// Values returns every value sent under name, in order.
func (hs Headers) Values(name string) []string {
	var values []string
	for _, h := range hs {
		if strings.EqualFold(h.Name, name) {
			values = append(values, h.Value)
		}
	}
	return values
}

// Set overrides name. The first existing header with that name keeps its
// position and takes value, later duplicates are dropped; if there is none
// the header is appended.
func (hs Headers) Set(name, value string) Headers {
	i := hs.index(name)
	if i < 0 {
		return append(hs, Header{Name: name, Value: value})
	}
	out := make(Headers, 0, len(hs))
	for j, h := range hs {
		switch {
		case j == i:
			out = append(out, Header{Name: h.Name, Value: value})
		case j > i && strings.EqualFold(h.Name, name):
			continue
		default:
			out = append(out, h)
		}
	}
	return out
}

// Add appends a header without checking for duplicates.
func (hs Headers) Add(name, value string) Headers {
	return append(hs, Header{Name: name, Value: value})
}

// Del removes every header named name.
func (hs Headers) Del(name string) Headers {
	out := hs[:0:0]
	for _, h := range hs {
		if !strings.EqualFold(h.Name, name) {
			out = append(out, h)
		}
	}
	return out
}

// Clone returns an independent copy.
func (hs Headers) Clone() Headers {
	if hs == nil {
		return nil
	}
	out := make(Headers, len(hs))
	copy(out, hs)
	return out
}

// Merge layers header sources in increasing precedence. base is kept as-is,
// duplicates included. The first header of each name in an override source
// is applied with Set semantics: on a case-insensitive collision with an
// earlier source the value is replaced at the position of the first
// occurrence, otherwise the header is appended. Later headers of the same
// name within that source are kept, right after the previous one.
func Merge(base Headers, overrides ...Headers) Headers {
	out := base.Clone()
	for _, src := range overrides {
		applied := make(map[string]bool, len(src))
		for _, h := range src {
			key := strings.ToLower(h.Name)
			if applied[key] {
				out = out.insertAfterLast(h)
				continue
			}
			applied[key] = true
			out = out.Set(h.Name, h.Value)
		}
	}
	if out == nil {
		out = Headers{}
	}
	return out
}

func (hs Headers) insertAfterLast(h Header) Headers {
	last := -1
	for i, e := range hs {
		if strings.EqualFold(e.Name, h.Name) {
			last = i
		}
	}
	if last < 0 {
		return append(hs, h)
	}
	out := make(Headers, 0, len(hs)+1)
	out = append(out, hs[:last+1]...)
	out = append(out, h)
	return append(out, hs[last+1:]...)
}

// hasDuplicates reports whether any name occurs more than once.
func (hs Headers) hasDuplicates() bool {
	seen := make(map[string]bool, len(hs))
	for _, h := range hs {
		key := strings.ToLower(h.Name)
		if seen[key] {
			return true
		}
		seen[key] = true
	}
	return false
}

// MarshalYAML writes headers as an ordered mapping, or as a sequence of
// {name, value} mappings when a name repeats.
func (hs Headers) MarshalYAML() (any, error) {
	if hs.hasDuplicates() {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, h := range hs {
			seq.Content = append(seq.Content, &yaml.Node{
				Kind: yaml.MappingNode,
				Content: []*yaml.Node{
					{Kind: yaml.ScalarNode, Tag: "!!str", Value: "name"},
					{Kind: yaml.ScalarNode, Tag: "!!str", Value: h.Name},
					{Kind: yaml.ScalarNode, Tag: "!!str", Value: "value"},
					{Kind: yaml.ScalarNode, Tag: "!!str", Value: h.Value},
				},
			})
		}
		return seq, nil
	}
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, h := range hs {
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: h.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: h.Value},
		)
	}
	return m, nil
}

// UnmarshalYAML accepts an ordered mapping, a sequence of "Name: Value"
// strings, or a sequence of {name, value} mappings.
func (hs *Headers) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(Headers, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			k, v := node.Content[i], node.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: header name must be a string", k.Line)
			}
			value, err := scalarValue(v)
			if err != nil {
				return fmt.Errorf("line %d: header %s: %w", v.Line, k.Value, err)
			}
			out = append(out, Header{Name: k.Value, Value: value})
		}
		*hs = out
	case yaml.SequenceNode:
		out := make(Headers, 0, len(node.Content))
		for _, item := range node.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				h, err := ParseHeader(item.Value)
				if err != nil {
					return err
				}
				out = append(out, h)
			case yaml.MappingNode:
				var h Header
				if err := item.Decode(&h); err != nil {
					return err
				}
				out = append(out, h)
			default:
				return fmt.Errorf("line %d: unsupported header entry", item.Line)
			}
		}
		*hs = out
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*hs = nil
			return nil
		}
		return fmt.Errorf("line %d: headers must be a mapping or a list", node.Line)
	default:
		return fmt.Errorf("line %d: headers must be a mapping or a list", node.Line)
	}
	return nil
}

func scalarValue(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("value must be a scalar")
	}
	if n.Tag == "!!null" {
		return "", nil
	}
	return n.Value, nil
}
