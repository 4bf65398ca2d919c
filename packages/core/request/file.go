package request

import (
	"encoding/json"
	"strings"

	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/abdul-hamid-achik/spag/packages/store"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

var schemaLoader = gojsonschema.NewStringLoader(fileSchema)

// fileTemplate is the on-disk shape of a request file. uri is accepted as an
// older spelling of resource.
type fileTemplate struct {
	Method   string    `yaml:"method"`
	Endpoint string    `yaml:"endpoint"`
	Resource string    `yaml:"resource"`
	URI      string    `yaml:"uri"`
	Headers  Headers   `yaml:"headers"`
	Body     yaml.Node `yaml:"body"`
}

// Parse decodes a request file. The document must be a mapping with at least
// method and resource; unrecognised keys are ignored. A body given as a YAML
// mapping or list is sent as JSON.
func Parse(data []byte) (*Template, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errdef.MalformedTemplate("invalid YAML: %v", err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, errdef.MalformedTemplate("request file must be a mapping")
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, errdef.MalformedTemplate("%v", err)
	}
	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, errdef.MalformedTemplate("%s", strings.Join(problems, "; "))
	}

	var raw fileTemplate
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errdef.MalformedTemplate("%v", err)
	}

	method, err := ParseMethod(raw.Method)
	if err != nil {
		return nil, err
	}

	resource := raw.Resource
	if resource == "" {
		resource = raw.URI
	}
	if strings.TrimSpace(resource) == "" {
		return nil, errdef.MalformedTemplate("resource is empty")
	}

	body, err := decodeBody(&raw.Body)
	if err != nil {
		return nil, err
	}

	return &Template{
		Method:   method,
		Endpoint: raw.Endpoint,
		Resource: resource,
		Headers:  raw.Headers,
		Body:     body,
	}, nil
}

func decodeBody(n *yaml.Node) (string, error) {
	switch n.Kind {
	case 0:
		return "", nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return "", nil
		}
		return n.Value, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return "", errdef.MalformedTemplate("body: %v", err)
		}
		data, err := json.Marshal(v)
		if err != nil {
			return "", errdef.MalformedTemplate("body: %v", err)
		}
		return string(data), nil
	}
}

// LoadFile reads and parses the request file at path.
func LoadFile(path string) (*Template, error) {
	data, err := store.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Parse(data)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeMalformedTemplate, err, "%s", path)
	}
	return t, nil
}

// SaveFile atomically writes t to path as a request file.
func SaveFile(path string, t *Template) error {
	data, err := store.Marshal(t)
	if err != nil {
		return errdef.Wrap(errdef.CodeDocumentIO, err, "encode %s", path)
	}
	return store.WriteFileAtomic(path, data)
}
