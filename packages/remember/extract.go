package remember

import (
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/tidwall/gjson"
)

// Extractor reads values out of a remembered document.
type Extractor struct {
	doc *Document
}

func NewExtractor(doc *Document) *Extractor {
	return &Extractor{doc: doc}
}

// Extract evaluates a path relative to the document. "status" is shorthand
// for response.status.
func (e *Extractor) Extract(p string) (string, bool) {
	section, rest, _ := strings.Cut(p, ".")
	switch section {
	case "status":
		if rest != "" {
			return "", false
		}
		return e.extractFromResponse("status")
	case "response":
		return e.extractFromResponse(rest)
	case "request":
		return e.extractFromRequest(rest)
	default:
		return "", false
	}
}

func (e *Extractor) extractFromResponse(p string) (string, bool) {
	resp := e.doc.Response
	if resp == nil {
		return "", false
	}
	field, rest, _ := strings.Cut(p, ".")
	switch field {
	case "status":
		return strconv.Itoa(resp.Status), rest == ""
	case "status_text":
		return resp.StatusText, rest == ""
	case "headers":
		return extractFromHeader(resp.Headers, rest)
	case "body":
		return extractFromBody(resp.Body, rest)
	default:
		return "", false
	}
}

func (e *Extractor) extractFromRequest(p string) (string, bool) {
	req := e.doc.Request
	if req == nil {
		return "", false
	}
	field, rest, _ := strings.Cut(p, ".")
	switch field {
	case "method":
		return req.Method.String(), rest == ""
	case "endpoint":
		return req.Endpoint, rest == ""
	case "resource", "uri":
		return req.Resource, rest == ""
	case "url":
		return req.URL(), rest == ""
	case "headers":
		return extractFromHeader(req.Headers, rest)
	case "body":
		return extractFromBody(req.Body, rest)
	default:
		return "", false
	}
}

func extractFromBody(body, p string) (string, bool) {
	if p == "" {
		return body, true
	}
	if !gjson.Valid(body) {
		return "", false
	}
	result := gjson.Get(body, p)
	if !result.Exists() || result.Type == gjson.Null {
		return "", false
	}
	if result.Type == gjson.String {
		return result.String(), true
	}
	return result.Raw, true
}

func extractFromHeader(headers request.Headers, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	return headers.Get(name)
}
