package http

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abdul-hamid-achik/spag/packages/core/request"
)

type Response struct {
	StatusCode int
	Status     string
	Proto      string
	URL        string
	Headers    request.Headers
	Body       []byte
	Duration   time.Duration
}

// Summary is the part of a response kept in the history log and in
// remembered requests.
type Summary struct {
	Status     int             `yaml:"status" json:"status"`
	StatusText string          `yaml:"status_text,omitempty" json:"statusText,omitempty"`
	Headers    request.Headers `yaml:"headers,omitempty" json:"headers,omitempty"`
	Body       string          `yaml:"body,omitempty" json:"body,omitempty"`
	Truncated  bool            `yaml:"truncated,omitempty" json:"truncated,omitempty"`
	DurationMs int64           `yaml:"duration_ms" json:"durationMs"`
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

func (r *Response) BodyJSON() (any, error) {
	var result any
	if err := json.Unmarshal(r.Body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Response) Header(key string) string {
	v, _ := r.Headers.Get(key)
	return v
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	ct := r.ContentType()
	return strings.Contains(ct, "application/json") || strings.Contains(ct, "+json")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}

// StatusText returns the reason phrase, e.g. "Not Found".
func (r *Response) StatusText() string {
	code := strconv.Itoa(r.StatusCode)
	return strings.TrimSpace(strings.TrimPrefix(r.Status, code))
}

// Summary returns the response with its body cut to at most limit bytes.
// A limit of zero or less keeps the whole body.
func (r *Response) Summary(limit int) *Summary {
	body, truncated := truncate(r.Body, limit)
	return &Summary{
		Status:     r.StatusCode,
		StatusText: r.StatusText(),
		Headers:    r.Headers.Clone(),
		Body:       body,
		Truncated:  truncated,
		DurationMs: r.DurationMs(),
	}
}

func truncate(body []byte, limit int) (string, bool) {
	if limit <= 0 || len(body) <= limit {
		return string(body), false
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]), true
}
