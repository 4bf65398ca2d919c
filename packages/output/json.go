package output

import (
	"encoding/json"
	"io"
	"iter"
	"os"
	"time"

	"github.com/abdul-hamid-achik/spag/packages/core/env"
	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/core/runner"
	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/abdul-hamid-achik/spag/packages/history"
	"github.com/abdul-hamid-achik/spag/packages/http"
)

// JSONResult represents a completed or dry run
type JSONResult struct {
	Index       *int              `json:"index,omitempty"`
	Environment string            `json:"environment,omitempty"`
	Request     *request.Template `json:"request"`
	Response    *JSONResponse     `json:"response,omitempty"`
}

// JSONResponse represents response details
type JSONResponse struct {
	StatusCode int             `json:"statusCode"`
	Status     string          `json:"status"`
	URL        string          `json:"url,omitempty"`
	Headers    request.Headers `json:"headers"`
	Body       string          `json:"body"`
	JSON       json.RawMessage `json:"json,omitempty"`
	Duration   int64           `json:"duration"`
}

// JSONHistoryItem represents one line of the history listing
type JSONHistoryItem struct {
	Index     int    `json:"index"`
	Method    string `json:"method"`
	URL       string `json:"url"`
	Resource  string `json:"resource"`
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status,omitempty"`
}

// JSONValidation represents the outcome of validating a request file
type JSONValidation struct {
	File  string `json:"file"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// JSONError represents a failure
type JSONError struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Subject string `json:"subject,omitempty"`
}

// JSONFormatter writes one indented JSON document per call
type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) encode(v any) {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(v)
}

func jsonResponse(resp *http.Response) *JSONResponse {
	out := &JSONResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		URL:        resp.URL,
		Headers:    resp.Headers,
		Body:       resp.BodyString(),
		Duration:   resp.DurationMs(),
	}
	if out.Headers == nil {
		out.Headers = request.Headers{}
	}
	if resp.IsJSON() && json.Valid(resp.Body) {
		out.JSON = json.RawMessage(resp.Body)
	}
	return out
}

func (f *JSONFormatter) FormatResult(result *runner.Result) {
	out := JSONResult{
		Environment: result.Environment,
		Request:     result.Request,
	}
	if result.Index >= 0 {
		index := result.Index
		out.Index = &index
	}
	if result.Response != nil {
		out.Response = jsonResponse(result.Response)
	}
	f.encode(out)
}

func (f *JSONFormatter) FormatRequest(t *request.Template) {
	f.encode(t)
}

func (f *JSONFormatter) FormatHistory(entries iter.Seq[history.Summary]) {
	items := make([]JSONHistoryItem, 0)
	for s := range entries {
		items = append(items, JSONHistoryItem{
			Index:     s.Index,
			Method:    s.Method.String(),
			URL:       s.URL,
			Resource:  s.Resource,
			Timestamp: s.Timestamp.Format(time.RFC3339),
			Status:    s.Status,
		})
	}
	f.encode(items)
}

func (f *JSONFormatter) FormatEntry(e *history.Entry) {
	f.encode(e)
}

func (f *JSONFormatter) FormatEnvironments(listing []env.Listing) {
	if listing == nil {
		listing = []env.Listing{}
	}
	f.encode(listing)
}

func (f *JSONFormatter) FormatValidation(path string, err error) {
	v := JSONValidation{File: path, Valid: err == nil}
	if err != nil {
		v.Error = err.Error()
	}
	f.encode(v)
}

func (f *JSONFormatter) FormatError(err error) {
	f.encode(JSONError{
		Error:   err.Error(),
		Code:    string(errdef.CodeOf(err)),
		Subject: errdef.SubjectOf(err),
	})
}

func (f *JSONFormatter) FormatHeader(version string) {
	f.encode(map[string]string{"name": "spag", "version": version})
}
