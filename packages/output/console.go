package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/spag/packages/core/env"
	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/core/runner"
	"github.com/abdul-hamid-achik/spag/packages/history"
	"github.com/fatih/color"
)

// formatValue truncates long values for single-line display
func formatValue(v string, maxLen int) string {
	v = strings.ReplaceAll(v, "\n", " ")
	if len(v) > maxLen {
		return v[:maxLen] + "..."
	}
	return v
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
	pretty  bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

// WithVerbose prints the status line and response headers before the body.
func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// WithPretty indents JSON response bodies.
func WithPretty(p bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.pretty = p
	}
}

func statusColor(code int) func(a ...any) string {
	switch {
	case code >= 500:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case code >= 400:
		return color.New(color.FgRed).SprintFunc()
	case code >= 300:
		return color.New(color.FgYellow).SprintFunc()
	case code > 0:
		return color.New(color.FgGreen).SprintFunc()
	default:
		return fmt.Sprint
	}
}

// FormatResult prints a run. A dry run prints the resolved request; otherwise
// the response body is printed, preceded by the status line and headers in
// verbose mode.
func (f *ConsoleFormatter) FormatResult(result *runner.Result) {
	if result.Response == nil {
		f.FormatRequest(result.Request)
		return
	}
	resp := result.Response
	cyan := color.New(color.FgCyan).SprintFunc()

	if f.verbose {
		fmt.Fprintf(f.writer, "%s %s %s\n", resp.Proto, statusColor(resp.StatusCode)(resp.Status), cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))
		f.writeHeaders(resp.Headers)
		fmt.Fprintln(f.writer)
	}

	body := resp.Body
	if f.pretty && resp.IsJSON() {
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err == nil {
			body = buf.Bytes()
		}
	}
	_, _ = f.writer.Write(body)
	if len(body) > 0 && body[len(body)-1] != '\n' {
		fmt.Fprintln(f.writer)
	}
}

// FormatRequest prints a request the way it is sent on the wire.
func (f *ConsoleFormatter) FormatRequest(t *request.Template) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold(t.Method.String()), t.URL())
	f.writeHeaders(t.Headers)
	if t.Body != "" {
		fmt.Fprintf(f.writer, "\n%s\n", strings.TrimRight(t.Body, "\n"))
	}
}

func (f *ConsoleFormatter) writeHeaders(hs request.Headers) {
	faint := color.New(color.Faint).SprintFunc()
	for _, h := range hs {
		fmt.Fprintf(f.writer, "%s %s\n", faint(h.Name+":"), h.Value)
	}
}

// FormatHistory prints one line per entry.
func (f *ConsoleFormatter) FormatHistory(entries iter.Seq[history.Summary]) {
	empty := true
	for s := range entries {
		empty = false
		status := "-"
		if s.Status > 0 {
			status = statusColor(s.Status)(fmt.Sprintf("%d", s.Status))
		}
		fmt.Fprintf(f.writer, "%4d  %s  %-6s %s  %s\n",
			s.Index, s.Timestamp.Local().Format(time.DateTime), s.Method, status, s.URL)
	}
	if empty {
		fmt.Fprintln(f.writer, "No history yet.")
	}
}

// FormatEntry prints a single history entry in full.
func (f *ConsoleFormatter) FormatEntry(e *history.Entry) {
	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(f.writer, "%s %d %s\n", bold("Entry"), e.Index, faint(e.ID))
	fmt.Fprintf(f.writer, "%s %s\n\n", faint("Time:"), e.Timestamp.Format(time.RFC3339))
	f.FormatRequest(e.Request)

	if e.Response == nil {
		fmt.Fprintf(f.writer, "\n%s\n", faint("(no response recorded)"))
		return
	}
	r := e.Response
	fmt.Fprintf(f.writer, "\n%s %s %s\n", statusColor(r.Status)(fmt.Sprintf("%d", r.Status)), statusColor(r.Status)(r.StatusText), faint(fmt.Sprintf("(%dms)", r.DurationMs)))
	f.writeHeaders(r.Headers)
	if r.Body != "" {
		fmt.Fprintf(f.writer, "\n%s\n", strings.TrimRight(r.Body, "\n"))
	}
	if r.Truncated {
		fmt.Fprintln(f.writer, faint("(body truncated)"))
	}
}

// FormatEnvironments lists environments, marking the active one.
func (f *ConsoleFormatter) FormatEnvironments(listing []env.Listing) {
	if len(listing) == 0 {
		fmt.Fprintln(f.writer, "No environments. Create one with 'spag env set <key> <value>'.")
		return
	}
	green := color.New(color.FgGreen).SprintFunc()
	for _, l := range listing {
		if l.Active {
			fmt.Fprintf(f.writer, "%s %s\n", green("*"), green(l.Name))
			continue
		}
		fmt.Fprintf(f.writer, "  %s\n", l.Name)
	}
}

// FormatValidation prints the outcome of validating one request file.
func (f *ConsoleFormatter) FormatValidation(path string, err error) {
	if err != nil {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(f.writer, "%s %s: %s\n", red("✗"), path, formatValue(err.Error(), 200))
		return
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", green("✓"), path)
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("spag"), version)
}
