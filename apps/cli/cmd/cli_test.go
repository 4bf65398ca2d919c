package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliResult struct {
	stdout string
	stderr string
	code   int
}

// resetFlags restores every flag to its default. Command and flag variables
// are package globals, so values would otherwise leak between runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func spag(t *testing.T, stateDir string, args ...string) cliResult {
	t.Helper()
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	args = append([]string{"--state-dir", stateDir, "--no-color"}, args...)
	code := execute(context.Background(), args, &stdout, &stderr)
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func newItemsServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
		default:
			body, _ := io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Path", r.URL.Path)
			w.Header().Set("X-Token", r.Header.Get("Authorization"))
			payload, _ := json.Marshal(map[string]string{"path": r.URL.Path, "method": r.Method, "body": string(body)})
			_, _ = w.Write(payload)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCLI_GetWithEnvironment(t *testing.T) {
	var hits atomic.Int32
	server := newItemsServer(t, &hits)
	state := t.TempDir()

	res := spag(t, state, "env", "set", "endpoint", server.URL, "id", "42")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	res = spag(t, state, "get", "/items/{{id}}")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"path":"/items/42"`)
	assert.Equal(t, int32(1), hits.Load())

	res = spag(t, state, "history")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "/items/42")
	assert.Contains(t, res.stdout, "GET")

	res = spag(t, state, "history", "show", "0", "--json")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	var entry struct {
		Index   int               `json:"index"`
		Request *request.Template `json:"request"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &entry))
	assert.Equal(t, 0, entry.Index)
	assert.Equal(t, request.MethodGet, entry.Request.Method)
	assert.Equal(t, server.URL, entry.Request.Endpoint)
	assert.Equal(t, "/items/42", entry.Request.Resource)
}

func TestCLI_HistoryShowOutOfRange(t *testing.T) {
	var hits atomic.Int32
	server := newItemsServer(t, &hits)
	state := t.TempDir()

	for range 3 {
		res := spag(t, state, "get", "/ping", "-e", server.URL)
		require.Equal(t, ExitSuccess, res.code, res.stderr)
	}

	res := spag(t, state, "history", "show", "5")
	assert.Equal(t, ExitIndexOutOfRange, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "Error:")
	assert.Contains(t, res.stderr, "history index 5 out of range (3 entries)")

	res = spag(t, state, "history", "show", "--", "-1")
	assert.Equal(t, ExitIndexOutOfRange, res.code)
	assert.Empty(t, res.stdout)

	res = spag(t, state, "history", "show", "-1")
	assert.Equal(t, ExitUsageError, res.code)
}

func TestCLI_ResolutionFailsBeforeNetwork(t *testing.T) {
	var hits atomic.Int32
	server := newItemsServer(t, &hits)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"unresolved variable", []string{"get", "/items/{{id}}", "-e", server.URL}, ExitUnresolvedVariable},
		{"malformed header", []string{"get", "/items", "-e", server.URL, "-H", "no colon"}, ExitMalformedHeader},
		{"no endpoint", []string{"get", "/items"}, ExitNoEndpoint},
		{"bad endpoint", []string{"get", "/items", "-e", "ftp://example.com"}, ExitMalformedTemplate},
		{"header name not a token", []string{"get", "/items", "-e", server.URL, "-H", "Bad Name: x"}, ExitMalformedTemplate},
		{"missing environment", []string{"get", "/items", "--env", "nope"}, ExitEnvironmentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := spag(t, t.TempDir(), tt.args...)
			assert.Equal(t, tt.code, res.code, res.stderr)
			assert.Contains(t, res.stderr, "Error:")
		})
	}
	assert.Equal(t, int32(0), hits.Load())
}

func TestCLI_HeadersAndDryRun(t *testing.T) {
	var hits atomic.Int32
	server := newItemsServer(t, &hits)
	state := t.TempDir()

	res := spag(t, state, "env", "set", "endpoint", server.URL, "token", "abc", "-H", "Authorization: Bearer {{token}}")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	res = spag(t, state, "post", "/items", "-d", `{"n":1}`, "-H", "Content-Type: application/json", "--dry-run")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "POST "+server.URL+"/items")
	assert.Contains(t, res.stdout, "Authorization: Bearer abc")
	assert.Contains(t, res.stdout, "Content-Type: application/json")
	assert.Contains(t, res.stdout, `{"n":1}`)
	assert.Equal(t, int32(0), hits.Load())
	_, err := os.Stat(filepath.Join(state, "history.yml"))
	assert.True(t, os.IsNotExist(err))

	res = spag(t, state, "get", "/items", "-H", "Authorization: Basic xyz", "--show-headers")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "200 OK")
	assert.Contains(t, res.stdout, "X-Token: Basic xyz")
}

func TestCLI_Fail(t *testing.T) {
	var hits atomic.Int32
	server := newItemsServer(t, &hits)
	state := t.TempDir()

	res := spag(t, state, "get", "/missing", "-e", server.URL)
	assert.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.stdout, "not found")

	res = spag(t, state, "get", "/missing", "-e", server.URL, "--fail")
	assert.Equal(t, ExitHTTPError, res.code)
	assert.Contains(t, res.stdout, "not found")
	assert.NotContains(t, res.stderr, "Error:")
}

func TestCLI_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	res := spag(t, t.TempDir(), "get", "/", "-e", url)
	assert.Equal(t, ExitTransportError, res.code)
}

func TestCLI_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing resource", []string{"get"}},
		{"unknown flag", []string{"get", "/x", "--bogus"}},
		{"odd env set args", []string{"env", "set", "lonely"}},
		{"empty env set", []string{"env", "set"}},
		{"bad with", []string{"get", "/x", "-w", "novalue"}},
		{"history index not a number", []string{"history", "show", "abc"}},
		{"unknown output", []string{"history", "-o", "xml"}},
		{"unknown command", []string{"frobnicate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := spag(t, t.TempDir(), tt.args...)
			assert.Equal(t, ExitUsageError, res.code, res.stderr)
		})
	}
}

func TestCLI_EnvironmentCommands(t *testing.T) {
	state := t.TempDir()

	require.Equal(t, ExitSuccess, spag(t, state, "env", "set", "a", "1").code)
	require.Equal(t, ExitSuccess, spag(t, state, "env", "set", "--env", "staging", "endpoint", "https://staging.example.com").code)

	res := spag(t, state, "env", "list")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "* default")
	assert.Contains(t, res.stdout, "  staging")

	res = spag(t, state, "env", "show", "staging")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "name: staging")
	assert.Contains(t, res.stdout, "endpoint: https://staging.example.com")

	require.Equal(t, ExitSuccess, spag(t, state, "env", "activate", "staging").code)
	res = spag(t, state, "env", "show")
	assert.Contains(t, res.stdout, "name: staging")
	assert.Contains(t, res.stdout, "active: true")

	assert.Equal(t, ExitEnvironmentNotFound, spag(t, state, "env", "activate", "prod").code)

	require.Equal(t, ExitSuccess, spag(t, state, "env", "deactivate").code)
	assert.Equal(t, ExitNoActiveEnvironment, spag(t, state, "env", "show").code)

	require.Equal(t, ExitSuccess, spag(t, state, "env", "unset", "a", "--env", "default").code)
	res = spag(t, state, "env", "show", "default")
	assert.NotContains(t, res.stdout, "a: \"1\"")

	require.Equal(t, ExitSuccess, spag(t, state, "env", "unset", "--everything", "--env", "staging").code)
	assert.Equal(t, ExitEnvironmentNotFound, spag(t, state, "env", "show", "staging").code)

	res = spag(t, state, "env", "list", "-o", "json")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.JSONEq(t, `[{"name":"default","active":false}]`, res.stdout)
}

func TestCLI_RequestFiles(t *testing.T) {
	var hits atomic.Int32
	server := newItemsServer(t, &hits)
	state := t.TempDir()
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "v1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v1", "create_item.yml"), []byte(`method: POST
resource: /items
headers:
  Content-Type: application/json
body: '{"name": "{{name}}"}'
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("method: FETCH\nresource: /x\n"), 0o644))

	require.Equal(t, ExitSuccess, spag(t, state, "env", "set", "endpoint", server.URL).code)

	res := spag(t, state, "request", "create_item", "--dir", dir, "-w", "name=widget")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"method":"POST"`)
	assert.Contains(t, res.stdout, `{\"name\": \"widget\"}`)
	_, err := os.Stat(filepath.Join(state, "remembers", "create_item.yml"))
	assert.NoError(t, err)

	res = spag(t, state, "get", "/items/{{create_item.request.body.name}}")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"path":"/items/widget"`)

	res = spag(t, state, "request", "show", "--dir", dir)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "broken.yml")
	assert.Contains(t, res.stdout, "v1/create_item.yml")

	res = spag(t, state, "request", "show", "v1/create_item", "--dir", dir)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "POST /items")

	res = spag(t, state, "request", "validate", "create_item", "broken", "--dir", dir)
	assert.Equal(t, ExitMalformedTemplate, res.code)
	assert.Contains(t, res.stdout, "create_item.yml")
	assert.Contains(t, res.stderr, "1 of 2 request files invalid")

	res = spag(t, state, "request", "nothing_here", "--dir", dir)
	assert.Equal(t, ExitRequestNotFound, res.code)
}

func TestCLI_SaveRequest(t *testing.T) {
	var hits atomic.Int32
	server := newItemsServer(t, &hits)
	state := t.TempDir()
	dir := t.TempDir()
	saved := filepath.Join(dir, "get_item")

	res := spag(t, state, "get", "/items/{{id}}", "-e", server.URL, "-w", "id=7", "--save", saved)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	tmpl, err := request.LoadFile(saved + ".yml")
	require.NoError(t, err)
	assert.Equal(t, "/items/{{id}}", tmpl.Resource)
	assert.Equal(t, server.URL, tmpl.Endpoint)

	res = spag(t, state, "request", saved+".yml", "-w", "id=8")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"path":"/items/8"`)
}

func TestCLI_ImportCurl(t *testing.T) {
	var hits atomic.Int32
	server := newItemsServer(t, &hits)
	state := t.TempDir()
	dir := t.TempDir()

	res := spag(t, state, "request", "import", "--dir", dir, "--",
		"curl", "-X", "POST", server.URL+"/items", "-H", "Content-Type: application/json", "-d", `{"name": "it's"}`)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "post_items.yml")

	tmpl, err := request.LoadFile(filepath.Join(dir, "post_items.yml"))
	require.NoError(t, err)
	assert.Equal(t, request.MethodPost, tmpl.Method)
	assert.Equal(t, server.URL, tmpl.Endpoint)
	assert.Equal(t, "/items", tmpl.Resource)
	assert.Equal(t, `{"name": "it's"}`, tmpl.Body)

	res = spag(t, state, "request", "post_items", "--dir", dir)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"method":"POST"`)

	res = spag(t, state, "request", "import", "--dir", dir, "curl "+server.URL+"/items")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	res = spag(t, state, "request", "import", "--dir", dir, "curl "+server.URL+"/items")
	assert.Equal(t, ExitUsageError, res.code)

	commands := filepath.Join(dir, "commands.sh")
	require.NoError(t, os.WriteFile(commands, []byte("curl https://x.example.com/a\\\n  -H 'A: 1'\ncurl -X DELETE https://x.example.com/a\n"), 0o644))
	res = spag(t, state, "request", "import", "--dir", dir, "--file", commands, "--relative")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	deleted, err := request.LoadFile(filepath.Join(dir, "delete_a.yml"))
	require.NoError(t, err)
	assert.Empty(t, deleted.Endpoint)
	assert.Equal(t, "/a", deleted.Resource)

	assert.Equal(t, ExitUsageError, spag(t, state, "request", "import").code)
}

func TestShellJoin(t *testing.T) {
	assert.Equal(t, `curl -H 'A: b' 'it'\''s' ''`, shellJoin([]string{"curl", "-H", "A: b", "it's", ""}))
}

func TestCLI_Init(t *testing.T) {
	t.Chdir(t.TempDir())

	res := spag(t, ".spag", "init")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.FileExists(t, ".spag.config.json")
	assert.FileExists(t, filepath.Join("requests", "get_item.yml"))
	assert.DirExists(t, ".spag")

	res = spag(t, ".spag", "request", "validate", "get_item")
	assert.Equal(t, ExitSuccess, res.code, res.stderr)

	res = spag(t, ".spag", "init")
	assert.Equal(t, ExitUsageError, res.code)
}

func TestCLI_Version(t *testing.T) {
	res := spag(t, t.TempDir(), "version")
	require.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.stdout, "spag dev")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{nil, ExitSuccess},
		{errors.New("boom"), ExitUnexpected},
		{errdef.UnresolvedVariable("id"), ExitUnresolvedVariable},
		{errdef.IndexOutOfRange(5, 3), ExitIndexOutOfRange},
		{errdef.New(errdef.CodeDocumentIO, "x"), ExitDocumentIOError},
		{&statusError{status: "500 Internal Server Error"}, ExitHTTPError},
		{errors.New(`unknown command "x" for "spag"`), ExitUsageError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, exitCode(tt.err), "%v", tt.err)
	}
}
