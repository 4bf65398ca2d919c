package http

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func template(method request.Method, endpoint, resource string) *request.Template {
	return &request.Template{Method: method, Endpoint: endpoint, Resource: resource}
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/test", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message": "hello"}`))
	}))
	defer server.Close()

	client := NewClient()
	resp, err := client.Execute(context.Background(), template(request.MethodGet, server.URL, "/test"))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "OK", resp.StatusText())
	assert.Equal(t, "application/json", resp.Header("Content-Type"))
	assert.Contains(t, resp.BodyString(), "hello")
}

func TestClient_PostSendsHeadersInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, []string{"a=1", "b=2"}, r.Header.Values("X-Dup"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"name": "test"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 123}`))
	}))
	defer server.Close()

	tmpl := template(request.MethodPost, server.URL, "/items")
	tmpl.Headers = request.Headers{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "X-Dup", Value: "a=1"},
		{Name: "X-Dup", Value: "b=2"},
	}
	tmpl.Body = `{"name": "test"}`

	resp, err := NewClient().Execute(context.Background(), tmpl)

	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
	assert.Contains(t, resp.BodyString(), "123")
}

func TestClient_HostHeaderAndUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "api.internal", r.Host)
		assert.Equal(t, "spag/test", r.UserAgent())
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	tmpl := template(request.MethodDelete, server.URL, "/items/1")
	tmpl.Headers = request.Headers{{Name: "Host", Value: "api.internal"}}

	resp, err := NewClient(WithUserAgent("spag/test")).Execute(context.Background(), tmpl)
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}

func TestClient_WithTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithTimeout(50 * time.Millisecond))
	_, err := client.Execute(context.Background(), template(request.MethodGet, server.URL, "/"))

	require.Error(t, err)
	assert.ErrorIs(t, err, errdef.ErrTransport)
	assert.Contains(t, err.Error(), "timeout")
}

func TestClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient().Execute(context.Background(), template(request.MethodGet, url, "/"))

	require.Error(t, err)
	assert.ErrorIs(t, err, errdef.ErrTransport)
}

func TestClient_MalformedResponse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		reader := bufio.NewReader(conn)
		for {
			line, err := reader.ReadString('\n')
			if err != nil || line == "\r\n" {
				break
			}
		}
		_, _ = conn.Write([]byte("this is not http\r\n\r\n"))
	}()

	_, err = NewClient().Execute(context.Background(), template(request.MethodGet, "http://"+ln.Addr().String(), "/"))

	require.Error(t, err)
	assert.ErrorIs(t, err, errdef.ErrProtocol)
}

func TestClient_InvalidEndpoint(t *testing.T) {
	_, err := NewClient().Execute(context.Background(), template(request.MethodGet, "ftp://example.com", "/"))
	assert.ErrorIs(t, err, errdef.ErrMalformedTemplate)
}

func TestClient_FollowRedirects(t *testing.T) {
	redirectCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/final" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`final`))
			return
		}
		redirectCount++
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	client := NewClient(WithFollowRedirects(true))
	resp, err := client.Execute(context.Background(), template(request.MethodGet, server.URL, "/redirect"))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "final", resp.BodyString())
	assert.Equal(t, 1, redirectCount)
	assert.True(t, strings.HasSuffix(resp.URL, "/final"))
}

func TestClient_NoFollowRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	client := NewClient(WithFollowRedirects(false))
	resp, err := client.Execute(context.Background(), template(request.MethodGet, server.URL, "/redirect"))

	require.NoError(t, err)
	assert.Equal(t, 302, resp.StatusCode)
	assert.True(t, resp.IsRedirect())
}

func TestClient_MaxRedirects(t *testing.T) {
	redirectCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		redirectCount++
		// Infinite redirect loop
		http.Redirect(w, r, "/redirect", http.StatusFound)
	}))
	defer server.Close()

	client := NewClient(WithMaxRedirects(3))
	resp, err := client.Execute(context.Background(), template(request.MethodGet, server.URL, "/redirect"))

	require.NoError(t, err)
	// Should stop after max redirects and return the redirect response
	assert.Equal(t, 302, resp.StatusCode)
	assert.LessOrEqual(t, redirectCount, 4)
}

func TestResponse_IsSuccess(t *testing.T) {
	tests := []struct {
		statusCode int
		expected   bool
	}{
		{200, true},
		{201, true},
		{204, true},
		{299, true},
		{300, false},
		{400, false},
		{404, false},
		{500, false},
	}

	for _, tt := range tests {
		resp := &Response{StatusCode: tt.statusCode}
		assert.Equal(t, tt.expected, resp.IsSuccess(), "StatusCode: %d", tt.statusCode)
	}
}

func TestResponse_IsJSON(t *testing.T) {
	tests := []struct {
		contentType string
		expected    bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/problem+json", true},
		{"text/html", false},
		{"text/plain", false},
		{"", false},
	}

	for _, tt := range tests {
		resp := &Response{Headers: request.Headers{{Name: "Content-Type", Value: tt.contentType}}}
		assert.Equal(t, tt.expected, resp.IsJSON(), "Content-Type: %s", tt.contentType)
	}
}

func TestResponse_Summary(t *testing.T) {
	resp := &Response{
		StatusCode: 404,
		Status:     "404 Not Found",
		Headers:    request.Headers{{Name: "Content-Type", Value: "text/plain"}},
		Body:       []byte("héllo world"),
		Duration:   1500 * time.Millisecond,
	}

	full := resp.Summary(0)
	assert.Equal(t, 404, full.Status)
	assert.Equal(t, "Not Found", full.StatusText)
	assert.Equal(t, "héllo world", full.Body)
	assert.False(t, full.Truncated)
	assert.Equal(t, int64(1500), full.DurationMs)
	assert.Equal(t, resp.Headers, full.Headers)

	// "é" is two bytes; a cut inside it backs off to the rune start.
	cut := resp.Summary(2)
	assert.Equal(t, "h", cut.Body)
	assert.True(t, cut.Truncated)

	exact := resp.Summary(len(resp.Body))
	assert.False(t, exact.Truncated)
}
