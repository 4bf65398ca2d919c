package http

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	neturl "net/url"
	"slices"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow
	DefaultMaxRedirects = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second
)

type Client struct {
	httpClient     *http.Client
	timeout        time.Duration
	followRedirect bool
	maxRedirects   int
	validateSSL    bool
	proxyURL       string
	userAgent      string
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:        DefaultTimeout,
		followRedirect: true,
		maxRedirects:   DefaultMaxRedirects,
		validateSSL:    true,
	}

	for _, opt := range opts {
		opt(c)
	}

	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		IdleConnTimeout: DefaultIdleConnTimeout,
	}

	// Configure TLS verification
	if !c.validateSSL {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	// Configure proxy if specified
	if c.proxyURL != "" {
		proxyURL, err := neturl.Parse(c.proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		} else {
			log.Warn().Str("proxy", c.proxyURL).Err(err).Msg("ignoring invalid proxy URL")
		}
	}

	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if !c.followRedirect {
			return http.ErrUseLastResponse
		}
		if len(via) >= c.maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}

	c.httpClient = &http.Client{
		Transport:     transport,
		Timeout:       c.timeout,
		CheckRedirect: redirectPolicy,
	}

	return c
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) {
		c.followRedirect = follow
	}
}

func WithMaxRedirects(max int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = max
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// WithUserAgent sets the User-Agent sent when a request has none
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// Execute sends t and reads the whole response. It never retries.
// Connection failures and timeouts are transport errors; a response that
// cannot be parsed is a protocol error.
func (c *Client) Execute(ctx context.Context, t *request.Template) (*Response, error) {
	url := t.URL()
	if err := request.ValidateURL(url); err != nil {
		return nil, errdef.MalformedTemplate("%s: %v", url, err)
	}

	var body io.Reader
	if t.Body != "" {
		body = strings.NewReader(t.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, t.Method.String(), url, body)
	if err != nil {
		return nil, errdef.MalformedTemplate("%v", err)
	}

	for _, h := range t.Headers {
		if strings.EqualFold(h.Name, "Host") {
			httpReq.Host = h.Value
			continue
		}
		httpReq.Header.Add(h.Name, h.Value)
	}
	if c.userAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	log.Debug().Str("method", t.Method.String()).Str("url", url).Int("headers", len(t.Headers)).Msg("sending request")

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classify(err, url)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	duration := time.Since(start)
	if err != nil {
		return nil, classify(err, url)
	}

	log.Debug().Int("status", httpResp.StatusCode).Dur("duration", duration).Int("bytes", len(respBody)).Msg("response received")

	return &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Proto:      httpResp.Proto,
		URL:        httpResp.Request.URL.String(),
		Headers:    orderedHeaders(httpResp.Header),
		Body:       respBody,
		Duration:   duration,
	}, nil
}

// orderedHeaders flattens h sorted by name, keeping the order of repeated
// values.
func orderedHeaders(h http.Header) request.Headers {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make(request.Headers, 0, len(h))
	for _, name := range names {
		for _, v := range h[name] {
			out = append(out, request.Header{Name: name, Value: v})
		}
	}
	return out
}

var protocolMarkers = []string{
	"malformed HTTP",
	"malformed MIME header",
	"server replied with",
	"unexpected EOF",
	"invalid chunked",
	"http2: ",
}

func classify(err error, url string) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return errdef.Wrap(errdef.CodeTransport, err, "timeout requesting %s", url)
	case errors.Is(err, context.Canceled):
		return errdef.Wrap(errdef.CodeTransport, err, "request to %s canceled", url)
	case errors.Is(err, io.EOF):
		return errdef.Wrap(errdef.CodeProtocol, err, "empty reply from %s", url)
	}

	msg := err.Error()
	for _, marker := range protocolMarkers {
		if strings.Contains(msg, marker) {
			return errdef.Wrap(errdef.CodeProtocol, err, "malformed response from %s", url)
		}
	}
	return errdef.Wrap(errdef.CodeTransport, err, "requesting %s", url)
}
