// Package apiclient talks to The Cologne Hub REST backend. Every request
// carries the bearer token currently held by the session store.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	"github.com/guonaihong/gout/dataflow"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"colognehub/internal/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TokenSource yields the bearer token for the next request. An empty token
// means the request is sent anonymously.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is the single HTTP client used by every storefront component.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = logging.OrNop(l) }
}

// New builds a Client for baseURL.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		tokens:  tokens,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request describes one call.
type request struct {
	method string
	path   string
	query  gout.H
	body   interface{}
	form   gout.H
}

// do executes req and returns the raw body of a 2xx response.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	headers := gout.H{"Accept": "application/json"}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("read session token: %w", err)
		}
		if token != "" {
			headers["Authorization"] = "Bearer " + token
		}
	}

	target := c.baseURL + req.path
	g := gout.New(c.http)
	var df *dataflow.DataFlow
	switch req.method {
	case http.MethodGet:
		df = g.GET(target)
	case http.MethodPost:
		df = g.POST(target)
	case http.MethodPut:
		df = g.PUT(target)
	case http.MethodPatch:
		df = g.PATCH(target)
	case http.MethodDelete:
		df = g.DELETE(target)
	default:
		return nil, fmt.Errorf("unsupported method %s", req.method)
	}

	var (
		raw  []byte
		code int
	)
	df = df.WithContext(ctx).SetHeader(headers)
	if len(req.query) > 0 {
		df = df.SetQuery(req.query)
	}
	switch {
	case req.form != nil:
		df = df.SetForm(req.form)
	case req.body != nil:
		df = df.SetJSON(req.body)
	}

	start := time.Now()
	err := df.BindBody(&raw).Code(&code).Do()
	c.logger.Debug("api request",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", code),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		return nil, &APIError{Message: genericMessage(0), Err: err}
	}
	if code < 200 || code > 299 {
		return nil, newAPIError(code, raw)
	}
	return raw, nil
}

// call executes req and decodes a JSON response into out when out is non-nil.
func (c *Client) call(ctx context.Context, req request, out interface{}) error {
	raw, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
	}
	return nil
}

func pathID(prefix, id string) string {
	return prefix + "/" + url.PathEscape(id)
}
