// Package httpclient implements ports.NetworkClient using net/http.
package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.trai.ch/stash/internal/core/ports"
	"go.trai.ch/zerr"
)

const defaultTimeout = 30 * time.Second

// Client performs HTTP requests for the caching layer. Non-2xx responses are
// returned as data, not errors; the caches interpret status codes.
type Client struct {
	httpClient *http.Client
}

// New creates a Client. A non-positive timeout falls back to 30s.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// RequestData executes the request and returns the raw body with response
// metadata.
func (c *Client) RequestData(ctx context.Context, req ports.Request) ([]byte, ports.ResponseMeta, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, ports.ResponseMeta{}, zerr.With(zerr.Wrap(err, "invalid request URL"), "url", req.URL)
	}

	if len(req.Query) > 0 {
		q := u.Query()
		for name, value := range req.Query {
			q.Set(name, value)
		}
		u.RawQuery = q.Encode()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, ports.ResponseMeta{}, zerr.Wrap(err, "failed to create request")
	}
	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, ports.ResponseMeta{}, zerr.Wrap(err, "request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ports.ResponseMeta{}, zerr.Wrap(err, "failed to read response body")
	}

	return body, ports.ResponseMeta{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
	}, nil
}
