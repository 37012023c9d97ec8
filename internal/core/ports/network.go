// Package ports defines the core interfaces for the caching layer.
package ports

import (
	"context"
	"net/http"
)

// Request describes one HTTP request the caching layer wants performed.
// Query parameters are encoded by the adapter; Headers carry conditional
// headers such as If-None-Match.
type Request struct {
	Method  string
	URL     string
	Query   map[string]string
	Headers map[string]string
}

// ResponseMeta exposes the response metadata the caches care about: the
// status code and a header lookup.
type ResponseMeta struct {
	StatusCode int
	Headers    http.Header
}

// Header returns the first value for the given header field.
func (m ResponseMeta) Header(field string) string {
	return m.Headers.Get(field)
}

// NetworkClient performs HTTP requests on behalf of the caches. A non-2xx
// status is not an error at this level; callers interpret the status code.
//
//go:generate go run go.uber.org/mock/mockgen -source=network.go -destination=mocks/mock_network.go -package=mocks
type NetworkClient interface {
	// RequestData executes the request and returns the raw body and response
	// metadata.
	RequestData(ctx context.Context, req Request) ([]byte, ResponseMeta, error)
}
