package odata

import "context"

// RequestOptions describes one request handed to an Executor.
type RequestOptions struct {
	// URL is the base address, resource path and encoded query string.
	URL string

	// Method is the HTTP method (GET for queries).
	Method string

	// Headers are the service defaults overridden by WithOptions headers.
	Headers map[string]string

	// Body is never set for queries.
	Body []byte
}

// Executor issues a compiled request and returns an application-defined
// result. A nil result with a nil error means "nothing returned".
// Executors own transport concerns: retries, timeouts, authentication.
type Executor interface {
	Execute(ctx context.Context, req RequestOptions) (any, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req RequestOptions) (any, error)

// Execute calls f(ctx, req).
func (f ExecutorFunc) Execute(ctx context.Context, req RequestOptions) (any, error) {
	return f(ctx, req)
}

// JoinBase concatenates a base address and a resource path.
// Slashes are neither inserted nor removed:
//
//	JoinBase("", "Companies")     == "Companies"
//	JoinBase("api/", "Companies") == "api/Companies"
//	JoinBase("api/", "")          == "api/"
func JoinBase(base, path string) string {
	return base + path
}

// merge overlays the method and headers of o onto r; headers are merged
// key by key. URL and Body always come from the compiler.
func (r RequestOptions) merge(o RequestOptions) RequestOptions {
	if o.Method != "" {
		r.Method = o.Method
	}
	if len(o.Headers) > 0 {
		headers := cloneHeaders(r.Headers)
		for k, v := range o.Headers {
			headers[k] = v
		}
		r.Headers = headers
	}
	return r
}

func cloneHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
