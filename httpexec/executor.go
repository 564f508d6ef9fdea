// Package httpexec is the default HTTP Executor for odata services.
//
// Requests are sent with a pooled client and retried with linear jitter
// backoff. Responses are decompressed (zstd, gzip) and returned as
// *Response; non-2xx statuses become *StatusError.
//
//	exec, err := httpexec.New(httpexec.Config{BaseURL: "https://host/"})
//	svc, err := odata.NewService(odata.Config{BaseAddress: "odata/", Executor: exec})
//	res, err := svc.CreateQuery("Companies").Top(10).ToArray(ctx)
//	page, err := httpexec.DecodeCollection[Company](res.(*httpexec.Response))
package httpexec

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/hugr-lab/odata-go"
	"github.com/hugr-lab/odata-go/internal/reqid"
	"github.com/hugr-lab/odata-go/internal/serialize"
)

// RequestIDHeader is stamped on every request. Retries of one logical
// request carry the same id.
const RequestIDHeader = reqid.Header

// WithRequestID makes requests dispatched with ctx carry id instead of a
// generated one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return reqid.WithRequestID(ctx, id)
}

// StatusError reports a non-2xx response after retries were exhausted.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("unexpected status %s: %s", e.Status, truncate(e.Body, 256))
	}
	return fmt.Sprintf("unexpected status %s", e.Status)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Executor sends compiled OData requests over HTTP.
type Executor struct {
	config Config
	base   *url.URL
	client *retryablehttp.Client
	logger *slog.Logger
}

var _ odata.Executor = (*Executor)(nil)

// New validates config and creates an executor.
func New(config Config) (*Executor, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", odata.ErrInvalidConfig, err)
	}

	var base *url.URL
	if config.BaseURL != "" {
		u, err := url.Parse(config.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: base url: %v", odata.ErrInvalidConfig, err)
		}
		if !u.IsAbs() {
			return nil, fmt.Errorf("%w: base url %q is not absolute", odata.ErrInvalidConfig, config.BaseURL)
		}
		base = u
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	backoff := config.Backoff
	if backoff == nil {
		backoff = retryablehttp.LinearJitterBackoff
	}

	checkRetry := config.CheckRetry
	if checkRetry == nil {
		checkRetry = retryablehttp.DefaultRetryPolicy
	}

	client := &retryablehttp.Client{
		HTTPClient:   httpClient,
		Logger:       logger,
		RetryWaitMin: config.RetryWaitMin,
		RetryWaitMax: config.RetryWaitMax,
		RetryMax:     config.MaxRetries,
		Backoff:      backoff,
		CheckRetry:   checkRetry,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}

	return &Executor{
		config: config,
		base:   base,
		client: client,
		logger: logger,
	}, nil
}

// Execute sends req and returns a *Response for any 2xx status.
func (e *Executor) Execute(ctx context.Context, req odata.RequestOptions) (any, error) {
	target, err := e.resolve(req.URL)
	if err != nil {
		return nil, err
	}

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}
	ctx, id := reqid.Ensure(ctx)

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body any
	if len(req.Body) > 0 {
		body = req.Body
	}
	hreq, err := retryablehttp.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for k, v := range e.config.Headers {
		hreq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		hreq.Header.Set(k, v)
	}
	if hreq.Header.Get(RequestIDHeader) == "" {
		hreq.Header.Set(RequestIDHeader, id)
	}
	if hreq.Header.Get("Accept") == "" {
		hreq.Header.Set("Accept", "application/json")
	}
	if !e.config.DisableCompression && hreq.Header.Get("Accept-Encoding") == "" {
		hreq.Header.Set("Accept-Encoding", serialize.AcceptEncoding)
	}

	start := time.Now()
	resp, err := e.client.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := serialize.Decode(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	e.logger.Debug("OData request completed",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"request_id", id,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: data}
	}

	header := resp.Header.Clone()
	header.Del("Content-Encoding")
	header.Del("Content-Length")
	return &Response{StatusCode: resp.StatusCode, Header: header, Body: data}, nil
}

// resolve makes raw absolute against BaseURL. The query string is kept
// byte for byte.
func (e *Executor) resolve(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	if u.IsAbs() {
		return raw, nil
	}
	if e.base == nil {
		return "", fmt.Errorf("relative url %q and no base url configured", raw)
	}
	resolved := e.base.ResolveReference(&url.URL{Path: u.Path, RawPath: u.RawPath})
	resolved.RawQuery = u.RawQuery
	return resolved.String(), nil
}

// Close releases idle connections.
func (e *Executor) Close() {
	e.client.HTTPClient.CloseIdleConnections()
}
