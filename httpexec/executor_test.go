package httpexec_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugr-lab/odata-go"
	"github.com/hugr-lab/odata-go/expr"
	"github.com/hugr-lab/odata-go/httpexec"
)

type company struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func newExecutor(t *testing.T, base string) *httpexec.Executor {
	t.Helper()
	exec, err := httpexec.New(httpexec.Config{
		BaseURL:      base,
		MaxRetries:   2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 2 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(exec.Close)
	return exec
}

func TestExecuteThroughService(t *testing.T) {
	var gotURI, gotAuth, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get(httpexec.RequestIDHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"@odata.count":2,"value":[{"id":6,"name":"netflix"},{"id":7,"name":"flixbus"}]}`))
	}))
	defer srv.Close()

	svc, err := odata.NewService(odata.Config{
		BaseAddress: "api/",
		Executor:    newExecutor(t, srv.URL+"/"),
		Headers:     map[string]string{"Authorization": "Bearer token"},
	})
	require.NoError(t, err)

	res, err := svc.CreateQuery("Companies").
		Where(expr.Fn("c", func(c expr.Value) expr.Value { return c.Field("id").Gt(5) })).
		InlineCount().
		ToArray(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/api/Companies?$filter=id%20gt%205&$inlinecount=allpages", gotURI)
	assert.Equal(t, "Bearer token", gotAuth)
	_, err = uuid.Parse(gotReqID)
	assert.NoError(t, err, "request id should be a uuid")

	resp, ok := res.(*httpexec.Response)
	require.True(t, ok, "result type %T", res)
	page, err := httpexec.DecodeCollection[company](resp)
	require.NoError(t, err)
	require.NotNil(t, page.Count)
	assert.Equal(t, int64(2), *page.Count)
	assert.Equal(t, []company{{6, "netflix"}, {7, "flixbus"}}, page.Value)
}

func TestExecuteCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Companies/$count", r.URL.Path)
		_, _ = w.Write([]byte("42\n"))
	}))
	defer srv.Close()

	svc, err := odata.NewService(odata.Config{BaseAddress: srv.URL + "/api/", Executor: newExecutor(t, "")})
	require.NoError(t, err)

	res, err := svc.CreateQuery("Companies").Count(context.Background())
	require.NoError(t, err)

	n, err := res.(*httpexec.Response).Count()
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestExecuteRetriesWithSameRequestID(t *testing.T) {
	var (
		attempts atomic.Int32
		mu       sync.Mutex
		ids      []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get(httpexec.RequestIDHeader))
		mu.Unlock()
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"value":[]}`))
	}))
	defer srv.Close()

	exec := newExecutor(t, srv.URL)
	ctx := httpexec.WithRequestID(context.Background(), "fixed-id")
	res, err := exec.Execute(ctx, odata.RequestOptions{URL: "/Companies", Method: http.MethodGet})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.(*httpexec.Response).StatusCode)
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, []string{"fixed-id", "fixed-id", "fixed-id"}, ids)
}

func TestExecuteStatusErrorIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such entity set", http.StatusNotFound)
	}))
	defer srv.Close()

	svc, err := odata.NewService(odata.Config{Executor: newExecutor(t, srv.URL+"/")})
	require.NoError(t, err)

	f, err := svc.CreateQuery("Missing").ToArrayAsync(context.Background())
	require.NoError(t, err, "transport errors must not surface synchronously")

	_, err = f.Await(context.Background())
	var te *odata.TransportError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Equal(t, "Missing", te.URL)

	var se *httpexec.StatusError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Contains(t, string(se.Body), "no such entity set")
}

func TestExecuteDecompresses(t *testing.T) {
	body := []byte(`{"value":[{"id":1,"name":"a"}]}`)

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write(body)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zs := enc.EncodeAll(body, nil)
	require.NoError(t, enc.Close())

	tests := []struct {
		name     string
		encoding string
		payload  []byte
	}{
		{"identity", "", body},
		{"gzip", "gzip", gz.Bytes()},
		{"zstd", "zstd", zs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "zstd, gzip", r.Header.Get("Accept-Encoding"))
				if tt.encoding != "" {
					w.Header().Set("Content-Encoding", tt.encoding)
				}
				_, _ = w.Write(tt.payload)
			}))
			defer srv.Close()

			res, err := newExecutor(t, srv.URL).Execute(context.Background(), odata.RequestOptions{URL: "/Companies"})
			require.NoError(t, err)

			resp := res.(*httpexec.Response)
			assert.Equal(t, body, resp.Body)
			assert.Empty(t, resp.Header.Get("Content-Encoding"))
		})
	}
}

func TestExecuteRelativeURLWithoutBase(t *testing.T) {
	exec := newExecutor(t, "")
	_, err := exec.Execute(context.Background(), odata.RequestOptions{URL: "api/Companies"})
	assert.Error(t, err)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  httpexec.Config
	}{
		{"negative retries", httpexec.Config{MaxRetries: -1}},
		{"relative base", httpexec.Config{BaseURL: "api/"}},
		{"wait min above max", httpexec.Config{RetryWaitMin: time.Second, RetryWaitMax: time.Millisecond}},
		{"negative timeout", httpexec.Config{Timeout: -time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := httpexec.New(tt.cfg)
			assert.ErrorIs(t, err, odata.ErrInvalidConfig)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("ODATA_BASE_URL", "https://example.com/odata/")
	t.Setenv("ODATA_TIMEOUT", "5s")
	t.Setenv("ODATA_MAX_RETRIES", "4")
	t.Setenv("ODATA_HEADERS", "Authorization:Bearer x,Prefer:odata.maxpagesize=50")

	cfg, err := httpexec.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/odata/", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 4, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryWaitMin)
	assert.Equal(t, 1500*time.Millisecond, cfg.RetryWaitMax)
	assert.Equal(t, map[string]string{
		"Authorization": "Bearer x",
		"Prefer":        "odata.maxpagesize=50",
	}, cfg.Headers)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("ODATA_MAX_RETRIES", "many")
	_, err := httpexec.LoadConfig()
	assert.Error(t, err)
}
