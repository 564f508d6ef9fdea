package odata

import (
	"context"
	"log/slog"

	"github.com/hugr-lab/odata-go/internal/recovery"
)

// Service creates queries against one OData endpoint and dispatches their
// compiled requests to the configured Executor.
type Service struct {
	config Config
	logger *slog.Logger
}

// NewService validates config and creates a service.
//
// Example:
//
//	exec, err := httpexec.New(httpexec.Config{BaseURL: "https://host/"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc, err := odata.NewService(odata.Config{
//	    BaseAddress: "odata/",
//	    Executor:    exec,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	companies := svc.CreateQuery("Companies")
func NewService(config Config) (*Service, error) {
	cfg, err := config.withDefaults()
	if err != nil {
		return nil, err
	}

	cfg.Logger.Debug("OData service created",
		"base_address", cfg.BaseAddress,
		"has_executor", cfg.Executor != nil,
		"method", cfg.Method,
	)

	return &Service{config: cfg, logger: cfg.Logger}, nil
}

// CreateQuery starts an empty query for the resource path.
// The path is appended to the base address verbatim (see JoinBase).
func (s *Service) CreateQuery(path string) *Query {
	return &Query{provider: NewProvider(s, path)}
}

// Request dispatches req to the Executor on a new goroutine.
// A nil req, or a service without an Executor, resolves with a nil result
// and no error. Executor errors and panics resolve the Future with a
// *TransportError.
func (s *Service) Request(ctx context.Context, req *RequestOptions) *Future {
	if req == nil || s.config.Executor == nil {
		return resolved(nil, nil)
	}

	f := newFuture()
	r := *req
	go func() {
		v, err := recovery.RecoverToValue(s.logger, "Execute", func() (any, error) {
			return s.config.Executor.Execute(ctx, r)
		})
		if err != nil {
			s.logger.Warn("Request failed", "url", r.URL, "method", r.Method, "error", err)
			f.resolve(nil, &TransportError{URL: r.URL, Err: err})
			return
		}
		f.resolve(v, nil)
	}()
	return f
}
