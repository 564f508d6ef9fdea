package odata

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/hugr-lab/odata-go/emit"
)

// CountStyle selects how InlineCount is rendered.
type CountStyle int

const (
	// CountV2 renders $inlinecount=allpages.
	CountV2 CountStyle = iota
	// CountV4 renders $count=true.
	CountV4
)

// Config contains configuration for an OData query service.
type Config struct {
	// BaseAddress is prepended verbatim to every resource path
	// (e.g., "https://host/odata/" or "api/").
	// OPTIONAL: Empty means resource paths are used as-is.
	// No slashes are inserted or removed; keep trailing slashes consistent.
	BaseAddress string

	// Executor issues compiled requests.
	// OPTIONAL: If nil, every request resolves with a nil result.
	Executor Executor

	// Headers are default request headers.
	// OPTIONAL: Per-query WithOptions headers override these by key.
	Headers map[string]string

	// Method is the HTTP method used for queries.
	// OPTIONAL: Defaults to GET.
	Method string

	// CountStyle selects the InlineCount rendering.
	// OPTIONAL: Defaults to CountV2 ($inlinecount=allpages).
	CountStyle CountStyle

	// Encoder renders expression trees.
	// OPTIONAL: Uses emit.NewEncoder(nil) if nil.
	Encoder emit.Encoder

	// Logger for internal logging.
	// OPTIONAL: If nil, a text logger on stderr is created at LogLevel.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: If nil, uses Info level.
	// If Logger is also provided, LogLevel is ignored (use pre-configured logger).
	LogLevel *slog.Level
}

// Standard errors returned by the odata package.
var (
	// ErrInvalidConfig indicates Config validation failed.
	ErrInvalidConfig = errors.New("invalid service config")

	// ErrNoParts indicates the dispatch entry point received no parts.
	ErrNoParts = errors.New("no query parts to execute")

	// ErrUnknownPart indicates a part kind the compiler does not handle.
	ErrUnknownPart = errors.New("unknown query part")
)

// withDefaults validates config and fills optional fields.
func (c Config) withDefaults() (Config, error) {
	switch c.CountStyle {
	case CountV2, CountV4:
	default:
		return c, fmt.Errorf("%w: unknown count style %d", ErrInvalidConfig, c.CountStyle)
	}

	if c.Method == "" {
		c.Method = http.MethodGet
	}

	if c.Encoder == nil {
		c.Encoder = emit.NewEncoder(nil)
	}

	if c.Logger == nil {
		level := slog.LevelInfo
		if c.LogLevel != nil {
			level = *c.LogLevel
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})
		c.Logger = slog.New(handler)
	}

	c.Headers = cloneHeaders(c.Headers)

	return c, nil
}
