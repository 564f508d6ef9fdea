package httpexec

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the environment variable prefix read by LoadConfig.
const EnvPrefix = "ODATA"

// Config contains configuration for the HTTP executor.
// Fields tagged with envconfig can be loaded with LoadConfig, for example
// ODATA_BASE_URL, ODATA_TIMEOUT, ODATA_MAX_RETRIES or
// ODATA_HEADERS="Authorization:Bearer x,Accept:application/json".
type Config struct {
	// BaseURL resolves relative request URLs (e.g. when the service base
	// address is "api/").
	// OPTIONAL: Relative URLs are rejected when empty.
	BaseURL string `envconfig:"BASE_URL"`

	// Timeout bounds one logical request including retries.
	// OPTIONAL: Zero disables the timeout.
	Timeout time.Duration `envconfig:"TIMEOUT" default:"60s"`

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int `envconfig:"MAX_RETRIES" default:"2"`

	// RetryWaitMin and RetryWaitMax bound the backoff between attempts.
	RetryWaitMin time.Duration `envconfig:"RETRY_WAIT_MIN" default:"1s"`
	RetryWaitMax time.Duration `envconfig:"RETRY_WAIT_MAX" default:"1500ms"`

	// Headers are added to every request unless the request sets them.
	Headers map[string]string `envconfig:"HEADERS"`

	// DisableCompression stops advertising zstd and gzip.
	DisableCompression bool `envconfig:"DISABLE_COMPRESSION"`

	// HTTPClient is the underlying client.
	// OPTIONAL: Uses cleanhttp.DefaultPooledClient() if nil.
	HTTPClient *http.Client `ignored:"true"`

	// Backoff and CheckRetry override the retry policy.
	// OPTIONAL: Default to LinearJitterBackoff and DefaultRetryPolicy.
	Backoff    retryablehttp.Backoff    `ignored:"true"`
	CheckRetry retryablehttp.CheckRetry `ignored:"true"`

	// Logger for request logging.
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger `ignored:"true"`
}

// LoadConfig reads a Config from ODATA_* environment variables.
func LoadConfig() (Config, error) {
	var c Config
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return Config{}, fmt.Errorf("load executor config: %w", err)
	}
	return c, nil
}

func (c Config) validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}
	if c.RetryWaitMin < 0 || c.RetryWaitMax < 0 {
		return fmt.Errorf("retry waits must not be negative")
	}
	if c.RetryWaitMax != 0 && c.RetryWaitMin > c.RetryWaitMax {
		return fmt.Errorf("retry wait min %s exceeds max %s", c.RetryWaitMin, c.RetryWaitMax)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}
