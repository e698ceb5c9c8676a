// Package s3 provides functional options for configuring S3 client behavior.
// These options follow the functional options pattern for clean, composable configuration.
package s3

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/input-output-hk/patchsync/aws/s3/s3types"
)

// WithTimeout sets the timeout for individual requests.
// Default is no timeout (0). Values should be positive durations.
func WithTimeout(timeout time.Duration) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithEndpoint sets a custom endpoint URL and switches to path-style
// addressing. This is useful for S3-compatible services or local testing
// with LocalStack or MinIO.
func WithEndpoint(endpoint string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithProviderDomain overrides the domain suffix of virtual-hosted endpoints.
// Default is "amazonaws.com".
func WithProviderDomain(domain string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if domain != "" {
			c.ProviderDomain = domain
		}
	}
}

// WithHTTPClient allows providing a custom HTTP client.
// This gives full control over HTTP behavior including transports and proxies.
func WithHTTPClient(client *http.Client) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.HTTPClient = client
	}
}

// WithLogger sets the structured logger. Credentials are never logged.
func WithLogger(logger *slog.Logger) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Logger = logger
	}
}

// WithClock overrides the time source used for signing timestamps.
func WithClock(clock func() time.Time) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Clock = clock
	}
}

// WithKeyExtractor replaces the list response parser.
func WithKeyExtractor(extractor s3types.KeyExtractor) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.KeyExtractor = extractor
	}
}
