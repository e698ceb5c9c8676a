// Package s3types provides shared type definitions for the S3 module.
package s3types

import (
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultService is the signing service name for S3.
	DefaultService = "s3"

	// DefaultProviderDomain is the domain suffix of virtual-hosted endpoints.
	DefaultProviderDomain = "amazonaws.com"

	// DefaultContentType is used when content type detection finds nothing better.
	DefaultContentType = "application/octet-stream"
)

// KeyExtractor pulls object keys out of a list response body, in document
// order. On malformed input it returns the keys found so far together with
// an error; callers may keep the partial result.
type KeyExtractor interface {
	ExtractKeys(body []byte) ([]string, error)
}

// KeyExtractorFunc adapts a function to KeyExtractor.
type KeyExtractorFunc func(body []byte) ([]string, error)

// ExtractKeys calls f(body).
func (f KeyExtractorFunc) ExtractKeys(body []byte) ([]string, error) {
	return f(body)
}

// ClientConfig holds configuration options for the S3 client.
type ClientConfig struct {
	// Endpoint, when set, is the base URL of an S3-compatible store.
	// Requests then use path-style addressing: {endpoint}/{bucket}/{key}.
	Endpoint string

	// ProviderDomain is the suffix of virtual-hosted endpoints.
	ProviderDomain string

	// Timeout bounds each request, including reading the response body.
	// Zero means no timeout beyond the caller's context.
	Timeout time.Duration

	// HTTPClient sends the requests.
	HTTPClient *http.Client

	// Logger receives debug and warning records.
	Logger *slog.Logger

	// Clock supplies signing timestamps.
	Clock func() time.Time

	// KeyExtractor parses list responses.
	KeyExtractor KeyExtractor
}

// Option is a functional option for configuring the S3 client.
type Option func(*ClientConfig)

// Request describes one outgoing store request. It is what the client logs
// and what the stub store records in tests.
type Request struct {
	Method  string
	Key     string
	Query   string
	Payload []byte
}

// Response is the outcome of a request that received an HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Body       []byte
	Duration   time.Duration
}

// Success reports whether the status is 2xx.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
