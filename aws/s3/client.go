// Package s3 provides client initialization and configuration.
//
// The Client talks to a single bucket over plain HTTPS, signing every
// request with aws/sigv4 immediately before it is sent.
package s3

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/input-output-hk/patchsync/aws/s3/errors"
	"github.com/input-output-hk/patchsync/aws/s3/internal/listing"
	"github.com/input-output-hk/patchsync/aws/s3/internal/validation"
	"github.com/input-output-hk/patchsync/aws/s3/s3types"
	"github.com/input-output-hk/patchsync/aws/sigv4"
)

// Client represents an object store client bound to one bucket.
// It is safe for concurrent use; it holds no mutable state after New.
type Client struct {
	creds      sigv4.Credentials
	bucket     string
	httpClient *http.Client
	signer     *sigv4.Signer
	extractor  s3types.KeyExtractor
	logger     *slog.Logger
	timeout    time.Duration

	// scheme and host of every request, and the path prefix placed before
	// the key ("/" for virtual-hosted, "/{bucket}/" for path-style).
	scheme     string
	host       string
	pathPrefix string
}

// New creates a client for bucket. Credentials are copied and never
// retained beyond the client's lifetime. The service defaults to "s3".
//
// Example:
//
//	client, err := s3.New(creds, "patches",
//	    s3.WithTimeout(30*time.Second),
//	    s3.WithLogger(logger),
//	)
func New(creds sigv4.Credentials, bucket string, opts ...s3types.Option) (*Client, error) {
	cfg := &s3types.ClientConfig{
		ProviderDomain: s3types.DefaultProviderDomain,
		KeyExtractor:   listing.MarkerExtractor{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, errors.NewError("new", err).WithBucket(bucket)
	}
	if creds.Service == "" {
		creds.Service = s3types.DefaultService
	}
	// The region is part of every credential scope, custom endpoints included.
	if creds.Region == "" {
		return nil, errors.NewError("new", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("region is required")
	}

	c := &Client{
		creds:      creds,
		bucket:     bucket,
		httpClient: cfg.HTTPClient,
		signer:     sigv4.NewSigner(sigv4.WithClock(cfg.Clock)),
		extractor:  cfg.KeyExtractor,
		logger:     cfg.Logger,
		timeout:    cfg.Timeout,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.extractor == nil {
		c.extractor = listing.MarkerExtractor{}
	}

	if cfg.Endpoint != "" {
		u, err := url.Parse(cfg.Endpoint)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, errors.NewError("new", errors.ErrInvalidEndpoint).
				WithBucket(bucket).
				WithMessage("endpoint must be an absolute http(s) URL: " + cfg.Endpoint)
		}
		c.scheme = u.Scheme
		c.host = u.Host
		c.pathPrefix = strings.TrimSuffix(u.EscapedPath(), "/") + "/" + bucket + "/"
	} else {
		c.scheme = "https"
		c.host = VirtualHost(bucket, creds.Service, creds.Region, cfg.ProviderDomain)
		c.pathPrefix = "/"
	}

	return c, nil
}

// VirtualHost returns {bucket}.{service}.{region}.{providerDomain}.
func VirtualHost(bucket, service, region, providerDomain string) string {
	return bucket + "." + service + "." + region + "." + providerDomain
}

// Bucket returns the bucket this client is bound to.
func (c *Client) Bucket() string {
	return c.bucket
}

// Endpoint returns the base URL requests are sent to, including the bucket
// path segment for path-style clients.
func (c *Client) Endpoint() string {
	return c.scheme + "://" + c.host + strings.TrimSuffix(c.pathPrefix, "/")
}

// NewMarkerExtractor returns the default key extractor, which scans literal
// <Key> markers.
func NewMarkerExtractor() s3types.KeyExtractor {
	return listing.MarkerExtractor{}
}

// NewXMLExtractor returns a key extractor backed by encoding/xml.
func NewXMLExtractor() s3types.KeyExtractor {
	return listing.XMLExtractor{}
}
