package secrets

import (
	"log/slog"
)

// clientOptions holds configuration options for the Secrets Manager client.
type clientOptions struct {
	logger   *slog.Logger
	region   string
	endpoint string
}

// Option is a functional option for configuring the Client.
type Option func(*clientOptions)

// WithLogger configures the client with a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *clientOptions) {
		opts.logger = logger
	}
}

// WithRegion overrides the region from the AWS default configuration.
func WithRegion(region string) Option {
	return func(opts *clientOptions) {
		opts.region = region
	}
}

// WithEndpoint sends requests to a custom endpoint, such as LocalStack.
func WithEndpoint(url string) Option {
	return func(opts *clientOptions) {
		opts.endpoint = url
	}
}

func applyOptions(options []Option) *clientOptions {
	opts := &clientOptions{}
	for _, option := range options {
		option(opts)
	}
	if opts.logger == nil {
		opts.logger = slog.New(slog.DiscardHandler)
	}
	return opts
}
