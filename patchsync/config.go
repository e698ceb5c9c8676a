package patchsync

import (
	"errors"
	"log/slog"

	"github.com/input-output-hk/patchsync/aws/s3/s3types"
	"github.com/input-output-hk/patchsync/aws/sigv4"
)

// Config is the per-call configuration of a workflow. It is passed by value
// into every workflow and never retained by the orchestrator.
type Config struct {
	// AccessKey is the access key ID used for signing.
	AccessKey string

	// SecretKey is the secret access key used for signing.
	SecretKey string

	// Region is the store region, e.g. "us-east-1".
	Region string

	// Bucket is the bucket patches are exchanged through.
	Bucket string

	// Service is the signing service name. Defaults to "s3".
	Service string

	// RepoPath is the local working tree patches are built from and applied to.
	RepoPath string
}

// Validate checks the settings every store workflow needs.
func (c Config) Validate() error {
	var errs []error
	if c.Bucket == "" {
		errs = append(errs, ErrMissingBucket)
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		errs = append(errs, ErrMissingCredentials)
	}
	if c.Region == "" {
		errs = append(errs, ErrMissingRegion)
	}
	return errors.Join(errs...)
}

// ValidateRepo checks that a repository path is configured. Whether it exists
// is checked by the diff and apply adapters.
func (c Config) ValidateRepo() error {
	if c.RepoPath == "" {
		return ErrMissingRepoPath
	}
	return nil
}

// Credentials returns the signing credentials, defaulting the service to "s3".
func (c Config) Credentials() sigv4.Credentials {
	service := c.Service
	if service == "" {
		service = s3types.DefaultService
	}
	return sigv4.Credentials{
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Region:    c.Region,
		Service:   service,
	}
}

// LogValue implements slog.LogValuer. Keys are never logged.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", c.Bucket),
		slog.String("region", c.Region),
		slog.String("service", c.Credentials().Service),
		slog.String("repo", c.RepoPath),
	)
}
