package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"

	psErrors "github.com/input-output-hk/patchsync/errors"
)

// AWS error code constants
const (
	ResourceNotFoundException = "ResourceNotFoundException"
	AccessDeniedException     = "AccessDeniedException"
)

// Client reads secrets from AWS Secrets Manager. It is safe for concurrent
// use.
type Client struct {
	api    ManagerAPI
	logger *slog.Logger
}

// NewClient creates a client from the AWS default configuration.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	options := applyOptions(opts)

	var loadOpts []func(*config.LoadOptions) error
	if options.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(options.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, psErrors.Wrap(err, psErrors.CodeInvalidConfig, "load AWS config")
	}

	return NewClientWithConfig(cfg, opts...), nil
}

// NewClientWithConfig creates a client from an explicit AWS configuration.
func NewClientWithConfig(cfg aws.Config, opts ...Option) *Client {
	options := applyOptions(opts)

	api := secretsmanager.NewFromConfig(cfg, func(o *secretsmanager.Options) {
		if options.region != "" {
			o.Region = options.region
		}
		if options.endpoint != "" {
			o.BaseEndpoint = aws.String(options.endpoint)
		}
	})

	return newClient(api, options.logger)
}

func newClient(api ManagerAPI, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{api: api, logger: logger}
}

// GetSecret returns the value of secretName. Binary secrets are returned as
// their raw bytes.
func (c *Client) GetSecret(ctx context.Context, secretName string) (string, error) {
	if secretName == "" {
		return "", psErrors.New(psErrors.CodeInvalidConfig, "secret name cannot be empty")
	}

	c.logger.DebugContext(ctx, "retrieving secret", "secret_name", secretName)

	output, err := c.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		c.logger.DebugContext(ctx, "failed to retrieve secret",
			"secret_name", secretName,
			"error", err)
		return "", handleError(err, secretName)
	}

	switch {
	case output.SecretString != nil && *output.SecretString != "":
		return *output.SecretString, nil
	case len(output.SecretBinary) > 0:
		return string(output.SecretBinary), nil
	default:
		return "", fmt.Errorf("%s: %w", secretName, ErrSecretEmpty)
	}
}

// StoreCredentials is the content of a credentials secret.
type StoreCredentials struct {
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Region    string `json:"region,omitempty"`
	Bucket    string `json:"bucket,omitempty"`
}

// String redacts the secret key.
func (s StoreCredentials) String() string {
	return fmt.Sprintf("{AccessKey:%s SecretKey:[REDACTED] Region:%s Bucket:%s}", s.AccessKey, s.Region, s.Bucket)
}

// GetStoreCredentials reads secretName and decodes it as StoreCredentials.
func (c *Client) GetStoreCredentials(ctx context.Context, secretName string) (StoreCredentials, error) {
	value, err := c.GetSecret(ctx, secretName)
	if err != nil {
		return StoreCredentials{}, err
	}

	var creds StoreCredentials
	if err := json.Unmarshal([]byte(value), &creds); err != nil {
		// The decode error can quote the value, so it is dropped.
		return StoreCredentials{}, fmt.Errorf("%s: %w", secretName, ErrSecretMalformed)
	}
	if creds.AccessKey == "" || creds.SecretKey == "" {
		return StoreCredentials{}, fmt.Errorf("%s: missing access_key or secret_key: %w", secretName, ErrSecretMalformed)
	}

	c.logger.DebugContext(ctx, "store credentials loaded",
		"secret_name", secretName,
		"access_key", creds.AccessKey)

	return creds, nil
}

// handleError maps service errors to package errors without exposing
// anything beyond the error code and message.
func handleError(err error, secretName string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case ResourceNotFoundException:
			return fmt.Errorf("%s: %w", secretName, ErrSecretNotFound)
		case AccessDeniedException:
			return fmt.Errorf("%s: %w", secretName, ErrAccessDenied)
		}
		return psErrors.Newf(psErrors.CodeRemote, "get secret %s: %s: %s",
			secretName, apiErr.ErrorCode(), apiErr.ErrorMessage())
	}

	return psErrors.Wrapf(err, psErrors.CodeNetwork, "get secret %s", secretName)
}
