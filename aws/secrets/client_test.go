package secrets

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	psErrors "github.com/input-output-hk/patchsync/errors"
)

// mockManagerAPI implements ManagerAPI for testing
type mockManagerAPI struct {
	getSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func (m *mockManagerAPI) GetSecretValue(
	ctx context.Context,
	params *secretsmanager.GetSecretValueInput,
	optFns ...func(*secretsmanager.Options),
) (*secretsmanager.GetSecretValueOutput, error) {
	if m.getSecretValueFunc != nil {
		return m.getSecretValueFunc(ctx, params, optFns...)
	}
	return nil, errors.New("GetSecretValue not implemented")
}

func secretString(value string) *mockManagerAPI {
	return &mockManagerAPI{
		getSecretValueFunc: func(context.Context, *secretsmanager.GetSecretValueInput, ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(value)}, nil
		},
	}
}

func apiError(code string) *mockManagerAPI {
	return &mockManagerAPI{
		getSecretValueFunc: func(context.Context, *secretsmanager.GetSecretValueInput, ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			return nil, &smithy.GenericAPIError{Code: code, Message: "details"}
		},
	}
}

func TestGetSecret(t *testing.T) {
	ctx := context.Background()

	t.Run("string secret", func(t *testing.T) {
		var gotID string
		api := &mockManagerAPI{
			getSecretValueFunc: func(_ context.Context, params *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
				gotID = aws.ToString(params.SecretId)
				return &secretsmanager.GetSecretValueOutput{SecretString: aws.String("value")}, nil
			},
		}

		value, err := newClient(api, nil).GetSecret(ctx, "patchsync/ci")
		require.NoError(t, err)
		assert.Equal(t, "value", value)
		assert.Equal(t, "patchsync/ci", gotID)
	})

	t.Run("binary secret", func(t *testing.T) {
		api := &mockManagerAPI{
			getSecretValueFunc: func(context.Context, *secretsmanager.GetSecretValueInput, ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
				return &secretsmanager.GetSecretValueOutput{SecretBinary: []byte("raw")}, nil
			},
		}

		value, err := newClient(api, nil).GetSecret(ctx, "s")
		require.NoError(t, err)
		assert.Equal(t, "raw", value)
	})

	t.Run("empty secret", func(t *testing.T) {
		api := &mockManagerAPI{
			getSecretValueFunc: func(context.Context, *secretsmanager.GetSecretValueInput, ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
				return &secretsmanager.GetSecretValueOutput{}, nil
			},
		}

		_, err := newClient(api, nil).GetSecret(ctx, "s")
		assert.ErrorIs(t, err, ErrSecretEmpty)
		assert.True(t, psErrors.IsConfig(err))
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := newClient(&mockManagerAPI{}, nil).GetSecret(ctx, "")
		assert.True(t, psErrors.IsConfig(err))
	})

	tests := []struct {
		code string
		want error
		kind psErrors.ErrorCode
	}{
		{ResourceNotFoundException, ErrSecretNotFound, psErrors.CodeInvalidConfig},
		{AccessDeniedException, ErrAccessDenied, psErrors.CodeRemote},
		{"InternalServiceError", nil, psErrors.CodeRemote},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := newClient(apiError(tt.code), nil).GetSecret(ctx, "s")
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.Equal(t, tt.kind, psErrors.GetCode(err))
		})
	}

	t.Run("transport failure", func(t *testing.T) {
		api := &mockManagerAPI{
			getSecretValueFunc: func(context.Context, *secretsmanager.GetSecretValueInput, ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
				return nil, errors.New("dial tcp: connection refused")
			},
		}

		_, err := newClient(api, nil).GetSecret(ctx, "s")
		assert.True(t, psErrors.IsNetwork(err))
	})
}

func TestGetStoreCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("full object", func(t *testing.T) {
		api := secretString(`{"access_key":"AKID","secret_key":"SECRET","region":"eu-west-1","bucket":"patches"}`)

		creds, err := newClient(api, nil).GetStoreCredentials(ctx, "s")
		require.NoError(t, err)
		assert.Equal(t, StoreCredentials{AccessKey: "AKID", SecretKey: "SECRET", Region: "eu-west-1", Bucket: "patches"}, creds)
	})

	t.Run("keys only", func(t *testing.T) {
		creds, err := newClient(secretString(`{"access_key":"AKID","secret_key":"SECRET"}`), nil).GetStoreCredentials(ctx, "s")
		require.NoError(t, err)
		assert.Empty(t, creds.Region)
		assert.Empty(t, creds.Bucket)
	})

	malformed := []struct {
		name  string
		value string
	}{
		{"not json", "SECRET-not-json"},
		{"missing secret key", `{"access_key":"AKID"}`},
		{"wrong shape", `["AKID","SECRET"]`},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newClient(secretString(tt.value), nil).GetStoreCredentials(ctx, "s")
			assert.ErrorIs(t, err, ErrSecretMalformed)
			assert.NotContains(t, err.Error(), "SECRET")
		})
	}
}

func TestSecretValuesAreNotLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	api := secretString(`{"access_key":"AKID","secret_key":"TOPSECRETVALUE"}`)

	creds, err := newClient(api, logger).GetStoreCredentials(context.Background(), "patchsync/ci")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "patchsync/ci")
	assert.NotContains(t, buf.String(), "TOPSECRETVALUE")
	assert.NotContains(t, creds.String(), "TOPSECRETVALUE")
}

func TestNewClientWithConfig(t *testing.T) {
	client := NewClientWithConfig(aws.Config{Region: "us-east-1"},
		WithRegion("eu-west-1"),
		WithEndpoint("http://localhost:4566"),
	)

	api, ok := client.api.(*secretsmanager.Client)
	require.True(t, ok)
	assert.Equal(t, "eu-west-1", api.Options().Region)
	assert.Equal(t, "http://localhost:4566", aws.ToString(api.Options().BaseEndpoint))
}
