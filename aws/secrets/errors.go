package secrets

import (
	psErrors "github.com/input-output-hk/patchsync/errors"
)

var (
	// ErrSecretNotFound is returned when the named secret does not exist.
	ErrSecretNotFound = psErrors.New(psErrors.CodeInvalidConfig, "secret not found")

	// ErrSecretEmpty is returned when a secret exists but contains no value.
	ErrSecretEmpty = psErrors.New(psErrors.CodeInvalidConfig, "secret value is empty")

	// ErrSecretMalformed is returned when a secret is not a credentials
	// object or lacks the access or secret key. The message never includes
	// the secret value.
	ErrSecretMalformed = psErrors.New(psErrors.CodeInvalidConfig, "secret is not a credentials object")

	// ErrAccessDenied is returned when the caller may not read the secret.
	ErrAccessDenied = psErrors.New(psErrors.CodeRemote, "access denied to secret")
)
