// Package secrets reads store credentials from AWS Secrets Manager.
//
// A credentials secret is a JSON object:
//
//	{
//	  "access_key": "AKIA...",
//	  "secret_key": "...",
//	  "region": "eu-central-1",
//	  "bucket": "team-patches"
//	}
//
// Only access_key and secret_key are required. Secret values are never
// logged; only secret names and operation metadata are.
//
// # Usage
//
//	client, err := secrets.NewClient(ctx, secrets.WithRegion("eu-central-1"))
//	if err != nil {
//	    return err
//	}
//	creds, err := client.GetStoreCredentials(ctx, "patchsync/ci")
//
// # Errors
//
// ErrSecretNotFound, ErrSecretEmpty and ErrSecretMalformed classify as
// configuration errors; ErrAccessDenied and other service failures as remote
// errors.
package secrets
