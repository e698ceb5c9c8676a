// Package sigv4 implements the AWS Signature Version 4 request-signing
// protocol for the small set of object-store requests patchsync issues.
//
// Every request signs exactly three headers, in this order:
//
//	host
//	x-amz-content-sha256
//	x-amz-date
//
// The signing key is derived from the secret through four chained
// HMAC-SHA256 operations over the date stamp, region, service and the
// literal "aws4_request", so the raw secret never leaves the process.
//
// The canonical query is taken verbatim from the part of the URI after the
// first '?'. It is neither sorted nor re-encoded. Callers that need more
// than a single literal parameter must build the query with EncodeQuery
// first.
//
// Example:
//
//	creds := sigv4.Credentials{AccessKey: ak, SecretKey: sk, Region: "us-east-1", Service: "s3"}
//	signed := sigv4.Sign(http.MethodGet, host, "/?list-type=2", nil, creds, time.Now())
//	req.Header.Set("Authorization", signed.Authorization)
package sigv4
