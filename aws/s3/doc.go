// Package s3 provides a minimal client for S3-compatible object stores.
// It implements the four operations patch exchange needs (List, Put, Get and
// Delete) over net/http, signing each request with aws/sigv4.
//
// Requests go to the virtual-hosted endpoint
// https://{bucket}.{service}.{region}.amazonaws.com/{key} unless a custom
// endpoint is configured, in which case path-style addressing is used.
//
// Status handling is uniform: any 2xx is success and anything else becomes a
// *errors.RemoteError carrying the response body unmodified. A request that
// never receives a response fails with a network-coded error.
//
// Example usage:
//
//	client, err := s3.New(sigv4.Credentials{
//	    AccessKey: ak,
//	    SecretKey: sk,
//	    Region:    "us-east-1",
//	}, "patches")
//	if err != nil {
//	    return err
//	}
//
//	if err := client.Put(ctx, "Fix.patch", data); err != nil {
//	    return err
//	}
//
//	keys, err := client.List(ctx, "")
package s3
