// Package s3 provides the core object store operations.
package s3

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	s3errors "github.com/input-output-hk/patchsync/aws/s3/errors"
	"github.com/input-output-hk/patchsync/aws/s3/internal/validation"
	"github.com/input-output-hk/patchsync/aws/s3/s3types"
	"github.com/input-output-hk/patchsync/aws/sigv4"
	psErrors "github.com/input-output-hk/patchsync/errors"
)

// ListQuery is the fixed query of a list request.
const ListQuery = "list-type=2"

// List returns the keys in the bucket, in the order the store reports them.
// A single response page is read.
//
// The response body is handed to the configured KeyExtractor. Malformed or
// truncated markup yields the keys found before the damage, and the problem
// is logged rather than returned.
//
// Errors:
//   - RemoteError: the store answered with a non-2xx status
//   - ErrConnection, ErrTimeout: no response was received
//
// Example:
//
//	keys, err := client.List(ctx, "")
//	if err != nil {
//	    return err
//	}
//	for _, k := range keys {
//	    fmt.Println(k)
//	}
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	query := ListQuery
	if prefix != "" {
		query = sigv4.EncodeQuery(url.Values{
			"list-type": {"2"},
			"prefix":    {prefix},
		})
	}

	resp, err := c.do(ctx, "list", &s3types.Request{Method: http.MethodGet, Query: query})
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, s3errors.NewError("list", s3errors.NewRemoteError(resp.StatusCode, resp.Status, resp.Body)).
			WithBucket(c.bucket)
	}

	keys, err := c.extractor.ExtractKeys(resp.Body)
	if err != nil {
		c.logger.Warn("list response is malformed, returning partial result",
			"bucket", c.bucket,
			"code", psErrors.GetCode(err),
			"keys", len(keys),
			"error", err,
		)
	}
	if keys == nil {
		keys = []string{}
	}

	return keys, nil
}

// Put uploads data under key, overwriting any existing object.
// The content hash is computed over data. Content-Type is detected from the
// bytes and sent unsigned.
//
// Errors:
//   - ErrInvalidObjectKey: key is empty, too long, or not a safe relative path
//   - RemoteError: the store answered with a non-2xx status
//   - ErrConnection, ErrTimeout: no response was received
func (c *Client) Put(ctx context.Context, key string, data []byte) error {
	if err := validation.ValidateObjectKey(key); err != nil {
		return s3errors.NewObjectError("put", c.bucket, key, err)
	}

	resp, err := c.do(ctx, "put", &s3types.Request{Method: http.MethodPut, Key: key, Payload: data})
	if err != nil {
		return err
	}
	if !resp.Success() {
		return s3errors.NewObjectError("put", c.bucket, key,
			s3errors.NewRemoteError(resp.StatusCode, resp.Status, resp.Body))
	}

	return nil
}

// Get downloads the object stored under key.
// A missing key is reported like any other 4xx: as a RemoteError carrying
// the store's message.
//
// Errors:
//   - ErrInvalidObjectKey: key is empty, too long, or not a safe relative path
//   - RemoteError: the store answered with a non-2xx status
//   - ErrConnection, ErrTimeout: no response was received
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, s3errors.NewObjectError("get", c.bucket, key, err)
	}

	resp, err := c.do(ctx, "get", &s3types.Request{Method: http.MethodGet, Key: key})
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, s3errors.NewObjectError("get", c.bucket, key,
			s3errors.NewRemoteError(resp.StatusCode, resp.Status, resp.Body))
	}

	return resp.Body, nil
}

// Delete removes the object stored under key. Any 2xx is success, which is
// how the store answers for a key that does not exist.
//
// Errors:
//   - ErrInvalidObjectKey: key is empty, too long, or not a safe relative path
//   - RemoteError: the store answered with a non-2xx status, including a 404
//     for a missing bucket
//   - ErrConnection, ErrTimeout: no response was received
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := validation.ValidateObjectKey(key); err != nil {
		return s3errors.NewObjectError("delete", c.bucket, key, err)
	}

	resp, err := c.do(ctx, "delete", &s3types.Request{Method: http.MethodDelete, Key: key})
	if err != nil {
		return err
	}
	if !resp.Success() {
		return s3errors.NewObjectError("delete", c.bucket, key,
			s3errors.NewRemoteError(resp.StatusCode, resp.Status, resp.Body))
	}

	return nil
}

// do signs and sends one request and reads the whole response body. It
// returns an error only when no complete response was received.
func (c *Client) do(ctx context.Context, op string, r *s3types.Request) (*s3types.Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	rawPath, path := c.objectPath(r.Key)
	u := &url.URL{
		Scheme:   c.scheme,
		Host:     c.host,
		Path:     path,
		RawPath:  rawPath,
		RawQuery: r.Query,
	}

	var body io.Reader
	if len(r.Payload) > 0 {
		body = bytes.NewReader(r.Payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u.String(), body)
	if err != nil {
		return nil, s3errors.NewObjectError(op, c.bucket, r.Key, err)
	}
	if r.Method == http.MethodPut {
		req.Header.Set("Content-Type", detectContentType(r.Payload))
	}

	uri := rawPath
	if r.Query != "" {
		uri += "?" + r.Query
	}
	signed := c.signer.Sign(r.Method, c.host, uri, r.Payload, c.creds)
	signed.Apply(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, op, r.Key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(ctx, op, r.Key, err)
	}

	out := &s3types.Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       data,
		Duration:   time.Since(start),
	}

	c.logger.Debug("s3 request",
		"op", op,
		"method", r.Method,
		"bucket", c.bucket,
		"key", r.Key,
		"status", out.StatusCode,
		"bytes_sent", len(r.Payload),
		"bytes_received", len(data),
		"duration", out.Duration,
	)

	return out, nil
}

// objectPath returns the escaped and unescaped request paths for key. An
// empty key addresses the bucket itself.
func (c *Client) objectPath(key string) (raw, path string) {
	if key == "" {
		if c.pathPrefix == "/" {
			return "/", "/"
		}
		bucketPath := strings.TrimSuffix(c.pathPrefix, "/")
		return bucketPath, unescapePath(bucketPath)
	}
	raw = c.pathPrefix + sigv4.EncodePath(key)
	return raw, unescapePath(c.pathPrefix) + key
}

func (c *Client) transportError(ctx context.Context, op, key string, err error) error {
	sentinel := s3errors.ErrConnection
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		sentinel = s3errors.ErrTimeout
	}

	c.logger.Debug("s3 request failed", "op", op, "bucket", c.bucket, "key", key, "error", err)

	return s3errors.NewObjectError(op, c.bucket, key, fmt.Errorf("%w: %w", sentinel, err))
}

// detectContentType sniffs data with mimetype.
func detectContentType(data []byte) string {
	if len(data) == 0 {
		return s3types.DefaultContentType
	}
	if mt := mimetype.Detect(data); mt != nil {
		return mt.String()
	}
	return s3types.DefaultContentType
}

func unescapePath(p string) string {
	if unescaped, err := url.PathUnescape(p); err == nil {
		return unescaped
	}
	return p
}
