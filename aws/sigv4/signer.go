package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

const (
	// Algorithm identifies the HMAC-SHA256 signing scheme.
	Algorithm = "AWS4-HMAC-SHA256"

	// RequestType terminates the credential scope and the key chain.
	RequestType = "aws4_request"

	// SignedHeaders is the fixed signed-header list.
	SignedHeaders = "host;x-amz-content-sha256;x-amz-date"

	// EmptyPayloadHash is the hex SHA-256 of the empty byte sequence.
	EmptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	// TimeFormat is the x-amz-date layout.
	TimeFormat = "20060102T150405Z"

	// DateFormat is the credential-scope date stamp layout.
	DateFormat = "20060102"

	// Header names.
	HeaderHost          = "host"
	HeaderContentSHA256 = "x-amz-content-sha256"
	HeaderDate          = "x-amz-date"
	HeaderAuthorization = "Authorization"

	keyPrefix = "AWS4"
)

// CanonicalRequest holds the inputs of the byte-precise string that gets
// hashed and signed. It is never mutated after construction.
type CanonicalRequest struct {
	Method      string
	Path        string
	Query       string
	Host        string
	AmzDate     string
	PayloadHash string
}

// NewCanonicalRequest builds a CanonicalRequest. The uri is split on its
// first '?'; the query part is used as-is.
func NewCanonicalRequest(method, host, uri, payloadHash string, t time.Time) CanonicalRequest {
	path, query, _ := strings.Cut(uri, "?")
	return CanonicalRequest{
		Method:      method,
		Path:        path,
		Query:       query,
		Host:        host,
		AmzDate:     t.UTC().Format(TimeFormat),
		PayloadHash: payloadHash,
	}
}

// CanonicalHeaders returns the three signed headers as "name:value\n" lines.
func (c CanonicalRequest) CanonicalHeaders() string {
	var b strings.Builder
	b.WriteString(HeaderHost + ":" + c.Host + "\n")
	b.WriteString(HeaderContentSHA256 + ":" + c.PayloadHash + "\n")
	b.WriteString(HeaderDate + ":" + c.AmzDate + "\n")
	return b.String()
}

// String renders the canonical request.
func (c CanonicalRequest) String() string {
	return strings.Join([]string{
		c.Method,
		c.Path,
		c.Query,
		c.CanonicalHeaders(),
		SignedHeaders,
		c.PayloadHash,
	}, "\n")
}

// Hash returns the hex SHA-256 of the canonical request.
func (c CanonicalRequest) Hash() string {
	return sha256Hex([]byte(c.String()))
}

// SignedRequest is the result of signing one request. It is produced per
// call and never reused, since the timestamp changes on every call.
type SignedRequest struct {
	CanonicalRequest

	// DateStamp is the YYYYMMDD part of the timestamp.
	DateStamp string

	// CredentialScope is date/region/service/aws4_request.
	CredentialScope string

	// StringToSign is the algorithm, timestamp, scope and hashed canonical request.
	StringToSign string

	// Signature is the lower-hex HMAC of StringToSign.
	Signature string

	// Authorization is the full Authorization header value.
	Authorization string
}

// Header returns the request headers to send: host, x-amz-date,
// x-amz-content-sha256 and Authorization.
func (s *SignedRequest) Header() http.Header {
	h := make(http.Header, 4)
	h.Set(HeaderHost, s.Host)
	h.Set(HeaderDate, s.AmzDate)
	h.Set(HeaderContentSHA256, s.PayloadHash)
	h.Set(HeaderAuthorization, s.Authorization)
	return h
}

// Apply copies the signed headers onto req. The host header is carried by
// req.Host since net/http ignores a Host entry in the header map.
func (s *SignedRequest) Apply(req *http.Request) {
	req.Host = s.Host
	req.Header.Set(HeaderDate, s.AmzDate)
	req.Header.Set(HeaderContentSHA256, s.PayloadHash)
	req.Header.Set(HeaderAuthorization, s.Authorization)
}

// Sign signs a request. A nil payload is hashed as the empty byte sequence.
// There is no validation: missing credentials produce an Authorization with
// an empty credential, which the store will reject.
func Sign(method, host, uri string, payload []byte, creds Credentials, t time.Time) *SignedRequest {
	return SignWithPayloadHash(method, host, uri, PayloadHash(payload), creds, t)
}

// SignWithPayloadHash signs a request whose payload hash is already known.
func SignWithPayloadHash(method, host, uri, payloadHash string, creds Credentials, t time.Time) *SignedRequest {
	canonical := NewCanonicalRequest(method, host, uri, payloadHash, t)

	dateStamp := t.UTC().Format(DateFormat)
	scope := CredentialScope(dateStamp, creds.Region, creds.Service)

	stringToSign := strings.Join([]string{
		Algorithm,
		canonical.AmzDate,
		scope,
		canonical.Hash(),
	}, "\n")

	key := DeriveSigningKey(creds.SecretKey, dateStamp, creds.Region, creds.Service)
	signature := hex.EncodeToString(hmacSHA256(key, stringToSign))

	return &SignedRequest{
		CanonicalRequest: canonical,
		DateStamp:        dateStamp,
		CredentialScope:  scope,
		StringToSign:     stringToSign,
		Signature:        signature,
		Authorization: Algorithm +
			" Credential=" + creds.AccessKey + "/" + scope +
			", SignedHeaders=" + SignedHeaders +
			", Signature=" + signature,
	}
}

// CredentialScope returns date/region/service/aws4_request.
func CredentialScope(dateStamp, region, service string) string {
	return dateStamp + "/" + region + "/" + service + "/" + RequestType
}

// DeriveSigningKey runs the four-step HMAC chain that binds the key to a
// date, region and service.
func DeriveSigningKey(secret, dateStamp, region, service string) []byte {
	kDate := hmacSHA256([]byte(keyPrefix+secret), dateStamp)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, service)
	return hmacSHA256(kService, RequestType)
}

// PayloadHash returns the lower-hex SHA-256 of payload.
func PayloadHash(payload []byte) string {
	if len(payload) == 0 {
		return EmptyPayloadHash
	}
	return sha256Hex(payload)
}

func hmacSHA256(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
