package sigv4

import (
	"net/http"
	"time"
)

// Clock returns the current time. It is replaced in tests.
type Clock func() time.Time

// Signer signs outgoing HTTP requests with a fresh timestamp per call.
type Signer struct {
	clock Clock
}

// SignerOption configures a Signer.
type SignerOption func(*Signer)

// WithClock overrides the time source.
func WithClock(clock Clock) SignerOption {
	return func(s *Signer) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewSigner creates a Signer that reads the wall clock by default.
func NewSigner(opts ...SignerOption) *Signer {
	s := &Signer{clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign signs a request at the signer's current time.
func (s *Signer) Sign(method, host, uri string, payload []byte, creds Credentials) *SignedRequest {
	return Sign(method, host, uri, payload, creds, s.clock())
}

// SignHTTP signs req in place. The URI is the request's escaped path plus
// its raw query; the host is req.Host, falling back to req.URL.Host.
func (s *Signer) SignHTTP(req *http.Request, payload []byte, creds Credentials) *SignedRequest {
	host := req.Host
	if host == "" {
		host = req.URL.Host
	}

	uri := req.URL.EscapedPath()
	if uri == "" {
		uri = "/"
	}
	if req.URL.RawQuery != "" {
		uri += "?" + req.URL.RawQuery
	}

	signed := s.Sign(req.Method, host, uri, payload, creds)
	signed.Apply(req)
	return signed
}
