package testutil

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/input-output-hk/patchsync/aws/sigv4"
)

// RecordedRequest is one request received by a StubStore.
type RecordedRequest struct {
	Method        string
	Host          string
	Path          string
	Query         string
	Key           string
	Body          []byte
	Header        http.Header
	SignatureOK   bool
	Authorization string
}

// StubResponse overrides the store's answer to one request.
type StubResponse struct {
	Status int
	Body   string
}

// StubStore is an in-memory S3 bucket served over httptest. Every request's
// Authorization header is recomputed with aws/sigv4 from the received bytes;
// a mismatch is answered with 403 SignatureDoesNotMatch.
//
// Both addressing styles are served: virtual-hosted requests arrive through
// HTTPClient with the original Host preserved, path-style requests are sent
// to URL directly.
type StubStore struct {
	Bucket string
	Creds  sigv4.Credentials

	server *httptest.Server

	mu        sync.Mutex
	objects   map[string][]byte
	requests  []RecordedRequest
	overrides map[string][]StubResponse
}

// NewStubStore starts a stub store for bucket. The server is closed when the
// test ends.
func NewStubStore(t testing.TB, bucket string, creds sigv4.Credentials) *StubStore {
	t.Helper()

	if creds.Service == "" {
		creds.Service = "s3"
	}

	s := &StubStore{
		Bucket:    bucket,
		Creds:     creds,
		objects:   make(map[string][]byte),
		overrides: make(map[string][]StubResponse),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.server.Close)

	return s
}

// URL returns the server's base URL, for path-style clients.
func (s *StubStore) URL() string {
	return s.server.URL
}

// HTTPClient returns a client that sends every request to the stub store
// regardless of the URL's host, leaving the Host header untouched.
func (s *StubStore) HTTPClient() *http.Client {
	target, _ := url.Parse(s.server.URL)
	return &http.Client{
		Transport: &redirectTransport{
			target: target,
			next:   s.server.Client().Transport,
		},
	}
}

// SetObject stores data under key.
func (s *StubStore) SetObject(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
}

// Object returns the data stored under key.
func (s *StubStore) Object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}

// Keys returns the stored keys in lexical order.
func (s *StubStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedKeysLocked("")
}

// Requests returns a copy of every request received so far.
func (s *StubStore) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Respond queues a canned response for the next request with the given
// method. Queued responses are used in order, one per request.
func (s *StubStore) Respond(method string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method] = append(s.overrides[method], StubResponse{Status: status, Body: body})
}

func (s *StubStore) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	key := s.keyFromRequest(r)
	rec := RecordedRequest{
		Method:        r.Method,
		Host:          r.Host,
		Path:          r.URL.EscapedPath(),
		Query:         r.URL.RawQuery,
		Key:           key,
		Body:          body,
		Header:        r.Header.Clone(),
		Authorization: r.Header.Get(sigv4.HeaderAuthorization),
	}
	rec.SignatureOK = s.verify(r, body)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, rec)

	if !rec.SignatureOK {
		writeError(w, http.StatusForbidden, "SignatureDoesNotMatch",
			"The request signature we calculated does not match the signature you provided.")
		return
	}

	if queued := s.overrides[r.Method]; len(queued) > 0 {
		s.overrides[r.Method] = queued[1:]
		w.WriteHeader(queued[0].Status)
		_, _ = io.WriteString(w, queued[0].Body)
		return
	}

	switch {
	case r.Method == http.MethodGet && key == "":
		s.listLocked(w, r.URL.Query().Get("prefix"))
	case r.Method == http.MethodPut && key != "":
		s.objects[key] = body
		w.Header().Set("ETag", fmt.Sprintf("%q", sigv4.PayloadHash(body)[:32]))
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet && key != "":
		data, ok := s.objects[key]
		if !ok {
			writeError(w, http.StatusNotFound, "NoSuchKey", "The specified key does not exist.")
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(data)
	case r.Method == http.MethodDelete && key != "":
		delete(s.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed",
			"The specified method is not allowed against this resource.")
	}
}

// keyFromRequest strips the bucket from the host or the path.
func (s *StubStore) keyFromRequest(r *http.Request) string {
	path := r.URL.Path
	if !strings.HasPrefix(r.Host, s.Bucket+".") {
		path = strings.TrimPrefix(path, "/"+s.Bucket)
	}
	return strings.TrimPrefix(path, "/")
}

func (s *StubStore) verify(r *http.Request, body []byte) bool {
	amzDate := r.Header.Get(sigv4.HeaderDate)
	ts, err := time.Parse(sigv4.TimeFormat, amzDate)
	if err != nil {
		return false
	}

	payloadHash := sigv4.PayloadHash(body)
	if r.Header.Get(sigv4.HeaderContentSHA256) != payloadHash {
		return false
	}

	uri := r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		uri += "?" + r.URL.RawQuery
	}

	want := sigv4.SignWithPayloadHash(r.Method, r.Host, uri, payloadHash, s.Creds, ts)
	return r.Header.Get(sigv4.HeaderAuthorization) == want.Authorization
}

func (s *StubStore) listLocked(w http.ResponseWriter, prefix string) {
	keys := s.sortedKeysLocked(prefix)

	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
	fmt.Fprintf(&b, "<Name>%s</Name><Prefix>%s</Prefix><KeyCount>%d</KeyCount>", s.Bucket, escape(prefix), len(keys))
	b.WriteString("<MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated>")
	for _, k := range keys {
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><StorageClass>STANDARD</StorageClass></Contents>",
			escape(k), len(s.objects[k]))
	}
	b.WriteString("</ListBucketResult>")

	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write(b.Bytes())
}

func (s *StubStore) sortedKeysLocked(prefix string) []string {
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w, "%s<Error><Code>%s</Code><Message>%s</Message></Error>", xml.Header, code, message)
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// redirectTransport rewrites the scheme and address of each request to the
// stub server. req.Host keeps the signed host.
type redirectTransport struct {
	target *url.URL
	next   http.RoundTripper
}

func (t *redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if out.Host == "" {
		out.Host = req.URL.Host
	}
	out.URL.Scheme = t.target.Scheme
	out.URL.Host = t.target.Host
	return t.next.RoundTrip(out)
}
