package sigv4

import (
	"net/url"
	"sort"
	"strings"
)

// EncodeQuery renders params in canonical form: keys sorted, values sorted
// per key, every byte outside the unreserved set percent-encoded with
// upper-case hex. The result can be appended after '?' and passed through
// the signer's raw query handling unchanged.
func EncodeQuery(params url.Values) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(params))
	for _, k := range keys {
		values := append([]string(nil), params[k]...)
		sort.Strings(values)
		for _, v := range values {
			parts = append(parts, URIEncode(k, true)+"="+URIEncode(v, true))
		}
	}
	return strings.Join(parts, "&")
}

// EncodePath percent-encodes an object key for use as a URI path,
// leaving '/' separators intact.
func EncodePath(key string) string {
	return URIEncode(key, false)
}

// URIEncode applies the signing protocol's URI encoding. When encodeSlash is
// false, '/' is left as-is.
func URIEncode(s string, encodeSlash bool) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isUnreserved(c):
			b.WriteByte(c)
		case c == '/' && !encodeSlash:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return c >= 'A' && c <= 'Z' ||
		c >= 'a' && c <= 'z' ||
		c >= '0' && c <= '9' ||
		c == '-' || c == '_' || c == '.' || c == '~'
}
