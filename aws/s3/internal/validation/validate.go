package validation

import (
	"net/netip"
	"strings"
	"unicode"

	"github.com/input-output-hk/patchsync/aws/s3/errors"
)

// MaxKeyLength is the longest object key the store accepts, in bytes.
const MaxKeyLength = 1024

type rule struct {
	broken  func(string) bool
	message string
}

// Bucket rules are checked in order; the bucket becomes the leading label of
// a virtual-hosted endpoint so it must be a DNS name.
var bucketRules = []rule{
	{func(b string) bool { return b == "" }, "bucket name cannot be empty"},
	{func(b string) bool { return len(b) < 3 || len(b) > 63 }, "bucket name must be between 3 and 63 characters long"},
	{
		func(b string) bool { return strings.IndexFunc(b, invalidBucketChar) >= 0 },
		"bucket name can only contain lowercase letters, numbers, dots, and hyphens",
	},
	{
		func(b string) bool { return strings.ContainsAny(b[:1]+b[len(b)-1:], "-.") },
		"bucket name cannot start or end with a hyphen or dot",
	},
	{isIPv4, "bucket name cannot be formatted as an IP address"},
	{func(b string) bool { return strings.Contains(b, "..") }, "bucket name cannot contain two adjacent periods"},
}

// Key rules; keys double as file names when a patch is downloaded.
var keyRules = []rule{
	{func(k string) bool { return k == "" }, "object key cannot be empty"},
	{func(k string) bool { return len(k) > MaxKeyLength }, "object key cannot exceed 1024 bytes"},
	{escapesRoot, "object key cannot contain path traversal sequences"},
	{func(k string) bool { return strings.IndexFunc(k, unicode.IsControl) >= 0 }, "object key cannot contain control characters"},
}

// ValidateBucketName reports whether bucket can be used as a DNS label.
func ValidateBucketName(bucket string) error {
	for _, r := range bucketRules {
		if r.broken(bucket) {
			e := errors.NewError("validateBucketName", errors.ErrInvalidBucketName).WithMessage(r.message)
			if bucket != "" {
				e = e.WithBucket(bucket)
			}
			return e
		}
	}
	return nil
}

// ValidateObjectKey reports whether key can be sent as a URI path.
func ValidateObjectKey(key string) error {
	for _, r := range keyRules {
		if r.broken(key) {
			e := errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).WithMessage(r.message)
			switch {
			case len(key) > MaxKeyLength:
				e = e.WithKey(key[:32] + "...")
			case key != "":
				e = e.WithKey(key)
			}
			return e
		}
	}
	return nil
}

func invalidBucketChar(r rune) bool {
	return (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '.' && r != '-'
}

func isIPv4(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is4()
}

// escapesRoot reports absolute keys, Windows drive paths and keys with a ".."
// segment.
func escapesRoot(key string) bool {
	if strings.HasPrefix(key, "/") || strings.HasPrefix(key, `\`) {
		return true
	}
	if len(key) >= 3 && key[1] == ':' && (key[2] == '\\' || key[2] == '/') {
		return true
	}
	for _, segment := range strings.FieldsFunc(key, func(r rune) bool { return r == '/' || r == '\\' }) {
		if segment == ".." {
			return true
		}
	}
	return false
}
