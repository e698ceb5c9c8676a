// Package testutil holds the in-memory stub store, container fixtures and
// small data helpers shared by the s3 tests.
package testutil

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Credentials accepted by the stub store and the local containers.
const (
	TestAccessKey = "test"
	TestSecretKey = "testsecret"
	TestRegion    = "us-east-1"
)

var seq atomic.Uint64

// RandomBytes returns n random bytes for upload payloads.
func RandomBytes(n int) []byte {
	data := make([]byte, n)
	_, _ = rand.Read(data)
	return data
}

// PatchKey returns a key ending in .patch that is unique within the test
// binary, placed under dir when dir is not empty.
func PatchKey(dir string) string {
	name := fmt.Sprintf("patch-%d-%d.patch", time.Now().UnixNano(), seq.Add(1))
	if dir == "" {
		return name
	}
	return strings.TrimSuffix(dir, "/") + "/" + name
}

// BucketName turns prefix into a unique DNS-compatible bucket name.
func BucketName(prefix string) string {
	name := strings.ToLower(strings.ReplaceAll(prefix, "_", "-"))
	name = fmt.Sprintf("%s-%d-%d", name, time.Now().Unix(), seq.Add(1))
	if len(name) > 63 {
		name = strings.TrimRight(name[:63], "-")
	}
	return name
}
