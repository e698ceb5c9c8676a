package listing

import (
	"bytes"
	"fmt"

	"github.com/input-output-hk/patchsync/aws/s3/errors"
)

var (
	openMarker  = []byte("<Key>")
	closeMarker = []byte("</Key>")
)

// MarkerExtractor scans a body for <Key>...</Key> pairs. It is not an XML
// parser: entities are not decoded and element nesting is ignored.
type MarkerExtractor struct{}

// ExtractKeys returns every substring found between the markers, in document
// order. An opening marker with no closing marker ends the scan; the keys
// found before it are returned along with ErrMalformedListing.
func (MarkerExtractor) ExtractKeys(body []byte) ([]string, error) {
	keys := []string{}
	rest := body
	for {
		start := bytes.Index(rest, openMarker)
		if start < 0 {
			return keys, nil
		}
		rest = rest[start+len(openMarker):]

		end := bytes.Index(rest, closeMarker)
		if end < 0 {
			return keys, fmt.Errorf("unterminated key after %d keys: %w", len(keys), errors.ErrMalformedListing)
		}
		keys = append(keys, string(rest[:end]))
		rest = rest[end+len(closeMarker):]
	}
}
