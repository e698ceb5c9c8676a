package listing

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/input-output-hk/patchsync/aws/s3/errors"
)

// XMLExtractor decodes the body as XML and collects the character data of
// every element named Key, at any depth.
type XMLExtractor struct{}

// ExtractKeys returns the decoded key names in document order. A syntax
// error stops decoding; the keys decoded before it are returned along with
// ErrMalformedListing.
func (XMLExtractor) ExtractKeys(body []byte) ([]string, error) {
	keys := []string{}
	dec := xml.NewDecoder(bytes.NewReader(body))

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return keys, nil
		}
		if err != nil {
			return keys, fmt.Errorf("%w: %v", errors.ErrMalformedListing, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Key" {
			continue
		}

		var key string
		if err := dec.DecodeElement(&key, &start); err != nil {
			return keys, fmt.Errorf("%w: %v", errors.ErrMalformedListing, err)
		}
		keys = append(keys, key)
	}
}
