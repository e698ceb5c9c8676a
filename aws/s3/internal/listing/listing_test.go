package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/patchsync/aws/s3/errors"
	"github.com/input-output-hk/patchsync/aws/s3/s3types"
)

const listHeader = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Name>patches</Name><Prefix></Prefix>`

func listBody(keys ...string) string {
	body := listHeader
	body += "<KeyCount>" + string(rune('0'+len(keys))) + "</KeyCount><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated>"
	for _, k := range keys {
		body += "<Contents><Key>" + k + "</Key><Size>13</Size><StorageClass>STANDARD</StorageClass></Contents>"
	}
	return body + "</ListBucketResult>"
}

func extractors() map[string]s3types.KeyExtractor {
	return map[string]s3types.KeyExtractor{
		"marker": MarkerExtractor{},
		"xml":    XMLExtractor{},
	}
}

func TestExtractKeys_WellFormed(t *testing.T) {
	tests := []struct {
		name string
		keys []string
	}{
		{name: "zero keys", keys: []string{}},
		{name: "one key", keys: []string{"Fix.patch"}},
		{name: "many keys", keys: []string{"Fix.patch", "team/Feature.patch", "z.patch"}},
	}

	for extractorName, extractor := range extractors() {
		for _, tt := range tests {
			t.Run(extractorName+"/"+tt.name, func(t *testing.T) {
				got, err := extractor.ExtractKeys([]byte(listBody(tt.keys...)))
				require.NoError(t, err)
				assert.Equal(t, tt.keys, got)
			})
		}
	}
}

func TestExtractKeys_EmptyBody(t *testing.T) {
	for name, extractor := range extractors() {
		t.Run(name, func(t *testing.T) {
			got, err := extractor.ExtractKeys(nil)
			require.NoError(t, err)
			assert.Empty(t, got)
			assert.NotNil(t, got)
		})
	}
}

func TestExtractKeys_Truncated(t *testing.T) {
	full := listBody("a.patch", "b.patch", "c.patch")
	wellFormed := 3

	cut := len(full) - len("c.patch</Key><Size>13</Size><StorageClass>STANDARD</StorageClass></Contents></ListBucketResult>") + 3

	for name, extractor := range extractors() {
		t.Run(name, func(t *testing.T) {
			got, err := extractor.ExtractKeys([]byte(full[:cut]))

			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrMalformedListing)
			assert.Equal(t, []string{"a.patch", "b.patch"}, got)
			assert.LessOrEqual(t, len(got), wellFormed)
		})
	}
}

func TestMarkerExtractor_Verbatim(t *testing.T) {
	body := []byte("<Key>a &amp; b.patch</Key>junk<Key></Key><KeyCount>2</KeyCount>")

	got, err := MarkerExtractor{}.ExtractKeys(body)
	require.NoError(t, err)
	assert.Equal(t, []string{"a &amp; b.patch", ""}, got)
}

func TestMarkerExtractor_NotXML(t *testing.T) {
	got, err := MarkerExtractor{}.ExtractKeys([]byte("<Key>one</Key><Key>two</Key"))

	assert.ErrorIs(t, err, errors.ErrMalformedListing)
	assert.Equal(t, []string{"one"}, got)
}

func TestXMLExtractor_DecodesEntities(t *testing.T) {
	got, err := XMLExtractor{}.ExtractKeys([]byte(listBody("a &amp; b.patch")))
	require.NoError(t, err)
	assert.Equal(t, []string{"a & b.patch"}, got)
}
