// Package listing extracts object keys from list responses.
//
// MarkerExtractor is the default: it scans for literal <Key> and </Key>
// markers and returns the text between each pair verbatim. XMLExtractor
// decodes the document with encoding/xml and unescapes entities.
package listing
