// Package validation checks bucket names and object keys before a request is
// signed, so a bad configuration fails locally instead of as a remote error.
package validation
