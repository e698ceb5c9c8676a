// Package internal contains private implementation details for the S3 module.
// These packages are not intended for external use and may change without notice.
//
// The internal packages are organized as follows:
//   - listing: Key extraction from list responses
//   - validation: Input validation logic
//   - testutil: Stub store and container helpers for tests
package internal
