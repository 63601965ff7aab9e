// Package sanitizer normalizes user-supplied identifiers before they are
// validated or compared.
//
// Every function is idempotent. Invalid input is returned in a shape the
// validators will reject rather than as an error:
//   - Display names: trimmed, inner whitespace collapsed, case preserved
//   - Access codes: trimmed and uppercased, so "abc123" and "ABC123" are one code
//   - Emails and domains: trimmed and lowercased
//   - Slices: duplicates and empty values dropped after normalization
package sanitizer
