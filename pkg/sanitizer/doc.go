// Package sanitizer normalizes user supplied text before validation and
// storage.
//
// All functions are idempotent: applying them twice gives the same result as
// applying them once. They never fail; invalid input is normalized as far as
// possible and left to the validator to reject.
//
// Normalization includes:
//   - Text: strip control characters, collapse whitespace, trim
//   - Emails: trim surrounding whitespace only, the address is stored as typed
//   - Recurrence intervals: trim and lowercase so "Weekly" matches "weekly"
package sanitizer
