// Package sanitizer normalizes free-text input before validation and storage.
//
// All functions are idempotent and never return errors; invalid input is
// reduced to an empty string.
package sanitizer
