package core

import "errors"

// Common errors.
var (
	// ErrStorageUnavailable wraps any failure to open, read or write the durable medium.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrNotFound is returned when a referenced entry id does not exist.
	ErrNotFound = errors.New("note not found")
	// ErrUnsupported is returned when the backend lacks a capability (e.g. per-entry ids).
	ErrUnsupported = errors.New("operation not supported by backend")
	// ErrInvalidPolicy is returned for a recent-notes policy that selects nothing.
	ErrInvalidPolicy = errors.New("invalid recent notes policy")
)
