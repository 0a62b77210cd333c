package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown content or backend type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Backend Errors.

	// ErrBackendUnavailable indicates the backend could not be reached.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrBackendRejected indicates the backend answered with success:false.
	// It is reported the same way as a network failure.
	ErrBackendRejected = errors.New("backend rejected request")

	// ErrRateLimited indicates the backend rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Library Errors.

	// ErrPartialDelete indicates some leaves of a group could not be removed.
	// The record cache is left untouched.
	ErrPartialDelete = errors.New("partial delete")

	// ErrEmptyGroup indicates a group with no leaves was passed for deletion.
	ErrEmptyGroup = errors.New("group has no records")

	// ErrStaleResponse indicates a list response was superseded by a newer request.
	ErrStaleResponse = errors.New("stale list response")

	// ErrLLMUnavailable indicates the assistant model is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
