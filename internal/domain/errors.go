package domain

import "errors"

var (
	// ErrInvalidRequest is returned when input is absent or structurally malformed
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNotFound is returned when a request, product or quote does not exist
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the caller could not be authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller's role does not allow the operation
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition is returned for a quote status change that is not allowed
	ErrInvalidTransition = errors.New("invalid quote status transition")

	// ErrConflict is returned when a concurrent writer changed the record first
	ErrConflict = errors.New("concurrent modification")

	// ErrRequestClosed is returned when quoting against a closed request
	ErrRequestClosed = errors.New("request is closed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCorpusUnavailable is returned when the historical corpus cannot be loaded
	ErrCorpusUnavailable = errors.New("corpus provider unavailable")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
