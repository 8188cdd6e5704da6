package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrSearchAPIFailure is returned when the upstream search index request fails
	ErrSearchAPIFailure = errors.New("search API request failed")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrNoPriceFound is returned when a fetched page contains no recognizable price element
	ErrNoPriceFound = errors.New("no price element found")
)
