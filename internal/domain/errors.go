package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRecordNotFound is returned when the store has no record for a key
	ErrRecordNotFound = errors.New("record not found in store")

	// ErrStoreUnavailable is returned when a store request fails in transit
	ErrStoreUnavailable = errors.New("record store request failed")

	// ErrNormalizationFailed is returned when the name-normalization service fails
	ErrNormalizationFailed = errors.New("name normalization failed")

	// ErrCacheMiss is returned when a key is absent from the memo cache
	ErrCacheMiss = errors.New("cache miss")
)
