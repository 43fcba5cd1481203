package cache

import "errors"

// Sentinel errors for cache operations.
var (
	// ErrInvalidKey is returned by Set when the key is empty or blank.
	// This is the only caller-input error the cache surfaces; everything
	// else degrades locally and is reported via stats and the logger.
	ErrInvalidKey = errors.New("cache: invalid key")

	// ErrClosed is returned when an operation requiring a live instance
	// is attempted after Close.
	ErrClosed = errors.New("cache: closed")

	// ErrNoLoader is returned by GetOrLoad when no Loader was configured.
	ErrNoLoader = errors.New("cache: no loader provided")
)
