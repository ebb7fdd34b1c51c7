package storage

import "errors"

var (
	// ErrConfigNotFound means the requested config file does not exist yet.
	ErrConfigNotFound = errors.New("config not found")

	// ErrCacheNotFound means no scan has been cached yet.
	ErrCacheNotFound = errors.New("scan cache not found")

	// ErrCacheInvalid means the cached scan exists but does not match the
	// expected document shape, e.g. after a partial write or manual edit.
	ErrCacheInvalid = errors.New("scan cache invalid")
)
