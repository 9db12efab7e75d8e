package core

import "errors"

var (
	// ErrConfiguration marks programmer or config mistakes, such as an
	// orthographic camera without a width or a missing GPU handle.
	ErrConfiguration = errors.New("configuration error")

	// ErrCacheCorrupt is returned when a removal finds no matching cache
	// entry. The visibility cache has already been dropped when it is seen.
	ErrCacheCorrupt = errors.New("visibility cache corrupt")

	// ErrResource wraps failed buffer, texture or pipeline creation.
	ErrResource = errors.New("gpu resource acquisition failed")
)
