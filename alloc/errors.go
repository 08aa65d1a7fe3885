package alloc

import "errors"

var (
	// ErrBadAlign indicates an alignment that is zero or not a power of two.
	ErrBadAlign = errors.New("alloc: alignment must be a non-zero power of two")

	// ErrSizeOverflow indicates a size that cannot be rounded up to its alignment.
	ErrSizeOverflow = errors.New("alloc: size overflows when rounded to alignment")

	// ErrNilBackend indicates New was called without a backend.
	ErrNilBackend = errors.New("alloc: nil backend")
)

// ErrMinAlignMismatch indicates a backend whose default alignment is weaker
// than MinAlign. Fast-path requests would come back misaligned.
var ErrMinAlignMismatch = errors.New("alloc: backend default alignment below MinAlign")
