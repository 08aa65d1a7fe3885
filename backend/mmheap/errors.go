package mmheap

import "errors"

var (
	// ErrBadConf indicates a malformed PKALLOC_CONF string.
	ErrBadConf = errors.New("mmheap: bad configuration")

	// ErrClosed indicates an operation on a closed heap.
	ErrClosed = errors.New("mmheap: heap closed")
)
