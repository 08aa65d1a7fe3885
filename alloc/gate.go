package alloc

import "unsafe"

// NoDomain is the domain key reported by an Allocator without a Gate.
const NoDomain = -1

// Gate answers protection-domain questions about foreign pointers.
// safety.Gate is the standard implementation.
type Gate interface {
	// DomainKey returns the active protection-domain key.
	DomainKey() int

	// IsAddressSafe reports whether p lies in memory accessible under the
	// active domain. A false result means p must not be dereferenced or freed.
	IsAddressSafe(p unsafe.Pointer) bool
}
