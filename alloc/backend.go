package alloc

import (
	"unsafe"

	"github.com/joshuapare/pkalloc/ctl"
)

// Backend is the boundary to the external allocator. Every method is a
// direct delegation: a nil pointer or zero size reports failure, and nothing
// on this side retries or panics.
//
// Implementations:
//   - mmheap.Heap: modernc.org/memory with alignment headers (default)
//   - jemalloc.Heap: cgo binding to a prebuilt jemalloc (build tag jemalloc)
//
// Implementations must be safe for concurrent use.
type Backend interface {
	// Allocate returns a block of at least size bytes honouring flags (mallocx).
	Allocate(size uintptr, flags Flags) unsafe.Pointer

	// Reallocate resizes p to size bytes, moving it if needed (rallocx).
	// The alignment encoded in flags must match the original allocation.
	Reallocate(p unsafe.Pointer, size uintptr, flags Flags) unsafe.Pointer

	// Deallocate releases p, which was allocated with size and flags (sdallocx).
	Deallocate(p unsafe.Pointer, size uintptr, flags Flags)

	// NearestSize returns the usable size a request of size and flags would
	// get, or 0 when unknown (nallocx).
	NearestSize(size uintptr, flags Flags) uintptr

	// ResizeInPlace tries to resize p to at least size and at most size+extra
	// bytes without moving it. It returns the resulting usable size, which is
	// the old usable size when nothing could be done (xallocx).
	ResizeInPlace(p unsafe.Pointer, size, extra uintptr, flags Flags) uintptr

	// ZeroedAllocate returns count*size zero-filled bytes (calloc).
	ZeroedAllocate(size, count uintptr) unsafe.Pointer

	// UsableSize returns the usable size of p (malloc_usable_size).
	UsableSize(p unsafe.Pointer) uintptr

	// Malloc, Realloc and Free are the flag-less libc entry points.
	Malloc(size uintptr) unsafe.Pointer
	Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer
	Free(p unsafe.Pointer)

	// Controller reads and writes named backend tunables (mallctl).
	ctl.Controller

	// PrintStats writes a human-readable statistics report through write,
	// possibly in several chunks (malloc_stats_print). opts selects sections.
	PrintStats(write func(string), opts string)
}

// MinAligner is implemented by backends that can report the alignment they
// guarantee for flag-less requests. New refuses backends weaker than MinAlign.
type MinAligner interface {
	MinAlign() uintptr
}
