package alloc

import "unsafe"

// LibC exposes the plain malloc/realloc/free entry points for callers that
// only speak the C allocation contract. Blocks come with the backend's
// default alignment.
type LibC struct {
	backend Backend
}

// LibC returns the flag-less compatibility entry points.
func (a *Allocator) LibC() LibC {
	return LibC{backend: a.backend}
}

// Malloc returns size bytes, or nil.
func (c LibC) Malloc(size uintptr) unsafe.Pointer {
	return c.backend.Malloc(size)
}

// Realloc resizes p to size bytes, possibly moving it.
func (c LibC) Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	return c.backend.Realloc(p, size)
}

// Free releases p. Free(nil) is a no-op if the backend says so.
func (c LibC) Free(p unsafe.Pointer) {
	c.backend.Free(p)
}
