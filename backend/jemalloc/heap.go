//go:build cgo && jemalloc

package jemalloc

/*
#cgo LDFLAGS: -ljemalloc
#include <stdint.h>
#include <stdlib.h>
#include <jemalloc/jemalloc.h>

extern void pkallocStatsWrite(uintptr_t, char *);

static void pkalloc_stats_cb(void *opaque, const char *msg) {
	pkallocStatsWrite((uintptr_t)opaque, (char *)msg);
}

static void pkalloc_stats_print(uintptr_t handle, const char *opts) {
	malloc_stats_print(pkalloc_stats_cb, (void *)handle, opts);
}
*/
import "C"

import (
	"fmt"
	"runtime/cgo"
	"unsafe"

	"github.com/joshuapare/pkalloc/alloc"
	"github.com/joshuapare/pkalloc/internal/logger"
)

var _ alloc.Backend = (*Heap)(nil)

// Heap is an alloc.Backend over the process-wide jemalloc. It holds no
// state; every value shares the same underlying allocator.
type Heap struct {
	version string
}

// New checks that jemalloc is linked and answering mallctl.
func New() (*Heap, error) {
	h := &Heap{}
	if err := h.Read("version", &h.version); err != nil {
		return nil, fmt.Errorf("jemalloc: probe: %w", err)
	}
	logger.L.Debug("jemalloc backend ready", "version", h.version)
	return h, nil
}

// Version returns the linked jemalloc version string.
func (h *Heap) Version() string {
	return h.version
}

// MinAlign implements alloc.MinAligner.
func (h *Heap) MinAlign() uintptr {
	return alloc.MinAlign
}

// jemalloc leaves zero-sized mallocx and rallocx undefined.
func nonZero(size uintptr) C.size_t {
	if size == 0 {
		return 1
	}
	return C.size_t(size)
}

// Allocate implements alloc.Backend.
func (h *Heap) Allocate(size uintptr, flags alloc.Flags) unsafe.Pointer {
	return C.mallocx(nonZero(size), C.int(flags))
}

// Reallocate implements alloc.Backend.
func (h *Heap) Reallocate(p unsafe.Pointer, size uintptr, flags alloc.Flags) unsafe.Pointer {
	if p == nil {
		return h.Allocate(size, flags)
	}
	return C.rallocx(p, nonZero(size), C.int(flags))
}

// Deallocate implements alloc.Backend.
func (h *Heap) Deallocate(p unsafe.Pointer, size uintptr, flags alloc.Flags) {
	if p == nil {
		return
	}
	C.sdallocx(p, nonZero(size), C.int(flags))
}

// NearestSize implements alloc.Backend.
func (h *Heap) NearestSize(size uintptr, flags alloc.Flags) uintptr {
	if size == 0 {
		return 0
	}
	return uintptr(C.nallocx(C.size_t(size), C.int(flags)))
}

// ResizeInPlace implements alloc.Backend.
func (h *Heap) ResizeInPlace(p unsafe.Pointer, size, extra uintptr, flags alloc.Flags) uintptr {
	return uintptr(C.xallocx(p, nonZero(size), C.size_t(extra), C.int(flags)))
}

// ZeroedAllocate implements alloc.Backend.
func (h *Heap) ZeroedAllocate(size, count uintptr) unsafe.Pointer {
	return C.calloc(C.size_t(count), C.size_t(size))
}

// UsableSize implements alloc.Backend.
func (h *Heap) UsableSize(p unsafe.Pointer) uintptr {
	if p == nil {
		return 0
	}
	return uintptr(C.malloc_usable_size(p))
}

// Malloc implements alloc.Backend.
func (h *Heap) Malloc(size uintptr) unsafe.Pointer {
	return C.malloc(C.size_t(size))
}

// Realloc implements alloc.Backend.
func (h *Heap) Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	return C.realloc(p, C.size_t(size))
}

// Free implements alloc.Backend.
func (h *Heap) Free(p unsafe.Pointer) {
	C.free(p)
}

// PrintStats implements alloc.Backend via malloc_stats_print. write may be
// called many times with partial lines.
func (h *Heap) PrintStats(write func(string), opts string) {
	handle := cgo.NewHandle(write)
	defer handle.Delete()

	copts := C.CString(opts)
	defer C.free(unsafe.Pointer(copts))

	C.pkalloc_stats_print(C.uintptr_t(handle), copts)
}
