// Package mmheap is the default allocator backend. It delegates memory
// management to modernc.org/memory, an mmap-backed malloc, and adds what
// the alloc.Backend contract needs on top: arbitrary power-of-two
// alignment, sized and flag-aware entry points, usable-size and
// in-place-resize reporting, counters and tunables.
//
// Every block has a two-word header just below the returned pointer that
// records the pointer modernc.org/memory handed out and the block's usable
// size. That keeps plain Free and UsableSize working for any block, whatever
// alignment it was requested with. The usable size of a request depends only
// on its size and alignment, never on where the aligned start landed, so
// NearestSize is exact.
package mmheap

import (
	"math"
	"math/bits"
	"sync"
	"sync/atomic"
	"unsafe"

	"modernc.org/memory"

	"github.com/joshuapare/pkalloc/alloc"
	"github.com/joshuapare/pkalloc/ctl"
	"github.com/joshuapare/pkalloc/internal/buf"
	"github.com/joshuapare/pkalloc/internal/logger"
)

// header sits just below every block.
type header struct {
	raw unsafe.Pointer // what modernc.org/memory returned
	cap uintptr        // usable size of the block
}

const (
	hdrSize = unsafe.Sizeof(header{})

	// Rounding constants of modernc.org/memory: slots are aligned to two
	// words, and whole-page allocations carry a four-word page header.
	mallocAlign = 2 * unsafe.Sizeof(uintptr(0))
	pageHdrSize = 4 * unsafe.Sizeof(uintptr(0))

	junkAlloc = 0xa5
	junkFree  = 0x5a
)

var _ alloc.Backend = (*Heap)(nil)

// Heap is an alloc.Backend over modernc.org/memory. It is safe for
// concurrent use; calls into the underlying allocator are serialized.
type Heap struct {
	mu     sync.Mutex
	mem    memory.Allocator
	closed bool

	opts    Options
	page    uintptr
	granule uintptr

	stats counters
	prof  profile
	tree  *ctl.Tree

	// epoch and snap implement jemalloc-style stats refresh: stats.*
	// tunables report the snapshot taken by the last write to "epoch".
	epoch atomic.Uint64
	snap  atomic.Pointer[Stats]
}

// New creates a heap.
//
// Parameters:
//   - opts: Debug/profile configuration (use nil for defaults, or OptionsFromEnv)
func New(opts *Options) (*Heap, error) {
	if opts == nil {
		opts = &Options{}
	}
	h := &Heap{
		opts:    *opts,
		page:    pageSize(),
		granule: mapGranule(),
	}
	h.prof.active.Store(opts.Profile)
	h.refresh()
	if err := h.registerTunables(); err != nil {
		return nil, err
	}
	logger.L.Debug("mmheap created", "debug", opts.Debug, "profile", opts.Profile, "page", h.page)
	return h, nil
}

// Close releases all memory held by the heap. Blocks still owned by callers
// become invalid. Allocation calls after Close return nil.
func (h *Heap) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	h.closed = true
	return h.mem.Close()
}

// MinAlign implements alloc.MinAligner.
func (h *Heap) MinAlign() uintptr {
	return alloc.MinAlign
}

func effectiveAlign(flags alloc.Flags) uintptr {
	if a := flags.Align(); a > alloc.MinAlign {
		return a
	}
	return alloc.MinAlign
}

func hdrOf(p unsafe.Pointer) *header {
	return (*header)(unsafe.Add(p, -int(hdrSize)))
}

// rawOf returns the pointer modernc.org/memory returned for block p.
func rawOf(p unsafe.Pointer) unsafe.Pointer {
	return hdrOf(p).raw
}

// padFor is the space reserved in front of a block of the given alignment.
// Raw blocks start hdrSize-aligned, so the aligned start never lies further
// than this past the raw pointer.
func padFor(align uintptr) uintptr {
	return max(align, hdrSize)
}

// place aligns a block inside raw and fills in its header. The usable size
// is the raw usable size less the full padding, wherever the block landed.
func place(raw unsafe.Pointer, align uintptr) unsafe.Pointer {
	base := uintptr(raw)
	off := alloc.AlignUp(base+hdrSize, align) - base
	p := unsafe.Add(raw, off)
	h := hdrOf(p)
	h.raw = raw
	h.cap = uintptr(memory.UnsafeUsableSize(raw)) - padFor(align)
	return p
}

// usable returns the usable size of p and of its raw block.
func usable(p unsafe.Pointer) (block, raw uintptr) {
	h := hdrOf(p)
	return h.cap, uintptr(memory.UnsafeUsableSize(h.raw))
}

// avail is how far block p could extend before the end of its raw block.
func avail(p unsafe.Pointer) uintptr {
	r := rawOf(p)
	return uintptr(memory.UnsafeUsableSize(r)) - (uintptr(p) - uintptr(r))
}

// allocate is the shared allocation path. It does not touch counters.
func (h *Heap) allocate(size uintptr, align uintptr, zero bool) unsafe.Pointer {
	need, ok := buf.AlignedSize(size, align, hdrSize)
	if !ok || need > math.MaxInt {
		return nil
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	var raw unsafe.Pointer
	var err error
	if zero {
		raw, err = h.mem.UnsafeCalloc(int(need))
	} else {
		raw, err = h.mem.UnsafeMalloc(int(need))
	}
	h.mu.Unlock()

	if err != nil || raw == nil {
		return nil
	}
	return place(raw, align)
}

func (h *Heap) release(p unsafe.Pointer) {
	raw := rawOf(p)
	h.mu.Lock()
	if !h.closed {
		_ = h.mem.UnsafeFree(raw)
	}
	h.mu.Unlock()
}

// Allocate implements alloc.Backend.
func (h *Heap) Allocate(size uintptr, flags alloc.Flags) unsafe.Pointer {
	p := h.allocate(size, effectiveAlign(flags), flags.Zero())
	if p == nil {
		return nil
	}
	block, raw := usable(p)
	if h.opts.Debug && !flags.Zero() {
		buf.Fill(buf.Bytes(p, block), junkAlloc)
	}
	h.stats.onAlloc(block, raw)
	h.prof.record(size)
	return p
}

// Deallocate implements alloc.Backend. size and flags are only checked in
// debug mode.
func (h *Heap) Deallocate(p unsafe.Pointer, size uintptr, flags alloc.Flags) {
	if p == nil {
		return
	}
	if h.opts.Debug {
		block, _ := usable(p)
		if size > block || uintptr(p)%effectiveAlign(flags) != 0 {
			logger.L.Warn("sized deallocation does not match block",
				"ptr", p, "size", size, "usable", block, "flags", int32(flags))
		}
	}
	h.Free(p)
}

// Free implements alloc.Backend. Free(nil) is a no-op.
func (h *Heap) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	block, raw := usable(p)
	if h.opts.Debug {
		buf.Fill(buf.Bytes(p, block), junkFree)
	}
	h.stats.onFree(block, raw)
	h.release(p)
}

// Reallocate implements alloc.Backend. The block is kept when it is suitably
// aligned and its raw block has room for the usable size NearestSize reports
// for the new request; its usable size is then set to that value. Otherwise
// the contents move to a new block. FlagZero zeroes any bytes past the old
// usable size. On failure p is left untouched and nil is returned.
func (h *Heap) Reallocate(p unsafe.Pointer, size uintptr, flags alloc.Flags) unsafe.Pointer {
	if p == nil {
		return h.Allocate(size, flags)
	}
	align := effectiveAlign(flags)
	old, _ := usable(p)
	if uintptr(p)%align == 0 {
		if n := h.NearestSize(size, flags); n != 0 && n <= avail(p) {
			if flags.Zero() && n > old {
				clear(buf.Bytes(unsafe.Add(p, old), n-old))
			}
			hdrOf(p).cap = n
			h.stats.allocated.Add(int64(n) - int64(old))
			h.stats.reallocs.Add(1)
			return p
		}
	}

	np := h.Allocate(size, flags&^alloc.FlagZero)
	if np == nil {
		return nil
	}
	n := min(old, size)
	copy(buf.Bytes(np, n), buf.Bytes(p, n))
	if flags.Zero() {
		block, _ := usable(np)
		if block > old {
			clear(buf.Bytes(unsafe.Add(np, old), block-old))
		}
	}
	h.Free(p)
	h.stats.reallocs.Add(1)
	return np
}

// ResizeInPlace implements alloc.Backend. Blocks never change size here, so
// the result is always the current usable size. Only a request for exactly
// that size, suitably aligned, counts as a resize.
func (h *Heap) ResizeInPlace(p unsafe.Pointer, size, extra uintptr, flags alloc.Flags) uintptr {
	block, _ := usable(p)
	if size == block && uintptr(p)%effectiveAlign(flags) == 0 {
		h.stats.resizes.Add(1)
	}
	return block
}

// NearestSize implements alloc.Backend. The result is the usable size
// Allocate gives a request of size and flags.
func (h *Heap) NearestSize(size uintptr, flags alloc.Flags) uintptr {
	pad := padFor(effectiveAlign(flags))
	need, ok := buf.AddOverflowSafe(size, pad)
	if !ok || need > math.MaxInt {
		return 0
	}
	return h.rawUsableFor(need) - pad
}

// rawUsableFor returns the usable size modernc.org/memory gives a request of
// need bytes: a power-of-two slot for small requests, whole pages less the
// page header for the rest.
func (h *Heap) rawUsableFor(need uintptr) uintptr {
	r := alloc.AlignUp(need, mallocAlign)
	if lg := bits.Len(uint(r - 1)); lg <= slotMaxLog {
		return 1 << lg
	}
	return alloc.AlignUp(need+pageHdrSize, h.granule) - pageHdrSize
}

// ZeroedAllocate implements alloc.Backend.
func (h *Heap) ZeroedAllocate(size, count uintptr) unsafe.Pointer {
	total, ok := buf.MulOverflowSafe(size, count)
	if !ok {
		return nil
	}
	return h.Allocate(total, alloc.FlagZero)
}

// UsableSize implements alloc.Backend.
func (h *Heap) UsableSize(p unsafe.Pointer) uintptr {
	if p == nil {
		return 0
	}
	block, _ := usable(p)
	return block
}

// Malloc implements alloc.Backend.
func (h *Heap) Malloc(size uintptr) unsafe.Pointer {
	return h.Allocate(size, 0)
}

// Realloc implements alloc.Backend. Realloc(nil, n) allocates; a zero size
// yields a minimal block rather than freeing.
func (h *Heap) Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	return h.Reallocate(p, size, 0)
}
