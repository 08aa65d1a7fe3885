package alloc

import (
	"fmt"
	"io"
	"os"
	"unsafe"

	"github.com/joshuapare/pkalloc/ctl"
	"github.com/joshuapare/pkalloc/internal/logger"
)

// Runtime debug flag for per-call logging - controlled by PKALLOC_LOG_ALLOC env var.
var logAlloc = os.Getenv("PKALLOC_LOG_ALLOC") != ""

// Options configures an Allocator. The zero value (or nil) means no gate.
type Options struct {
	// Gate describes the active protection domain. Its key is read once and
	// never changes for the lifetime of the Allocator.
	Gate Gate
}

// Allocator is the public allocation facade. It translates layouts into
// backend flags and delegates every call; it owns no memory and holds no
// mutable state.
type Allocator struct {
	backend Backend
	gate    Gate
	key     int
}

// New creates an Allocator over b.
//
// Parameters:
//   - b: The backend that performs every allocation
//   - opts: Gate configuration (use nil for none)
func New(b Backend, opts *Options) (*Allocator, error) {
	if b == nil {
		return nil, ErrNilBackend
	}
	if ma, ok := b.(MinAligner); ok && ma.MinAlign() < MinAlign {
		return nil, fmt.Errorf("%w: backend=%d want>=%d", ErrMinAlignMismatch, ma.MinAlign(), MinAlign)
	}
	if opts == nil {
		opts = &Options{}
	}

	a := &Allocator{
		backend: b,
		gate:    opts.Gate,
		key:     NoDomain,
	}
	if a.gate != nil {
		a.key = a.gate.DomainKey()
	}

	logger.L.Debug("allocator created",
		"backend", fmt.Sprintf("%T", b),
		"min_align", MinAlign,
		"domain_key", a.key,
	)
	return a, nil
}

// Backend returns the backend the allocator delegates to.
func (a *Allocator) Backend() Backend {
	return a.backend
}

// Alloc returns size bytes aligned to align, or nil.
func (a *Allocator) Alloc(size, align uintptr) unsafe.Pointer {
	p := a.backend.Allocate(size, FlagsFor(align, size))
	if logAlloc {
		logger.L.Debug("alloc", "size", size, "align", align, "ptr", p)
	}
	return p
}

// Dealloc releases p, which must have been allocated with the same size and align.
func (a *Allocator) Dealloc(p unsafe.Pointer, size, align uintptr) {
	if logAlloc {
		logger.L.Debug("dealloc", "size", size, "align", align, "ptr", p)
	}
	a.backend.Deallocate(p, size, FlagsFor(align, size))
}

// Realloc resizes the block at p from old to newSize bytes, keeping
// old.Align. It returns nil on failure, in which case p is untouched.
// Changing alignment is not supported here; allocate, copy and free instead.
func (a *Allocator) Realloc(p unsafe.Pointer, old Layout, newSize uintptr) unsafe.Pointer {
	return a.backend.Reallocate(p, newSize, FlagsFor(old.Align, newSize))
}

// AllocZeroed is Alloc with every returned byte set to zero.
func (a *Allocator) AllocZeroed(size, align uintptr) unsafe.Pointer {
	if align <= MinAlign && align <= size {
		return a.backend.ZeroedAllocate(size, 1)
	}
	return a.backend.Allocate(size, ZeroedFlagsFor(align, size))
}

// UsableSize returns the bounds of what an allocation of l may hold. min is
// always l.Size. max is the backend's rounded size, or l.Size when the
// backend cannot tell.
func (a *Allocator) UsableSize(l Layout) (minSize, maxSize uintptr) {
	minSize = l.Size
	maxSize = a.backend.NearestSize(l.Size, l.Flags())
	if maxSize == 0 {
		maxSize = minSize
	}
	return minSize, maxSize
}

// AllocExcess is Alloc that also reports the usable size of the block.
// The excess is only meaningful when the returned pointer is non-nil.
func (a *Allocator) AllocExcess(size, align uintptr) (unsafe.Pointer, uintptr) {
	flags := FlagsFor(align, size)
	p := a.backend.Allocate(size, flags)
	if p == nil {
		return nil, 0
	}
	return p, a.excess(p, size, flags)
}

// ReallocExcess is Realloc that also reports the usable size of the block.
func (a *Allocator) ReallocExcess(p unsafe.Pointer, old Layout, newSize uintptr) (unsafe.Pointer, uintptr) {
	flags := FlagsFor(old.Align, newSize)
	np := a.backend.Reallocate(p, newSize, flags)
	if np == nil {
		return nil, 0
	}
	return np, a.excess(np, newSize, flags)
}

func (a *Allocator) excess(p unsafe.Pointer, size uintptr, flags Flags) uintptr {
	if n := a.backend.NearestSize(size, flags); n != 0 {
		return n
	}
	return a.backend.UsableSize(p)
}

// MallocUsableSize returns the usable size of a live block.
func (a *Allocator) MallocUsableSize(p unsafe.Pointer) uintptr {
	return a.backend.UsableSize(p)
}

// DomainKey returns the protection-domain key captured at construction, or
// NoDomain when the allocator has no gate.
func (a *Allocator) DomainKey() int {
	return a.key
}

// IsAddressSafe reports whether p lies in memory accessible under the active
// protection domain. Without a gate nothing can be vouched for and the
// answer is false. No allocation operation calls this on its own.
func (a *Allocator) IsAddressSafe(p unsafe.Pointer) bool {
	if a.gate == nil {
		return false
	}
	return a.gate.IsAddressSafe(p)
}

// Ctl exposes the backend control interface.
func (a *Allocator) Ctl() ctl.Controller {
	return a.backend
}

// PrintStats passes a statistics report to write, chunk by chunk.
func (a *Allocator) PrintStats(write func(string), opts string) {
	a.backend.PrintStats(write, opts)
}

// WriteStats writes the statistics report to w. Only the first write error
// is kept; later chunks are dropped once one has failed.
func (a *Allocator) WriteStats(w io.Writer, opts string) error {
	var werr error
	a.backend.PrintStats(func(s string) {
		if werr != nil {
			return
		}
		_, werr = io.WriteString(w, s)
	}, opts)
	return werr
}
