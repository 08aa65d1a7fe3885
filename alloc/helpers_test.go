package alloc

import (
	"sync"
	"unsafe"

	"github.com/joshuapare/pkalloc/ctl"
)

// ============================================================================
// Recording backend
// ============================================================================

// call is one recorded backend invocation.
type call struct {
	op    string
	size  uintptr
	extra uintptr
	flags Flags
}

// spyBackend records every call and serves memory from the Go heap. Its
// answers for NearestSize and ResizeInPlace are scripted by the test.
type spyBackend struct {
	*ctl.Tree

	mu     sync.Mutex
	calls  []call
	blocks map[unsafe.Pointer][]byte

	nearest  uintptr // NearestSize result; 0 means unknown
	resizeTo uintptr // ResizeInPlace result
	fail     bool    // allocation entry points return nil
	minAlign uintptr // reported through MinAligner when non-zero
}

func newSpy() *spyBackend {
	return &spyBackend{
		Tree:   ctl.NewTree(),
		blocks: make(map[unsafe.Pointer][]byte),
	}
}

func (s *spyBackend) record(c call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

func (s *spyBackend) recorded() []call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]call(nil), s.calls...)
}

// block returns Go memory aligned as flags ask, kept alive by the spy.
func (s *spyBackend) block(size uintptr, flags Flags) unsafe.Pointer {
	if s.fail {
		return nil
	}
	align := max(flags.Align(), MinAlign)
	b := make([]byte, size+align)
	off := AlignUp(uintptr(unsafe.Pointer(&b[0])), align) - uintptr(unsafe.Pointer(&b[0]))
	p := unsafe.Pointer(&b[off])
	s.mu.Lock()
	s.blocks[p] = b
	s.mu.Unlock()
	return p
}

func (s *spyBackend) Allocate(size uintptr, flags Flags) unsafe.Pointer {
	s.record(call{op: "allocate", size: size, flags: flags})
	return s.block(size, flags)
}

func (s *spyBackend) Reallocate(p unsafe.Pointer, size uintptr, flags Flags) unsafe.Pointer {
	s.record(call{op: "reallocate", size: size, flags: flags})
	return s.block(size, flags)
}

func (s *spyBackend) Deallocate(p unsafe.Pointer, size uintptr, flags Flags) {
	s.record(call{op: "deallocate", size: size, flags: flags})
}

func (s *spyBackend) NearestSize(size uintptr, flags Flags) uintptr {
	s.record(call{op: "nearest", size: size, flags: flags})
	return s.nearest
}

func (s *spyBackend) ResizeInPlace(p unsafe.Pointer, size, extra uintptr, flags Flags) uintptr {
	s.record(call{op: "resize", size: size, extra: extra, flags: flags})
	return s.resizeTo
}

func (s *spyBackend) ZeroedAllocate(size, count uintptr) unsafe.Pointer {
	s.record(call{op: "calloc", size: size, extra: count})
	return s.block(size*count, 0)
}

func (s *spyBackend) UsableSize(p unsafe.Pointer) uintptr {
	s.record(call{op: "usable"})
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.blocks[p]; ok {
		return uintptr(len(b)) - (uintptr(p) - uintptr(unsafe.Pointer(&b[0])))
	}
	return 0
}

func (s *spyBackend) Malloc(size uintptr) unsafe.Pointer {
	s.record(call{op: "malloc", size: size})
	return s.block(size, 0)
}

func (s *spyBackend) Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	s.record(call{op: "realloc", size: size})
	return s.block(size, 0)
}

func (s *spyBackend) Free(p unsafe.Pointer) {
	s.record(call{op: "free"})
}

func (s *spyBackend) PrintStats(write func(string), opts string) {
	s.record(call{op: "stats"})
	write("spy stats\n")
	write("opts=" + opts + "\n")
}

// minAlignSpy adds MinAligner to the spy.
type minAlignSpy struct {
	*spyBackend
}

func (m minAlignSpy) MinAlign() uintptr { return m.minAlign }

// staticGate is a Gate with a fixed key and a single safe address.
type staticGate struct {
	key  int
	safe unsafe.Pointer
}

func (g staticGate) DomainKey() int                      { return g.key }
func (g staticGate) IsAddressSafe(p unsafe.Pointer) bool { return p == g.safe }
