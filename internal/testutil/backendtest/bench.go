package backendtest

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/joshuapare/pkalloc/alloc"
)

var benchSizes = []uintptr{16, 256, 4096, 65536}

func sizeName(n uintptr) string {
	switch {
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKiB", n>>10)
	default:
		return fmt.Sprintf("%dB", n)
	}
}

// Bench runs the shared allocation benchmarks against backend. Sub-benchmark
// names follow <op>/<impl>/<size> so results from different backends line up
// in scripts/benchmark_parser.go.
func Bench(b *testing.B, impl string, backend alloc.Backend) {
	a, err := alloc.New(backend, nil)
	if err != nil {
		b.Fatalf("alloc.New: %v", err)
	}

	b.Run("AllocFree/"+impl, func(b *testing.B) { benchEachSize(b, a, alloc.MinAlign, benchAllocFree) })
	b.Run("AllocFreeAligned/"+impl, func(b *testing.B) { benchEachSize(b, a, 4096, benchAllocFree) })
	b.Run("AllocZeroed/"+impl, func(b *testing.B) { benchEachSize(b, a, alloc.MinAlign, benchAllocZeroed) })
	b.Run("ReallocGrow/"+impl, func(b *testing.B) { benchEachSize(b, a, alloc.MinAlign, benchReallocGrow) })
	b.Run("Batch/"+impl, func(b *testing.B) { benchEachSize(b, a, alloc.MinAlign, benchBatch) })
}

func benchEachSize(b *testing.B, a *alloc.Allocator, align uintptr,
	fn func(b *testing.B, a *alloc.Allocator, size, align uintptr),
) {
	for _, size := range benchSizes {
		b.Run(sizeName(size), func(b *testing.B) {
			b.SetBytes(int64(size))
			fn(b, a, size, align)
		})
	}
}

func benchAllocFree(b *testing.B, a *alloc.Allocator, size, align uintptr) {
	for b.Loop() {
		p := a.Alloc(size, align)
		if p == nil {
			b.Fatal("allocation failed")
		}
		a.Dealloc(p, size, align)
	}
}

func benchAllocZeroed(b *testing.B, a *alloc.Allocator, size, align uintptr) {
	for b.Loop() {
		p := a.AllocZeroed(size, align)
		if p == nil {
			b.Fatal("allocation failed")
		}
		a.Dealloc(p, size, align)
	}
}

func benchReallocGrow(b *testing.B, a *alloc.Allocator, size, align uintptr) {
	for b.Loop() {
		p := a.Alloc(size, align)
		if p == nil {
			b.Fatal("allocation failed")
		}
		p = a.Realloc(p, alloc.Layout{Size: size, Align: align}, size*2)
		if p == nil {
			b.Fatal("reallocation failed")
		}
		a.Dealloc(p, size*2, align)
	}
}

// benchBatch holds many blocks live at once so the backend cannot just hand
// the same block back.
func benchBatch(b *testing.B, a *alloc.Allocator, size, align uintptr) {
	const batch = 64
	ptrs := make([]unsafe.Pointer, batch)
	for b.Loop() {
		for i := range ptrs {
			ptrs[i] = a.Alloc(size, align)
			if ptrs[i] == nil {
				b.Fatal("allocation failed")
			}
		}
		for _, p := range ptrs {
			a.Dealloc(p, size, align)
		}
	}
}
