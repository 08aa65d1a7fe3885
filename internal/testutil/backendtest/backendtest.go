// Package backendtest is a conformance suite for alloc.Backend
// implementations. Each backend package runs it from its own tests:
//
//	func TestConformance(t *testing.T) {
//	    backendtest.Run(t, func(t *testing.T) alloc.Backend {
//	        return newTestHeap(t)
//	    })
//	}
package backendtest

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pkalloc/alloc"
	"github.com/joshuapare/pkalloc/internal/buf"
)

// Factory returns a fresh backend. It should register any cleanup with t.
type Factory func(t *testing.T) alloc.Backend

// Run executes every conformance check as a subtest.
func Run(t *testing.T, newBackend Factory) {
	t.Helper()

	t.Run("AllocateAlignment", func(t *testing.T) { testAllocateAlignment(t, newBackend(t)) })
	t.Run("ZeroedAllocate", func(t *testing.T) { testZeroedAllocate(t, newBackend(t)) })
	t.Run("ZeroFlag", func(t *testing.T) { testZeroFlag(t, newBackend(t)) })
	t.Run("ReallocatePreservesContents", func(t *testing.T) { testReallocate(t, newBackend(t)) })
	t.Run("NearestSizeExact", func(t *testing.T) { testNearestSize(t, newBackend(t)) })
	t.Run("ResizeInPlace", func(t *testing.T) { testResizeInPlace(t, newBackend(t)) })
	t.Run("LibC", func(t *testing.T) { testLibC(t, newBackend(t)) })
	t.Run("Concurrent", func(t *testing.T) { testConcurrent(t, newBackend(t)) })
	t.Run("Stats", func(t *testing.T) { testStats(t, newBackend(t)) })
}

var alignments = []uintptr{1, 2, 4, 8, 16, 32, 64, 128, 256, 4096}
var sizes = []uintptr{1, 7, 8, 24, 64, 100, 1000, 4096, 70000}

func testAllocateAlignment(t *testing.T, b alloc.Backend) {
	for _, align := range alignments {
		for _, size := range sizes {
			flags := alloc.FlagsFor(align, size)
			p := b.Allocate(size, flags)
			require.NotNil(t, p, "Allocate(%d, align %d) should succeed", size, align)
			assert.Zero(t, uintptr(p)%align, "pointer %p not aligned to %d", p, align)
			assert.GreaterOrEqual(t, b.UsableSize(p), size, "usable size below request")

			// The whole block must be writable
			buf.Fill(buf.Bytes(p, size), 0xee)
			b.Deallocate(p, size, flags)
		}
	}
}

func testZeroedAllocate(t *testing.T, b alloc.Backend) {
	// Dirty some memory first so a recycled block would show garbage
	for range 16 {
		p := b.Malloc(128)
		require.NotNil(t, p)
		buf.Fill(buf.Bytes(p, 128), 0xff)
		b.Free(p)
	}

	p := b.ZeroedAllocate(32, 4)
	require.NotNil(t, p)
	assert.True(t, buf.IsZero(buf.Bytes(p, 128)), "calloc memory must be zero")
	b.Free(p)

	assert.Nil(t, b.ZeroedAllocate(^uintptr(0)/2, 4), "overflowing count*size must fail")
}

func testZeroFlag(t *testing.T, b alloc.Backend) {
	flags := alloc.ZeroedFlagsFor(256, 512)
	p := b.Allocate(512, flags)
	require.NotNil(t, p)
	assert.Zero(t, uintptr(p)%256)
	assert.True(t, buf.IsZero(buf.Bytes(p, 512)))
	b.Deallocate(p, 512, flags)
}

func testReallocate(t *testing.T, b alloc.Backend) {
	for _, align := range []uintptr{8, 64} {
		p := b.Allocate(64, alloc.FlagsFor(align, 64))
		require.NotNil(t, p)
		data := buf.Bytes(p, 64)
		for i := range data {
			data[i] = byte(i)
		}

		np := b.Reallocate(p, 4096, alloc.FlagsFor(align, 4096))
		require.NotNil(t, np)
		assert.Zero(t, uintptr(np)%align)
		moved := buf.Bytes(np, 64)
		for i := range moved {
			require.Equal(t, byte(i), moved[i], "byte %d lost in reallocation", i)
		}

		// Shrinking keeps the prefix too
		sp := b.Reallocate(np, 16, alloc.FlagsFor(align, 16))
		require.NotNil(t, sp)
		for i, c := range buf.Bytes(sp, 16) {
			require.Equal(t, byte(i), c)
		}
		b.Free(sp)
	}

	// nil reallocates to a fresh block
	p := b.Reallocate(nil, 32, 0)
	require.NotNil(t, p)
	b.Free(p)
}

func testNearestSize(t *testing.T, b alloc.Backend) {
	for _, align := range alignments {
		for _, size := range sizes {
			flags := alloc.FlagsFor(align, size)
			n := b.NearestSize(size, flags)
			if n == 0 {
				continue // unknown is allowed
			}
			assert.GreaterOrEqual(t, n, size, "NearestSize(%d, align %d)", size, align)

			p := b.Allocate(size, flags)
			require.NotNil(t, p)
			assert.Equal(t, b.UsableSize(p), n,
				"NearestSize(%d, align %d) must match the real usable size", size, align)
			b.Deallocate(p, size, flags)
		}
	}
}

func testResizeInPlace(t *testing.T, b alloc.Backend) {
	p := b.Allocate(100, 0)
	require.NotNil(t, p)
	usable := b.UsableSize(p)

	// Asking for exactly the usable size always succeeds in place
	assert.Equal(t, usable, b.ResizeInPlace(p, usable, 0, 0))

	// Far beyond the block: the reported size cannot reach the request
	got := b.ResizeInPlace(p, usable*1024, 0, 0)
	assert.Less(t, got, usable*1024)
	assert.Equal(t, got, b.UsableSize(p), "result must describe the block after the call")
	b.Free(p)
}

func testLibC(t *testing.T, b alloc.Backend) {
	p := b.Malloc(40)
	require.NotNil(t, p)
	assert.Zero(t, uintptr(p)%alloc.MinAlign)
	copy(buf.Bytes(p, 5), "hello")

	p = b.Realloc(p, 4000)
	require.NotNil(t, p)
	assert.Equal(t, "hello", string(buf.Bytes(p, 5)))
	b.Free(p)

	b.Free(nil)
}

func testConcurrent(t *testing.T, b alloc.Backend) {
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ptrs := make([]unsafe.Pointer, 0, 64)
			for i := range 64 {
				size := uintptr(16 + (g*64+i)%512)
				p := b.Allocate(size, alloc.FlagsFor(32, size))
				if p == nil {
					t.Errorf("goroutine %d: allocation %d failed", g, i)
					return
				}
				buf.Fill(buf.Bytes(p, size), byte(g))
				ptrs = append(ptrs, p)
			}
			for _, p := range ptrs {
				if got := *(*byte)(p); got != byte(g) {
					t.Errorf("goroutine %d: block overwritten (found %d)", g, got)
				}
				b.Free(p)
			}
		}(g)
	}
	wg.Wait()
}

func testStats(t *testing.T, b alloc.Backend) {
	var chunks []string
	b.PrintStats(func(s string) { chunks = append(chunks, s) }, "")
	assert.NotEmpty(t, chunks, "PrintStats should produce output")
}
