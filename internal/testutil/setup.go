// Package testutil holds shared test setup for pkalloc packages.
package testutil

import (
	"testing"

	"github.com/joshuapare/pkalloc/alloc"
	"github.com/joshuapare/pkalloc/backend/mmheap"
)

// NewAllocator builds an Allocator over a fresh mmheap.Heap. The heap is
// closed when the test ends.
//
// Example:
//
//	a, heap := testutil.NewAllocator(t, nil, nil)
//	p := a.Alloc(64, 16)
func NewAllocator(t testing.TB, heapOpts *mmheap.Options, opts *alloc.Options) (*alloc.Allocator, *mmheap.Heap) {
	t.Helper()

	heap, err := mmheap.New(heapOpts)
	if err != nil {
		t.Fatalf("mmheap.New: %v", err)
	}
	t.Cleanup(func() { _ = heap.Close() })

	a, err := alloc.New(heap, opts)
	if err != nil {
		t.Fatalf("alloc.New: %v", err)
	}
	return a, heap
}
