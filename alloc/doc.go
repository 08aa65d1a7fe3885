// Package alloc provides a size/alignment based allocation facade over an
// external allocator backend.
//
// # Overview
//
// The package does not manage memory itself. Every request is translated into
// a backend flag word and handed to a Backend implementation (see the
// backend/mmheap and backend/jemalloc packages). The Allocator keeps no state
// across calls: the caller owns the (pointer, size, align) triple from the
// moment an allocation returns until it is deallocated.
//
// # Request Translation
//
// FlagsFor picks between two paths:
//
//	align <= MinAlign && align <= size  →  0            (fast path)
//	otherwise                           →  lg(align)    (slow path)
//
// The zero-fill variant ORs in FlagZero. MinAlign is chosen per GOARCH and
// must match what the backend guarantees for a flag-less request.
//
// # Usage Example
//
//	heap, err := mmheap.New(nil)
//	if err != nil {
//	    return err
//	}
//	defer heap.Close()
//
//	a, err := alloc.New(heap, nil)
//	if err != nil {
//	    return err
//	}
//
//	p := a.Alloc(64, 16)
//	if p == nil {
//	    // out of memory: caller policy
//	}
//	defer a.Dealloc(p, 64, 16)
//
// # In-Place Resize
//
// GrowInPlace and ShrinkInPlace never move memory. They fail without
// contacting the backend when the alignment changes, and otherwise succeed
// only when the backend reports a resulting usable size of exactly the
// requested size.
//
// # Failure Reporting
//
// Allocation operations never return errors and never panic. A nil pointer
// means the backend could not satisfy the request; false means an in-place
// resize was refused. What to do next is the caller's decision.
//
// # Protection Domains
//
// An Allocator may carry a Gate (see package safety) describing the active
// hardware protection domain. The gate is advisory: no allocation operation
// consults it. Callers that receive pointers from untrusted code can call
// IsAddressSafe before dereferencing or freeing them.
//
// # Thread Safety
//
// Allocator is safe for concurrent use as long as its Backend is. All shipped
// backends are.
package alloc
