package mmheap

import (
	"math/bits"
	"sync/atomic"
)

// Stats is a point-in-time view of heap activity.
//
// Allocated sums the usable size of live blocks; Active also counts headers,
// alignment padding and size-class rounding. Reallocations that move a block
// are also counted as one alloc and one free.
type Stats struct {
	Allocated uint64
	Active    uint64
	Allocs    uint64
	Frees     uint64
	Reallocs  uint64
	Resizes   uint64
}

type counters struct {
	allocated atomic.Int64
	active    atomic.Int64
	allocs    atomic.Uint64
	frees     atomic.Uint64
	reallocs  atomic.Uint64
	resizes   atomic.Uint64
}

func (c *counters) onAlloc(block, raw uintptr) {
	c.allocs.Add(1)
	c.allocated.Add(int64(block))
	c.active.Add(int64(raw))
}

func (c *counters) onFree(block, raw uintptr) {
	c.frees.Add(1)
	c.allocated.Add(-int64(block))
	c.active.Add(-int64(raw))
}

func (c *counters) snapshot() Stats {
	return Stats{
		Allocated: uint64(max(c.allocated.Load(), 0)),
		Active:    uint64(max(c.active.Load(), 0)),
		Allocs:    c.allocs.Load(),
		Frees:     c.frees.Load(),
		Reallocs:  c.reallocs.Load(),
		Resizes:   c.resizes.Load(),
	}
}

// reset zeroes the operation counters. Allocated and Active track live
// blocks and are left alone.
func (c *counters) reset() {
	c.allocs.Store(0)
	c.frees.Store(0)
	c.reallocs.Store(0)
	c.resizes.Store(0)
}

// Stats returns current counters.
func (h *Heap) Stats() Stats {
	return h.stats.snapshot()
}

// profile is the allocation size histogram. Bucket i counts requests in
// [2^(i-1), 2^i); bucket 0 counts zero-size requests.
type profile struct {
	active atomic.Bool
	hist   [65]atomic.Uint64
}

func (p *profile) record(size uintptr) {
	if !p.active.Load() {
		return
	}
	p.hist[bits.Len64(uint64(size))].Add(1)
}

func (p *profile) reset() {
	for i := range p.hist {
		p.hist[i].Store(0)
	}
}

// Bucket is one histogram row: Count requests of at least Lo and below Hi bytes.
type Bucket struct {
	Lo, Hi uint64
	Count  uint64
}

func (p *profile) buckets() []Bucket {
	var out []Bucket
	for i := range p.hist {
		n := p.hist[i].Load()
		if n == 0 {
			continue
		}
		b := Bucket{Count: n}
		if i > 0 {
			b.Lo = 1 << (i - 1)
			if i < 64 {
				b.Hi = 1 << i
			} else {
				b.Hi = ^uint64(0)
			}
		} else {
			b.Hi = 1
		}
		out = append(out, b)
	}
	return out
}

// Profile returns the non-empty histogram buckets in ascending order.
func (h *Heap) Profile() []Bucket {
	return h.prof.buckets()
}
