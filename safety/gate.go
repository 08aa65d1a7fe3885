// Package safety answers protection-domain questions about addresses.
//
// A Gate is built once at startup from the provisioned protection key and
// the memory regions tagged with it, and is immutable afterwards. It
// implements alloc.Gate:
//
//	g, err := safety.LoadProcess(key)
//	if err != nil {
//	    return err
//	}
//	a, err := alloc.New(heap, &alloc.Options{Gate: g})
//
// On Linux the regions come from /proc/self/smaps, which reports the
// protection key of every mapping. Creating keys and tagging memory with
// them is the job of whatever provisioned the process, not of this package.
package safety

import (
	"fmt"
	"slices"
	"unsafe"
)

// Region is a half-open address range [Start, End).
type Region struct {
	Start uintptr
	End   uintptr
}

// Contains reports whether addr lies inside r.
func (r Region) Contains(addr uintptr) bool {
	return addr >= r.Start && addr < r.End
}

// Len returns the size of r in bytes.
func (r Region) Len() uintptr {
	return r.End - r.Start
}

// String implements fmt.Stringer.
func (r Region) String() string {
	return fmt.Sprintf("%#x-%#x", r.Start, r.End)
}

// Gate is an immutable region table for one protection key.
type Gate struct {
	key     int
	regions []Region // sorted, non-overlapping, non-adjacent
}

// New builds a gate for key. Regions may be given in any order; empty ones
// are dropped and overlapping or touching ones merged.
func New(key int, regions ...Region) *Gate {
	rs := make([]Region, 0, len(regions))
	for _, r := range regions {
		if r.End > r.Start {
			rs = append(rs, r)
		}
	}
	slices.SortFunc(rs, func(a, b Region) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})

	merged := rs[:0]
	for _, r := range rs {
		if n := len(merged); n > 0 && r.Start <= merged[n-1].End {
			if r.End > merged[n-1].End {
				merged[n-1].End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return &Gate{key: key, regions: merged}
}

// DomainKey implements alloc.Gate.
func (g *Gate) DomainKey() int {
	return g.key
}

// IsAddressSafe implements alloc.Gate.
func (g *Gate) IsAddressSafe(p unsafe.Pointer) bool {
	return g.Contains(uintptr(p))
}

// Contains reports whether addr lies inside one of the gate's regions.
func (g *Gate) Contains(addr uintptr) bool {
	_, found := slices.BinarySearchFunc(g.regions, addr, func(r Region, a uintptr) int {
		switch {
		case r.End <= a:
			return -1
		case r.Start > a:
			return 1
		default:
			return 0
		}
	})
	return found
}

// Regions returns a copy of the region table.
func (g *Gate) Regions() []Region {
	return slices.Clone(g.regions)
}

// Refresh rebuilds the region table for the same key from the calling
// process's current mappings. g itself is left unchanged.
func (g *Gate) Refresh() (*Gate, error) {
	return LoadProcess(g.key)
}
