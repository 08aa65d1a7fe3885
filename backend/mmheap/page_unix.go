//go:build unix

package mmheap

import "golang.org/x/sys/unix"

// slotMaxLog is the largest power-of-two slot modernc.org/memory serves from
// shared pages on unix; bigger requests get their own mapping.
const slotMaxLog = 18

// pageSize is the OS page size, which large mappings are rounded up to.
func pageSize() uintptr {
	return uintptr(unix.Getpagesize())
}

// mapGranule is the unit whole-mapping blocks are rounded up to.
func mapGranule() uintptr {
	return pageSize()
}
