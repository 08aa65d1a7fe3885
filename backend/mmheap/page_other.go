//go:build !unix

package mmheap

import "os"

// slotMaxLog matches the smaller shared pages modernc.org/memory uses on
// windows.
const slotMaxLog = 14

func pageSize() uintptr {
	return uintptr(os.Getpagesize())
}

// mapGranule is the unit whole-mapping blocks are rounded up to. On windows
// modernc.org/memory rounds to its own 64 KiB pages, not the OS page.
func mapGranule() uintptr {
	return 1 << 16
}
