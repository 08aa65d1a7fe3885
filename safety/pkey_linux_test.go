//go:build linux && (amd64 || arm64)

package safety

import (
	"os"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// TestLoadProcess_TaggedPage tags a fresh page with a new protection key and
// checks that only that page is vouched for under the key.
func TestLoadProcess_TaggedPage(t *testing.T) {
	loadOrSkip(t, 0)

	key, _, errno := unix.Syscall(unix.SYS_PKEY_ALLOC, 0, 0, 0)
	if errno != 0 {
		t.Skipf("pkey_alloc: %v", errno)
	}
	defer unix.Syscall(unix.SYS_PKEY_FREE, key, 0, 0)

	page := os.Getpagesize()
	mem, err := unix.Mmap(-1, 0, page, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	require.NoError(t, err)
	defer unix.Munmap(mem)

	_, _, errno = unix.Syscall6(unix.SYS_PKEY_MPROTECT,
		uintptr(unsafe.Pointer(&mem[0])), uintptr(page),
		unix.PROT_READ|unix.PROT_WRITE, key, 0, 0)
	require.Zero(t, errno, "pkey_mprotect")

	g, err := LoadProcess(int(key))
	require.NoError(t, err)
	assert.True(t, g.IsAddressSafe(unsafe.Pointer(&mem[0])))
	assert.True(t, g.IsAddressSafe(unsafe.Pointer(&mem[page-1])))

	x := new(uint64)
	assert.False(t, g.IsAddressSafe(unsafe.Pointer(x)), "Go heap is not in the tagged domain")

	def, err := LoadProcess(0)
	require.NoError(t, err)
	assert.False(t, def.IsAddressSafe(unsafe.Pointer(&mem[0])), "tagged page left the default domain")
}
