//go:build linux

package safety

import (
	"os"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func loadOrSkip(t *testing.T, key int) *Gate {
	t.Helper()
	if _, err := os.Stat("/proc/self/smaps"); err != nil {
		t.Skipf("smaps unavailable: %v", err)
	}
	g, err := LoadProcess(key)
	require.NoError(t, err)
	return g
}

func TestLoadProcess_DefaultKeyCoversHeap(t *testing.T) {
	g := loadOrSkip(t, 0)
	x := new(uint64)
	assert.True(t, g.IsAddressSafe(unsafe.Pointer(x)), "Go heap carries the default key")
	assert.Equal(t, 0, g.DomainKey())
}

func TestGate_Refresh(t *testing.T) {
	g := loadOrSkip(t, 0)

	page := os.Getpagesize()
	mem, err := unix.Mmap(-1, 0, page, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	require.NoError(t, err)
	defer unix.Munmap(mem)

	fresh, err := g.Refresh()
	require.NoError(t, err)
	assert.True(t, fresh.IsAddressSafe(unsafe.Pointer(&mem[0])))
	assert.Equal(t, g.DomainKey(), fresh.DomainKey())
}

func TestLoadPID_Self(t *testing.T) {
	loadOrSkip(t, 0)
	g, err := LoadPID(os.Getpid(), 0)
	require.NoError(t, err)
	assert.NotEmpty(t, g.Regions())

	_, err = LoadPID(-1, 0)
	assert.Error(t, err)
}
