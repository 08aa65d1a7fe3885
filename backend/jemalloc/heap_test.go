//go:build cgo && jemalloc

package jemalloc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pkalloc/alloc"
	"github.com/joshuapare/pkalloc/ctl"
	"github.com/joshuapare/pkalloc/internal/testutil/backendtest"
)

func newTestHeap(t testing.TB) *Heap {
	t.Helper()
	h, err := New()
	require.NoError(t, err)
	return h
}

func TestConformance(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) alloc.Backend {
		return newTestHeap(t)
	})
}

func TestHeap_Version(t *testing.T) {
	h := newTestHeap(t)
	assert.NotEmpty(t, h.Version())
}

func TestHeap_NearestSizeMatchesUsable(t *testing.T) {
	h := newTestHeap(t)

	for _, size := range []uintptr{1, 8, 100, 4096, 100000} {
		p := h.Allocate(size, 0)
		require.NotNil(t, p)
		assert.Equal(t, h.UsableSize(p), h.NearestSize(size, 0), "size %d", size)
		h.Deallocate(p, size, 0)
	}
}

func TestCtl_ReadWrite(t *testing.T) {
	h := newTestHeap(t)

	var epoch uint64
	require.NoError(t, h.Exchange("epoch", &epoch, uint64(1)))

	var page uint64
	require.NoError(t, h.Read("arenas.page", &page))
	assert.NotZero(t, page)

	var debug bool
	require.NoError(t, h.Read("config.debug", &debug))

	err := h.Read("no.such.name", &page)
	assert.ErrorIs(t, err, ctl.ErrNoEntry)

	err = h.Write("version", "x")
	assert.Error(t, err)

	err = h.Read("version", new(float64))
	assert.ErrorIs(t, err, ctl.ErrBadValue)
}

func TestCtl_MIB(t *testing.T) {
	h := newTestHeap(t)

	mib, err := h.NameToMIB("arenas.page")
	require.NoError(t, err)
	require.Len(t, mib, 2)

	var byName, byMIB uint64
	require.NoError(t, h.Read("arenas.page", &byName))
	require.NoError(t, h.ReadMIB(mib, &byMIB))
	assert.Equal(t, byName, byMIB)

	_, err = h.NameToMIB("")
	assert.ErrorIs(t, err, ctl.ErrBadName)
}

func TestCtl_Names(t *testing.T) {
	h := newTestHeap(t)

	entries, err := h.Names("arenas")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.True(t, strings.HasPrefix(e.Name, "arenas."))
	}
}

func TestPrintStats(t *testing.T) {
	h := newTestHeap(t)

	var b strings.Builder
	h.PrintStats(func(s string) { b.WriteString(s) }, "")
	assert.Contains(t, b.String(), "jemalloc statistics")
}
