package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSpyAllocator(t *testing.T) (*Allocator, *spyBackend) {
	t.Helper()
	spy := newSpy()
	a, err := New(spy, nil)
	require.NoError(t, err)
	return a, spy
}

// TestShrinkInPlace_AlignMismatchSkipsBackend checks that a mismatched
// alignment is refused without touching the backend.
func TestShrinkInPlace_AlignMismatchSkipsBackend(t *testing.T) {
	a, spy := newSpyAllocator(t)
	p := spy.block(256, 0)

	assert.False(t, a.ShrinkInPlace(p, 256, 8, 64, 16))
	assert.False(t, a.GrowInPlace(p, 64, 16, 256, 8))
	assert.Empty(t, spy.recorded(), "backend must not be contacted")
}

func TestResizeInPlace_ExactSizeOnly(t *testing.T) {
	tests := []struct {
		name     string
		resizeTo uintptr
		newSize  uintptr
		want     bool
	}{
		{"exact", 64, 64, true},
		{"rounded up", 80, 64, false},
		{"unchanged smaller", 48, 64, false},
		{"grow exact", 4096, 4096, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, spy := newSpyAllocator(t)
			spy.resizeTo = tt.resizeTo
			p := spy.block(256, 0)

			assert.Equal(t, tt.want, a.ShrinkInPlace(p, 256, 8, tt.newSize, 8))
			assert.Equal(t, tt.want, a.GrowInPlace(p, 256, 8, tt.newSize, 8),
				"grow and shrink share one contract")

			calls := spy.recorded()
			require.Len(t, calls, 2)
			for _, c := range calls {
				assert.Equal(t, call{op: "resize", size: tt.newSize, flags: FlagsFor(8, tt.newSize)}, c)
			}
		})
	}
}

func TestResizeInPlace_OverAlignedFlags(t *testing.T) {
	a, spy := newSpyAllocator(t)
	spy.resizeTo = 128
	p := spy.block(256, FlagsFor(64, 256))

	assert.True(t, a.ShrinkInPlace(p, 256, 64, 128, 64))
	calls := spy.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, Flags(6), calls[0].flags, "alignment class must reach the backend")
}
