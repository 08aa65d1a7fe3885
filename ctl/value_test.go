package ctl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssign_IntegerConversions(t *testing.T) {
	var u32 uint32
	require.NoError(t, Assign(&u32, uint64(7)))
	assert.Equal(t, uint32(7), u32)

	assert.ErrorIs(t, Assign(&u32, uint64(math.MaxUint32)+1), ErrBadValue)

	var n int
	require.NoError(t, Assign(&n, uint32(12)))
	assert.Equal(t, 12, n)

	var u64 uint64
	assert.ErrorIs(t, Assign(&u64, -1), ErrBadValue)
	assert.ErrorIs(t, Assign(&u64, "12"), ErrBadValue)
}

func TestParse(t *testing.T) {
	tests := []struct {
		text   string
		sample any
		want   any
	}{
		{"true", false, true},
		{"42", uint64(0), uint64(42)},
		{"0x10", uint64(0), uint64(16)},
		{"7", uint32(0), uint32(7)},
		{"-3", 0, -3},
		{"1.5", float64(0), 1.5},
		{"abc", "", "abc"},
	}

	for _, tt := range tests {
		got, err := Parse(tt.text, tt.sample)
		require.NoError(t, err, "Parse(%q)", tt.text)
		assert.Equal(t, tt.want, got)
	}

	_, err := Parse("yes please", false)
	assert.ErrorIs(t, err, ErrBadValue)
	_, err = Parse("-1", uint64(0))
	assert.ErrorIs(t, err, ErrBadValue)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "abc", Format("abc"))
	assert.Equal(t, "42", Format(uint64(42)))
	assert.Equal(t, "true", Format(true))
	assert.Equal(t, "0.25", Format(0.25))
}
