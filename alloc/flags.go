package alloc

import "math/bits"

// Flags is the backend request encoding. The low six bits hold lg(alignment);
// bit 6 requests zero-filled memory. A zero value asks for the backend's
// default alignment.
type Flags int32

const (
	// FlagZero requests zero-filled memory (MALLOCX_ZERO).
	FlagZero Flags = 0x40

	// lgAlignMask covers the lg(alignment) field (MALLOCX_LG_ALIGN).
	lgAlignMask Flags = 0x3f
)

// FlagsFor maps an alignment/size pair to backend flags.
//
// The fast path returns 0 when the backend's default alignment already covers
// the request. align must be a power of two; that is not checked.
func FlagsFor(align, size uintptr) Flags {
	if align <= MinAlign && align <= size {
		return 0
	}
	return lgAlign(align)
}

// ZeroedFlagsFor is FlagsFor with FlagZero set.
func ZeroedFlagsFor(align, size uintptr) Flags {
	return FlagsFor(align, size) | FlagZero
}

// LgAlign returns the lg(alignment) field. Zero means default alignment.
func (f Flags) LgAlign() uint {
	return uint(f & lgAlignMask)
}

// Align returns the alignment requested by f, or 0 for the backend default.
func (f Flags) Align() uintptr {
	lg := f.LgAlign()
	if lg == 0 {
		return 0
	}
	return uintptr(1) << lg
}

// Zero reports whether f requests zero-filled memory.
func (f Flags) Zero() bool {
	return f&FlagZero != 0
}

func lgAlign(align uintptr) Flags {
	return Flags(bits.TrailingZeros64(uint64(align)))
}
