// Package buf provides overflow-checked size arithmetic and byte views over
// backend memory.
package buf

import (
	"math/bits"
	"unsafe"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow uintptr.
func AddOverflowSafe(a, b uintptr) (uintptr, bool) {
	sum, carry := bits.Add(uint(a), uint(b), 0)
	return uintptr(sum), carry == 0
}

// MulOverflowSafe multiplies a and b, returning ok = false when the result would overflow uintptr.
// This is essential for count * elementSize calculations in calloc-style requests.
func MulOverflowSafe(a, b uintptr) (uintptr, bool) {
	hi, lo := bits.Mul(uint(a), uint(b))
	return uintptr(lo), hi == 0
}

// AlignedSize returns size padded so that a block of that size can hold size
// bytes at an align boundary past a header of hdr bytes, given that the raw
// block starts hdr-aligned. ok is false on overflow.
func AlignedSize(size, align, hdr uintptr) (uintptr, bool) {
	pad := align
	if pad < hdr {
		pad = hdr
	}
	return AddOverflowSafe(size, pad)
}

// Bytes returns an n-byte view of the memory at p. p must point to at least
// n bytes of live memory; a nil p or zero n yields nil.
func Bytes(p unsafe.Pointer, n uintptr) []byte {
	if p == nil || n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), n)
}

// Fill sets every byte of b to v.
func Fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

// IsZero reports whether every byte of b is zero.
func IsZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
