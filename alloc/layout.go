package alloc

import "fmt"

// Layout describes the shape of a memory region.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// NewLayout validates align and returns the layout. Facade operations take
// raw size/align values and do not repeat this check.
func NewLayout(size, align uintptr) (Layout, error) {
	if !IsPowerOfTwo(align) {
		return Layout{}, fmt.Errorf("%w: %d", ErrBadAlign, align)
	}
	if size > ^uintptr(0)-(align-1) {
		return Layout{}, fmt.Errorf("%w: size=%d align=%d", ErrSizeOverflow, size, align)
	}
	return Layout{Size: size, Align: align}, nil
}

// Flags returns the backend flags for l.
func (l Layout) Flags() Flags {
	return FlagsFor(l.Align, l.Size)
}

// String implements fmt.Stringer.
func (l Layout) String() string {
	return fmt.Sprintf("{size=%d align=%d}", l.Size, l.Align)
}

// IsPowerOfTwo reports whether n is a non-zero power of two.
func IsPowerOfTwo(n uintptr) bool {
	return n != 0 && n&(n-1) == 0
}

// AlignUp rounds n up to a multiple of align. align must be a power of two.
func AlignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}
