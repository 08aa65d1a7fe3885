package alloc

import "unsafe"

// resizeInPlace is shared by GrowInPlace and ShrinkInPlace; the direction of
// the resize does not matter. Alignment changes are refused before the
// backend is contacted. Success means the backend now reports exactly
// newSize usable bytes.
func (a *Allocator) resizeInPlace(p unsafe.Pointer, oldAlign, newSize, newAlign uintptr) bool {
	if oldAlign != newAlign {
		return false
	}
	flags := FlagsFor(newAlign, newSize)
	return a.backend.ResizeInPlace(p, newSize, 0, flags) == newSize
}

// GrowInPlace extends the block at p to newSize bytes without moving it.
// oldSize is part of the caller's layout and is not needed by the backend.
func (a *Allocator) GrowInPlace(p unsafe.Pointer, oldSize, oldAlign, newSize, newAlign uintptr) bool {
	return a.resizeInPlace(p, oldAlign, newSize, newAlign)
}

// ShrinkInPlace reduces the block at p to newSize bytes without moving it.
func (a *Allocator) ShrinkInPlace(p unsafe.Pointer, oldSize, oldAlign, newSize, newAlign uintptr) bool {
	return a.resizeInPlace(p, oldAlign, newSize, newAlign)
}
