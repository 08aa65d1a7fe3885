//go:build cgo && jemalloc

package jemalloc

// #include <stdint.h>
import "C"

import "runtime/cgo"

//export pkallocStatsWrite
func pkallocStatsWrite(handle C.uintptr_t, msg *C.char) {
	write := cgo.Handle(handle).Value().(func(string))
	write(C.GoString(msg))
}
