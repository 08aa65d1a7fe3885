//go:build cgo && jemalloc

package jemalloc

/*
#include <stdbool.h>
#include <stdlib.h>
#include <sys/types.h>
#include <jemalloc/jemalloc.h>
*/
import "C"

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/pkalloc/ctl"
)

// maxMIBLen bounds the depth of a translated name.
const maxMIBLen = 16

// outSlot is the C-side buffer for a value read by mallctl.
type outSlot struct {
	p      unsafe.Pointer
	n      C.size_t
	finish func()
}

func newOutSlot(out any) (*outSlot, error) {
	switch dst := out.(type) {
	case nil:
		return &outSlot{}, nil
	case *uint64:
		return &outSlot{p: unsafe.Pointer(dst), n: 8}, nil
	case *uint32:
		return &outSlot{p: unsafe.Pointer(dst), n: 4}, nil
	case *int:
		v := new(C.ssize_t)
		return &outSlot{p: unsafe.Pointer(v), n: C.size_t(unsafe.Sizeof(*v)), finish: func() { *dst = int(*v) }}, nil
	case *bool:
		v := new(C.bool)
		return &outSlot{p: unsafe.Pointer(v), n: C.size_t(unsafe.Sizeof(*v)), finish: func() { *dst = bool(*v) }}, nil
	case *string:
		v := new(*C.char)
		return &outSlot{p: unsafe.Pointer(v), n: C.size_t(unsafe.Sizeof(*v)), finish: func() {
			if *v != nil {
				*dst = C.GoString(*v)
			}
		}}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported destination %T", ctl.ErrBadValue, out)
	}
}

// inSlot is the C-side copy of a value written by mallctl.
type inSlot struct {
	p       unsafe.Pointer
	n       C.size_t
	release func()
}

func newInSlot(in any) (*inSlot, error) {
	switch v := in.(type) {
	case nil:
		return &inSlot{}, nil
	case uint64:
		c := new(C.uint64_t)
		*c = C.uint64_t(v)
		return &inSlot{p: unsafe.Pointer(c), n: 8}, nil
	case uint:
		c := new(C.size_t)
		*c = C.size_t(v)
		return &inSlot{p: unsafe.Pointer(c), n: C.size_t(unsafe.Sizeof(*c))}, nil
	case uint32:
		c := new(C.uint32_t)
		*c = C.uint32_t(v)
		return &inSlot{p: unsafe.Pointer(c), n: 4}, nil
	case int:
		c := new(C.ssize_t)
		*c = C.ssize_t(v)
		return &inSlot{p: unsafe.Pointer(c), n: C.size_t(unsafe.Sizeof(*c))}, nil
	case bool:
		c := new(C.bool)
		*c = C.bool(v)
		return &inSlot{p: unsafe.Pointer(c), n: C.size_t(unsafe.Sizeof(*c))}, nil
	case string:
		cs := C.CString(v)
		c := new(*C.char)
		*c = cs
		return &inSlot{p: unsafe.Pointer(c), n: C.size_t(unsafe.Sizeof(*c)), release: func() {
			C.free(unsafe.Pointer(cs))
		}}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported value %T", ctl.ErrBadValue, in)
	}
}

// call runs one mallctl-style exchange through fn and maps its status.
func call(label string, out, in any, fn func(oldp unsafe.Pointer, oldlenp *C.size_t, newp unsafe.Pointer, newlen C.size_t) C.int) error {
	o, err := newOutSlot(out)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	i, err := newInSlot(in)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	if i.release != nil {
		defer i.release()
	}

	var oldlenp *C.size_t
	if o.p != nil {
		oldlenp = &o.n
	}
	if rc := fn(o.p, oldlenp, i.p, i.n); rc != 0 {
		return fmt.Errorf("%s: %w", label, statusError(unix.Errno(rc)))
	}
	if o.finish != nil {
		o.finish()
	}
	return nil
}

// statusError maps mallctl return codes onto ctl sentinels.
func statusError(errno unix.Errno) error {
	switch errno {
	case unix.ENOENT:
		return ctl.ErrNoEntry
	case unix.EPERM:
		return ctl.ErrReadOnly
	case unix.EINVAL:
		return ctl.ErrBadValue
	default:
		return errno
	}
}

func (h *Heap) byName(name string, out, in any) error {
	if name == "" {
		return ctl.ErrBadName
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	return call(name, out, in, func(oldp unsafe.Pointer, oldlenp *C.size_t, newp unsafe.Pointer, newlen C.size_t) C.int {
		return C.mallctl(cname, oldp, oldlenp, newp, newlen)
	})
}

func (h *Heap) byMIB(mib ctl.MIB, out, in any) error {
	if len(mib) == 0 || len(mib) > maxMIBLen {
		return fmt.Errorf("%w: MIB %s", ctl.ErrNoEntry, mib)
	}
	var cmib [maxMIBLen]C.size_t
	for i, c := range mib {
		if c < 0 {
			return fmt.Errorf("%w: MIB %s", ctl.ErrNoEntry, mib)
		}
		cmib[i] = C.size_t(c)
	}

	return call(mib.String(), out, in, func(oldp unsafe.Pointer, oldlenp *C.size_t, newp unsafe.Pointer, newlen C.size_t) C.int {
		return C.mallctlbymib(&cmib[0], C.size_t(len(mib)), oldp, oldlenp, newp, newlen)
	})
}

// Read implements ctl.Controller.
func (h *Heap) Read(name string, out any) error {
	if out == nil {
		return fmt.Errorf("%s: %w: nil destination", name, ctl.ErrBadValue)
	}
	return h.byName(name, out, nil)
}

// Write implements ctl.Controller. A nil value performs a void write.
func (h *Heap) Write(name string, in any) error {
	return h.byName(name, nil, in)
}

// Exchange implements ctl.Controller.
func (h *Heap) Exchange(name string, out, in any) error {
	return h.byName(name, out, in)
}

// NameToMIB implements ctl.Controller.
func (h *Heap) NameToMIB(name string) (ctl.MIB, error) {
	if name == "" {
		return nil, ctl.ErrBadName
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	var cmib [maxMIBLen]C.size_t
	n := C.size_t(maxMIBLen)
	if rc := C.mallctlnametomib(cname, &cmib[0], &n); rc != 0 {
		return nil, fmt.Errorf("%s: %w", name, statusError(unix.Errno(rc)))
	}
	mib := make(ctl.MIB, n)
	for i := range mib {
		mib[i] = int(cmib[i])
	}
	return mib, nil
}

// ReadMIB implements ctl.Controller.
func (h *Heap) ReadMIB(mib ctl.MIB, out any) error {
	if out == nil {
		return fmt.Errorf("%s: %w: nil destination", mib, ctl.ErrBadValue)
	}
	return h.byMIB(mib, out, nil)
}

// WriteMIB implements ctl.Controller.
func (h *Heap) WriteMIB(mib ctl.MIB, in any) error {
	return h.byMIB(mib, nil, in)
}
