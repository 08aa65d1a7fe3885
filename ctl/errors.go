package ctl

import "errors"

var (
	// ErrNoEntry indicates a name or MIB that does not resolve to a node (ENOENT).
	ErrNoEntry = errors.New("ctl: no such entry")

	// ErrReadOnly indicates a write to a node without a setter (EPERM).
	ErrReadOnly = errors.New("ctl: entry is read-only")

	// ErrWriteOnly indicates a read of a node without a getter.
	ErrWriteOnly = errors.New("ctl: entry is write-only")

	// ErrBadValue indicates a value or destination of the wrong type (EINVAL).
	ErrBadValue = errors.New("ctl: bad value type")

	// ErrBadName indicates an empty or malformed dotted name.
	ErrBadName = errors.New("ctl: bad name")

	// ErrExists indicates a second registration of the same name.
	ErrExists = errors.New("ctl: entry already registered")
)
