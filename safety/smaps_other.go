//go:build !linux

package safety

// LoadProcess is only available on Linux.
func LoadProcess(key int) (*Gate, error) {
	return nil, ErrUnsupported
}

// LoadPID is only available on Linux.
func LoadPID(pid, key int) (*Gate, error) {
	return nil, ErrUnsupported
}
