package ctl

import (
	"strconv"
	"strings"
)

// MIB is a name translated into per-level indices (management information base).
type MIB []int

// String renders the MIB as dotted indices.
func (m MIB) String() string {
	parts := make([]string, len(m))
	for i, c := range m {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ".")
}

// Controller reads and writes named tunables.
type Controller interface {
	// Read stores the value of name into out, which must be a pointer.
	Read(name string, out any) error

	// Write sets name to in.
	Write(name string, in any) error

	// Exchange reads the old value into out and writes in as a single step.
	// Either side may be nil to skip it.
	Exchange(name string, out, in any) error

	// NameToMIB translates a name, which may also name an interior node.
	NameToMIB(name string) (MIB, error)

	// ReadMIB is Read addressed by MIB.
	ReadMIB(mib MIB, out any) error

	// WriteMIB is Write addressed by MIB.
	WriteMIB(mib MIB, in any) error
}

// splitName validates and splits a dotted name.
func splitName(name string) ([]string, error) {
	if name == "" {
		return nil, ErrBadName
	}
	parts := strings.Split(name, ".")
	for _, p := range parts {
		if p == "" {
			return nil, ErrBadName
		}
	}
	return parts, nil
}
