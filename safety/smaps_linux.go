//go:build linux

package safety

import (
	"fmt"
	"os"
)

// LoadProcess builds a gate for key from the calling process's mappings.
func LoadProcess(key int) (*Gate, error) {
	return loadFile("/proc/self/smaps", key)
}

// LoadPID builds a gate for key from another process's mappings.
func LoadPID(pid, key int) (*Gate, error) {
	return loadFile(fmt.Sprintf("/proc/%d/smaps", pid), key)
}

func loadFile(path string, key int) (*Gate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("safety: open %s: %w", path, err)
	}
	defer f.Close()

	g, err := ParseSmaps(f, key)
	if err != nil {
		return nil, fmt.Errorf("safety: %s: %w", path, err)
	}
	return g, nil
}
