package safety

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joshuapare/pkalloc/internal/logger"
)

// Mapping is one virtual memory area from smaps.
type Mapping struct {
	Region
	Perms string // e.g. "rw-p"
	Key   int    // protection key; 0 when the kernel does not report one
	Name  string // backing file or pseudo-name such as "[heap]"
}

// Readable reports whether the mapping can be read at all.
func (m Mapping) Readable() bool {
	return strings.HasPrefix(m.Perms, "r")
}

// ParseMappings reads smaps-formatted text.
func ParseMappings(r io.Reader) ([]Mapping, error) {
	var out []Mapping
	var cur *Mapping

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if line == "" {
			continue
		}

		if m, ok := parseHeader(line); ok {
			out = append(out, m)
			cur = &out[len(out)-1]
			continue
		}

		field, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformed, lineNo, line)
		}
		if field != "ProtectionKey" {
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("%w: line %d: ProtectionKey before any mapping", ErrMalformed, lineNo)
		}
		key, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNo, err)
		}
		cur.Key = key
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseHeader recognises "start-end perms offset dev inode [name]".
func parseHeader(line string) (Mapping, bool) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Mapping{}, false
	}
	lo, hi, ok := strings.Cut(fields[0], "-")
	if !ok {
		return Mapping{}, false
	}
	start, err := strconv.ParseUint(lo, 16, 64)
	if err != nil {
		return Mapping{}, false
	}
	end, err := strconv.ParseUint(hi, 16, 64)
	if err != nil || end < start {
		return Mapping{}, false
	}

	m := Mapping{
		Region: Region{Start: uintptr(start), End: uintptr(end)},
		Perms:  fields[1],
	}
	if len(fields) > 5 {
		m.Name = strings.Join(fields[5:], " ")
	}
	return m, true
}

// ParseSmaps builds a gate for key from smaps-formatted text. Only readable
// mappings tagged with key are considered safe.
func ParseSmaps(r io.Reader, key int) (*Gate, error) {
	mappings, err := ParseMappings(r)
	if err != nil {
		return nil, err
	}
	return FromMappings(key, mappings), nil
}

// FromMappings builds a gate for key from parsed mappings.
func FromMappings(key int, mappings []Mapping) *Gate {
	var regions []Region
	for _, m := range mappings {
		if m.Key == key && m.Readable() {
			regions = append(regions, m.Region)
		}
	}
	g := New(key, regions...)
	logger.L.Debug("safety gate built", "key", key, "mappings", len(mappings), "regions", len(g.regions))
	return g
}
