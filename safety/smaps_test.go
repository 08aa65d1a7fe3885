package safety

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSmaps = `55d0c4a00000-55d0c4a21000 r--p 00000000 08:01 1835043                    /usr/bin/app
Size:                132 kB
Rss:                 132 kB
ProtectionKey:         0
VmFlags: rd mr mw me dw sd
7f1c2a000000-7f1c2a400000 rw-p 00000000 00:00 0
Size:               4096 kB
Rss:                 512 kB
ProtectionKey:         1
VmFlags: rd wr mr mw me ac sd
7f1c2a400000-7f1c2a401000 ---p 00000000 00:00 0
Size:                  4 kB
ProtectionKey:         1
VmFlags: mr mw me sd
7f1c2a401000-7f1c2a800000 rw-p 00000000 00:00 0
Size:               4092 kB
ProtectionKey:         1
VmFlags: rd wr mr mw me ac sd
7ffd1e3f0000-7ffd1e411000 rw-p 00000000 00:00 0                          [stack]
Size:                132 kB
ProtectionKey:         0
VmFlags: rd wr mr mw me gd ac
`

func TestParseMappings(t *testing.T) {
	ms, err := ParseMappings(strings.NewReader(sampleSmaps))
	require.NoError(t, err)
	require.Len(t, ms, 5)

	assert.Equal(t, Mapping{
		Region: Region{Start: 0x55d0c4a00000, End: 0x55d0c4a21000},
		Perms:  "r--p",
		Key:    0,
		Name:   "/usr/bin/app",
	}, ms[0])
	assert.Equal(t, 1, ms[1].Key)
	assert.Empty(t, ms[1].Name)
	assert.False(t, ms[2].Readable())
	assert.Equal(t, "[stack]", ms[4].Name)
}

func TestParseSmaps_KeyFilter(t *testing.T) {
	g, err := ParseSmaps(strings.NewReader(sampleSmaps), 1)
	require.NoError(t, err)

	// The guard page splits the tagged heap into two regions
	assert.Equal(t, []Region{
		{Start: 0x7f1c2a000000, End: 0x7f1c2a400000},
		{Start: 0x7f1c2a401000, End: 0x7f1c2a800000},
	}, g.Regions())
	assert.True(t, g.Contains(0x7f1c2a000010))
	assert.False(t, g.Contains(0x7f1c2a400800), "unreadable guard page")
	assert.False(t, g.Contains(0x7ffd1e3f0000), "stack carries key 0")
}

func TestParseSmaps_NoProtectionKeyField(t *testing.T) {
	in := `00400000-00452000 r-xp 00000000 08:02 173521      /usr/bin/dbus-daemon
Size:                328 kB
VmFlags: rd ex mr mw me dw
00651000-00652000 rw-p 00051000 08:02 173521      /usr/bin/dbus-daemon
Size:                  4 kB
`
	g, err := ParseSmaps(strings.NewReader(in), 0)
	require.NoError(t, err)
	assert.Len(t, g.Regions(), 2, "kernels without pkeys report everything as key 0")

	g, err = ParseSmaps(strings.NewReader(in), 1)
	require.NoError(t, err)
	assert.Empty(t, g.Regions())
}

func TestParseSmaps_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"garbage line", "this is not smaps\n"},
		{"key before mapping", "ProtectionKey: 1\n"},
		{"bad key", "00400000-00452000 r-xp 00000000 08:02 1 /x\nProtectionKey: one\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSmaps(strings.NewReader(tt.in), 0)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestParseSmaps_Empty(t *testing.T) {
	g, err := ParseSmaps(strings.NewReader(""), 0)
	require.NoError(t, err)
	assert.Empty(t, g.Regions())
}
