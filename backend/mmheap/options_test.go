package mmheap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConf(t *testing.T) {
	tests := []struct {
		name    string
		conf    string
		want    Options
		wantErr bool
	}{
		{name: "empty", conf: "", want: Options{}},
		{name: "debug only", conf: "debug:true", want: Options{Debug: true}},
		{name: "both with spaces", conf: " debug:true , profile:1 ", want: Options{Debug: true, Profile: true}},
		{name: "explicit false", conf: "profile:false", want: Options{}},
		{name: "missing colon", conf: "debug", wantErr: true},
		{name: "bad bool", conf: "debug:maybe", wantErr: true},
		{name: "unknown key", conf: "narenas:4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConf(tt.conf)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadConf)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv(ConfEnv, "profile:true")

	opts, err := OptionsFromEnv()
	require.NoError(t, err)
	assert.True(t, opts.Profile)
	assert.False(t, opts.Debug)
}
