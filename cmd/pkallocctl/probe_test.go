package main

import (
	"testing"
)

func TestProbeCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "small default aligned",
			args:        []string{"100", "8"},
			wantContain: []string{"{size=100 align=8}", "aligned: true", "Usable size:   min=100"},
		},
		{
			name:        "page aligned",
			args:        []string{"4096", "4096"},
			wantContain: []string{"{size=4096 align=4096}", "aligned: true", "Flags:         0xc"},
		},
		{
			name:        "zero size",
			args:        []string{"0", "16"},
			wantContain: []string{"{size=0 align=16}"},
			// No shrink attempt below two bytes
		},
		{
			name:    "bad alignment",
			args:    []string{"64", "3"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()

			output, err := captureOutput(t, func() error {
				return runProbe(tt.args)
			})

			if (err != nil) != tt.wantErr {
				t.Errorf("runProbe() error = %v, wantErr %v\nOutput: %s", err, tt.wantErr, output)
				return
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestProbeCommand_JSON(t *testing.T) {
	resetFlags()
	jsonOut = true

	output, err := captureOutput(t, func() error {
		return runProbe([]string{"1000", "64"})
	})
	if err != nil {
		t.Fatalf("runProbe() error = %v", err)
	}

	var res ProbeResult
	decodeJSON(t, output, &res)

	if !res.Aligned {
		t.Errorf("block not aligned: %+v", res)
	}
	if res.UsableMin != 1000 || res.UsableMax < 1000 {
		t.Errorf("usable bounds = [%d, %d]", res.UsableMin, res.UsableMax)
	}
	if res.Excess < 1000 || res.Excess > res.BlockUsable {
		t.Errorf("excess %d outside [1000, %d]", res.Excess, res.BlockUsable)
	}
	if !res.GrowInPlace {
		t.Errorf("growing to the block's usable size should succeed in place")
	}
	if res.ShrinkTo != 500 {
		t.Errorf("shrink target = %d, want 500", res.ShrinkTo)
	}
}
