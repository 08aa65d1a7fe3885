package main

import (
	"testing"
)

func TestStatsCommand(t *testing.T) {
	tests := []struct {
		name           string
		opts           string
		wantContain    []string
		wantNotContain []string
	}{
		{
			name:        "full report",
			wantContain: []string{"___ Begin pkalloc statistics ___", "Version:", "Operations:", "--- End pkalloc statistics ---"},
		},
		{
			name:           "omit general",
			opts:           "g",
			wantContain:    []string{"Allocated:"},
			wantNotContain: []string{"Version:", "Page size:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			statsOpts = tt.opts

			output, err := captureOutput(t, func() error {
				return runStats(nil)
			})
			if err != nil {
				t.Fatalf("runStats() error = %v\nOutput: %s", err, output)
			}
			assertContains(t, output, tt.wantContain)
			assertNotContains(t, output, tt.wantNotContain)
		})
	}
}

func TestStatsCommand_JSON(t *testing.T) {
	resetFlags()
	jsonOut = true

	output, err := captureOutput(t, func() error {
		return runStats(nil)
	})
	if err != nil {
		t.Fatalf("runStats() error = %v", err)
	}

	var res map[string]uint64
	decodeJSON(t, output, &res)
	for _, name := range []string{"stats.allocated", "stats.active", "stats.allocs", "stats.frees"} {
		if _, ok := res[name]; !ok {
			t.Errorf("missing %s in %v", name, res)
		}
	}
	if _, ok := res["stats.reset"]; ok {
		t.Errorf("write-only stats.reset must not be listed as a value")
	}
}
