package main

import (
	"testing"
)

func TestCtlGet(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		typ         string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "string",
			args:        []string{"version"},
			wantContain: []string{"version: pkalloc-mmheap/1"},
		},
		{
			name:        "bool",
			args:        []string{"prof.active"},
			wantContain: []string{"prof.active: false"},
		},
		{
			name:        "uint64",
			args:        []string{"arch.min_align"},
			wantContain: []string{"arch.min_align: "},
		},
		{
			name:        "explicit type",
			args:        []string{"opt.debug"},
			typ:         "bool",
			wantContain: []string{"opt.debug: false"},
		},
		{
			name:    "unknown name",
			args:    []string{"no.such.tunable"},
			wantErr: true,
		},
		{
			name:    "write-only",
			args:    []string{"stats.reset"},
			wantErr: true,
		},
		{
			name:    "wrong explicit type",
			args:    []string{"version"},
			typ:     "uint64",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			if tt.typ != "" {
				ctlType = tt.typ
			}

			output, err := captureOutput(t, func() error {
				return runCtlGet(tt.args)
			})

			if (err != nil) != tt.wantErr {
				t.Errorf("runCtlGet() error = %v, wantErr %v\nOutput: %s", err, tt.wantErr, output)
				return
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestCtlSet(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "toggle bool",
			args:        []string{"prof.active", "true"},
			wantContain: []string{"prof.active: false -> true"},
		},
		{
			name:        "epoch",
			args:        []string{"epoch", "1"},
			wantContain: []string{"epoch: 1 -> 1"},
		},
		{
			name:        "trigger",
			args:        []string{"stats.reset"},
			wantContain: []string{"stats.reset: triggered"},
		},
		{
			name:    "read-only",
			args:    []string{"version", "x"},
			wantErr: true,
		},
		{
			name:    "bad value",
			args:    []string{"prof.active", "maybe"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()

			output, err := captureOutput(t, func() error {
				return runCtlSet(tt.args)
			})

			if (err != nil) != tt.wantErr {
				t.Errorf("runCtlSet() error = %v, wantErr %v\nOutput: %s", err, tt.wantErr, output)
				return
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestCtlList(t *testing.T) {
	resetFlags()

	output, err := captureOutput(t, func() error {
		return runCtlList([]string{"stats"})
	})
	if err != nil {
		t.Fatalf("runCtlList() error = %v", err)
	}
	assertContains(t, output, []string{"r-  stats.allocated", "-w  stats.reset"})
	assertNotContains(t, output, []string{"version", "prof.active"})
}

func TestCtlList_JSON(t *testing.T) {
	resetFlags()
	jsonOut = true

	output, err := captureOutput(t, func() error {
		return runCtlList(nil)
	})
	if err != nil {
		t.Fatalf("runCtlList() error = %v", err)
	}

	var entries []ctlEntry
	decodeJSON(t, output, &entries)
	if len(entries) == 0 || entries[0].Name != "version" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[0].Value != "pkalloc-mmheap/1" {
		t.Errorf("version value = %v", entries[0].Value)
	}
}

func TestCtlList_UnknownPrefix(t *testing.T) {
	resetFlags()

	_, err := captureOutput(t, func() error {
		return runCtlList([]string{"nope"})
	})
	if err == nil {
		t.Error("expected error for unknown prefix")
	}
}
