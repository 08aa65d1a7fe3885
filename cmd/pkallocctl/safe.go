package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pkalloc/safety"
)

var (
	safeKey int
	safePID int
)

func init() {
	cmd := newSafeCmd()
	cmd.Flags().IntVar(&safeKey, "key", 0, "Protection key of the domain")
	cmd.Flags().IntVar(&safePID, "pid", 0, "Inspect another process (default: this one)")
	rootCmd.AddCommand(cmd)
}

func newSafeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "safe <hex-addr>",
		Short: "Check whether an address lies in a protection domain",
		Long: `The safe command reads the process's memory mappings and reports
whether an address lies in a readable mapping tagged with the given
protection key. Only Linux reports protection keys.

Example:
  pkallocctl safe 0x7f1c2a000010 --key 1 --pid 4242`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSafe(args)
		},
	}
	return cmd
}

// SafeResult is the outcome of one address check.
type SafeResult struct {
	Address string `json:"address"`
	Key     int    `json:"key"`
	Safe    bool   `json:"safe"`
	Region  string `json:"region,omitempty"`
	Regions int    `json:"regions"`
}

func runSafe(args []string) error {
	addr, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(args[0]), "0x"), 16, 64)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", args[0], err)
	}

	var g *safety.Gate
	if safePID != 0 {
		g, err = safety.LoadPID(safePID, safeKey)
	} else {
		g, err = safety.LoadProcess(safeKey)
	}
	if err != nil {
		return fmt.Errorf("failed to load mappings: %w", err)
	}

	regions := g.Regions()
	res := SafeResult{
		Address: fmt.Sprintf("%#x", addr),
		Key:     g.DomainKey(),
		Regions: len(regions),
	}
	for _, r := range regions {
		if r.Contains(uintptr(addr)) {
			res.Safe = true
			res.Region = r.String()
			break
		}
	}
	printVerbose("Domain %d has %d region(s)\n", res.Key, res.Regions)

	if jsonOut {
		return printJSON(res)
	}
	if res.Safe {
		printInfo("%s: safe (key %d, region %s)\n", res.Address, res.Key, res.Region)
	} else {
		printInfo("%s: not safe (key %d)\n", res.Address, res.Key)
	}
	return nil
}
