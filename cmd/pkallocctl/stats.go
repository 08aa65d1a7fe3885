package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pkalloc/ctl"
)

var (
	statsOpts string
)

func init() {
	cmd := newStatsCmd()
	cmd.Flags().StringVar(&statsOpts, "opts", "", "Sections to omit (g: general, p: profile)")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print backend statistics",
		Long: `The stats command prints the backend's statistics report. The --opts
letters are passed through to the backend and omit report sections.

With --json the stats.* tunables are refreshed and printed as an object.

Example:
  pkallocctl stats
  pkallocctl stats --opts g
  pkallocctl stats --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
	return cmd
}

func runStats(args []string) error {
	a, closeFn, err := openAllocator()
	if err != nil {
		return err
	}
	defer closeFn()

	if !jsonOut {
		if err := a.WriteStats(os.Stdout, statsOpts); err != nil {
			return fmt.Errorf("failed to write stats: %w", err)
		}
		return nil
	}

	lister, ok := a.Ctl().(ctl.Lister)
	if !ok {
		return fmt.Errorf("backend cannot list its tunables")
	}

	// Refresh the snapshot the stats.* tunables report
	var epoch uint64
	if err := a.Ctl().Exchange("epoch", &epoch, uint64(1)); err != nil {
		return fmt.Errorf("failed to refresh stats: %w", err)
	}
	printVerbose("Refreshed stats at epoch %d\n", epoch)

	entries, err := lister.Names("stats")
	if err != nil {
		return fmt.Errorf("failed to list stats: %w", err)
	}

	out := make(map[string]uint64, len(entries))
	for _, e := range entries {
		if !e.Readable {
			continue
		}
		var v uint64
		if err := a.Ctl().Read(e.Name, &v); err != nil {
			return fmt.Errorf("failed to read %s: %w", e.Name, err)
		}
		out[e.Name] = v
	}
	return printJSON(out)
}
