package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/pkalloc/alloc"
)

func init() {
	rootCmd.AddCommand(newFlagsCmd())
}

func newFlagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flags <align> <size>",
		Short: "Show the backend flags a layout translates to",
		Long: `The flags command prints the flag word the allocator passes to the
backend for a layout, with and without the zero-fill bit.

Example:
  pkallocctl flags 8 64
  pkallocctl flags 4096 100 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlags(args)
		},
	}
	return cmd
}

// FlagsResult describes the translation of one layout.
type FlagsResult struct {
	Align    uintptr `json:"align"`
	Size     uintptr `json:"size"`
	MinAlign uintptr `json:"min_align"`
	Flags    int32   `json:"flags"`
	Zeroed   int32   `json:"zeroed_flags"`
	LgAlign  uint    `json:"lg_align"`
	FastPath bool    `json:"fast_path"`
}

func runFlags(args []string) error {
	align, err := parseSize("align", args[0])
	if err != nil {
		return err
	}
	size, err := parseSize("size", args[1])
	if err != nil {
		return err
	}
	l, err := alloc.NewLayout(size, align)
	if err != nil {
		return err
	}

	f := l.Flags()
	res := FlagsResult{
		Align:    align,
		Size:     size,
		MinAlign: alloc.MinAlign,
		Flags:    int32(f),
		Zeroed:   int32(alloc.ZeroedFlagsFor(align, size)),
		LgAlign:  f.LgAlign(),
		FastPath: f == 0,
	}

	if jsonOut {
		return printJSON(res)
	}
	printInfo("Layout:     %s\n", l)
	printInfo("Min align:  %d\n", res.MinAlign)
	printInfo("Flags:      %#x\n", res.Flags)
	printInfo("Zeroed:     %#x\n", res.Zeroed)
	if res.FastPath {
		printInfo("Path:       fast (default alignment)\n")
	} else {
		printInfo("Path:       aligned (lg_align=%d)\n", res.LgAlign)
	}
	return nil
}
