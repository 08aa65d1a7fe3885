package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pkalloc/alloc"
)

func init() {
	rootCmd.AddCommand(newProbeCmd())
}

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe <size> <align>",
		Short: "Allocate a layout and report how the backend served it",
		Long: `The probe command allocates one block with the given layout, reports
its address, alignment, usable-size bounds and excess, tries to shrink and
grow it in place, then frees it.

Example:
  pkallocctl probe 100 8
  pkallocctl probe 0x1000 4096 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(args)
		},
	}
	return cmd
}

// ProbeResult describes one probed allocation.
type ProbeResult struct {
	Size          uintptr `json:"size"`
	Align         uintptr `json:"align"`
	Flags         int32   `json:"flags"`
	Address       string  `json:"address"`
	Aligned       bool    `json:"aligned"`
	UsableMin     uintptr `json:"usable_min"`
	UsableMax     uintptr `json:"usable_max"`
	Excess        uintptr `json:"excess"`
	BlockUsable   uintptr `json:"block_usable"`
	ShrinkTo      uintptr `json:"shrink_to"`
	ShrinkInPlace bool    `json:"shrink_in_place"`
	GrowTo        uintptr `json:"grow_to"`
	GrowInPlace   bool    `json:"grow_in_place"`
}

func runProbe(args []string) error {
	size, err := parseSize("size", args[0])
	if err != nil {
		return err
	}
	align, err := parseSize("align", args[1])
	if err != nil {
		return err
	}
	l, err := alloc.NewLayout(size, align)
	if err != nil {
		return err
	}

	a, closeFn, err := openAllocator()
	if err != nil {
		return err
	}
	defer closeFn()

	p, excess := a.AllocExcess(l.Size, l.Align)
	if p == nil {
		return fmt.Errorf("allocation of %s failed", l)
	}

	res := ProbeResult{
		Size:        l.Size,
		Align:       l.Align,
		Flags:       int32(l.Flags()),
		Address:     fmt.Sprintf("%p", p),
		Aligned:     uintptr(p)%l.Align == 0,
		Excess:      excess,
		BlockUsable: a.MallocUsableSize(p),
	}
	res.UsableMin, res.UsableMax = a.UsableSize(l)

	if l.Size > 1 {
		res.ShrinkTo = l.Size / 2
		res.ShrinkInPlace = a.ShrinkInPlace(p, l.Size, l.Align, res.ShrinkTo, l.Align)
	}
	res.GrowTo = res.BlockUsable
	res.GrowInPlace = a.GrowInPlace(p, l.Size, l.Align, res.GrowTo, l.Align)

	// A failed in-place resize may still have changed the block's size
	// class, so free it at whatever size it has now
	a.Dealloc(p, a.MallocUsableSize(p), l.Align)

	if jsonOut {
		return printJSON(res)
	}
	printInfo("Layout:        %s\n", l)
	printInfo("Flags:         %#x\n", res.Flags)
	printInfo("Address:       %s (aligned: %t)\n", res.Address, res.Aligned)
	printInfo("Usable size:   min=%d max=%d\n", res.UsableMin, res.UsableMax)
	printInfo("Excess:        %d\n", res.Excess)
	printInfo("Block usable:  %d\n", res.BlockUsable)
	if res.ShrinkTo != 0 {
		printInfo("Shrink to %d:  %s\n", res.ShrinkTo, inPlace(res.ShrinkInPlace))
	}
	printInfo("Grow to %d:    %s\n", res.GrowTo, inPlace(res.GrowInPlace))
	return nil
}

func inPlace(ok bool) string {
	if ok {
		return "in place"
	}
	return "would move"
}
