package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pkalloc/ctl"
	"github.com/joshuapare/pkalloc/internal/logger"
)

var (
	ctlType string
)

func init() {
	cmd := newCtlCmd()
	cmd.PersistentFlags().StringVar(&ctlType, "type", "auto",
		"Value type: auto, uint64, uint32, int, bool, string, float64")
	rootCmd.AddCommand(cmd)
}

func newCtlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ctl",
		Short: "Read and write backend tunables",
		Long: `The ctl command reads and writes named backend tunables using dotted
names such as "stats.allocated" or "prof.active".

With --type auto the value kind is detected by trying each kind in turn. The
jemalloc backend cannot report kinds, so pass --type string for string
tunables there.

Example:
  pkallocctl ctl get version
  pkallocctl ctl set prof.active true
  pkallocctl ctl set stats.reset
  pkallocctl ctl list stats`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Read a tunable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCtlGet(args)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <name> [value]",
		Short: "Write a tunable; omit the value for trigger tunables",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCtlSet(args)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list [prefix]",
		Short: "List tunables",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCtlList(args)
		},
	})
	return cmd
}

// autoKinds is the probe order for --type auto. Wider integers come first so
// a size_t is never read through a narrower type.
var autoKinds = []string{"uint64", "uint32", "bool", "string", "int", "float64"}

// newOut returns a pointer of the named kind.
func newOut(kind string) (any, error) {
	switch kind {
	case "uint64":
		return new(uint64), nil
	case "uint32":
		return new(uint32), nil
	case "int":
		return new(int), nil
	case "bool":
		return new(bool), nil
	case "string":
		return new(string), nil
	case "float64":
		return new(float64), nil
	default:
		return nil, fmt.Errorf("unknown type %q", kind)
	}
}

// deref returns the value behind a pointer from newOut.
func deref(p any) any {
	switch v := p.(type) {
	case *uint64:
		return *v
	case *uint32:
		return *v
	case *int:
		return *v
	case *bool:
		return *v
	case *string:
		return *v
	case *float64:
		return *v
	default:
		return nil
	}
}

// readValue reads name as kind, or probes every kind for "auto".
func readValue(c ctl.Controller, name, kind string) (any, error) {
	kinds := []string{kind}
	if kind == "auto" {
		kinds = autoKinds
	}

	var firstErr error
	for _, k := range kinds {
		out, err := newOut(k)
		if err != nil {
			return nil, err
		}
		err = c.Read(name, out)
		if err == nil {
			return deref(out), nil
		}
		if !errors.Is(err, ctl.ErrBadValue) {
			return nil, err
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

func runCtlGet(args []string) error {
	name := args[0]

	a, closeFn, err := openAllocator()
	if err != nil {
		return err
	}
	defer closeFn()

	v, err := readValue(a.Ctl(), name, ctlType)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	if jsonOut {
		return printJSON(map[string]any{"name": name, "value": v})
	}
	printInfo("%s: %s\n", name, ctl.Format(v))
	return nil
}

func runCtlSet(args []string) error {
	name := args[0]

	a, closeFn, err := openAllocator()
	if err != nil {
		return err
	}
	defer closeFn()
	c := a.Ctl()

	if len(args) == 1 {
		if err := c.Write(name, nil); err != nil {
			return fmt.Errorf("failed to trigger %s: %w", name, err)
		}
		logger.L.Info("tunable triggered", "name", name)
		printInfo("%s: triggered\n", name)
		return nil
	}

	var sample any
	if ctlType == "auto" {
		sample, err = readValue(c, name, ctlType)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
	} else {
		out, err := newOut(ctlType)
		if err != nil {
			return err
		}
		sample = deref(out)
	}

	in, err := ctl.Parse(args[1], sample)
	if err != nil {
		return fmt.Errorf("failed to parse value for %s: %w", name, err)
	}

	// Read the old value and write the new one in a single exchange
	out, err := newOut(kindOf(sample))
	if err != nil {
		return err
	}
	if err := c.Exchange(name, out, in); err != nil {
		if !errors.Is(err, ctl.ErrWriteOnly) {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		if err := c.Write(name, in); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		out = nil
	}
	logger.L.Info("tunable written", "name", name, "value", in)

	if jsonOut {
		res := map[string]any{"name": name, "value": in}
		if out != nil {
			res["old"] = deref(out)
		}
		return printJSON(res)
	}
	if out != nil {
		printInfo("%s: %s -> %s\n", name, ctl.Format(deref(out)), ctl.Format(in))
	} else {
		printInfo("%s: %s\n", name, ctl.Format(in))
	}
	return nil
}

// kindOf names the kind of a value returned by deref.
func kindOf(v any) string {
	switch v.(type) {
	case uint32:
		return "uint32"
	case int:
		return "int"
	case bool:
		return "bool"
	case string:
		return "string"
	case float64:
		return "float64"
	default:
		return "uint64"
	}
}

// ctlEntry is the list output for one tunable.
type ctlEntry struct {
	Name     string `json:"name"`
	Readable bool   `json:"readable"`
	Writable bool   `json:"writable"`
	Value    any    `json:"value,omitempty"`
}

func runCtlList(args []string) error {
	prefix := ""
	if len(args) == 1 {
		prefix = args[0]
	}

	a, closeFn, err := openAllocator()
	if err != nil {
		return err
	}
	defer closeFn()

	lister, ok := a.Ctl().(ctl.Lister)
	if !ok {
		return fmt.Errorf("backend cannot list its tunables")
	}
	entries, err := lister.Names(prefix)
	if err != nil {
		return fmt.Errorf("failed to list %q: %w", prefix, err)
	}

	list := make([]ctlEntry, 0, len(entries))
	for _, e := range entries {
		ce := ctlEntry{Name: e.Name, Readable: e.Readable, Writable: e.Writable}
		if e.Readable {
			if v, err := readValue(a.Ctl(), e.Name, ctlType); err == nil {
				ce.Value = v
			}
		}
		list = append(list, ce)
	}

	if jsonOut {
		return printJSON(list)
	}
	for _, ce := range list {
		mode := "r-"
		switch {
		case ce.Readable && ce.Writable:
			mode = "rw"
		case ce.Writable:
			mode = "-w"
		}
		if ce.Value != nil {
			printInfo("%s  %-24s %s\n", mode, ce.Name, ctl.Format(ce.Value))
		} else {
			printInfo("%s  %s\n", mode, ce.Name)
		}
	}
	return nil
}
