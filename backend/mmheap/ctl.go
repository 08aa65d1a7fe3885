package mmheap

import (
	"fmt"
	"strings"

	"github.com/joshuapare/pkalloc/alloc"
	"github.com/joshuapare/pkalloc/ctl"
	"github.com/joshuapare/pkalloc/internal/logger"
)

// Version is reported by the "version" tunable.
const Version = "pkalloc-mmheap/1"

// refresh takes a new stats snapshot and advances the epoch.
func (h *Heap) refresh() uint64 {
	s := h.stats.snapshot()
	h.snap.Store(&s)
	return h.epoch.Add(1)
}

func (h *Heap) snapshotField(field func(*Stats) uint64) ctl.Getter {
	return func() any { return field(h.snap.Load()) }
}

func (h *Heap) registerTunables() error {
	t := ctl.NewTree()

	regs := []struct {
		name string
		get  ctl.Getter
		set  ctl.Setter
	}{
		{"version", func() any { return Version }, nil},
		{"epoch", func() any { return h.epoch.Load() }, func(v any) error {
			if _, err := ctl.AsUint64(v); err != nil {
				return err
			}
			h.refresh()
			return nil
		}},
		{"arch.min_align", func() any { return uint64(alloc.MinAlign) }, nil},
		{"arch.page", func() any { return uint64(h.page) }, nil},
		{"opt.debug", func() any { return h.opts.Debug }, nil},
		{"opt.profile", func() any { return h.opts.Profile }, nil},
		{"prof.active", func() any { return h.prof.active.Load() }, func(v any) error {
			b, err := ctl.AsBool(v)
			if err != nil {
				return err
			}
			h.prof.active.Store(b)
			logger.L.Info("profiling toggled", "active", b)
			return nil
		}},
		{"prof.reset", nil, func(any) error {
			h.prof.reset()
			return nil
		}},
		{"stats.allocated", h.snapshotField(func(s *Stats) uint64 { return s.Allocated }), nil},
		{"stats.active", h.snapshotField(func(s *Stats) uint64 { return s.Active }), nil},
		{"stats.allocs", h.snapshotField(func(s *Stats) uint64 { return s.Allocs }), nil},
		{"stats.frees", h.snapshotField(func(s *Stats) uint64 { return s.Frees }), nil},
		{"stats.reallocs", h.snapshotField(func(s *Stats) uint64 { return s.Reallocs }), nil},
		{"stats.resizes", h.snapshotField(func(s *Stats) uint64 { return s.Resizes }), nil},
		{"stats.reset", nil, func(any) error {
			h.stats.reset()
			logger.L.Info("operation counters reset")
			return nil
		}},
	}
	for _, r := range regs {
		if err := t.Register(r.name, r.get, r.set); err != nil {
			return fmt.Errorf("mmheap: register %s: %w", r.name, err)
		}
	}
	h.tree = t
	return nil
}

// Read implements ctl.Controller.
func (h *Heap) Read(name string, out any) error { return h.tree.Read(name, out) }

// Write implements ctl.Controller.
func (h *Heap) Write(name string, in any) error { return h.tree.Write(name, in) }

// Exchange implements ctl.Controller.
func (h *Heap) Exchange(name string, out, in any) error { return h.tree.Exchange(name, out, in) }

// NameToMIB implements ctl.Controller.
func (h *Heap) NameToMIB(name string) (ctl.MIB, error) { return h.tree.NameToMIB(name) }

// ReadMIB implements ctl.Controller.
func (h *Heap) ReadMIB(mib ctl.MIB, out any) error { return h.tree.ReadMIB(mib, out) }

// WriteMIB implements ctl.Controller.
func (h *Heap) WriteMIB(mib ctl.MIB, in any) error { return h.tree.WriteMIB(mib, in) }

// Names implements ctl.Lister.
func (h *Heap) Names(prefix string) ([]ctl.Entry, error) { return h.tree.Names(prefix) }

// PrintStats implements alloc.Backend. Like malloc_stats_print, opts letters
// omit sections: "g" general information, "p" the size histogram. The
// report reflects live counters, not the epoch snapshot.
func (h *Heap) PrintStats(write func(string), opts string) {
	s := h.stats.snapshot()

	write("___ Begin pkalloc statistics ___\n")
	if !strings.Contains(opts, "g") {
		write(fmt.Sprintf("Version: %s\n", Version))
		write("Backend: modernc.org/memory\n")
		write(fmt.Sprintf("Options: debug=%t profile=%t\n", h.opts.Debug, h.prof.active.Load()))
		write(fmt.Sprintf("Min alignment: %d\n", alloc.MinAlign))
		write(fmt.Sprintf("Page size: %d\n", h.page))
	}
	write(fmt.Sprintf("Allocated: %d, active: %d\n", s.Allocated, s.Active))
	write(fmt.Sprintf("Operations: allocs=%d frees=%d reallocs=%d resizes=%d\n",
		s.Allocs, s.Frees, s.Reallocs, s.Resizes))

	if !strings.Contains(opts, "p") {
		if buckets := h.prof.buckets(); len(buckets) > 0 {
			write("Size histogram:\n")
			for _, b := range buckets {
				write(fmt.Sprintf("  [%10d, %10d): %d\n", b.Lo, b.Hi, b.Count))
			}
		}
	}
	write("--- End pkalloc statistics ---\n")
}
