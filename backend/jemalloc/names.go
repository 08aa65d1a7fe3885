//go:build cgo && jemalloc

package jemalloc

import (
	"strings"

	"github.com/joshuapare/pkalloc/ctl"
)

// wellKnown lists commonly used mallctl names. jemalloc cannot enumerate its
// namespace, so Names reports these and skips any the linked build lacks.
var wellKnown = []ctl.Entry{
	{Name: "version", Readable: true},
	{Name: "epoch", Readable: true, Writable: true},
	{Name: "config.debug", Readable: true},
	{Name: "config.prof", Readable: true},
	{Name: "config.stats", Readable: true},
	{Name: "opt.abort", Readable: true},
	{Name: "opt.narenas", Readable: true},
	{Name: "opt.junk", Readable: true},
	{Name: "opt.zero", Readable: true},
	{Name: "opt.prof", Readable: true},
	{Name: "arenas.narenas", Readable: true},
	{Name: "arenas.quantum", Readable: true},
	{Name: "arenas.page", Readable: true},
	{Name: "arenas.nbins", Readable: true},
	{Name: "prof.active", Readable: true, Writable: true},
	{Name: "prof.dump", Writable: true},
	{Name: "thread.allocated", Readable: true},
	{Name: "thread.deallocated", Readable: true},
	{Name: "thread.tcache.flush", Writable: true},
	{Name: "stats.allocated", Readable: true},
	{Name: "stats.active", Readable: true},
	{Name: "stats.metadata", Readable: true},
	{Name: "stats.resident", Readable: true},
	{Name: "stats.mapped", Readable: true},
	{Name: "stats.retained", Readable: true},
}

// Names implements ctl.Lister.
func (h *Heap) Names(prefix string) ([]ctl.Entry, error) {
	var out []ctl.Entry
	for _, e := range wellKnown {
		if prefix != "" && e.Name != prefix && !strings.HasPrefix(e.Name, prefix+".") {
			continue
		}
		if _, err := h.NameToMIB(e.Name); err != nil {
			continue
		}
		out = append(out, e)
	}
	if prefix != "" && len(out) == 0 {
		if _, err := h.NameToMIB(prefix); err != nil {
			return nil, err
		}
	}
	return out, nil
}
