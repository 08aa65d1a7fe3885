// Package ctl defines the named-tunable control interface shared by all
// allocator backends, modelled on jemalloc's mallctl family.
//
// Names are dotted paths ("stats.allocated", "prof.active"). Each name can be
// translated once into a MIB, a slice of per-level indices, so that hot
// callers can skip string lookups:
//
//	mib, err := c.NameToMIB("stats.allocated")
//	if err != nil {
//	    return err
//	}
//	var allocated uint64
//	err = c.ReadMIB(mib, &allocated)
//
// Values travel as Go values. Read destinations are pointers to uint64,
// uint32, int, bool, string or float64; integer kinds convert into each other
// when the value fits.
//
// Tree is an in-process Controller that backends populate with getter and
// setter closures.
package ctl
