// Package jemalloc binds alloc.Backend to a prebuilt jemalloc through cgo.
//
// The package is only compiled with the jemalloc build tag and cgo enabled:
//
//	CGO_ENABLED=1 go build -tags jemalloc ./...
//
// It links against -ljemalloc and expects the unprefixed API from
// <jemalloc/jemalloc.h> (mallocx, rallocx, sdallocx, nallocx, xallocx,
// mallctl, malloc_stats_print). Use CGO_CFLAGS and CGO_LDFLAGS to point at
// a custom build, for example one configured with --enable-debug or
// --enable-prof.
//
// Tunables go straight to mallctl. The Go type passed to Read or Write
// selects the C representation:
//
//	uint64  -> uint64_t / size_t
//	uint32  -> unsigned
//	int     -> ssize_t
//	bool    -> bool
//	string  -> const char *
//	nil     -> void (trigger-style writes such as "arena.0.purge")
package jemalloc
