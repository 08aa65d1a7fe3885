//go:build cgo && jemalloc

package jemalloc

import (
	"testing"

	"github.com/joshuapare/pkalloc/internal/testutil/backendtest"
)

func BenchmarkBackend(b *testing.B) {
	backendtest.Bench(b, "jemalloc", newTestHeap(b))
}
