package main

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOutput = `goos: linux
goarch: amd64
pkg: github.com/joshuapare/pkalloc/backend/mmheap
BenchmarkBackend/AllocFree/mmheap/16B-8         	 9000000	       120.0 ns/op	 133.33 MB/s	       0 B/op	       0 allocs/op
BenchmarkBackend/AllocFree/mmheap/4KiB-8        	 5000000	       200.0 ns/op	20480.00 MB/s	       0 B/op	       0 allocs/op
BenchmarkBackend/Batch/mmheap/16B-8             	  100000	      9000 ns/op	   0.11 MB/s
{"Action":"output","Output":"BenchmarkBackend/AllocFree/jemalloc/16B-8   20000000   60.0 ns/op   266.67 MB/s\n"}
BenchmarkBackend/AllocFree/jemalloc/4KiB-8      	 2000000	       400.0 ns/op	10240.00 MB/s
PASS
`

func TestParseBenchmarks(t *testing.T) {
	results := parseBenchmarks(bufio.NewScanner(strings.NewReader(sampleOutput)))
	require.Len(t, results, 5)

	assert.Equal(t, BenchmarkResult{
		Name:       "BenchmarkBackend/AllocFree/mmheap/16B-8",
		Operation:  "AllocFree",
		Size:       "16B",
		Impl:       "mmheap",
		Iterations: 9000000,
		NsPerOp:    120,
		MBPerSec:   133.33,
	}, results[0])
	assert.Equal(t, "jemalloc", results[3].Impl, "JSON events are unwrapped")
}

func TestGenerateComparisons(t *testing.T) {
	results := parseBenchmarks(bufio.NewScanner(strings.NewReader(sampleOutput)))
	comps := generateComparisons(results, "mmheap", "jemalloc")
	require.Len(t, comps, 3)

	assert.Equal(t, "AllocFree", comps[0].Operation)
	assert.Equal(t, "16B", comps[0].Size)
	assert.InDelta(t, 0.5, comps[0].Speedup, 1e-9)

	assert.Equal(t, "4KiB", comps[1].Size, "sizes sort numerically")
	assert.InDelta(t, 2.0, comps[1].Speedup, 1e-9)

	assert.True(t, comps[2].BaseOnly)

	report := generateMarkdownReport(comps, "mmheap", "jemalloc")
	assert.Contains(t, report, "| AllocFree | 4KiB | 200 | 400 | **2.00x** ✓")
	assert.Contains(t, report, "*mmheap only*")
}

func TestTrimProcs(t *testing.T) {
	assert.Equal(t, "16B", trimProcs("16B-8"))
	assert.Equal(t, "16B", trimProcs("16B"))
	assert.Equal(t, "mmheap-debug", trimProcs("mmheap-debug"))
}
