package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string
	Operation   string
	Size        string
	Impl        string // backend name, e.g. "mmheap" or "jemalloc"
	Iterations  int
	NsPerOp     float64
	MBPerSec    float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ComparisonResult represents a comparison between the base backend and another.
type ComparisonResult struct {
	Operation string
	Size      string
	BaseNs    float64
	OtherNs   float64
	Speedup   float64
	BaseMBs   float64
	OtherMBs  float64
	BaseOnly  bool
}

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	baseImpl   = flag.String("base", "mmheap", "Backend the others are compared against")
	otherImpl  = flag.String("other", "jemalloc", "Backend compared with the base")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

func main() {
	flag.Parse()

	// Read benchmark output
	var scanner *bufio.Scanner
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		scanner = bufio.NewScanner(f)
	} else {
		scanner = bufio.NewScanner(os.Stdin)
	}

	results := parseBenchmarks(scanner)
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	comparisons := generateComparisons(results, *baseImpl, *otherImpl)
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Generated %d comparisons\n", len(comparisons))
	}

	report := generateMarkdownReport(comparisons, *baseImpl, *otherImpl)

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(report), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		if !*quiet {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
		}
		return
	}
	fmt.Fprint(os.Stdout, report)
}

// BenchmarkBackend/AllocFree/mmheap/256B-8   1000000   112.0 ns/op   2285.71 MB/s   0 B/op   0 allocs/op
var benchmarkRegex = regexp.MustCompile(
	`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+MB/s)?(?:\s+(\d+)\s+B/op)?(?:\s+(\d+)\s+allocs/op)?`,
)

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult

	for scanner.Scan() {
		line := scanner.Text()

		// Try to parse as JSON (from -json flag)
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
		}

		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}

		// Format: Benchmark<Group>/<op>/<impl>/<size>-<procs>
		parts := strings.Split(matches[1], "/")
		if len(parts) < 4 {
			continue
		}

		r := BenchmarkResult{
			Name:      matches[1],
			Operation: parts[len(parts)-3],
			Impl:      parts[len(parts)-2],
			Size:      trimProcs(parts[len(parts)-1]),
		}
		r.Iterations, _ = strconv.Atoi(matches[2])
		r.NsPerOp, _ = strconv.ParseFloat(matches[3], 64)
		if matches[4] != "" {
			r.MBPerSec, _ = strconv.ParseFloat(matches[4], 64)
		}
		if matches[5] != "" {
			r.BytesPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}
		if matches[6] != "" {
			r.AllocsPerOp, _ = strconv.ParseInt(matches[6], 10, 64)
		}
		results = append(results, r)
	}

	return results
}

// trimProcs drops the -GOMAXPROCS suffix go test appends.
func trimProcs(s string) string {
	if i := strings.LastIndex(s, "-"); i > 0 {
		if _, err := strconv.Atoi(s[i+1:]); err == nil {
			return s[:i]
		}
	}
	return s
}

func generateComparisons(results []BenchmarkResult, base, other string) []ComparisonResult {
	type key struct {
		operation string
		size      string
	}

	grouped := make(map[key]map[string]BenchmarkResult)
	for _, result := range results {
		k := key{result.Operation, result.Size}
		if grouped[k] == nil {
			grouped[k] = make(map[string]BenchmarkResult)
		}
		grouped[k][result.Impl] = result
	}

	var comparisons []ComparisonResult
	for k, impls := range grouped {
		b, hasBase := impls[base]
		if !hasBase {
			continue
		}
		c := ComparisonResult{
			Operation: k.operation,
			Size:      k.size,
			BaseNs:    b.NsPerOp,
			BaseMBs:   b.MBPerSec,
			BaseOnly:  true,
		}
		if o, ok := impls[other]; ok && b.NsPerOp > 0 {
			c.OtherNs = o.NsPerOp
			c.OtherMBs = o.MBPerSec
			c.Speedup = o.NsPerOp / b.NsPerOp
			c.BaseOnly = false
		}
		comparisons = append(comparisons, c)
	}

	// Sort by operation then size in bytes
	sort.Slice(comparisons, func(i, j int) bool {
		if comparisons[i].Operation != comparisons[j].Operation {
			return comparisons[i].Operation < comparisons[j].Operation
		}
		return sizeBytes(comparisons[i].Size) < sizeBytes(comparisons[j].Size)
	})

	return comparisons
}

// sizeBytes parses the 16B / 4KiB names used by the benchmarks.
func sizeBytes(s string) int64 {
	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "KiB"):
		mult, s = 1<<10, strings.TrimSuffix(s, "KiB")
	case strings.HasSuffix(s, "MiB"):
		mult, s = 1<<20, strings.TrimSuffix(s, "MiB")
	default:
		s = strings.TrimSuffix(s, "B")
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n * mult
}

func generateMarkdownReport(comparisons []ComparisonResult, base, other string) string {
	var sb strings.Builder

	sb.WriteString("# Allocator Benchmark Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05")))

	baseFaster, otherFaster, baseOnly := 0, 0, 0
	totalSpeedup := 0.0
	for _, comp := range comparisons {
		switch {
		case comp.BaseOnly:
			baseOnly++
		case comp.Speedup > 1.0:
			baseFaster++
			totalSpeedup += comp.Speedup
		default:
			otherFaster++
			totalSpeedup += comp.Speedup
		}
	}

	comparableCount := len(comparisons) - baseOnly
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Total benchmarks**: %d\n", len(comparisons)))
	sb.WriteString(fmt.Sprintf("- **Comparable** (%s and %s): %d\n", base, other, comparableCount))
	if comparableCount > 0 {
		sb.WriteString(fmt.Sprintf("  - %s faster: %d (%.1f%%)\n",
			base, baseFaster, float64(baseFaster)/float64(comparableCount)*100))
		sb.WriteString(fmt.Sprintf("  - %s faster: %d (%.1f%%)\n",
			other, otherFaster, float64(otherFaster)/float64(comparableCount)*100))
		sb.WriteString(fmt.Sprintf("  - Average speedup: **%.2fx**\n", totalSpeedup/float64(comparableCount)))
	}
	sb.WriteString(fmt.Sprintf("- **%s only**: %d\n\n", base, baseOnly))

	sb.WriteString("## Detailed Results\n\n")
	sb.WriteString(fmt.Sprintf("| Operation | Size | %s (ns/op) | %s (ns/op) | Speedup | Throughput (MB/s) |\n", base, other))
	sb.WriteString("|-----------|------|------------|------------|---------|-------------------|\n")

	for _, comp := range comparisons {
		if comp.BaseOnly {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | *N/A* | *%s only* | %s |\n",
				comp.Operation, comp.Size, formatNumber(comp.BaseNs), base, formatNumber(comp.BaseMBs)))
			continue
		}
		indicator := "✓"
		speedupStyle := "**"
		if comp.Speedup < 1.0 {
			indicator = "✗"
			speedupStyle = ""
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s%.2fx%s %s | %s vs %s |\n",
			comp.Operation,
			comp.Size,
			formatNumber(comp.BaseNs),
			formatNumber(comp.OtherNs),
			speedupStyle, comp.Speedup, speedupStyle, indicator,
			formatNumber(comp.BaseMBs),
			formatNumber(comp.OtherMBs),
		))
	}

	sb.WriteString("\n## Notes\n\n")
	sb.WriteString(fmt.Sprintf("- **Speedup > 1.0**: %s is faster ✓\n", base))
	sb.WriteString(fmt.Sprintf("- **Speedup < 1.0**: %s is faster ✗\n", other))
	sb.WriteString("- **Throughput**: requested bytes per second, higher is better\n")

	return sb.String()
}

func formatNumber(n float64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.2fM", n/1000000)
	} else if n >= 1000 {
		return fmt.Sprintf("%.1fK", n/1000)
	}
	return fmt.Sprintf("%.0f", n)
}
