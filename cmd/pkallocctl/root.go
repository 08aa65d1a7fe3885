package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pkalloc/alloc"
	"github.com/joshuapare/pkalloc/internal/logger"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	logPath string
)

var rootCmd = &cobra.Command{
	Use:   "pkallocctl",
	Short: "Inspect and tune the pkalloc allocator",
	Long: `pkallocctl drives the pkalloc allocation facade from the command line.
It prints backend statistics, reads and writes tunables, probes how layouts
are translated and served, and checks addresses against a protection domain.

Set PKALLOC_CONF (for example "debug:true,profile:true") to configure the
default backend.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: initLogging,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Write debug logs to this file")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initLogging routes the library logger to --log, or to stderr with --verbose.
func initLogging(cmd *cobra.Command, args []string) error {
	switch {
	case logPath != "":
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		return logger.Init(logger.Options{Enabled: true, Writer: f, Level: slog.LevelDebug})
	case verbose && !quiet:
		return logger.Init(logger.Options{Enabled: true, Writer: os.Stderr, Level: slog.LevelDebug})
	default:
		return logger.Init(logger.Options{})
	}
}

// openAllocator builds the facade over the configured backend. The returned
// function releases the backend.
func openAllocator() (*alloc.Allocator, func(), error) {
	b, closeFn, err := openBackend()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open backend: %w", err)
	}
	a, err := alloc.New(b, nil)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	printVerbose("Backend: %T\n", b)
	return a, closeFn, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// parseSize accepts decimal, 0x-prefixed hex and 0-prefixed octal.
func parseSize(name, s string) (uintptr, error) {
	n, err := strconv.ParseUint(s, 0, strconv.IntSize)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return uintptr(n), nil
}
