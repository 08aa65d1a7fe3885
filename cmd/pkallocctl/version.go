package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion() error {
	a, closeFn, err := openAllocator()
	if err != nil {
		return err
	}
	defer closeFn()

	var backend string
	if err := a.Ctl().Read("version", &backend); err != nil {
		backend = "unknown"
	}

	fmt.Printf("pkallocctl %s\n", version)
	fmt.Printf("  commit: %s\n", commit)
	fmt.Printf("  built: %s\n", date)
	fmt.Printf("  backend: %s\n", backend)
	return nil
}
