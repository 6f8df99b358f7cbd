package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "vmsim",
	Short: "vmsim simulates a hierarchical demand-paged virtual memory",
	Long: `vmsim simulates a hierarchical demand-paged virtual memory. It walks a ` +
		`multi-level page table stored inside a small physical memory, allocating, ` +
		`reclaiming, and evicting frames as synthetic workloads touch the virtual ` +
		`address space.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// A .env file can provide VMSIM_* defaults for the flags.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
