// Command vortex is a batch/one-shot inspector, scanner and writer for
// Vortex files (§6.3, §6.4): it is a thin shell around the vfile and scan
// packages, not a service or dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vortex-db/vortex/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "vortex",
	Short: "Inspect, scan and write Vortex columnar files",
	Long: `vortex is a command-line front end for the Vortex file format:

  vortex inspect <file>   print a file's dtype, row count and stats
  vortex scan <file>      stream a file's rows, optionally filtered
  vortex write <file>     write a single-column file from stdin

It talks to the format directly through the vfile/scan packages; it does
not run a server and does not hold any state between invocations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	rootCmd.AddCommand(inspectCmd, scanCmd, writeCmd)
}

func initLogging(cmd *cobra.Command) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(logger.DEBUG)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "vortex: %v\n", err)
		os.Exit(1)
	}
}
