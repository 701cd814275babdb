package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "zne",
		Short: "Zero-noise extrapolation for noisy expectation values",
		Long: `zne extrapolates expectation values measured at amplified noise levels
back to the zero-noise limit.

It reduces sample files or sample archives with a linear, polynomial,
Richardson or exponential fit, and packs samples into compressed archives
for later re-reduction.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging on stderr")

	rootCmd.AddCommand(
		newVersionCmd(),
		newReduceCmd(),
		newPackCmd(),
		newInspectCmd(),
	)

	return rootCmd
}

// newLogger returns a text logger on the command's stderr. Info and above are
// shown by default, debug with --verbose.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func jsonOutput(cmd *cobra.Command) bool {
	jsonOut, _ := cmd.Flags().GetBool("json")
	return jsonOut
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
