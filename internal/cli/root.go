// Package cli implements the Lectern command-line interface using Cobra.
// `serve` runs the daemon; the rest inspect or reset local reading data.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lectern",
	Short: "Lectern — Reading engagement for your docs",
	Long: `Lectern tracks how you actually read documentation.
Active time per page, completion credit, streaks and achievements,
all stored locally.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
