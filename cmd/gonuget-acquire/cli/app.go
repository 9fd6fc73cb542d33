// Package cli wires the gonuget-acquire root command and its persistent
// flags, mirroring the teacher CLI's command/output separation.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/willibrandon/gonuget-acquire/cmd/gonuget-acquire/output"
)

var rootCmd = &cobra.Command{
	Use:   "gonuget-acquire",
	Short: "Resolve, fetch and extract NuGet packages from a set of feeds",
	Long: `gonuget-acquire is a standalone CLI over the package acquisition core:
feed protocol negotiation, version listing, metadata resolution, download
and archive extraction.

Complete documentation is available at https://github.com/willibrandon/gonuget-acquire`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Console is the global console every command writes through.
var Console *output.Console

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// AddCommand registers a subcommand with the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

func init() {
	Console = output.DefaultConsole()

	rootCmd.PersistentFlags().StringSliceP("source", "s", nil, "Package source URL or directory path (repeatable; defaults to nuget.org)")
	rootCmd.PersistentFlags().String("token", "", "Bearer token for authenticated sources")
	rootCmd.PersistentFlags().String("user", "", "Basic auth username for authenticated sources")
	rootCmd.PersistentFlags().String("password", "", "Basic auth password for authenticated sources")
	rootCmd.PersistentFlags().String("cache-root", "", "Override the metadata/archive cache root (defaults to the user cache dir)")
	rootCmd.PersistentFlags().String("format", "console", "Output format: console or json")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Set the acquisition environment's verbose flag (no extra output is printed)")
}
