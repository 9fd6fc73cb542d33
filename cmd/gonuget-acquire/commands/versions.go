package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gonuget-acquire/acquire"
	"github.com/willibrandon/gonuget-acquire/cmd/gonuget-acquire/cli"
	"github.com/willibrandon/gonuget-acquire/cmd/gonuget-acquire/output"
)

// NewVersionsCommand creates the 'versions' subcommand.
func NewVersionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions PACKAGE",
		Short: "List every version of PACKAGE known to the configured sources",
		Long: `List every version of PACKAGE known to the configured sources.

Versions are aggregated across all --source flags and de-duplicated by
normalized SemVer identity.

Examples:
  gonuget-acquire versions Newtonsoft.Json
  gonuget-acquire versions Newtonsoft.Json --source https://api.nuget.org/v3/index.json
  gonuget-acquire versions Demo.Pkg --source ./local-feed --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersions(cmd, args[0])
		},
	}
	return cmd
}

func runVersions(cmd *cobra.Command, name string) error {
	start := time.Now()
	env := environmentFromFlags(cmd)
	sources := sourcesFromFlags(cmd)

	versions, err := acquire.GetVersions(cmd.Context(), env, sources, name)
	if err != nil {
		cli.Console.Error("%v", err)
		return err
	}

	if jsonFormat(cmd) {
		raw := make([]string, len(versions))
		for i, v := range versions {
			raw[i] = v.String()
		}
		return output.WriteJSON(cmd.OutOrStdout(), output.VersionsOutput{
			SchemaVersion: output.CurrentSchemaVersion,
			PackageName:   name,
			Versions:      raw,
			ElapsedMs:     output.MeasureElapsed(start),
		})
	}

	if len(versions) == 0 {
		cli.Console.Println("No versions of", name, "found across the configured sources.")
		return nil
	}
	cli.Console.Println(name + " versions:")
	for _, v := range versions {
		cli.Console.Println("  " + v.String())
	}
	return nil
}
