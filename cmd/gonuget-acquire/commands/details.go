package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gonuget-acquire/acquire"
	"github.com/willibrandon/gonuget-acquire/cmd/gonuget-acquire/cli"
	"github.com/willibrandon/gonuget-acquire/cmd/gonuget-acquire/output"
	"github.com/willibrandon/gonuget-acquire/frameworks"
)

// NewDetailsCommand creates the 'details' subcommand.
func NewDetailsCommand() *cobra.Command {
	var force bool
	var framework string

	cmd := &cobra.Command{
		Use:   "details PACKAGE VERSION",
		Short: "Resolve the metadata for one (package, version) pair",
		Long: `Resolve the download link, license URL, listed status and direct
dependencies for one (package, version) pair, racing every configured
source and caching the winner on disk.

Examples:
  gonuget-acquire details Newtonsoft.Json 13.0.3
  gonuget-acquire details Demo.Pkg 1.0.0 --force --format json
  gonuget-acquire details Demo.Pkg 1.0.0 --framework net8.0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetails(cmd, args[0], args[1], force, framework)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Bypass the metadata cache and sticky error markers")
	cmd.Flags().StringVar(&framework, "framework", "", "Only list dependencies that apply to this target framework moniker (e.g. net8.0)")
	return cmd
}

func runDetails(cmd *cobra.Command, name, version string, force bool, framework string) error {
	start := time.Now()
	env := environmentFromFlags(cmd)
	sources := sourcesFromFlags(cmd)

	details, err := acquire.GetPackageDetails(contextWithCache(cmd, force), env, force, sources, name, version)
	if err != nil {
		cli.Console.Error("%v", err)
		return err
	}

	var target *frameworks.NuGetFramework
	if framework != "" {
		target, err = frameworks.ParseFramework(framework)
		if err != nil {
			cli.Console.Error("invalid --framework %q: %v", framework, err)
			return err
		}
	}

	deps := make([]string, 0, len(details.DirectDependencies))
	for _, d := range details.DirectDependencies {
		if target != nil && !d.AppliesTo(target) {
			continue
		}
		deps = append(deps, d.Name.String()+" "+d.VersionRequirement.String())
	}

	if jsonFormat(cmd) {
		return output.WriteJSON(cmd.OutOrStdout(), output.DetailsOutput{
			SchemaVersion: output.CurrentSchemaVersion,
			PackageName:   details.Name,
			Version:       version,
			Source:        details.Source.String(),
			DownloadLink:  details.DownloadLink,
			Unlisted:      details.Unlisted,
			LicenseURL:    details.LicenseURL,
			Dependencies:  deps,
			ElapsedMs:     output.MeasureElapsed(start),
		})
	}

	cli.Console.Println(details.Name, version)
	cli.Console.Println("  source:    " + details.Source.String())
	cli.Console.Println("  download:  " + details.DownloadLink)
	if details.Unlisted {
		cli.Console.Warning("this version is unlisted")
	}
	if details.LicenseURL != "" {
		cli.Console.Println("  license:   " + details.LicenseURL)
	}
	if len(deps) == 0 {
		cli.Console.Println("  dependencies: none")
	} else {
		cli.Console.Println("  dependencies:")
		for _, d := range deps {
			cli.Console.Println("    " + d)
		}
	}
	return nil
}
