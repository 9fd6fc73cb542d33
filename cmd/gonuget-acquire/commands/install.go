package commands

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gonuget-acquire/acquire"
	"github.com/willibrandon/gonuget-acquire/archivehandler"
	"github.com/willibrandon/gonuget-acquire/cmd/gonuget-acquire/cli"
	"github.com/willibrandon/gonuget-acquire/cmd/gonuget-acquire/output"
)

// NewInstallCommand creates the 'install' subcommand.
func NewInstallCommand() *cobra.Command {
	var force bool
	var outputDir string
	var timestampBug bool

	cmd := &cobra.Command{
		Use:   "install PACKAGE VERSION",
		Short: "Download, extract and install one (package, version) pair",
		Long: `Resolve, download and extract one (package, version) pair into
--output-dir/PACKAGE.VERSION, repairing archive timestamps and
URL-decoding entry names as it extracts.

Examples:
  gonuget-acquire install Newtonsoft.Json 13.0.3 --output-dir ./packages
  gonuget-acquire install Demo.Pkg 1.0.0 --force`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, args[0], args[1], force, outputDir, timestampBug)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Re-download and re-extract even if already installed")
	cmd.Flags().StringVar(&outputDir, "output-dir", "packages", "Directory under which PACKAGE.VERSION is installed")
	cmd.Flags().BoolVar(&timestampBug, "archive-timestamp-bug", false, "Force current-time extraction timestamps (workaround for a buggy runtime zip writer)")
	return cmd
}

func runInstall(cmd *cobra.Command, name, version string, force bool, outputDir string, timestampBug bool) error {
	start := time.Now()
	env := environmentFromFlags(cmd)
	env.HasArchiveTimestampBug = timestampBug
	sources := sourcesFromFlags(cmd)

	ctx := contextWithCache(cmd, force)

	details, err := acquire.GetPackageDetails(ctx, env, force, sources, name, version)
	if err != nil {
		cli.Console.Error("%v", err)
		return err
	}

	targetFolder := filepath.Join(outputDir, name+"."+version)

	installer := func(archivePath, licensePath string) (string, error) {
		return archivehandler.CopyFromCache(archivehandler.CopyOptions{
			ArchivePath:            archivePath,
			LicensePath:            licensePath,
			TargetFolder:           targetFolder,
			PackageName:            name,
			Version:                version,
			Force:                  force,
			HasArchiveTimestampBug: env.HasArchiveTimestampBug,
			MaxErrorBytes:          env.MaxArchiveErrorBytes,
		})
	}

	installPath, err := acquire.DownloadPackage(ctx, env, force, details.Source, name, version, installer)
	if err != nil {
		cli.Console.Error("%v", err)
		return err
	}

	if jsonFormat(cmd) {
		return output.WriteJSON(cmd.OutOrStdout(), output.InstallOutput{
			SchemaVersion: output.CurrentSchemaVersion,
			PackageName:   name,
			Version:       version,
			InstallPath:   installPath,
			ElapsedMs:     output.MeasureElapsed(start),
		})
	}

	cli.Console.Success("Installed %s %s to %s", name, version, installPath)
	return nil
}
