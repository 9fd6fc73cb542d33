package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gonuget-acquire/cmd/gonuget-acquire/cli"
	"github.com/willibrandon/gonuget-acquire/cmd/gonuget-acquire/output"
	"github.com/willibrandon/gonuget-acquire/observability"
)

// healthCheckTimeout bounds each source's reachability probe.
const healthCheckTimeout = 10 * time.Second

// NewSourcesCommand creates the 'sources' command group.
func NewSourcesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Inspect the configured package sources",
	}
	cmd.AddCommand(newSourcesHealthCommand())
	return cmd
}

// newSourcesHealthCommand creates 'sources health', a pre-flight
// reachability check over every --source: remote sources get an HTTP
// HEAD probe, local sources get a directory-existence check.
func newSourcesHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check reachability of every configured source",
		Long: `Probe every --source: a remote source is HEAD-requested, a local
source is checked for existence on disk. Exits non-zero if any source
is unhealthy.

Examples:
  gonuget-acquire sources health
  gonuget-acquire sources health --source https://api.nuget.org/v3/index.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSourcesHealth(cmd)
		},
	}
}

func runSourcesHealth(cmd *cobra.Command) error {
	start := time.Now()
	sources := sourcesFromFlags(cmd)
	checker := observability.NewHealthChecker()

	for _, source := range sources {
		if source.IsLocal() {
			checker.Register(localSourceHealthCheck(source.Name, source.Path))
			continue
		}
		checker.Register(observability.HTTPSourceHealthCheck(source.Name, source.URL, healthCheckTimeout))
	}

	results := checker.Check(cmd.Context())
	overall := checker.OverallStatus(cmd.Context())

	rows := make([]output.SourceHealthResult, 0, len(sources))
	for _, source := range sources {
		result := results[source.Name]
		rows = append(rows, output.SourceHealthResult{
			Source:  source.Name,
			Status:  string(result.Status),
			Message: result.Message,
		})
	}

	if jsonFormat(cmd) {
		if err := output.WriteJSON(cmd.OutOrStdout(), output.SourcesHealthOutput{
			SchemaVersion: output.CurrentSchemaVersion,
			Overall:       string(overall),
			Sources:       rows,
			ElapsedMs:     output.MeasureElapsed(start),
		}); err != nil {
			return err
		}
		if overall != observability.HealthStatusHealthy {
			os.Exit(1)
		}
		return nil
	}

	for _, row := range rows {
		line := row.Source + ": " + row.Status
		if row.Message != "" {
			line += " (" + row.Message + ")"
		}
		if row.Status == string(observability.HealthStatusHealthy) {
			cli.Console.Success("%s", line)
		} else {
			cli.Console.Warning("%s", line)
		}
	}

	if overall != observability.HealthStatusHealthy {
		return fmt.Errorf("sources health: %s", overall)
	}
	return nil
}

// localSourceHealthCheck adapts a local feed directory to the
// HealthCheck shape HTTPSourceHealthCheck uses for remote sources.
func localSourceHealthCheck(name, path string) observability.HealthCheck {
	return observability.HealthCheck{
		Name: name,
		Check: func(_ context.Context) observability.HealthCheckResult {
			info, err := os.Stat(path)
			if err != nil {
				return observability.HealthCheckResult{
					Status:  observability.HealthStatusUnhealthy,
					Message: err.Error(),
				}
			}
			if !info.IsDir() {
				return observability.HealthCheckResult{
					Status:  observability.HealthStatusUnhealthy,
					Message: path + " is not a directory",
				}
			}
			return observability.HealthCheckResult{
				Status:  observability.HealthStatusHealthy,
				Message: "directory present",
			}
		},
	}
}
