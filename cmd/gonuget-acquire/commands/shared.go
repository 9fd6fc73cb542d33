// Package commands implements the gonuget-acquire subcommands on top of
// the acquire facade.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gonuget-acquire/acquire"
	"github.com/willibrandon/gonuget-acquire/cache"
)

// defaultSource is used when the caller gives no --source flags at all.
const defaultSource = "https://api.nuget.org/v3/index.json"

// sourcesFromFlags builds the PackageSource list from the --source,
// --token, --user and --password persistent flags.
func sourcesFromFlags(cmd *cobra.Command) []acquire.PackageSource {
	raw, _ := cmd.Flags().GetStringSlice("source")
	token, _ := cmd.Flags().GetString("token")
	user, _ := cmd.Flags().GetString("user")
	password, _ := cmd.Flags().GetString("password")

	if len(raw) == 0 {
		raw = []string{defaultSource}
	}

	sources := make([]acquire.PackageSource, 0, len(raw))
	for _, s := range raw {
		sources = append(sources, acquire.ParseSource(s, token, user, password))
	}
	return sources
}

// environmentFromFlags builds an Environment honoring --cache-root and
// --verbose.
func environmentFromFlags(cmd *cobra.Command) *acquire.Environment {
	var opts []acquire.Option

	if cacheRoot, _ := cmd.Flags().GetString("cache-root"); cacheRoot != "" {
		opts = append(opts, acquire.WithCacheRoot(cacheRoot))
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		opts = append(opts, acquire.WithVerbose(true))
	}

	return acquire.NewEnvironment(opts...)
}

// contextWithCache attaches a SourceCacheContext to cmd's context when
// force is set, so the resolver's disk-cache bypass and a per-invocation
// session ID both flow from the same --force flag instead of needing a
// second CLI knob.
func contextWithCache(cmd *cobra.Command, force bool) context.Context {
	if !force {
		return cmd.Context()
	}
	cacheCtx := cache.NewSourceCacheContext()
	cacheCtx.NoCache = true
	return cache.WithCacheContext(cmd.Context(), cacheCtx)
}

// jsonFormat reports whether --format json was requested.
func jsonFormat(cmd *cobra.Command) bool {
	format, _ := cmd.Flags().GetString("format")
	return format == "json"
}
