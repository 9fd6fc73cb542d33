// Command gonuget-acquire is a standalone CLI over the package
// acquisition core: list versions, resolve metadata and install packages
// from a set of NuGet-compatible feeds.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/willibrandon/gonuget-acquire/cmd/gonuget-acquire/cli"
	"github.com/willibrandon/gonuget-acquire/cmd/gonuget-acquire/commands"
)

func main() {
	cli.AddCommand(commands.NewVersionsCommand())
	cli.AddCommand(commands.NewDetailsCommand())
	cli.AddCommand(commands.NewInstallCommand())
	cli.AddCommand(commands.NewSourcesCommand())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		os.Exit(130)
	}()

	if err := cli.Execute(); err != nil {
		if err.Error() != "" {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
