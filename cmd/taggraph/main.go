// Command taggraph draws the parent/child hierarchy of tags served by a
// GraphQL endpoint.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taggraph/internal/cli"
	"github.com/matzehuels/taggraph/pkg/errors"
)

// Exit statuses besides 0 and 1.
const (
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRoot().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	code := exitCode(err)
	if code != exitInterrupted {
		fmt.Fprintln(os.Stderr, "taggraph:", err)
	}
	os.Exit(code)
}

func newRoot() *cobra.Command {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true

	verbose := root.PersistentFlags().BoolP("verbose", "v", false, "log debug output and trace GraphQL requests")
	root.PersistentPreRunE = func(*cobra.Command, []string) error {
		if *verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		return nil
	}
	return root
}

func exitCode(err error) int {
	switch {
	case stderrors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.GetCode(err).Category() == errors.CategoryInput:
		return exitUsage
	default:
		return 1
	}
}
