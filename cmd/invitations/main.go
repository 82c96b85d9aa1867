// Command invitations manages invitations and membership requests from the
// command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/invitations/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
