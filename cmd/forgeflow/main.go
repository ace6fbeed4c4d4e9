package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/forgeflow/forgeflow/internal/cmd"
	"github.com/forgeflow/forgeflow/internal/exitcode"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		if ctx.Err() == context.Canceled {
			fmt.Fprintln(os.Stderr, "\nOperation cancelled by user")
			exitcode.Exit(exitcode.Interrupted)
		}

		code := exitcode.DetermineExitCode(err)
		if code == exitcode.AwaitingInput {
			// A pause is not an error; the summary already explains it.
			exitcode.Exit(code)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitcode.Exit(code)
	}
	exitcode.Exit(exitcode.Success)
}
