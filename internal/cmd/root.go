package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "forgeflow",
	Short: "Autonomous build-request control loop",
	Long: `forgeflow turns a natural-language build request into generated software
artifacts through an iterative control loop: it decomposes the request into
a task graph, dispatches tasks to generation backends, scores the resulting
artifacts across quality dimensions, and decides whether to accept, retry,
escalate to a human, or abort.`,
	SilenceUsage: true,
}

// ExecuteContext runs the root command with the given context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
