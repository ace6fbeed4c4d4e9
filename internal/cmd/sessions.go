package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forgeflow/forgeflow/internal/archive"
)

var sessionsFlags struct {
	archiveDB string
	limit     int
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List archived sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := sessionsFlags.archiveDB
		if path == "" {
			path = filepath.Join("forgeflow-out", "archive.db")
		}

		store, err := archive.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		summaries, err := store.List(cmd.Context(), sessionsFlags.limit)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no archived sessions")
			return nil
		}

		for _, s := range summaries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-14s  quality %3d  retries %d  %q\n",
				s.SessionID, string(s.State), s.Overall, s.RetryCount, s.Prompt)
		}
		return nil
	},
}

func init() {
	sessionsCmd.Flags().StringVar(&sessionsFlags.archiveDB, "archive", "", "sqlite archive database")
	sessionsCmd.Flags().IntVar(&sessionsFlags.limit, "limit", 20, "maximum sessions to list")
	rootCmd.AddCommand(sessionsCmd)
}
