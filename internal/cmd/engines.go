package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forgeflow/forgeflow/internal/engine"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List registered generation engines and their capabilities",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := engine.NewRegistry()
		engine.RegisterBuiltins(registry)

		for _, name := range registry.List() {
			cfg, err := registry.Get(name)
			if err != nil {
				return err
			}
			types := make([]string, 0, len(cfg.TaskTypes))
			for _, t := range cfg.TaskTypes {
				types = append(types, string(t))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (priority %d, cost %.1f, fast=%t)\n  tasks: %s\n",
				cfg.Name, cfg.Priority, cfg.CostWeight, cfg.Fast, strings.Join(types, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enginesCmd)
}
