package main

import (
	"github.com/spf13/cobra"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the gold table and benchmark from the silver dataset",
	Long: `Rebuild reads the single-price silver dataset written by an earlier run,
pivots it into the gold table and recomputes the benchmark. Source documents
are not read, so an edited silver file or dimension table takes effect.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, err := setup(ctx)
		if err != nil {
			return err
		}
		svc, cleanup, err := buildService(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		run, err := svc.Rebuild(ctx)
		if run != nil {
			printRun(cmd, run)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}
