package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dimCmd = &cobra.Command{
	Use:   "dim",
	Short: "Assign rate card ids to new documents in the dimension table",
	Args:  cobra.NoArgs,
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

		dim, err := svc.SyncDimension(ctx)
		if err != nil {
			return err
		}
		for _, e := range dim.Entries() {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", e.ID, e.RateCardFile)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dimCmd)
}
