package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	service "github.com/okian/ratecards/internal/app"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once over the input directory",
	Args:  cobra.NoArgs,
	RunE:  runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return runOnce(ctx, cmd)
}

func runOnce(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	svc, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	run, err := svc.Run(ctx)
	if run != nil {
		printRun(cmd, run)
	}
	return err
}

// printRun writes a one-line run summary and every skipped or failed document.
func printRun(cmd *cobra.Command, run *service.RunResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s %s: %d documents, %d single rows, %d range rows",
		run.ID, run.Status, run.Documents, len(run.Single), len(run.Ranges))
	if run.Gold != nil {
		fmt.Fprintf(out, ", %d gold rows", len(run.Gold.Rows))
	}
	fmt.Fprintln(out)
	for _, f := range run.Skipped {
		fmt.Fprintf(out, "  skipped %s: %s\n", f.DocumentID, f.Error)
	}
	for _, f := range run.Failures {
		fmt.Fprintf(out, "  failed %s (%s): %s\n", f.DocumentID, f.Kind, f.Error)
	}
}
