package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Scan the videos directory once and process everything found",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.buildRuntime()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := rt.prepareProvider(runCtx); err != nil {
				return err
			}
			report, err := rt.driver.Scan(runCtx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderReportTable(report))
			if report.Failed > 0 {
				return fmt.Errorf("%d asset(s) failed; see the log for details", report.Failed)
			}
			return nil
		},
	}
}
