package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reel/internal/daemon"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the videos directory and process files as they appear",
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

			d, err := daemon.New(rt.cfg, rt.store, rt.driver, rt.bus, rt.registry, rt.logger)
			if err != nil {
				return err
			}
			if err := d.Start(runCtx); err != nil {
				return err
			}
			defer d.Stop()

			<-runCtx.Done()
			return nil
		},
	}
}
