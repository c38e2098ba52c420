package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reel/internal/api"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var providerFlag string

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Register a remote video URL and process it now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.buildRuntime()
			if err != nil {
				return err
			}

			providerName := providerFlag
			if providerName == "" {
				providerName = rt.cfg.Provider.Default
			}
			if _, err := rt.registry.Provider(providerName); err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc := api.NewAssetService(rt.store)
			record, created, err := svc.LookupOrCreate(runCtx, args[0], providerName)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !created {
				fmt.Fprintf(out, "Already tracked (%s): %s\n", record.Status, record.OriginalFilePath)
			}
			if record.IsTerminal() {
				return nil
			}

			if err := rt.engine.Process(runCtx, record); err != nil {
				return err
			}
			final, err := rt.store.Get(runCtx, record.OriginalFilePath)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Processed %s via %s: %s\n", final.OriginalFilePath, providerName, final.Status)
			for _, source := range final.Sources {
				fmt.Fprintf(out, "  %s\n", source.Src)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerFlag, "provider", "p", "", "Delivery provider (defaults to the configured one)")
	return cmd
}
