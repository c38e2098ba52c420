package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reel/internal/asset"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tracked assets and their lifecycle state",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.buildRuntime()
			if err != nil {
				return err
			}

			records, err := rt.store.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			counts := map[asset.Status]int{}
			for _, record := range records {
				counts[record.Status]++
			}
			for _, line := range renderSectionHeader("Assets", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, status := range asset.AllStatuses() {
				if counts[status] == 0 {
					continue
				}
				fmt.Fprintln(out, renderStatusLine(string(status), kindForStatus(status),
					strconv.Itoa(counts[status]), colorize))
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "  no tracked assets")
				return nil
			}

			fmt.Fprintln(out, renderAssetTable(records, colorize))
			return nil
		},
	}
}

func kindForStatus(status asset.Status) statusKind {
	switch status {
	case asset.StatusReady:
		return statusOK
	case asset.StatusError:
		return statusError
	case asset.StatusUploading, asset.StatusProcessing:
		return statusWarn
	default:
		return statusInfo
	}
}

func formatSize(size int64) string {
	if size <= 0 {
		return "-"
	}
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatTimestamp(millis int64) string {
	if millis <= 0 {
		return "-"
	}
	return time.UnixMilli(millis).Local().Format("2006-01-02 15:04")
}
