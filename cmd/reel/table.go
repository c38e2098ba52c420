package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"reel/internal/asset"
	syncdriver "reel/internal/sync"
)

// renderAssetTable lists tracked assets, tinting each row by lifecycle state
// when color output is enabled.
func renderAssetTable(records []*asset.Asset, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Source", "Status", "Provider", "Size", "Updated"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
	})
	if colorize {
		tw.SetRowPainter(func(row table.Row) text.Colors {
			status, _ := row[1].(string)
			return statusRowColors(asset.Status(status))
		})
	}

	for _, record := range records {
		tw.AppendRow(table.Row{
			record.OriginalFilePath,
			string(record.Status),
			record.Provider,
			formatSize(record.Size),
			formatTimestamp(record.UpdatedAt),
		})
	}
	return tw.Render()
}

func statusRowColors(status asset.Status) text.Colors {
	switch status {
	case asset.StatusReady:
		return text.Colors{text.FgGreen}
	case asset.StatusError:
		return text.Colors{text.FgRed}
	case asset.StatusUploading, asset.StatusProcessing:
		return text.Colors{text.FgYellow}
	default:
		return nil
	}
}

// renderReportTable summarizes one discovery pass.
func renderReportTable(report *syncdriver.Report) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Total Files", "New", "Resumed", "Failed"})

	configs := make([]table.ColumnConfig, 0, 4)
	for i := 1; i <= 4; i++ {
		configs = append(configs, table.ColumnConfig{
			Number:      i,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	tw.AppendRow(table.Row{
		report.TotalFiles,
		report.Unprocessed,
		report.Resumed,
		report.Failed,
	})
	return tw.Render()
}
