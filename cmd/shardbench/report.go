package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pg-sharding/shardbench/pkg/config"
	"github.com/pg-sharding/shardbench/pkg/record"
	"github.com/pg-sharding/shardbench/pkg/report"
)

var (
	reportFormat string
	reportWidth  int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "render write and read charts from the record file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.BenchConfig()

		rec, err := record.Reload(cfg.ResultFile)
		if err != nil {
			return errors.Wrap(err, "failed to reload performance record")
		}

		r, err := report.NewRenderer(reportFormat, reportWidth)
		if err != nil {
			return err
		}
		return report.RenderAll(cmd.OutOrStdout(), r, report.BuildCharts(rec))
	},
}

func init() {
	reportCmd.Flags().StringVarP(&resultFile, "result-file", "o", "", "performance record file")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "text", "output format: text or csv")
	reportCmd.Flags().IntVarP(&reportWidth, "width", "w", report.DefaultWidth, "width of the longest bar")
}
