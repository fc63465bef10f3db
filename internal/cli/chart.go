package cli

import (
	"time"

	"github.com/spf13/cobra"

	"tempovault-console/internal/app"
)

var (
	chartSamples  int
	chartInterval time.Duration
	chartPNGPath  string
	chartCSVPath  string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Sample the risk gate and export as CSV and/or PNG chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ChartOptions{
			Samples:  chartSamples,
			Interval: chartInterval,
			PNGPath:  chartPNGPath,
			CSVPath:  chartCSVPath,
		}

		return getApp().Chart(cmd.Context(), opts)
	},
}

func init() {
	chartCmd.Flags().IntVar(&chartSamples, "samples", 60, "Number of samples to collect")
	chartCmd.Flags().DurationVar(&chartInterval, "interval", 0, "Sampling interval (defaults to polling.risk_interval)")
	chartCmd.Flags().StringVar(&chartPNGPath, "png", "", "Path to write PNG chart")
	chartCmd.Flags().StringVar(&chartCSVPath, "csv", "", "Path to write CSV data")
}
