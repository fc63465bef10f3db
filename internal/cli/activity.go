package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tempovault-console/internal/app"
)

var (
	activityLimit int
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Display the recent vault event timeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		if activityLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ActivityOptions{
			Limit: activityLimit,
		}

		return getApp().Activity(cmd.Context(), opts)
	},
}

func init() {
	activityCmd.Flags().IntVar(&activityLimit, "limit", 20, "Number of records to display")
}
