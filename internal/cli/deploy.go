package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"tempovault-console/internal/app"
)

var (
	deployBase  string
	deployQuote string
	deployTick  int64
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Fund the strategy and deploy liquidity around a center tick",
	RunE: func(cmd *cobra.Command, args []string) error {
		if deployBase == "" && deployQuote == "" {
			return errors.New("at least one of --base or --quote must be provided")
		}

		opts := app.DeployOptions{
			BaseAmount:  deployBase,
			QuoteAmount: deployQuote,
			CenterTick:  deployTick,
		}

		return getApp().Deploy(cmd.Context(), opts)
	},
}

func init() {
	deployCmd.Flags().StringVar(&deployBase, "base", "", "Base token amount in display units")
	deployCmd.Flags().StringVar(&deployQuote, "quote", "", "Quote token amount in display units")
	deployCmd.Flags().Int64Var(&deployTick, "tick", 0, "Center tick for the liquidity range")
}
