package cli

import (
	"github.com/spf13/cobra"
)

var (
	simulateBid    int64
	simulateAsk    int64
	simulateBroken bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "模拟一次盘口状态并触发告警",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().SimulateAlert(cmd.Context(), simulateBid, simulateAsk, simulateBroken)
	},
}

func init() {
	simulateCmd.Flags().Int64Var(&simulateBid, "bid", 0, "模拟的最优买价 tick")
	simulateCmd.Flags().Int64Var(&simulateAsk, "ask", 0, "模拟的最优卖价 tick")
	simulateCmd.Flags().BoolVar(&simulateBroken, "broken", false, "模拟熔断已触发")
}
