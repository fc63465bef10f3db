package risk

import (
	"github.com/shopspring/decimal"
)

// TickScale is the number of ticks in a 100% price move: one tick is a
// 0.001% displacement from parity.
const TickScale = 100000

// Price converts a tick to an absolute price around the 1.0 peg.
func Price(tick int64) decimal.Decimal {
	return decimal.NewFromInt(1).Add(decimal.NewFromInt(tick).Div(decimal.NewFromInt(TickScale)))
}

// DeviationBps is the absolute peg displacement in basis points.
func DeviationBps(tick int64) decimal.Decimal {
	return decimal.NewFromInt(absTick(tick)).Div(decimal.NewFromInt(100))
}

// DeviationPercent renders a tick's absolute peg displacement as a
// percentage string with 4 decimal places.
func DeviationPercent(tick int64) string {
	return DeviationBps(tick).Div(decimal.NewFromInt(100)).StringFixed(4) + "%"
}

// PegDeviationTicks is the absolute price displacement derived from the
// best bid/ask ticks.
func PegDeviationTicks(bestBidTick, bestAskTick int64) int64 {
	bid := absTick(bestBidTick)
	ask := absTick(bestAskTick)
	if bid > ask {
		return bid
	}
	return ask
}

func absTick(tick int64) int64 {
	if tick < 0 {
		return -tick
	}
	return tick
}
