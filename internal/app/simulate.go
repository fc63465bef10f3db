package app

import (
	"context"
	"errors"
	"math/big"
	"time"

	"tempovault-console/internal/alerting"
	"tempovault-console/internal/risk"
)

// SimulateAlert 通过给定的盘口状态模拟一次风控告警流程。
func (a *App) SimulateAlert(ctx context.Context, bestBid, bestAsk int64, circuitBroken bool) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting 未启用")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("未配置任何告警通道")
	}

	registry := a.newRegistry()
	quote := registry.Lookup(a.Config.Pair.QuoteToken)

	reader := &staticBookReader{
		bestBid:       bestBid,
		bestAsk:       bestAsk,
		circuitBroken: circuitBroken,
		depth:         big.NewInt(0),
	}
	gate := risk.NewGate(reader, a.Config.Risk.DeviationThresholdTicks, quote, a.Logger)

	snap, err := gate.Read(ctx)
	if err != nil {
		return err
	}

	note := alerting.Notification{
		At:              time.Now().UTC(),
		Status:          snap.Status.String(),
		Reason:          "simulated",
		PegDeviationPct: risk.DeviationPercent(snap.PegDeviation()),
		BestBidTick:     snap.BestBidTick,
		BestAskTick:     snap.BestAskTick,
		BidDepth:        gate.FormatDepth(snap.BidDepth),
		AskDepth:        gate.FormatDepth(snap.AskDepth),
		Channels:        a.Config.Alerting.Channels,
		AdditionalMsg:   "本条消息由 simulate-alert 产生",
	}
	return notifier.Notify(ctx, note)
}

type staticBookReader struct {
	bestBid       int64
	bestAsk       int64
	circuitBroken bool
	depth         *big.Int
}

func (s *staticBookReader) BestTicks(ctx context.Context) (int64, int64, error) {
	return s.bestBid, s.bestAsk, nil
}

func (s *staticBookReader) DepthAt(ctx context.Context, tick int64, isBid bool) (*big.Int, error) {
	return s.depth, nil
}

func (s *staticBookReader) CircuitBroken(ctx context.Context) (bool, error) {
	return s.circuitBroken, nil
}

var _ risk.BookReader = (*staticBookReader)(nil)
