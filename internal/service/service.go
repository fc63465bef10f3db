package service

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"tempovault-console/internal/activity"
	"tempovault-console/internal/alerting"
	"tempovault-console/internal/config"
	"tempovault-console/internal/ledger"
	"tempovault-console/internal/risk"
	"tempovault-console/internal/scheduler"
	"tempovault-console/internal/stats"
)

// Service runs the watch loops: capital snapshots, risk gate reads,
// activity refreshes, and platform stats, each on its own interval.
type Service struct {
	ledger   *ledger.Ledger
	gate     *risk.Gate
	activity *activity.Reconstructor
	stats    *stats.Client
	notifier alerting.Notifier
	logger   zerolog.Logger

	intervals config.PollingConfig
	channels  []string
	alertsOn  bool
	cooldown  time.Duration

	mu         sync.Mutex
	lastStatus risk.Status
	lastAlert  time.Time
}

// New constructs the watch service.
func New(cfg *config.Config, led *ledger.Ledger, gate *risk.Gate, rec *activity.Reconstructor, statsClient *stats.Client, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		ledger:     led,
		gate:       gate,
		activity:   rec,
		stats:      statsClient,
		notifier:   notifier,
		logger:     logger.With().Str("component", "service").Logger(),
		intervals:  cfg.Polling,
		channels:   cfg.Alerting.Channels,
		alertsOn:   cfg.Alerting.Enabled,
		cooldown:   cfg.Alerting.Cooldown,
		lastStatus: risk.StatusUnknown,
	}
}

// Run starts every polling loop and blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	loops := []struct {
		name     string
		interval time.Duration
		tick     scheduler.TickFunc
	}{
		{"vault", s.intervals.VaultInterval, s.pollVault},
		{"risk", s.intervals.RiskInterval, s.pollRisk},
		{"activity", s.intervals.ActivityInterval, s.pollActivity},
		{"stats", s.intervals.StatsInterval, s.pollStats},
	}

	for _, loop := range loops {
		if loop.interval <= 0 {
			return fmt.Errorf("loop %s has non-positive interval", loop.name)
		}
		sched := scheduler.New(scheduler.Options{
			Name:        loop.name,
			Interval:    loop.interval,
			TickOnStart: true,
		}, s.logger)
		tick := loop.tick
		g.Go(func() error {
			return sched.Run(ctx, tick)
		})
	}

	s.logger.Info().
		Dur("vault_interval", s.intervals.VaultInterval).
		Dur("risk_interval", s.intervals.RiskInterval).
		Dur("activity_interval", s.intervals.ActivityInterval).
		Dur("stats_interval", s.intervals.StatsInterval).
		Msg("watch loops started")

	return g.Wait()
}

func (s *Service) pollVault(ctx context.Context, at time.Time) error {
	snapshots := s.ledger.SnapshotAll(ctx)
	for _, snap := range snapshots {
		avail, err := s.ledger.ComputeAvailability(ctx, snap.Token.Address)
		event := s.logger.Info().
			Str("token", snap.Token.Symbol).
			Str("reserve", bigString(snap.Reserve)).
			Str("operating", bigString(snap.Operating)).
			Str("escrow", bigString(snap.Escrow)).
			Str("total", snap.Total().String())
		if err == nil {
			event = event.Str("available", avail.Available.String())
		}
		event.Msg("capital snapshot")
	}
	return nil
}

func (s *Service) pollRisk(ctx context.Context, at time.Time) error {
	snap, err := s.gate.Read(ctx)
	if err != nil {
		return fmt.Errorf("read risk gate: %w", err)
	}

	s.logger.Info().
		Str("status", snap.Status.String()).
		Bool("circuit_broken", snap.CircuitBroken).
		Int64("best_bid_tick", snap.BestBidTick).
		Int64("best_ask_tick", snap.BestAskTick).
		Str("peg_deviation", risk.DeviationPercent(snap.PegDeviation())).
		Str("bid_depth", s.gate.FormatDepth(snap.BidDepth)).
		Str("ask_depth", s.gate.FormatDepth(snap.AskDepth)).
		Msg("risk gate snapshot")

	s.maybeAlert(ctx, snap)
	return nil
}

func (s *Service) pollActivity(ctx context.Context, at time.Time) error {
	records, err := s.activity.Refresh(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("activity refresh failed, serving stale timeline")
		return nil
	}
	s.logger.Info().Int("records", len(records)).Msg("activity timeline refreshed")
	return nil
}

func (s *Service) pollStats(ctx context.Context, at time.Time) error {
	if s.stats == nil {
		return nil
	}
	snap, err := s.stats.Refresh(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("stats refresh failed, serving stale snapshot")
		return nil
	}
	s.logger.Info().
		Str("tvl", snap.TVL).
		Str("deployed_capital", snap.DeployedCapital).
		Int("active_orders", snap.ActiveOrders).
		Str("oracle_health", snap.OracleHealth).
		Msg("platform stats refreshed")
	return nil
}

// maybeAlert fires a notification when the gate leaves the healthy state.
// A fixed cooldown suppresses repeats while the condition persists.
func (s *Service) maybeAlert(ctx context.Context, snap risk.Snapshot) {
	if !s.alertsOn || s.notifier == nil {
		return
	}

	s.mu.Lock()
	prev := s.lastStatus
	s.lastStatus = snap.Status
	escalated := snap.Status != prev &&
		(snap.Status == risk.StatusTriggered || snap.Status == risk.StatusDegraded)
	inCooldown := s.cooldown > 0 && time.Since(s.lastAlert) < s.cooldown
	if escalated && !inCooldown {
		s.lastAlert = time.Now().UTC()
	}
	s.mu.Unlock()

	if !escalated || inCooldown {
		return
	}

	note := alerting.Notification{
		At:              snap.At,
		Status:          snap.Status.String(),
		Reason:          alertReason(snap),
		PegDeviationPct: risk.DeviationPercent(snap.PegDeviation()),
		BestBidTick:     snap.BestBidTick,
		BestAskTick:     snap.BestAskTick,
		BidDepth:        s.gate.FormatDepth(snap.BidDepth),
		AskDepth:        s.gate.FormatDepth(snap.AskDepth),
		Channels:        s.channels,
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Str("status", snap.Status.String()).Msg("failed to dispatch alert")
	}
}

func alertReason(snap risk.Snapshot) string {
	if snap.CircuitBroken {
		return "circuit breaker tripped"
	}
	return "peg deviation above threshold"
}

func bigString(v *big.Int) string {
	if v == nil {
		return "N/A"
	}
	return v.String()
}
