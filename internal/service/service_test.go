package service

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tempovault-console/internal/alerting"
	"tempovault-console/internal/config"
	"tempovault-console/internal/risk"
	"tempovault-console/internal/token"
)

type recordingNotifier struct {
	mu    sync.Mutex
	notes []alerting.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, note alerting.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note)
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

type staticBook struct {
	bid, ask int64
	broken   bool
}

func (s *staticBook) BestTicks(ctx context.Context) (int64, int64, error) {
	return s.bid, s.ask, nil
}

func (s *staticBook) DepthAt(ctx context.Context, tick int64, isBid bool) (*big.Int, error) {
	return nil, nil
}

func (s *staticBook) CircuitBroken(ctx context.Context) (bool, error) {
	return s.broken, nil
}

func newAlertService(t *testing.T, cooldown time.Duration) (*Service, *recordingNotifier) {
	t.Helper()
	cfg := &config.Config{
		Polling: config.PollingConfig{
			VaultInterval:    time.Second,
			RiskInterval:     time.Second,
			ActivityInterval: time.Second,
			StatsInterval:    time.Second,
		},
		Alerting: config.AlertingConfig{
			Enabled:  true,
			Cooldown: cooldown,
			Channels: []string{"telegram"},
		},
	}
	notifier := &recordingNotifier{}
	gate := risk.NewGate(&staticBook{}, 2000, token.Token{Symbol: "pathUSD", Decimals: 6}, zerolog.Nop())
	return New(cfg, nil, gate, nil, nil, notifier, zerolog.Nop()), notifier
}

func TestMaybeAlertFiresOnEscalation(t *testing.T) {
	svc, notifier := newAlertService(t, 0)

	svc.maybeAlert(context.Background(), risk.Snapshot{Status: risk.StatusTriggered, CircuitBroken: true})
	if notifier.count() != 1 {
		t.Fatalf("notifications = %d, want 1", notifier.count())
	}
	if notifier.notes[0].Reason != "circuit breaker tripped" {
		t.Fatalf("reason = %q", notifier.notes[0].Reason)
	}
}

func TestMaybeAlertSuppressesRepeats(t *testing.T) {
	svc, notifier := newAlertService(t, time.Hour)

	svc.maybeAlert(context.Background(), risk.Snapshot{Status: risk.StatusTriggered, CircuitBroken: true})
	svc.maybeAlert(context.Background(), risk.Snapshot{Status: risk.StatusTriggered, CircuitBroken: true})
	if notifier.count() != 1 {
		t.Fatalf("repeated status should not re-alert, got %d", notifier.count())
	}
}

func TestMaybeAlertCooldownBlocksFlapping(t *testing.T) {
	svc, notifier := newAlertService(t, time.Hour)

	svc.maybeAlert(context.Background(), risk.Snapshot{Status: risk.StatusDegraded, BestAskTick: 3000})
	svc.maybeAlert(context.Background(), risk.Snapshot{Status: risk.StatusHealthy})
	svc.maybeAlert(context.Background(), risk.Snapshot{Status: risk.StatusDegraded, BestAskTick: 3000})
	if notifier.count() != 1 {
		t.Fatalf("cooldown should absorb flapping, got %d", notifier.count())
	}
}

func TestMaybeAlertIgnoresHealthy(t *testing.T) {
	svc, notifier := newAlertService(t, 0)

	svc.maybeAlert(context.Background(), risk.Snapshot{Status: risk.StatusHealthy})
	if notifier.count() != 0 {
		t.Fatalf("healthy status should not alert, got %d", notifier.count())
	}
}

func TestMaybeAlertDisabled(t *testing.T) {
	svc, notifier := newAlertService(t, 0)
	svc.alertsOn = false

	svc.maybeAlert(context.Background(), risk.Snapshot{Status: risk.StatusTriggered, CircuitBroken: true})
	if notifier.count() != 0 {
		t.Fatalf("disabled alerting should be silent, got %d", notifier.count())
	}
}
