package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRunTicksUntilCancelled(t *testing.T) {
	var ticks atomic.Int32

	sched := New(Options{Name: "test", Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- sched.Run(ctx, func(ctx context.Context, at time.Time) error {
			if ticks.Add(1) >= 3 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	if ticks.Load() < 3 {
		t.Fatalf("ticks = %d, want at least 3", ticks.Load())
	}
}

func TestRunTickOnStart(t *testing.T) {
	var ticks atomic.Int32

	sched := New(Options{Interval: time.Hour, TickOnStart: true}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- sched.Run(ctx, func(ctx context.Context, at time.Time) error {
			ticks.Add(1)
			cancel()
			return nil
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	if ticks.Load() != 1 {
		t.Fatalf("ticks = %d, want 1 immediate tick", ticks.Load())
	}
}

func TestRunKeepsGoingAfterTickError(t *testing.T) {
	var ticks atomic.Int32

	sched := New(Options{Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- sched.Run(ctx, func(ctx context.Context, at time.Time) error {
			if ticks.Add(1) >= 2 {
				cancel()
			}
			return errors.New("tick failed")
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler should survive tick errors")
	}

	if ticks.Load() < 2 {
		t.Fatalf("ticks = %d, want at least 2", ticks.Load())
	}
}

func TestNewPanicsOnBadInterval(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("非法间隔应 panic")
		}
	}()
	New(Options{Interval: 0}, zerolog.Nop())
}
