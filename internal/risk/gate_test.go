package risk

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/rs/zerolog"

	"tempovault-console/internal/token"
)

type fakeBook struct {
	bestBid   int64
	bestAsk   int64
	broken    bool
	bidDepth  *big.Int
	askDepth  *big.Int
	ticksErr  error
	brokenErr error
	depthErr  error
}

func (f *fakeBook) BestTicks(ctx context.Context) (int64, int64, error) {
	return f.bestBid, f.bestAsk, f.ticksErr
}

func (f *fakeBook) DepthAt(ctx context.Context, tick int64, isBid bool) (*big.Int, error) {
	if f.depthErr != nil {
		return nil, f.depthErr
	}
	if isBid {
		return f.bidDepth, nil
	}
	return f.askDepth, nil
}

func (f *fakeBook) CircuitBroken(ctx context.Context) (bool, error) {
	return f.broken, f.brokenErr
}

var _ BookReader = (*fakeBook)(nil)

func quoteToken() token.Token {
	return token.Token{Symbol: "pathUSD", Decimals: 6}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name      string
		broken    bool
		bid, ask  int64
		threshold int64
		want      Status
	}{
		{"healthy inside threshold", false, -100, 150, 2000, StatusHealthy},
		{"degraded at threshold", false, -2000, 100, 2000, StatusDegraded},
		{"degraded beyond threshold", false, 0, 5000, 2000, StatusDegraded},
		{"breaker overrides healthy deviation", true, 0, 0, 2000, StatusTriggered},
		{"breaker overrides degraded deviation", true, -9000, 9000, 2000, StatusTriggered},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.broken, tc.bid, tc.ask, tc.threshold); got != tc.want {
				t.Fatalf("Classify = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestGateReadHealthy(t *testing.T) {
	book := &fakeBook{
		bestBid:  -100,
		bestAsk:  150,
		bidDepth: big.NewInt(1_200_500_000),
		askDepth: big.NewInt(900_000_000),
	}
	gate := NewGate(book, 2000, quoteToken(), zerolog.Nop())

	snap, err := gate.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if snap.Status != StatusHealthy {
		t.Fatalf("status = %s, want HEALTHY", snap.Status)
	}
	if got := gate.FormatDepth(snap.BidDepth); got != "1200.5" {
		t.Fatalf("bid depth = %q, want 1200.5", got)
	}
}

func TestGateReadBreakerWins(t *testing.T) {
	book := &fakeBook{broken: true, bestBid: 0, bestAsk: 0}
	gate := NewGate(book, 2000, quoteToken(), zerolog.Nop())

	snap, err := gate.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if snap.Status != StatusTriggered {
		t.Fatalf("熔断触发时状态应为 TRIGGERED, 实际 %s", snap.Status)
	}
}

func TestGateReadUnresolvedBreakerNeverFailsOpen(t *testing.T) {
	book := &fakeBook{brokenErr: errors.New("rpc timeout")}
	gate := NewGate(book, 2000, quoteToken(), zerolog.Nop())

	snap, err := gate.Read(context.Background())
	if err == nil {
		t.Fatal("unresolved breaker read should surface an error")
	}
	if snap.Status != StatusUnknown {
		t.Fatalf("status = %s, want UNKNOWN", snap.Status)
	}
}

func TestGateReadBrokenBookStillTriggered(t *testing.T) {
	book := &fakeBook{broken: true, ticksErr: errors.New("rpc timeout")}
	gate := NewGate(book, 2000, quoteToken(), zerolog.Nop())

	snap, err := gate.Read(context.Background())
	if err != nil {
		t.Fatalf("fired breaker should classify despite the book error: %v", err)
	}
	if snap.Status != StatusTriggered {
		t.Fatalf("status = %s, want TRIGGERED", snap.Status)
	}
	if snap.BidDepth != nil || snap.AskDepth != nil {
		t.Fatal("depth fields should stay unresolved")
	}
}

func TestGateReadDepthFailureDegradesToUnresolved(t *testing.T) {
	book := &fakeBook{
		bestBid:  -100,
		bestAsk:  150,
		depthErr: errors.New("rpc timeout"),
	}
	gate := NewGate(book, 2000, quoteToken(), zerolog.Nop())

	snap, err := gate.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if snap.Status != StatusHealthy {
		t.Fatalf("status = %s, want HEALTHY", snap.Status)
	}
	if got := gate.FormatDepth(snap.BidDepth); got != "N/A" {
		t.Fatalf("unresolved depth should render N/A, got %q", got)
	}
}
