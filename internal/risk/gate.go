package risk

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"

	"tempovault-console/internal/token"
)

// Status classifies market health as seen by the risk gate.
type Status int

const (
	// StatusUnknown means a safety-relevant read did not resolve. Unknown
	// blocks any healthy classification; it is never collapsed to "fine".
	StatusUnknown Status = iota
	// StatusHealthy means peg deviation is inside the configured threshold
	// and the circuit breaker is intact.
	StatusHealthy
	// StatusDegraded means deviation breached the threshold but trading has
	// not been halted.
	StatusDegraded
	// StatusTriggered means the circuit breaker has fired. Overrides any
	// computed deviation.
	StatusTriggered
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "HEALTHY"
	case StatusDegraded:
		return "DEGRADED"
	case StatusTriggered:
		return "TRIGGERED"
	default:
		return "UNKNOWN"
	}
}

// Snapshot is one recomputed risk reading. No history is retained here.
type Snapshot struct {
	Status        Status
	CircuitBroken bool
	BestBidTick   int64
	BestAskTick   int64
	BidDepth      *big.Int
	AskDepth      *big.Int
	At            time.Time
}

// PegDeviation returns the snapshot's absolute deviation in ticks.
func (s Snapshot) PegDeviation() int64 {
	return PegDeviationTicks(s.BestBidTick, s.BestAskTick)
}

// TotalDepth sums bid and ask depth at the best ticks.
func (s Snapshot) TotalDepth() *big.Int {
	total := new(big.Int)
	if s.BidDepth != nil {
		total.Add(total, s.BidDepth)
	}
	if s.AskDepth != nil {
		total.Add(total, s.AskDepth)
	}
	return total
}

// BookReader reads the exchange order book and circuit-breaker state.
type BookReader interface {
	BestTicks(ctx context.Context) (bestBid, bestAsk int64, err error)
	DepthAt(ctx context.Context, tick int64, isBid bool) (*big.Int, error)
	CircuitBroken(ctx context.Context) (bool, error)
}

// Gate converts raw book and breaker reads into a market health
// classification.
type Gate struct {
	reader         BookReader
	thresholdTicks int64
	quote          token.Token
	logger         zerolog.Logger
}

// NewGate constructs a risk gate. Depth figures are displayed in the quote
// token's precision.
func NewGate(reader BookReader, thresholdTicks int64, quote token.Token, logger zerolog.Logger) *Gate {
	return &Gate{
		reader:         reader,
		thresholdTicks: thresholdTicks,
		quote:          quote,
		logger:         logger.With().Str("component", "risk_gate").Logger(),
	}
}

// Classify derives the status from resolved reads. The breaker flag always
// wins over the deviation-derived signal.
func Classify(circuitBroken bool, bestBidTick, bestAskTick, thresholdTicks int64) Status {
	if circuitBroken {
		return StatusTriggered
	}
	if PegDeviationTicks(bestBidTick, bestAskTick) < thresholdTicks {
		return StatusHealthy
	}
	return StatusDegraded
}

// Read recomputes a snapshot. An unresolved circuit-breaker read fails the
// whole snapshot as Unknown rather than assuming the breaker is intact; an
// unresolved book read with an intact breaker is Unknown as well. When the
// breaker has fired the snapshot is Triggered even if the book cannot be
// read, with depth fields left unresolved.
func (g *Gate) Read(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Status: StatusUnknown, At: time.Now().UTC()}

	broken, err := g.reader.CircuitBroken(ctx)
	if err != nil {
		return snap, fmt.Errorf("read circuit breaker: %w", err)
	}
	snap.CircuitBroken = broken

	bestBid, bestAsk, err := g.reader.BestTicks(ctx)
	if err != nil {
		if broken {
			snap.Status = StatusTriggered
			return snap, nil
		}
		return snap, fmt.Errorf("read order book: %w", err)
	}
	snap.BestBidTick = bestBid
	snap.BestAskTick = bestAsk

	if bidDepth, err := g.reader.DepthAt(ctx, bestBid, true); err == nil {
		snap.BidDepth = bidDepth
	} else {
		g.logger.Warn().Err(err).Int64("tick", bestBid).Msg("bid depth unresolved")
	}
	if askDepth, err := g.reader.DepthAt(ctx, bestAsk, false); err == nil {
		snap.AskDepth = askDepth
	} else {
		g.logger.Warn().Err(err).Int64("tick", bestAsk).Msg("ask depth unresolved")
	}

	snap.Status = Classify(broken, bestBid, bestAsk, g.thresholdTicks)
	return snap, nil
}

// FormatDepth renders a raw depth figure in the quote token's precision.
func (g *Gate) FormatDepth(depth *big.Int) string {
	if depth == nil {
		return "N/A"
	}
	return token.ToDisplay(depth, g.quote.Decimals)
}
