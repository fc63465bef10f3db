package ledger

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"

	"tempovault-console/internal/token"
)

// Availability combines the vault's total and deployed figures for one
// token. Available is always Total - Deployed; a negative result with both
// operands resolved indicates upstream bookkeeping is broken and is
// reported, never clamped.
type Availability struct {
	Token     token.Token
	Total     *big.Int
	Deployed  *big.Int
	Available *big.Int
	At        time.Time
}

// IntegrityError flags Available < 0 with both operands resolved.
type IntegrityError struct {
	Token    token.Token
	Total    *big.Int
	Deployed *big.Int
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("ledger integrity violation: %s deployed %s exceeds total %s",
		e.Token.Symbol, e.Deployed.String(), e.Total.String())
}

// Ledger reads and combines tier balances for registered tokens.
type Ledger struct {
	reader   BalanceReader
	registry *token.Registry
	logger   zerolog.Logger
}

// New constructs a capital ledger over a balance reader.
func New(reader BalanceReader, registry *token.Registry, logger zerolog.Logger) *Ledger {
	return &Ledger{
		reader:   reader,
		registry: registry,
		logger:   logger.With().Str("component", "ledger").Logger(),
	}
}

// ComputeAvailability reads the vault's total and deployed figures for one
// token. Both reads must resolve; a partial result is surfaced as an error,
// not a defaulted zero.
func (l *Ledger) ComputeAvailability(ctx context.Context, tokenAddr string) (Availability, error) {
	tok := l.registry.Lookup(tokenAddr)

	total, err := l.reader.VaultBalance(ctx, tokenAddr)
	if err != nil {
		return Availability{}, fmt.Errorf("read vault balance for %s: %w", tok.Symbol, err)
	}
	deployed, err := l.reader.DeployedCapital(ctx, tokenAddr)
	if err != nil {
		return Availability{}, fmt.Errorf("read deployed capital for %s: %w", tok.Symbol, err)
	}

	available := new(big.Int).Sub(total, deployed)
	avail := Availability{
		Token:     tok,
		Total:     total,
		Deployed:  deployed,
		Available: available,
		At:        time.Now().UTC(),
	}

	if available.Sign() < 0 {
		return avail, &IntegrityError{Token: tok, Total: total, Deployed: deployed}
	}
	return avail, nil
}

// SnapshotToken reads one token across all three custody tiers.
func (l *Ledger) SnapshotToken(ctx context.Context, tokenAddr string) (Snapshot, error) {
	tok := l.registry.Lookup(tokenAddr)

	total, err := l.reader.VaultBalance(ctx, tokenAddr)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read vault balance for %s: %w", tok.Symbol, err)
	}
	deployed, err := l.reader.DeployedCapital(ctx, tokenAddr)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read deployed capital for %s: %w", tok.Symbol, err)
	}
	operating, err := l.reader.StrategyBalance(ctx, tokenAddr)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read strategy balance for %s: %w", tok.Symbol, err)
	}
	escrow, err := l.reader.DexBalance(ctx, tokenAddr)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read dex balance for %s: %w", tok.Symbol, err)
	}

	return Snapshot{
		Token:     tok,
		Reserve:   new(big.Int).Sub(total, deployed),
		Operating: operating,
		Escrow:    escrow,
		At:        time.Now().UTC(),
	}, nil
}

// SnapshotAll reads every registered token. Tokens whose reads fail are
// skipped with a warning so one bad token does not blank the whole view;
// the caller receives only fully resolved snapshots.
func (l *Ledger) SnapshotAll(ctx context.Context) []Snapshot {
	tokens := l.registry.All()
	snapshots := make([]Snapshot, 0, len(tokens))
	for _, tok := range tokens {
		snap, err := l.SnapshotToken(ctx, tok.Address)
		if err != nil {
			l.logger.Warn().Err(err).Str("token", tok.Symbol).Msg("skipping unresolved token snapshot")
			continue
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots
}
