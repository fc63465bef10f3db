package ledger

import (
	"context"
	"math/big"
	"time"

	"tempovault-console/internal/token"
)

// Tier identifies one of the three custody states a unit of capital can
// occupy.
type Tier int

const (
	// TierReserve is capital held by the treasury vault and not yet
	// allocated to a strategy.
	TierReserve Tier = iota
	// TierOperating is capital transferred to the strategy contract but not
	// yet placed on the market.
	TierOperating
	// TierEscrow is capital resting as orders inside the DEX.
	TierEscrow
)

func (t Tier) String() string {
	switch t {
	case TierReserve:
		return "reserve"
	case TierOperating:
		return "operating"
	case TierEscrow:
		return "escrow"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time read of raw amounts for one token across the
// custody tiers. Snapshots are superseded wholesale by the next poll and
// never merged.
type Snapshot struct {
	Token     token.Token
	Reserve   *big.Int
	Operating *big.Int
	Escrow    *big.Int
	At        time.Time
}

// Total returns the capital tracked across all tiers.
func (s Snapshot) Total() *big.Int {
	total := new(big.Int)
	for _, v := range []*big.Int{s.Reserve, s.Operating, s.Escrow} {
		if v != nil {
			total.Add(total, v)
		}
	}
	return total
}

// BalanceReader is the pull interface over the external ledger. A
// push/subscription transport can be substituted without touching
// consumers.
type BalanceReader interface {
	// VaultBalance returns the vault's stated total for a token.
	VaultBalance(ctx context.Context, tokenAddr string) (*big.Int, error)
	// DeployedCapital returns the amount the vault attributes to strategies.
	DeployedCapital(ctx context.Context, tokenAddr string) (*big.Int, error)
	// StrategyBalance returns the strategy contract's idle holdings.
	StrategyBalance(ctx context.Context, tokenAddr string) (*big.Int, error)
	// DexBalance returns the strategy's escrowed holdings inside the DEX.
	DexBalance(ctx context.Context, tokenAddr string) (*big.Int, error)
}
