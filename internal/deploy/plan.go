package deploy

import (
	"errors"
	"fmt"
	"math/big"
)

// Step is the orchestrator's position in the funding-then-deployment flow.
type Step int

const (
	StepInput Step = iota
	StepFunding
	StepDeploying
	StepSuccess
	StepError
)

func (s Step) String() string {
	switch s {
	case StepInput:
		return "input"
	case StepFunding:
		return "funding"
	case StepDeploying:
		return "deploying"
	case StepSuccess:
		return "success"
	case StepError:
		return "error"
	default:
		return "invalid"
	}
}

// Asset names one leg of the pair.
type Asset int

const (
	AssetBase Asset = iota
	AssetQuote
)

func (a Asset) String() string {
	if a == AssetQuote {
		return "quote"
	}
	return "base"
}

// Request is the strategist's deployment intent. Amounts are raw integers
// at each token's precision.
type Request struct {
	PairID      string
	BaseAmount  *big.Int
	QuoteAmount *big.Int
	CenterTick  int64
}

// ErrEmptyRequest marks a request with no positive amount on either leg.
var ErrEmptyRequest = errors.New("deployment request needs a positive base or quote amount")

// Validate checks the request against the exchange's constraints.
func (r Request) Validate(minTick, maxTick int64) error {
	if !isPositive(r.BaseAmount) && !isPositive(r.QuoteAmount) {
		return ErrEmptyRequest
	}
	if r.CenterTick < minTick || r.CenterTick > maxTick {
		return fmt.Errorf("center tick %d outside valid range [%d, %d]", r.CenterTick, minTick, maxTick)
	}
	return nil
}

// Balances is one fresh read of the tier balances the gap evaluation needs.
// Unresolved reads are carried as nil and treated as zero in the arithmetic
// below, which can only over-state a gap or under-state the reserve. Both
// fail toward not funding, never toward over-drawing.
type Balances struct {
	ReserveBase    *big.Int
	ReserveQuote   *big.Int
	OperatingBase  *big.Int
	OperatingQuote *big.Int
}

// Gap holds the per-asset amounts still missing from the Operating tier.
type Gap struct {
	Base  *big.Int
	Quote *big.Int
}

// EvaluateGap derives missing amounts from a fresh balance read:
// missing = max(0, requested - operating). Pure; same inputs give the same
// gaps.
func EvaluateGap(req Request, bal Balances) Gap {
	return Gap{
		Base:  missing(req.BaseAmount, bal.OperatingBase),
		Quote: missing(req.QuoteAmount, bal.OperatingQuote),
	}
}

func missing(requested, operating *big.Int) *big.Int {
	if !isPositive(requested) {
		return new(big.Int)
	}
	have := operating
	if have == nil {
		have = new(big.Int)
	}
	m := new(big.Int).Sub(requested, have)
	if m.Sign() < 0 {
		m.SetInt64(0)
	}
	return m
}

// InsufficientReserveError names the exact shortfall that blocks a funding
// leg. No transaction is submitted when it is raised.
type InsufficientReserveError struct {
	Asset     Asset
	Missing   *big.Int
	Reserve   *big.Int
	Shortfall *big.Int
}

func (e *InsufficientReserveError) Error() string {
	return fmt.Sprintf("insufficient reserve for %s leg: need %s, have %s, short %s",
		e.Asset, e.Missing.String(), e.Reserve.String(), e.Shortfall.String())
}

// ActionKind is the orchestrator's next move.
type ActionKind int

const (
	// ActionFund transfers one asset's missing amount from Reserve to
	// Operating.
	ActionFund ActionKind = iota
	// ActionDeploy places the requested liquidity; no gap remains.
	ActionDeploy
)

// Action is the decision derived from one fresh balance read.
type Action struct {
	Kind   ActionKind
	Asset  Asset
	Amount *big.Int
}

// NextAction decides the next transition. Exactly one funding leg at a
// time, base before quote; each leg is checked against the Reserve tier
// before anything is submitted. Pure.
func NextAction(req Request, bal Balances) (Action, error) {
	gap := EvaluateGap(req, bal)

	if gap.Base.Sign() > 0 {
		return fundAction(AssetBase, gap.Base, bal.ReserveBase)
	}
	if gap.Quote.Sign() > 0 {
		return fundAction(AssetQuote, gap.Quote, bal.ReserveQuote)
	}
	return Action{Kind: ActionDeploy}, nil
}

func fundAction(asset Asset, missing, reserve *big.Int) (Action, error) {
	have := reserve
	if have == nil {
		have = new(big.Int)
	}
	if have.Cmp(missing) < 0 {
		return Action{}, &InsufficientReserveError{
			Asset:     asset,
			Missing:   missing,
			Reserve:   have,
			Shortfall: new(big.Int).Sub(missing, have),
		}
	}
	return Action{Kind: ActionFund, Asset: asset, Amount: missing}, nil
}

func isPositive(v *big.Int) bool {
	return v != nil && v.Sign() > 0
}
