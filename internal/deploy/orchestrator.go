package deploy

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ErrBusy is returned when a second Run is attempted while a state machine
// is already in flight. One orchestrator drives at most one deployment at a
// time.
var ErrBusy = errors.New("a deployment is already in progress")

// ErrRejected marks a transaction the signer declined or failed to
// broadcast. Nothing reached the chain; the orchestrator returns to Input
// with no side effect.
var ErrRejected = errors.New("transaction rejected before broadcast")

// TxFailedError marks a transaction that was broadcast but reverted or
// never confirmed inside the wait budget.
type TxFailedError struct {
	TxHash string
	Reason error
}

func (e *TxFailedError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.TxHash, e.Reason)
}

func (e *TxFailedError) Unwrap() error { return e.Reason }

// BalanceSource provides a fresh funding-balance read. The orchestrator
// re-reads before every decision; it never reuses a previously computed
// gap.
type BalanceSource interface {
	FundingBalances(ctx context.Context) (Balances, error)
}

// Submitter signs and broadcasts the two transaction kinds the flow needs,
// and blocks on confirmation.
type Submitter interface {
	// FundStrategy moves one asset's amount from the vault to the strategy.
	FundStrategy(ctx context.Context, asset Asset, amount *big.Int) (txHash string, err error)
	// DeployLiquidity places the requested orders on the exchange.
	DeployLiquidity(ctx context.Context, req Request) (txHash string, err error)
	// Await blocks until the transaction confirms, reverts, or the bounded
	// wait expires.
	Await(ctx context.Context, txHash string) error
}

// Transition is one observable state change, reported as the machine
// advances.
type Transition struct {
	Step   Step
	Asset  Asset
	Amount *big.Int
	TxHash string
	Err    error
}

// Orchestrator drives the funding-then-deployment state machine. The
// sequence of submit, await-confirmation, re-evaluate steps is strictly
// sequential; funding legs are never raced.
type Orchestrator struct {
	balances  BalanceSource
	submitter Submitter
	minTick   int64
	maxTick   int64
	logger    zerolog.Logger
	active    atomic.Bool
}

// NewOrchestrator constructs a deployment orchestrator.
func NewOrchestrator(balances BalanceSource, submitter Submitter, minTick, maxTick int64, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		balances:  balances,
		submitter: submitter,
		minTick:   minTick,
		maxTick:   maxTick,
		logger:    logger.With().Str("component", "deploy").Logger(),
	}
}

// maxFundingLegs bounds the re-evaluate loop. Two legs cover both assets;
// anything beyond that means balances are moving underneath us.
const maxFundingLegs = 4

// Run executes one deployment to completion. observe, if non-nil, receives
// every state transition. The returned error is nil only when the machine
// reached Success.
func (o *Orchestrator) Run(ctx context.Context, req Request, observe func(Transition)) error {
	if !o.active.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer o.active.Store(false)

	if observe == nil {
		observe = func(Transition) {}
	}

	if err := req.Validate(o.minTick, o.maxTick); err != nil {
		observe(Transition{Step: StepError, Err: err})
		return err
	}

	legs := 0
	for {
		observe(Transition{Step: StepInput})

		bal, err := o.balances.FundingBalances(ctx)
		if err != nil {
			observe(Transition{Step: StepError, Err: err})
			return fmt.Errorf("read funding balances: %w", err)
		}

		action, err := NextAction(req, bal)
		if err != nil {
			// Insufficient reserve fails fast; nothing was submitted.
			observe(Transition{Step: StepError, Err: err})
			return err
		}

		switch action.Kind {
		case ActionFund:
			legs++
			if legs > maxFundingLegs {
				err := errors.New("funding did not converge; balances changing between legs")
				observe(Transition{Step: StepError, Err: err})
				return err
			}
			if err := o.runFundingLeg(ctx, action, observe); err != nil {
				return err
			}
			// Confirmed. Loop back to Input and re-derive the gap from fresh
			// balances; the previous missing amount is stale now.

		case ActionDeploy:
			return o.runDeployment(ctx, req, observe)
		}
	}
}

func (o *Orchestrator) runFundingLeg(ctx context.Context, action Action, observe func(Transition)) error {
	o.logger.Info().
		Str("asset", action.Asset.String()).
		Str("amount", action.Amount.String()).
		Msg("funding leg required")

	txHash, err := o.submitter.FundStrategy(ctx, action.Asset, action.Amount)
	if err != nil {
		// Never broadcast; back to Input with no side effect.
		observe(Transition{Step: StepInput, Err: err})
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}

	observe(Transition{Step: StepFunding, Asset: action.Asset, Amount: action.Amount, TxHash: txHash})

	if err := o.submitter.Await(ctx, txHash); err != nil {
		failed := &TxFailedError{TxHash: txHash, Reason: err}
		observe(Transition{Step: StepError, TxHash: txHash, Err: failed})
		return failed
	}

	o.logger.Info().Str("tx", txHash).Str("asset", action.Asset.String()).Msg("funding leg confirmed")
	return nil
}

func (o *Orchestrator) runDeployment(ctx context.Context, req Request, observe func(Transition)) error {
	txHash, err := o.submitter.DeployLiquidity(ctx, req)
	if err != nil {
		observe(Transition{Step: StepInput, Err: err})
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}

	observe(Transition{Step: StepDeploying, TxHash: txHash})

	if err := o.submitter.Await(ctx, txHash); err != nil {
		failed := &TxFailedError{TxHash: txHash, Reason: err}
		observe(Transition{Step: StepError, TxHash: txHash, Err: failed})
		return failed
	}

	o.logger.Info().Str("tx", txHash).Msg("liquidity deployed")
	observe(Transition{Step: StepSuccess, TxHash: txHash})
	return nil
}
