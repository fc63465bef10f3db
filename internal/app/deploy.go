package app

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"

	"tempovault-console/internal/chain"
	"tempovault-console/internal/deploy"
	"tempovault-console/internal/risk"
	"tempovault-console/internal/token"
)

// Deploy runs one funding-then-deployment sequence against the configured
// pair. Amounts arrive in display units and are converted to raw integers
// at each token's precision before anything is signed.
func (a *App) Deploy(ctx context.Context, opts DeployOptions) error {
	if a.Config.Chain.SigningKey == "" {
		return errors.New("chain.signing_key not configured; cannot sign transactions")
	}

	signer, err := chain.NewSigner(a.Config.Chain.SigningKey)
	if err != nil {
		return fmt.Errorf("load signing key: %w", err)
	}

	client := a.newChainClient()
	defer client.Close()

	registry := a.newRegistry()
	base := registry.Lookup(a.Config.Pair.BaseToken)
	quote := registry.Lookup(a.Config.Pair.QuoteToken)

	baseAmount, err := parseAmount(opts.BaseAmount, base)
	if err != nil {
		return err
	}
	quoteAmount, err := parseAmount(opts.QuoteAmount, quote)
	if err != nil {
		return err
	}

	req := deploy.Request{
		PairID:      a.Config.Pair.PairID,
		BaseAmount:  baseAmount,
		QuoteAmount: quoteAmount,
		CenterTick:  opts.CenterTick,
	}

	agg := a.newAggregator(client)
	roleSnap := agg.Check(ctx, signer.From().Hex())
	if roleSnap.Err != nil {
		return fmt.Errorf("verify strategist role: %w", roleSnap.Err)
	}
	if !roleSnap.IsStrategist && !roleSnap.IsAdmin {
		return fmt.Errorf("account %s lacks the strategist role", signer.From().Hex())
	}

	gate := a.newGate(client, registry)
	gateSnap, err := gate.Read(ctx)
	if err != nil {
		return fmt.Errorf("read risk gate: %w", err)
	}
	if gateSnap.Status == risk.StatusTriggered {
		return errors.New("circuit breaker is tripped; deployment refused")
	}

	_, reader := a.newLedger(client, registry)
	balances := deploy.NewChainBalanceSource(reader, base.Address, quote.Address, a.Logger)
	submitter := deploy.NewChainSubmitter(
		client,
		signer,
		a.Config.Contracts.TreasuryVault,
		a.Config.Contracts.DexStrategy,
		base.Address,
		quote.Address,
		a.Config.Pair.PairID,
		a.Config.Deploy.ConfirmationTimeout,
	)
	orch := deploy.NewOrchestrator(balances, submitter, a.Config.Risk.MinTick, a.Config.Risk.MaxTick, a.Logger)

	return orch.Run(ctx, req, func(t deploy.Transition) {
		printTransition(t, base, quote)
	})
}

func parseAmount(display string, tok token.Token) (*big.Int, error) {
	if display == "" || display == "0" {
		return nil, nil
	}
	raw, err := token.ToRaw(display, tok.Decimals)
	if err != nil {
		return nil, fmt.Errorf("parse %s amount %q: %w", tok.Symbol, display, err)
	}
	return raw, nil
}

func printTransition(t deploy.Transition, base, quote token.Token) {
	switch t.Step {
	case deploy.StepInput:
		fmt.Fprintln(os.Stdout, "evaluating funding gap")
	case deploy.StepFunding:
		tok := base
		if t.Asset == deploy.AssetQuote {
			tok = quote
		}
		fmt.Fprintf(os.Stdout, "funding %s %s (tx %s)\n", token.ToDisplay(t.Amount, tok.Decimals), tok.Symbol, t.TxHash)
	case deploy.StepDeploying:
		fmt.Fprintf(os.Stdout, "deploying liquidity (tx %s)\n", t.TxHash)
	case deploy.StepSuccess:
		fmt.Fprintln(os.Stdout, "deployment confirmed")
	case deploy.StepError:
		fmt.Fprintf(os.Stdout, "deployment failed: %v\n", t.Err)
	}
}
