package app

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"tempovault-console/internal/risk"
	"tempovault-console/internal/token"
)

// Status prints a one-shot view of the capital ledger and risk gate.
func (a *App) Status(ctx context.Context) error {
	client := a.newChainClient()
	defer client.Close()

	registry := a.newRegistry()
	led, _ := a.newLedger(client, registry)
	gate := a.newGate(client, registry)
	agg := a.newAggregator(client)

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Token\tReserve\tOperating\tEscrow\tTotal\tAvailable")

	for _, snap := range led.SnapshotAll(ctx) {
		available := "N/A"
		if avail, err := led.ComputeAvailability(ctx, snap.Token.Address); err == nil {
			available = token.ToDisplay(avail.Available, snap.Token.Decimals)
		}
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\n",
			snap.Token.Symbol,
			displayOrNA(snap.Reserve, snap.Token.Decimals),
			displayOrNA(snap.Operating, snap.Token.Decimals),
			displayOrNA(snap.Escrow, snap.Token.Decimals),
			token.ToDisplay(snap.Total(), snap.Token.Decimals),
			available,
		)
	}
	writer.Flush()
	fmt.Fprintln(os.Stdout)

	gateSnap, err := gate.Read(ctx)
	if err != nil {
		fmt.Fprintf(os.Stdout, "Risk gate: %s (%s)\n", gateSnap.Status, sanitizeInline(err.Error()))
	} else {
		fmt.Fprintf(
			os.Stdout,
			"Risk gate: %s  circuit_broken=%t  bid=%d ask=%d  deviation=%s  bid_depth=%s ask_depth=%s\n",
			gateSnap.Status,
			gateSnap.CircuitBroken,
			gateSnap.BestBidTick,
			gateSnap.BestAskTick,
			risk.DeviationPercent(gateSnap.PegDeviation()),
			gate.FormatDepth(gateSnap.BidDepth),
			gate.FormatDepth(gateSnap.AskDepth),
		)
	}

	if account := a.Config.App.Account; account != "" {
		snap := agg.Check(ctx, account)
		if snap.Err != nil {
			a.Logger.Warn().Err(snap.Err).Str("account", account).Msg("role check incomplete")
		}
		fmt.Fprintf(
			os.Stdout,
			"Roles (%s): admin=%t strategist=%t treasury_manager=%t emergency=%t\n",
			account,
			snap.IsAdmin,
			snap.IsStrategist,
			snap.IsTreasuryManager,
			snap.IsEmergency,
		)
	}

	if statsClient := a.newStatsClient(); statsClient != nil {
		if snap, err := statsClient.Refresh(ctx); err == nil {
			fmt.Fprintf(
				os.Stdout,
				"Platform: tvl=%s deployed=%s active_orders=%d oracle=%s (updated %s)\n",
				snap.TVL,
				snap.DeployedCapital,
				snap.ActiveOrders,
				snap.OracleHealth,
				snap.LastOracleUpdate,
			)
		} else {
			a.Logger.Warn().Err(err).Msg("platform stats unavailable")
		}
	}

	fmt.Fprintf(os.Stdout, "As of %s\n", time.Now().UTC().Format(time.RFC3339))
	return nil
}

func displayOrNA(raw *big.Int, decimals int32) string {
	if raw == nil {
		return "N/A"
	}
	return token.ToDisplay(raw, decimals)
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
