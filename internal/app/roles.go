package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
)

// Roles queries and prints the capability set of an account. An empty
// account argument falls back to the configured one.
func (a *App) Roles(ctx context.Context, account string) error {
	if account == "" {
		account = a.Config.App.Account
	}
	if account == "" {
		return errors.New("no account given and app.account not configured")
	}

	client := a.newChainClient()
	defer client.Close()

	agg := a.newAggregator(client)
	snap := agg.Check(ctx, account)
	if snap.Err != nil {
		return fmt.Errorf("role check incomplete: %w", snap.Err)
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Account\t%s\n", snap.Account)
	fmt.Fprintf(writer, "Admin\t%t\n", snap.IsAdmin)
	fmt.Fprintf(writer, "Strategist\t%t\n", snap.IsStrategist)
	fmt.Fprintf(writer, "Treasury Manager\t%t\n", snap.IsTreasuryManager)
	fmt.Fprintf(writer, "Emergency\t%t\n", snap.IsEmergency)
	if err := writer.Flush(); err != nil {
		return err
	}

	if !snap.HasAny() {
		fmt.Fprintln(os.Stdout, "account holds no treasury roles")
	}
	return nil
}
