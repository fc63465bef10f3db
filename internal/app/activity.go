package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
)

// Activity reconstructs and prints the recent vault event timeline.
func (a *App) Activity(ctx context.Context, opts ActivityOptions) error {
	client := a.newChainClient()
	defer client.Close()

	registry := a.newRegistry()
	rec := a.newReconstructor(client, registry)

	records, err := rec.Refresh(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "no activity in window")
		return nil
	}

	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Block\tType\tToken\tAmount\tFrom\tTo\tTx")
	for _, record := range records {
		fmt.Fprintf(
			writer,
			"%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			record.BlockNumber,
			record.Kind,
			record.TokenSymbol,
			record.Amount,
			shortAddress(record.From),
			shortAddress(record.To),
			shortHash(record.TxHash),
		)
	}
	return writer.Flush()
}

func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:8] + ".." + addr[len(addr)-4:]
}

func shortHash(hash string) string {
	if len(hash) <= 14 {
		return hash
	}
	return hash[:10] + ".." + hash[len(hash)-4:]
}
