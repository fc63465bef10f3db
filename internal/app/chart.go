package app

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"tempovault-console/internal/risk"
)

type riskSample struct {
	at           time.Time
	status       risk.Status
	bestBidTick  int64
	bestAskTick  int64
	deviationPct float64
	bidDepth     string
	askDepth     string
}

// Chart samples the risk gate at a fixed interval and renders the series
// as CSV and/or PNG.
func (a *App) Chart(ctx context.Context, opts ChartOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}
	if opts.Samples <= 0 {
		opts.Samples = 60
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = a.Config.Polling.RiskInterval
	}

	client := a.newChainClient()
	defer client.Close()

	registry := a.newRegistry()
	gate := a.newGate(client, registry)

	samples := make([]riskSample, 0, opts.Samples)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.Logger.Info().Int("samples", opts.Samples).Dur("interval", interval).Msg("sampling risk gate")

	for len(samples) < opts.Samples {
		snap, err := gate.Read(ctx)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("sample unresolved, skipping")
		} else {
			samples = append(samples, riskSample{
				at:           snap.At,
				status:       snap.Status,
				bestBidTick:  snap.BestBidTick,
				bestAskTick:  snap.BestAskTick,
				deviationPct: float64(snap.PegDeviation()) / 10000,
				bidDepth:     gate.FormatDepth(snap.BidDepth),
				askDepth:     gate.FormatDepth(snap.AskDepth),
			})
		}

		if len(samples) == opts.Samples {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	if len(samples) == 0 {
		a.Logger.Info().Msg("no resolved samples to export")
		return nil
	}

	if opts.CSVPath != "" {
		if err := writeSamplesCSV(opts.CSVPath, samples); err != nil {
			return err
		}
	}
	if opts.PNGPath != "" {
		if err := writeSamplesPNG(opts.PNGPath, samples); err != nil {
			return err
		}
	}
	return nil
}

func writeSamplesCSV(path string, samples []riskSample) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"ts", "status", "best_bid_tick", "best_ask_tick", "deviation_pct", "bid_depth", "ask_depth"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, sample := range samples {
		record := []string{
			sample.at.Format(time.RFC3339),
			sample.status.String(),
			formatTick(sample.bestBidTick),
			formatTick(sample.bestAskTick),
			formatFloat(sample.deviationPct),
			sample.bidDepth,
			sample.askDepth,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeSamplesPNG(path string, samples []riskSample) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(samples))
	bid := make([]float64, len(samples))
	ask := make([]float64, len(samples))
	deviation := make([]float64, len(samples))

	for i, sample := range samples {
		x[i] = sample.at
		bid[i] = float64(sample.bestBidTick)
		ask[i] = float64(sample.bestAskTick)
		deviation[i] = sample.deviationPct
	}

	tickFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Best tick",
			ValueFormatter: tickFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name: "Peg deviation (%)",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Best bid",
				XValues: x,
				YValues: bid,
			},
			chart.TimeSeries{
				Name:    "Best ask",
				XValues: x,
				YValues: ask,
			},
			chart.TimeSeries{
				Name:    "Deviation %",
				XValues: x,
				YValues: deviation,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func formatTick(tick int64) string {
	return strconv.FormatInt(tick, 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
