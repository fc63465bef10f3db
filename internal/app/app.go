package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"tempovault-console/internal/activity"
	"tempovault-console/internal/alerting"
	"tempovault-console/internal/chain"
	"tempovault-console/internal/config"
	"tempovault-console/internal/ledger"
	"tempovault-console/internal/risk"
	"tempovault-console/internal/roles"
	"tempovault-console/internal/service"
	"tempovault-console/internal/stats"
	"tempovault-console/internal/token"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newChainClient() *chain.Client {
	return chain.NewClient(chain.Options{
		RPCURL:         a.Config.Chain.RPCURL,
		RequestTimeout: a.Config.Chain.RequestTimeout,
	}, a.Logger)
}

func (a *App) newRegistry() *token.Registry {
	tokens := make([]token.Token, 0, len(a.Config.Tokens))
	for _, t := range a.Config.Tokens {
		tokens = append(tokens, token.Token{
			Address:  t.Address,
			Symbol:   t.Symbol,
			Decimals: t.Decimals,
		})
	}
	return token.NewRegistry(tokens)
}

func (a *App) newLedger(client *chain.Client, registry *token.Registry) (*ledger.Ledger, ledger.BalanceReader) {
	reader := ledger.NewChainReader(
		client,
		a.Config.Contracts.TreasuryVault,
		a.Config.Contracts.DexStrategy,
		a.Config.Contracts.TempoDex,
	)
	return ledger.New(reader, registry, a.Logger), reader
}

func (a *App) newGate(client *chain.Client, registry *token.Registry) *risk.Gate {
	reader := risk.NewChainReader(
		client,
		a.Config.Contracts.TempoDex,
		a.Config.Contracts.RiskController,
		a.Config.Pair.PairKey,
		a.Config.Pair.PairID,
		a.Config.Pair.BaseToken,
	)
	quote := registry.Lookup(a.Config.Pair.QuoteToken)
	return risk.NewGate(reader, a.Config.Risk.DeviationThresholdTicks, quote, a.Logger)
}

func (a *App) newAggregator(client *chain.Client) *roles.Aggregator {
	checker := roles.NewChainChecker(client, a.Config.Contracts.GovernanceRoles)
	return roles.NewAggregator(checker, a.Logger)
}

func (a *App) newReconstructor(client *chain.Client, registry *token.Registry) *activity.Reconstructor {
	return activity.NewReconstructor(
		client,
		registry,
		a.Config.Contracts.TreasuryVault,
		a.Config.Activity.BlockWindow,
		a.Logger,
	)
}

func (a *App) newStatsClient() *stats.Client {
	if a.Config.Stats.BaseURL == "" {
		return nil
	}
	return stats.NewClient(stats.Options{
		BaseURL: a.Config.Stats.BaseURL,
		Timeout: a.Config.Stats.RequestTimeout,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

// Run executes the long-running watch service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := a.newChainClient()
	defer client.Close()

	registry := a.newRegistry()
	led, _ := a.newLedger(client, registry)
	gate := a.newGate(client, registry)
	rec := a.newReconstructor(client, registry)
	statsClient := a.newStatsClient()
	if statsClient == nil {
		a.Logger.Warn().Msg("stats.base_url not configured; platform stats disabled")
	}
	notifier := a.newNotifier()

	svc := service.New(a.Config, led, gate, rec, statsClient, notifier, a.Logger)

	a.Logger.Info().Msg("starting watch service")
	err := svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("watch service stopped")
	return nil
}

// ActivityOptions configure the activity command.
type ActivityOptions struct {
	Limit int
}

// DeployOptions hold the strategist's deployment intent in display units.
type DeployOptions struct {
	BaseAmount  string
	QuoteAmount string
	CenterTick  int64
}

// ChartOptions hold parameters for the risk sampling chart.
type ChartOptions struct {
	Samples  int
	Interval time.Duration
	PNGPath  string
	CSVPath  string
}
