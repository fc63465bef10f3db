package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"tempovault-console/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Contracts ContractsConfig `mapstructure:"contracts"`
	Pair      PairConfig      `mapstructure:"pair"`
	Tokens    []TokenConfig   `mapstructure:"tokens"`
	Polling   PollingConfig   `mapstructure:"polling"`
	Risk      RiskConfig      `mapstructure:"risk"`
	Deploy    DeployConfig    `mapstructure:"deploy"`
	Activity  ActivityConfig  `mapstructure:"activity"`
	Stats     StatsConfig     `mapstructure:"stats"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Account     string `mapstructure:"account"`
}

// ChainConfig covers RPC access to the ledger.
type ChainConfig struct {
	RPCURL         string        `mapstructure:"rpc_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	SigningKey     string        `mapstructure:"signing_key"`
}

// ContractsConfig binds the console to one protocol deployment.
type ContractsConfig struct {
	GovernanceRoles string `mapstructure:"governance_roles"`
	RiskController  string `mapstructure:"risk_controller"`
	TreasuryVault   string `mapstructure:"treasury_vault"`
	DexStrategy     string `mapstructure:"dex_strategy"`
	TempoDex        string `mapstructure:"tempo_dex"`
}

// PairConfig identifies the market-making pair.
type PairConfig struct {
	PairID     string `mapstructure:"pair_id"`
	PairKey    string `mapstructure:"pair_key"`
	BaseToken  string `mapstructure:"base_token"`
	QuoteToken string `mapstructure:"quote_token"`
}

// TokenConfig is one static token registry entry.
type TokenConfig struct {
	Address  string `mapstructure:"address"`
	Symbol   string `mapstructure:"symbol"`
	Decimals int32  `mapstructure:"decimals"`
}

// PollingConfig governs read cadences. Cadence is an operational choice,
// not a correctness requirement.
type PollingConfig struct {
	VaultInterval    time.Duration `mapstructure:"vault_interval"`
	RiskInterval     time.Duration `mapstructure:"risk_interval"`
	ActivityInterval time.Duration `mapstructure:"activity_interval"`
	StatsInterval    time.Duration `mapstructure:"stats_interval"`
}

// RiskConfig holds the risk gate thresholds.
type RiskConfig struct {
	DeviationThresholdTicks int64 `mapstructure:"deviation_threshold_ticks"`
	MinTick                 int64 `mapstructure:"min_tick"`
	MaxTick                 int64 `mapstructure:"max_tick"`
}

// DeployConfig tunes the deployment orchestrator.
type DeployConfig struct {
	ConfirmationTimeout time.Duration `mapstructure:"confirmation_timeout"`
}

// ActivityConfig bounds the activity timeline fetch.
type ActivityConfig struct {
	BlockWindow uint64 `mapstructure:"block_window"`
}

// StatsConfig points at the protocol statistics endpoint.
type StatsConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// AlertingConfig defines alert thresholds and routing.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Cooldown time.Duration  `mapstructure:"cooldown"`
	Channels []string       `mapstructure:"channels"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig 描述 Telegram 告警参数。
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TEMPOVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tempovault-console")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("chain.request_timeout", "10s")

	v.SetDefault("polling.vault_interval", "5s")
	v.SetDefault("polling.risk_interval", "5s")
	v.SetDefault("polling.activity_interval", "10s")
	v.SetDefault("polling.stats_interval", "30s")

	// 2000 ticks = 2% at the 100000 tick scale.
	v.SetDefault("risk.deviation_threshold_ticks", int64(2000))
	v.SetDefault("risk.min_tick", int64(-32768))
	v.SetDefault("risk.max_tick", int64(32767))

	v.SetDefault("deploy.confirmation_timeout", "2m")

	v.SetDefault("activity.block_window", uint64(10000))

	v.SetDefault("stats.request_timeout", "10s")

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.cooldown", "30m")
	v.SetDefault("alerting.channels", []string{"telegram"})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Polling.VaultInterval <= 0 || c.Polling.RiskInterval <= 0 ||
		c.Polling.ActivityInterval <= 0 || c.Polling.StatsInterval <= 0 {
		return fmt.Errorf("polling intervals must be greater than zero")
	}
	if c.Risk.DeviationThresholdTicks <= 0 {
		return fmt.Errorf("risk.deviation_threshold_ticks must be greater than zero")
	}
	if c.Risk.MinTick >= c.Risk.MaxTick {
		return fmt.Errorf("risk.min_tick must be below risk.max_tick")
	}
	if c.Activity.BlockWindow == 0 {
		return fmt.Errorf("activity.block_window must be greater than zero")
	}
	if c.Deploy.ConfirmationTimeout <= 0 {
		return fmt.Errorf("deploy.confirmation_timeout must be greater than zero")
	}
	for i, t := range c.Tokens {
		if t.Address == "" || t.Symbol == "" {
			return fmt.Errorf("tokens[%d]: address and symbol are required", i)
		}
		if t.Decimals < 0 {
			return fmt.Errorf("tokens[%d]: decimals cannot be negative", i)
		}
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token 必须配置")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id 必须配置")
		}
	}
	return nil
}
