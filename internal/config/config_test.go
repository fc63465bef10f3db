package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Name != "tempovault-console" {
		t.Fatalf("app.name = %q", cfg.App.Name)
	}
	if cfg.Polling.VaultInterval != 5*time.Second {
		t.Fatalf("vault interval = %s, want 5s", cfg.Polling.VaultInterval)
	}
	if cfg.Polling.StatsInterval != 30*time.Second {
		t.Fatalf("stats interval = %s, want 30s", cfg.Polling.StatsInterval)
	}
	if cfg.Risk.DeviationThresholdTicks != 2000 {
		t.Fatalf("threshold = %d, want 2000", cfg.Risk.DeviationThresholdTicks)
	}
	if cfg.Risk.MinTick != -32768 || cfg.Risk.MaxTick != 32767 {
		t.Fatalf("tick range = [%d, %d]", cfg.Risk.MinTick, cfg.Risk.MaxTick)
	}
	if cfg.Activity.BlockWindow != 10000 {
		t.Fatalf("block window = %d, want 10000", cfg.Activity.BlockWindow)
	}
	if cfg.Deploy.ConfirmationTimeout != 2*time.Minute {
		t.Fatalf("confirmation timeout = %s, want 2m", cfg.Deploy.ConfirmationTimeout)
	}
	if cfg.Alerting.Enabled {
		t.Fatal("alerting should default to disabled")
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
chain:
  rpc_url: https://rpc.example.org
pair:
  pair_id: "0x0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20"
  base_token: "0x0000000000000000000000000000000000000a01"
  quote_token: "0x0000000000000000000000000000000000000a02"
tokens:
  - address: "0x0000000000000000000000000000000000000a01"
    symbol: WETH
    decimals: 18
polling:
  risk_interval: 2s
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chain.RPCURL != "https://rpc.example.org" {
		t.Fatalf("rpc_url = %q", cfg.Chain.RPCURL)
	}
	if cfg.Polling.RiskInterval != 2*time.Second {
		t.Fatalf("risk interval = %s, want 2s", cfg.Polling.RiskInterval)
	}
	if cfg.Polling.VaultInterval != 5*time.Second {
		t.Fatalf("unset intervals should keep defaults, got %s", cfg.Polling.VaultInterval)
	}
	if len(cfg.Tokens) != 1 || cfg.Tokens[0].Decimals != 18 {
		t.Fatalf("tokens = %+v", cfg.Tokens)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		return cfg
	}

	cfg := base()
	cfg.Polling.RiskInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero polling interval should fail")
	}

	cfg = base()
	cfg.Risk.MinTick = 100
	cfg.Risk.MaxTick = 100
	if err := cfg.Validate(); err == nil {
		t.Fatal("inverted tick range should fail")
	}

	cfg = base()
	cfg.Tokens = []TokenConfig{{Address: "0x01"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("token without a symbol should fail")
	}

	cfg = base()
	cfg.Alerting.Telegram.Enabled = true
	err := cfg.Validate()
	if err == nil {
		t.Fatal("telegram without a bot token should fail")
	}
	if !strings.Contains(err.Error(), "bot_token") {
		t.Fatalf("错误信息应提及 bot_token: %v", err)
	}
}
