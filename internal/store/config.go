package store

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode string `yaml:"mode"` // DRY_RUN or LIVE

	RPC struct {
		// Endpoints are rotated per call; put one per API key.
		Endpoints []string `yaml:"endpoints"`
	} `yaml:"rpc"`

	// DevWallet receives onboarding and worker-wallet payments.
	DevWallet     string  `yaml:"dev_wallet"`
	OnboardingFee float64 `yaml:"onboarding_fee_sol"`

	Volume struct {
		BuyMinSOL       float64 `yaml:"buy_min_sol"`
		BuyMaxSOL       float64 `yaml:"buy_max_sol"`
		SellMinSOL      float64 `yaml:"sell_min_sol"`
		BuySlippageBps  int     `yaml:"buy_slippage_bps"`
		SellSlippageBps int     `yaml:"sell_slippage_bps"`
		IntervalMinSec  float64 `yaml:"interval_min_sec"`
		IntervalMaxSec  float64 `yaml:"interval_max_sec"`
		BuyRatio        int     `yaml:"buy_ratio"` // percent, sell ratio is the complement
		LimitTrades     int     `yaml:"limit_trades"`
		MinSOLBalance   float64 `yaml:"min_sol_balance"`
		BudgetMode      string  `yaml:"budget_mode"` // "fixed" or "until_exhausted"
		BudgetSOL       float64 `yaml:"budget_sol"`  // only for fixed mode
	} `yaml:"volume"`

	Payment struct {
		PollSeconds    int     `yaml:"poll_seconds"`
		TimeoutMinutes int     `yaml:"timeout_minutes"`
		HistoryLimit   int     `yaml:"history_limit"`
		MatchEpsilon   float64 `yaml:"match_epsilon"`
	} `yaml:"payment"`

	Postgres struct {
		DSN string `yaml:"dsn"` // empty disables the postgres store
	} `yaml:"postgres"`

	Redis struct {
		Addr            string `yaml:"addr"` // empty disables the price cache
		PriceTTLSeconds int    `yaml:"price_ttl_seconds"`
	} `yaml:"redis"`

	Telegram struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"telegram"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if len(c.RPC.Endpoints) == 0 {
		return errors.New("rpc.endpoints cannot be empty")
	}
	if c.Volume.BuyMinSOL <= 0 || c.Volume.BuyMaxSOL < c.Volume.BuyMinSOL {
		return fmt.Errorf("volume buy range invalid: min=%.4f max=%.4f", c.Volume.BuyMinSOL, c.Volume.BuyMaxSOL)
	}
	if c.Volume.BuyRatio < 0 || c.Volume.BuyRatio > 100 {
		return fmt.Errorf("volume.buy_ratio must be between 0-100, got %d", c.Volume.BuyRatio)
	}
	if c.Volume.IntervalMaxSec < c.Volume.IntervalMinSec {
		return fmt.Errorf("volume interval range invalid: min=%.1f max=%.1f", c.Volume.IntervalMinSec, c.Volume.IntervalMaxSec)
	}
	mode := strings.ToLower(c.Volume.BudgetMode)
	if mode != "fixed" && mode != "until_exhausted" {
		return fmt.Errorf("volume.budget_mode must be 'fixed' or 'until_exhausted', got '%s'", c.Volume.BudgetMode)
	}
	if mode == "fixed" && c.Volume.BudgetSOL <= 0 {
		return errors.New("volume.budget_sol must be positive in fixed mode")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := defaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// defaultConfig mirrors the stock volume-run parameters; YAML overrides them.
func defaultConfig() *Config {
	c := &Config{Mode: "DRY_RUN"}
	c.OnboardingFee = 1.5
	c.Volume.BuyMinSOL = 0.006
	c.Volume.BuyMaxSOL = 0.006
	c.Volume.SellMinSOL = 0.001
	c.Volume.BuySlippageBps = 50
	c.Volume.SellSlippageBps = 50
	c.Volume.IntervalMinSec = 15
	c.Volume.IntervalMaxSec = 15
	c.Volume.BuyRatio = 50
	c.Volume.LimitTrades = 999999
	c.Volume.MinSOLBalance = 0.001
	c.Volume.BudgetMode = "until_exhausted"
	c.Payment.PollSeconds = 5
	c.Payment.TimeoutMinutes = 10
	c.Payment.HistoryLimit = 20
	c.Payment.MatchEpsilon = 0.0001
	c.Redis.PriceTTLSeconds = 60
	return c
}
