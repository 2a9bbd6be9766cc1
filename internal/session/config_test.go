package session

import (
	"testing"
	"time"

	"sol-volume-bot/internal/store"
	"sol-volume-bot/internal/types"
)

func baseAppConfig() *store.Config {
	cfg := &store.Config{}
	cfg.Volume.BuyMinSOL = 0.006
	cfg.Volume.BuyMaxSOL = 0.006
	cfg.Volume.SellMinSOL = 0.001
	cfg.Volume.BuySlippageBps = 50
	cfg.Volume.SellSlippageBps = 50
	cfg.Volume.IntervalMinSec = 15
	cfg.Volume.IntervalMaxSec = 15
	cfg.Volume.BuyRatio = 50
	cfg.Volume.LimitTrades = 999999
	cfg.Volume.MinSOLBalance = 0.001
	cfg.Volume.BudgetMode = "until_exhausted"
	return cfg
}

func TestConfigForDefaults(t *testing.T) {
	c := ConfigFor(baseAppConfig(), nil)

	if c.BuyMinSOL != 0.006 || c.BuyMaxSOL != 0.006 {
		t.Errorf("buy range = [%.4f, %.4f], want [0.006, 0.006]", c.BuyMinSOL, c.BuyMaxSOL)
	}
	if c.IntervalMin != 15*time.Second {
		t.Errorf("interval min = %v, want 15s", c.IntervalMin)
	}
	if c.BuyRatio != 50 {
		t.Errorf("buy ratio = %d, want 50", c.BuyRatio)
	}
	if c.BudgetMode != BudgetUntilExhausted {
		t.Errorf("budget mode = %s, want until_exhausted", c.BudgetMode)
	}
}

func TestConfigForCustomOverrides(t *testing.T) {
	p := &types.Project{
		CustomSettings: map[string]float64{
			"buy_min_sol":      0.01,
			"buy_max_sol":      0.02,
			"buy_ratio":        70,
			"interval_min_sec": 5,
			"interval_max_sec": 30,
			"limit_trades":     200,
		},
	}
	c := ConfigFor(baseAppConfig(), p)

	if c.BuyMinSOL != 0.01 || c.BuyMaxSOL != 0.02 {
		t.Errorf("buy range = [%.4f, %.4f], want overridden [0.01, 0.02]", c.BuyMinSOL, c.BuyMaxSOL)
	}
	if c.BuyRatio != 70 {
		t.Errorf("buy ratio = %d, want 70", c.BuyRatio)
	}
	if c.IntervalMin != 5*time.Second || c.IntervalMax != 30*time.Second {
		t.Errorf("interval = [%v, %v], want [5s, 30s]", c.IntervalMin, c.IntervalMax)
	}
	if c.LimitTrades != 200 {
		t.Errorf("limit = %d, want 200", c.LimitTrades)
	}
	// untouched defaults survive
	if c.MinSOLBalance != 0.001 {
		t.Errorf("min balance = %.4f, want default 0.001", c.MinSOLBalance)
	}
}

func TestConfigForBudgetOverrideSwitchesMode(t *testing.T) {
	p := &types.Project{CustomSettings: map[string]float64{"budget_sol": 1.5}}
	c := ConfigFor(baseAppConfig(), p)

	if c.BudgetMode != BudgetFixed {
		t.Errorf("budget mode = %s, want fixed after budget_sol override", c.BudgetMode)
	}
	if c.BudgetSOL != 1.5 {
		t.Errorf("budget = %.2f, want 1.5", c.BudgetSOL)
	}
}

func TestConfigForClampsInvertedRanges(t *testing.T) {
	p := &types.Project{
		CustomSettings: map[string]float64{
			"buy_min_sol":      0.05,
			"interval_min_sec": 60,
		},
	}
	c := ConfigFor(baseAppConfig(), p)

	if c.BuyMaxSOL < c.BuyMinSOL {
		t.Errorf("buy max %.4f below min %.4f after clamp", c.BuyMaxSOL, c.BuyMinSOL)
	}
	if c.IntervalMax < c.IntervalMin {
		t.Errorf("interval max %v below min %v after clamp", c.IntervalMax, c.IntervalMin)
	}
}
