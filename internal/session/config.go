package session

import (
	"strings"
	"time"

	"sol-volume-bot/internal/store"
	"sol-volume-bot/internal/types"
)

// BudgetMode selects between the two session variants: spend a fixed SOL
// budget then stop, or trade until the pool runs dry.
type BudgetMode string

const (
	BudgetFixed          BudgetMode = "fixed"
	BudgetUntilExhausted BudgetMode = "until_exhausted"
)

// Config is an immutable snapshot of one session's trade parameters. Built
// once at session start; changing settings means starting a new session.
type Config struct {
	BuyMinSOL       float64
	BuyMaxSOL       float64
	SellMinSOL      float64
	BuySlippageBps  int
	SellSlippageBps int
	IntervalMin     time.Duration
	IntervalMax     time.Duration
	BuyRatio        int // percent of trades that are buys; sells are the complement
	LimitTrades     int
	MinSOLBalance   float64
	BudgetMode      BudgetMode
	BudgetSOL       float64

	// FeeBufferSOL is headroom kept above the balance floor when checking a
	// buy is coverable.
	FeeBufferSOL float64
}

// ConfigFor builds a session config from the global defaults overridden by
// the project's saved custom settings.
func ConfigFor(cfg *store.Config, project *types.Project) Config {
	c := Config{
		BuyMinSOL:       cfg.Volume.BuyMinSOL,
		BuyMaxSOL:       cfg.Volume.BuyMaxSOL,
		SellMinSOL:      cfg.Volume.SellMinSOL,
		BuySlippageBps:  cfg.Volume.BuySlippageBps,
		SellSlippageBps: cfg.Volume.SellSlippageBps,
		IntervalMin:     time.Duration(cfg.Volume.IntervalMinSec * float64(time.Second)),
		IntervalMax:     time.Duration(cfg.Volume.IntervalMaxSec * float64(time.Second)),
		BuyRatio:        cfg.Volume.BuyRatio,
		LimitTrades:     cfg.Volume.LimitTrades,
		MinSOLBalance:   cfg.Volume.MinSOLBalance,
		BudgetMode:      BudgetMode(strings.ToLower(cfg.Volume.BudgetMode)),
		BudgetSOL:       cfg.Volume.BudgetSOL,
		FeeBufferSOL:    0.0005,
	}
	if project == nil {
		return c
	}
	for key, v := range project.CustomSettings {
		switch key {
		case "buy_min_sol":
			c.BuyMinSOL = v
		case "buy_max_sol":
			c.BuyMaxSOL = v
		case "sell_min_sol":
			c.SellMinSOL = v
		case "buy_slippage_bps":
			c.BuySlippageBps = int(v)
		case "sell_slippage_bps":
			c.SellSlippageBps = int(v)
		case "interval_min_sec":
			c.IntervalMin = time.Duration(v * float64(time.Second))
		case "interval_max_sec":
			c.IntervalMax = time.Duration(v * float64(time.Second))
		case "buy_ratio":
			c.BuyRatio = int(v)
		case "limit_trades":
			c.LimitTrades = int(v)
		case "min_sol_balance":
			c.MinSOLBalance = v
		case "budget_sol":
			c.BudgetSOL = v
			c.BudgetMode = BudgetFixed
		}
	}
	if c.BuyMaxSOL < c.BuyMinSOL {
		c.BuyMaxSOL = c.BuyMinSOL
	}
	if c.IntervalMax < c.IntervalMin {
		c.IntervalMax = c.IntervalMin
	}
	return c
}
