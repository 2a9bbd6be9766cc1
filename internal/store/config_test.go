package store

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	p := writeConfig(t, `
mode: DRY_RUN
rpc:
  endpoints:
    - https://api.mainnet-beta.solana.com
`)
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Volume.BuyMinSOL != 0.006 {
		t.Errorf("buy_min_sol default = %f, want 0.006", cfg.Volume.BuyMinSOL)
	}
	if cfg.Volume.BuyRatio != 50 {
		t.Errorf("buy_ratio default = %d, want 50", cfg.Volume.BuyRatio)
	}
	if cfg.Payment.PollSeconds != 5 || cfg.Payment.TimeoutMinutes != 10 {
		t.Errorf("payment defaults = %d/%d, want 5/10", cfg.Payment.PollSeconds, cfg.Payment.TimeoutMinutes)
	}
	if cfg.Payment.MatchEpsilon != 0.0001 {
		t.Errorf("match_epsilon default = %f, want 0.0001", cfg.Payment.MatchEpsilon)
	}
	if cfg.Volume.BudgetMode != "until_exhausted" {
		t.Errorf("budget_mode default = %s", cfg.Volume.BudgetMode)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	p := writeConfig(t, `
mode: LIVE
rpc:
  endpoints: ["https://rpc-1", "https://rpc-2"]
volume:
  buy_min_sol: 0.01
  buy_max_sol: 0.05
  buy_ratio: 70
  budget_mode: fixed
  budget_sol: 2.5
`)
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != "LIVE" {
		t.Errorf("mode = %s", cfg.Mode)
	}
	if len(cfg.RPC.Endpoints) != 2 {
		t.Errorf("endpoints = %v", cfg.RPC.Endpoints)
	}
	if cfg.Volume.BuyMaxSOL != 0.05 || cfg.Volume.BuyRatio != 70 {
		t.Errorf("overrides not applied: %+v", cfg.Volume)
	}
	if cfg.Volume.BudgetMode != "fixed" || cfg.Volume.BudgetSOL != 2.5 {
		t.Errorf("budget overrides not applied: %+v", cfg.Volume)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad mode", "mode: TEST\nrpc: {endpoints: [x]}"},
		{"no endpoints", "mode: LIVE"},
		{"inverted buy range", "mode: LIVE\nrpc: {endpoints: [x]}\nvolume: {buy_min_sol: 0.05, buy_max_sol: 0.01}"},
		{"ratio out of range", "mode: LIVE\nrpc: {endpoints: [x]}\nvolume: {buy_ratio: 150}"},
		{"fixed budget without amount", "mode: LIVE\nrpc: {endpoints: [x]}\nvolume: {budget_mode: fixed}"},
		{"unknown budget mode", "mode: LIVE\nrpc: {endpoints: [x]}\nvolume: {budget_mode: sometimes}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tc.body)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
