package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"sol-volume-bot/internal/interfaces"
	"sol-volume-bot/internal/ledger/dryrun"
	"sol-volume-bot/internal/ledger/ledgerobs"
	"sol-volume-bot/internal/ledger/solana"
	"sol-volume-bot/internal/logger"
	"sol-volume-bot/internal/notify"
	"sol-volume-bot/internal/pricing"
	"sol-volume-bot/internal/store"
	"sol-volume-bot/internal/swap/jupiter"
	"sol-volume-bot/internal/trace"
	"sol-volume-bot/internal/tradelog"
)

// initializeSystem initializes logger, tracer, and journal retention
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	compressOldLogs(context.Background())

	logger.Info(context.Background(), "System initialized",
		"debug_logging", logger.IsDebugEnabled(),
		"tracing", logger.IsTracingEnabled())
	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old journal files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("VOLUME_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeLedger builds the Solana client and wraps it with observability.
// The concrete client is also returned for the Treasury and token-metadata
// operations that live outside the Ledger interface.
func initializeLedger(ctx context.Context, cfg *store.Config) (interfaces.Ledger, *solana.Client, error) {
	client, err := solana.New(cfg.RPC.Endpoints)
	if err != nil {
		return nil, nil, err
	}

	logger.Info(ctx, "Ledger initialized", "endpoints", len(cfg.RPC.Endpoints))

	var ledger interfaces.Ledger = client
	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - transactions will be simulated")
		ledger = dryrun.Wrap(ledger)
	}

	// Wrap with observability middleware
	return ledgerobs.Wrap(ledger), client, nil
}

// initializeVenue returns the swap venue client
func initializeVenue() interfaces.SwapVenue {
	return jupiter.New()
}

// initializeStore selects the project store: Postgres when a DSN is
// configured, in-memory otherwise
func initializeStore(ctx context.Context, cfg *store.Config) (interfaces.ProjectStore, error) {
	if cfg.Postgres.DSN == "" {
		logger.Info(ctx, "Using in-memory project store")
		return store.NewMemoryStore(), nil
	}
	ps, err := store.NewPostgresStore(cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	logger.Info(ctx, "Using postgres project store")
	return ps, nil
}

// initializeNotifier returns the Telegram notifier when enabled, otherwise
// the log-backed one
func initializeNotifier(ctx context.Context, cfg *store.Config) interfaces.Notifier {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if cfg.Telegram.Enabled && token != "" {
		logger.Info(ctx, "Using Telegram notifier")
		return notify.NewTelegram(token)
	}
	if cfg.Telegram.Enabled {
		logger.Warn(ctx, "Telegram enabled but TELEGRAM_BOT_TOKEN is not set - falling back to log notifier")
	}
	return notify.NewLogNotifier()
}

// initializePricing returns the SOL/USD price source, cache-fronted when
// Redis is configured
func initializePricing(ctx context.Context, cfg *store.Config) interfaces.PriceSource {
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		logger.Info(ctx, "Price cache enabled", "addr", cfg.Redis.Addr)
	}
	return pricing.New(rdb, time.Duration(cfg.Redis.PriceTTLSeconds)*time.Second)
}
