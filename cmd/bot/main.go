package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"sol-volume-bot/internal/interfaces"
	"sol-volume-bot/internal/ledger/solana"
	"sol-volume-bot/internal/logger"
	"sol-volume-bot/internal/payment"
	"sol-volume-bot/internal/session"
	"sol-volume-bot/internal/store"
	"sol-volume-bot/internal/types"
	"sol-volume-bot/internal/wallets"
)

func main() {
	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "startup: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer logger.Shutdown(context.Background())

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}

	ledger, chain, err := initializeLedger(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to initialize ledger", err)
		os.Exit(1)
	}
	venue := initializeVenue()
	projects, err := initializeStore(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to initialize project store", err)
		os.Exit(1)
	}
	notifier := initializeNotifier(ctx, cfg)
	price := initializePricing(ctx, cfg)
	pool := wallets.New(ledger, solana.SignerFor)

	sessions := session.NewRegistry(price)
	payments := payment.NewRegistry()

	ownerID := envInt64("OWNER_ID")
	channelID := envInt64("CHANNEL_ID")
	if channelID == 0 {
		channelID = ownerID
	}
	mint := os.Getenv("TOKEN_MINT")
	if ownerID == 0 || mint == "" {
		logger.Error(ctx, "OWNER_ID and TOKEN_MINT must be set")
		os.Exit(1)
	}

	project, err := ensureProject(ctx, projects, chain, ownerID, mint)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load project", err)
		os.Exit(1)
	}

	key := fmt.Sprintf("%d:%s", ownerID, mint)

	// fund and withdraw are one-shot treasury actions; the default action
	// runs the volume session
	switch os.Getenv("ACTION") {
	case "fund":
		fundWorkers(ctx, chain, notifier, project, channelID)
		return
	case "withdraw":
		withdrawAll(ctx, cfg, pool, venue, chain, notifier, project, channelID)
		return
	}

	if n := int(envInt64("BUY_WORKERS")); n > 0 {
		startWorkerPurchase(ctx, cfg, payments, projects, ledger, notifier, project, key, channelID, n)
	}

	sessions.Start(ctx, &session.Engine{
		ID:        key,
		ChannelID: channelID,
		Project:   project,
		Config:    session.ConfigFor(cfg, project),
		Ledger:    ledger,
		Venue:     venue,
		Pool:      pool,
		Notifier:  notifier,
	})
	logger.Info(ctx, "Bot started", "session", key, "workers", len(project.WorkerWallets))

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	logger.Info(ctx, "Shutting down...")
	sessions.StopAll()
	payments.StopAll()
}

// ensureProject loads the owner's project for the mint, onboarding a new
// one with a project wallet and the free worker allocation when none exists.
func ensureProject(ctx context.Context, projects interfaces.ProjectStore, chain *solana.Client, ownerID int64, mint string) (*types.Project, error) {
	project, err := projects.Get(ctx, ownerID, mint)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, types.ErrProjectNotFound) {
		return nil, err
	}

	name := mint
	if info, err := chain.TokenInfo(ctx, mint); err != nil {
		logger.Warn(ctx, "Token metadata unavailable, using mint as name", "mint", mint, "error", err)
	} else if info.Name != "" {
		name = info.Name
	}

	pw := solana.NewWallet()
	project = &types.Project{
		OwnerID:       ownerID,
		TokenMint:     mint,
		TokenName:     name,
		Status:        "active",
		OnboardedAt:   time.Now().UTC().Format("2006-01-02"),
		ProjectWallet: &pw,
	}
	wallets.GrantWorkers(project, wallets.FreeAllocation, solana.NewWallet)

	if err := projects.Upsert(ctx, project); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Project onboarded",
		"owner", ownerID, "mint", mint, "name", name,
		"project_wallet", pw.Address, "workers", len(project.WorkerWallets))
	return project, nil
}

// startWorkerPurchase begins a payment watch on the project wallet for the
// price of n extra worker wallets; fulfillment records them through the
// project store, so the running session is unaffected until it restarts.
func startWorkerPurchase(ctx context.Context, cfg *store.Config, payments *payment.Registry, projects interfaces.ProjectStore, ledger interfaces.Ledger, notifier interfaces.Notifier, project *types.Project, key string, channelID int64, n int) {
	cost := wallets.PackageCostSOL(n)
	payments.Start(ctx, &payment.Watcher{
		RequesterID:  key,
		Address:      project.ProjectWallet.Address,
		ExpectedSOL:  cost,
		Poll:         time.Duration(cfg.Payment.PollSeconds) * time.Second,
		Timeout:      time.Duration(cfg.Payment.TimeoutMinutes) * time.Minute,
		HistoryLimit: cfg.Payment.HistoryLimit,
		Epsilon:      cfg.Payment.MatchEpsilon,
		Ledger:       ledger,
		Notifier:     notifier,
		ChannelID:    channelID,
		OnMatch: func(ctx context.Context, detail *types.TransactionDetail, received float64) error {
			granted, err := wallets.PurchaseWorkers(ctx, projects, project.OwnerID, project.TokenMint, n, solana.NewWallet)
			if err != nil {
				return err
			}
			logger.Info(ctx, "Worker wallet package fulfilled",
				"session", key, "granted", len(granted), "received_sol", received)
			return nil
		},
	})
	_ = notifier.Send(ctx, channelID,
		fmt.Sprintf("Send exactly %.4f SOL to %s to add %d worker wallets", cost, project.ProjectWallet.Address, n))
}

// fundWorkers splits the project wallet's balance evenly across the worker
// wallets, topping up accounts that do not exist on chain yet.
func fundWorkers(ctx context.Context, chain *solana.Client, notifier interfaces.Notifier, project *types.Project, channelID int64) {
	if project.ProjectWallet == nil || len(project.WorkerWallets) == 0 {
		logger.Error(ctx, "Nothing to fund: project wallet or workers missing")
		return
	}
	dests := make([]string, 0, len(project.WorkerWallets))
	for _, w := range project.WorkerWallets {
		dests = append(dests, w.Address)
	}
	sig, err := chain.DistributeEvenly(ctx, *project.ProjectWallet, dests)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to distribute funds", err)
		_ = notifier.Send(ctx, channelID, fmt.Sprintf("Funding failed: %v", err))
		return
	}
	_ = notifier.Send(ctx, channelID,
		fmt.Sprintf("Distributed project funds across %d workers (%s)", len(dests), sig))
}

// withdrawAll liquidates every worker's token balance and sweeps all SOL to
// the withdrawal address (WITHDRAW_TO, defaulting to the project wallet).
func withdrawAll(ctx context.Context, cfg *store.Config, pool *wallets.Pool, venue interfaces.SwapVenue, chain *solana.Client, notifier interfaces.Notifier, project *types.Project, channelID int64) {
	dest := os.Getenv("WITHDRAW_TO")
	if dest == "" && project.ProjectWallet != nil {
		dest = project.ProjectWallet.Address
	}
	if dest == "" {
		logger.Error(ctx, "No withdrawal destination available")
		return
	}
	err := pool.SellAllAndSweep(ctx, venue, chain, project.WorkerWallets, project.TokenMint, dest, cfg.Volume.SellSlippageBps)
	if err != nil {
		logger.ErrorWithErr(ctx, "Withdrawal sweep failed", err)
		_ = notifier.Send(ctx, channelID, fmt.Sprintf("Withdrawal failed: %v", err))
		return
	}
	_ = notifier.Send(ctx, channelID, fmt.Sprintf("Swept %d workers to %s", len(project.WorkerWallets), dest))
}

func envInt64(key string) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
