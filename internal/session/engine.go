package session

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"sol-volume-bot/internal/interfaces"
	"sol-volume-bot/internal/logger"
	"sol-volume-bot/internal/tradelog"
	"sol-volume-bot/internal/types"
	"sol-volume-bot/internal/wallets"
)

const lamportsPerSOL = 1e9

// Engine runs one trading session for one project: pick a funded worker,
// draw a direction, size the trade, swap, confirm, wait a random interval,
// repeat. Terminates on cancellation, trade ceiling, spent budget, or fund
// exhaustion. Failures inside an iteration are reported and skipped; they
// never end the session.
type Engine struct {
	ID        string
	ChannelID int64
	Project   *types.Project
	Config    Config

	Ledger   interfaces.Ledger
	Venue    interfaces.SwapVenue
	Pool     *wallets.Pool
	Notifier interfaces.Notifier

	// Price is optional; when set, summaries include a USD conversion.
	Price interfaces.PriceSource

	// Rand may be pre-seeded for deterministic runs; defaults to a
	// time-seeded source.
	Rand *rand.Rand

	mu         sync.Mutex
	tradeCount int
	volumeSOL  float64
	budgetLeft float64
}

// Snapshot returns the session's cumulative trade count and traded volume.
func (e *Engine) Snapshot() (int, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tradeCount, e.volumeSOL
}

// Run drives the session until a termination condition and returns the
// human-readable reason it stopped.
func (e *Engine) Run(ctx context.Context) string {
	if e.Rand == nil {
		e.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.budgetLeft = e.Config.BudgetSOL

	decimals, err := e.Ledger.TokenDecimals(ctx, e.Project.TokenMint)
	if err != nil {
		reason := fmt.Sprintf("could not resolve token decimals: %v", err)
		e.finish(ctx, reason)
		return reason
	}

	var selector wallets.Selector
	var reason string
	for {
		if ctx.Err() != nil {
			reason = "stopped"
			break
		}
		count, _ := e.Snapshot()
		if count >= e.Config.LimitTrades {
			reason = "trade limit reached"
			break
		}
		if e.Config.BudgetMode == BudgetFixed && e.budgetLeft < e.Config.BuyMinSOL {
			reason = "budget spent"
			break
		}

		funded := e.Pool.Funded(ctx, e.Project.WorkerWallets, e.Config.MinSOLBalance)
		if len(funded) == 0 {
			reason = "no funded wallets remain"
			break
		}

		w, _ := selector.Pick(funded)
		if e.Rand.Float64()*100 < float64(e.Config.BuyRatio) {
			e.tryBuy(ctx, w)
		} else {
			e.trySell(ctx, w, decimals)
		}

		if !e.wait(ctx) {
			reason = "stopped"
			break
		}
	}

	e.finish(ctx, reason)
	return reason
}

func (e *Engine) tryBuy(ctx context.Context, w types.Wallet) {
	amount := roundTo4(e.Config.BuyMinSOL + e.Rand.Float64()*(e.Config.BuyMaxSOL-e.Config.BuyMinSOL))
	if e.Config.BudgetMode == BudgetFixed && amount > e.budgetLeft {
		amount = roundTo4(e.budgetLeft)
	}
	if amount <= 0 {
		return
	}

	needed := amount + e.Config.MinSOLBalance + e.Config.FeeBufferSOL
	if e.Pool.BalanceOf(ctx, w.Address) < needed {
		logger.Debug(ctx, "Wallet cannot cover buy, skipping iteration",
			"session", e.ID, "wallet", w.Address, "amount", amount)
		return
	}

	lamports := uint64(math.Round(amount * lamportsPerSOL))
	sig, err := e.executeSwap(ctx, w, types.NativeMint, e.Project.TokenMint, lamports, e.Config.BuySlippageBps)
	if err != nil {
		e.reportFailure(ctx, "BUY", amount, w, err)
		return
	}
	e.recordTrade(ctx, "BUY", amount, w, sig)

	if e.Config.BudgetMode == BudgetFixed {
		e.budgetLeft -= amount
	}
}

func (e *Engine) trySell(ctx context.Context, w types.Wallet, decimals uint8) {
	bal := e.Pool.TokenBalanceOf(ctx, w.Address, e.Project.TokenMint)
	if bal <= 0 || bal < e.Config.SellMinSOL {
		logger.Debug(ctx, "Nothing to sell, skipping iteration",
			"session", e.ID, "wallet", w.Address, "balance", bal)
		return
	}

	raw := uint64(math.Round(bal * math.Pow10(int(decimals))))
	sig, err := e.executeSwap(ctx, w, e.Project.TokenMint, types.NativeMint, raw, e.Config.SellSlippageBps)
	if err != nil {
		e.reportFailure(ctx, "SELL", bal, w, err)
		return
	}
	e.recordTrade(ctx, "SELL", bal, w, sig)
}

func (e *Engine) executeSwap(ctx context.Context, w types.Wallet, inMint, outMint string, amount uint64, slippageBps int) (string, error) {
	timer := logger.StartOperation(ctx, "session.swap",
		"session", e.ID, "wallet", w.Address, "in_mint", inMint, "out_mint", outMint)
	sig, err := e.swapOnce(timer.GetContext(), w, inMint, outMint, amount, slippageBps)
	if err != nil {
		timer.EndWithError(err)
		return "", err
	}
	timer.End("signature", sig)
	return sig, nil
}

func (e *Engine) swapOnce(ctx context.Context, w types.Wallet, inMint, outMint string, amount uint64, slippageBps int) (string, error) {
	quote, err := e.Venue.Quote(ctx, inMint, outMint, amount, slippageBps)
	if err != nil {
		return "", fmt.Errorf("quote: %w", err)
	}
	txBytes, err := e.Venue.BuildSwapTransaction(ctx, quote, w.Address)
	if err != nil {
		return "", fmt.Errorf("build swap: %w", err)
	}
	signer, err := e.Pool.SignerFor(w)
	if err != nil {
		return "", fmt.Errorf("signer: %w", err)
	}
	sig, err := e.Ledger.SignAndSubmit(ctx, txBytes, signer)
	if err != nil {
		return "", fmt.Errorf("submit: %w", err)
	}
	if err := e.Ledger.Confirm(ctx, sig); err != nil {
		return "", fmt.Errorf("confirm: %w", err)
	}
	return sig, nil
}

func (e *Engine) recordTrade(ctx context.Context, side string, amount float64, w types.Wallet, sig string) {
	e.mu.Lock()
	e.tradeCount++
	if side == "BUY" {
		e.volumeSOL += amount
	}
	count := e.tradeCount
	e.mu.Unlock()

	logger.Trade(ctx, e.ID, side, amount, w.Address, sig)
	if err := tradelog.Append(tradelog.Entry{
		Session: e.ID, Mint: e.Project.TokenMint, Side: side,
		Wallet: w.Address, Signature: sig, AmountSOL: amount,
	}); err != nil {
		logger.Warn(ctx, "Failed to journal trade", "error", err)
	}

	text := fmt.Sprintf("%s %.4f | trade %d/%d | %s", side, amount, count, e.Config.LimitTrades, sig)
	if err := e.Notifier.SendWithCancel(ctx, e.ChannelID, text, "stop:"+e.ID); err != nil {
		logger.Warn(ctx, "Failed to notify trade", "session", e.ID, "error", err)
	}
}

func (e *Engine) reportFailure(ctx context.Context, side string, amount float64, w types.Wallet, err error) {
	logger.ErrorWithErr(ctx, "Trade failed, session continues", err,
		"session", e.ID, "side", side, "amount", amount, "wallet", w.Address)
	text := fmt.Sprintf("%s %.4f failed: %v", side, amount, err)
	if nerr := e.Notifier.Send(ctx, e.ChannelID, text); nerr != nil {
		logger.Warn(ctx, "Failed to notify trade failure", "session", e.ID, "error", nerr)
	}
}

// wait sleeps a uniform-random duration in the configured interval range.
// Returns false if cancelled while waiting.
func (e *Engine) wait(ctx context.Context) bool {
	span := e.Config.IntervalMax - e.Config.IntervalMin
	d := e.Config.IntervalMin
	if span > 0 {
		d += time.Duration(e.Rand.Int63n(int64(span)))
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (e *Engine) finish(ctx context.Context, reason string) {
	count, volume := e.Snapshot()
	logger.Info(ctx, "Session finished",
		"session", e.ID, "reason", reason, "trades", count, "volume_sol", volume)

	// notify on a fresh context: the session's own context is likely cancelled
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	text := fmt.Sprintf("Session ended (%s): %s", reason, formatProgress(nctx, e.Price, count, volume))
	if err := e.Notifier.Send(nctx, e.ChannelID, text); err != nil {
		logger.Warn(ctx, "Failed to notify session summary", "session", e.ID, "error", err)
	}
}

// formatProgress renders trade count and volume, appending the USD value
// when a price source is available and responsive.
func formatProgress(ctx context.Context, price interfaces.PriceSource, count int, volume float64) string {
	text := fmt.Sprintf("%d trades, %.4f SOL volume", count, volume)
	if price != nil {
		if usd, err := price.SolUSD(ctx); err == nil {
			text = fmt.Sprintf("%s (~$%.2f)", text, volume*usd)
		}
	}
	return text
}

func roundTo4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
