package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"sol-volume-bot/internal/interfaces"
	"sol-volume-bot/internal/logger"
	"sol-volume-bot/internal/tradelog"
	"sol-volume-bot/internal/types"
)

const lamportsPerSOL = 1e9

// ErrTimeout is returned when no matching deposit arrives before the watch
// deadline.
var ErrTimeout = errors.New("payment watch timed out")

// MatchFunc fulfils a detected payment. It is invoked at most once per
// watch.
type MatchFunc func(ctx context.Context, detail *types.TransactionDetail, receivedSOL float64) error

// Watcher polls an address's transaction history for an incoming deposit of
// an expected amount. Only transactions strictly after the checkpoint taken
// at start are eligible, so a deposit made before the watch began can never
// satisfy it.
type Watcher struct {
	RequesterID string
	Address     string
	ExpectedSOL float64

	Poll         time.Duration
	Timeout      time.Duration
	HistoryLimit int
	Epsilon      float64

	Ledger    interfaces.Ledger
	Notifier  interfaces.Notifier
	ChannelID int64
	OnMatch   MatchFunc
}

// Run polls until a match, the timeout, or cancellation. Returns nil on a
// fulfilled match, ErrTimeout on deadline, or the context's error.
func (w *Watcher) Run(ctx context.Context) error {
	checkpoint, err := w.Ledger.Checkpoint(ctx)
	if err != nil {
		return fmt.Errorf("record checkpoint: %w", err)
	}
	logger.Info(ctx, "Watching for payment",
		"requester", w.RequesterID, "address", w.Address,
		"expected_sol", w.ExpectedSOL, "checkpoint", checkpoint)

	deadline := time.NewTimer(w.Timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(w.Poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			w.notify(ctx, fmt.Sprintf("Payment of %.4f SOL not received in time", w.ExpectedSOL))
			return ErrTimeout
		case <-ticker.C:
		}

		detail, received, found := w.scan(ctx, checkpoint)
		if !found {
			continue
		}
		if err := w.OnMatch(ctx, detail, received); err != nil {
			logger.ErrorWithErr(ctx, "Payment fulfillment failed", err,
				"requester", w.RequesterID, "signature", detail.Signature)
			return fmt.Errorf("fulfill payment: %w", err)
		}
		if err := tradelog.AppendPayment(tradelog.PaymentEntry{
			Requester: w.RequesterID, Wallet: w.Address,
			Signature: detail.Signature, Slot: detail.Slot,
			ExpectedSOL: w.ExpectedSOL, ReceivedSOL: received,
		}); err != nil {
			logger.Warn(ctx, "Failed to journal payment", "error", err)
		}
		w.notify(ctx, fmt.Sprintf("Payment of %.4f SOL received (%s)", received, detail.Signature))
		return nil
	}
}

// scan inspects one poll cycle's worth of history. Every failure inside a
// cycle is non-fatal: it is logged and treated as "no match yet".
func (w *Watcher) scan(ctx context.Context, checkpoint uint64) (*types.TransactionDetail, float64, bool) {
	sigs, err := w.Ledger.RecentSignatures(ctx, w.Address, w.HistoryLimit)
	if err != nil {
		logger.Warn(ctx, "History poll failed, retrying next cycle",
			"requester", w.RequesterID, "error", err)
		return nil, 0, false
	}

	for _, s := range sigs {
		if s.Slot <= checkpoint {
			continue
		}
		detail, err := w.Ledger.Transaction(ctx, s.Signature)
		if err != nil {
			if errors.Is(err, types.ErrDataUnavailable) {
				logger.Debug(ctx, "Transaction not yet queryable", "signature", s.Signature)
			} else {
				logger.Warn(ctx, "Transaction fetch failed, skipping",
					"signature", s.Signature, "error", err)
			}
			continue
		}
		delta, ok := balanceDelta(detail, w.Address)
		if !ok {
			continue
		}
		if math.Abs(delta-w.ExpectedSOL) < w.Epsilon {
			return detail, delta, true
		}
	}
	return nil, 0, false
}

// balanceDelta computes the address's SOL movement across the transaction,
// post minus pre. Returns false when the address is not a participant.
func balanceDelta(detail *types.TransactionDetail, address string) (float64, bool) {
	for i, acct := range detail.Accounts {
		if acct != address {
			continue
		}
		if i >= len(detail.PreBalances) || i >= len(detail.PostBalances) {
			return 0, false
		}
		return (float64(detail.PostBalances[i]) - float64(detail.PreBalances[i])) / lamportsPerSOL, true
	}
	return 0, false
}

func (w *Watcher) notify(ctx context.Context, text string) {
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := w.Notifier.Send(nctx, w.ChannelID, text); err != nil {
		logger.Warn(ctx, "Failed to notify payment status", "requester", w.RequesterID, "error", err)
	}
}
