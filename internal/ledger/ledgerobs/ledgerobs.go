package ledgerobs

import (
	"context"

	"sol-volume-bot/internal/interfaces"
	"sol-volume-bot/internal/logger"
	"sol-volume-bot/internal/trace"
	"sol-volume-bot/internal/types"
)

// observableLedger wraps a Ledger with observability (logging & tracing)
type observableLedger struct {
	ledger interfaces.Ledger
}

// Compile-time interface check
var _ interfaces.Ledger = (*observableLedger)(nil)

// Wrap wraps a ledger with observability middleware
func Wrap(ledger interfaces.Ledger) interfaces.Ledger {
	return &observableLedger{
		ledger: ledger,
	}
}

// Balance returns the native balance with observability
func (ol *observableLedger) Balance(ctx context.Context, address string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "ledger.Balance")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching balance", "address", address)

	bal, err := ol.ledger.Balance(ctx, address)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch balance", err, "address", address)
		return 0, err
	}

	logger.DebugSkip(ctx, 1, "Balance fetched", "address", address, "sol", bal)
	return bal, nil
}

// TokenBalance returns the token balance with observability
func (ol *observableLedger) TokenBalance(ctx context.Context, address, mint string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "ledger.TokenBalance")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching token balance", "address", address, "mint", mint)

	bal, err := ol.ledger.TokenBalance(ctx, address, mint)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch token balance", err, "address", address, "mint", mint)
		return 0, err
	}

	logger.DebugSkip(ctx, 1, "Token balance fetched", "address", address, "mint", mint, "amount", bal)
	return bal, nil
}

// TokenDecimals resolves mint precision with observability
func (ol *observableLedger) TokenDecimals(ctx context.Context, mint string) (uint8, error) {
	ctx, span := trace.StartSpan(ctx, "ledger.TokenDecimals")
	defer span.End()

	decimals, err := ol.ledger.TokenDecimals(ctx, mint)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch token decimals", err, "mint", mint)
		return 0, err
	}
	return decimals, nil
}

// RecentSignatures lists recent signatures with observability
func (ol *observableLedger) RecentSignatures(ctx context.Context, address string, limit int) ([]types.SignatureInfo, error) {
	ctx, span := trace.StartSpan(ctx, "ledger.RecentSignatures")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching recent signatures", "address", address, "limit", limit)

	sigs, err := ol.ledger.RecentSignatures(ctx, address, limit)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch signatures", err, "address", address)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Signatures fetched", "address", address, "count", len(sigs))
	return sigs, nil
}

// Transaction fetches transaction detail with observability
func (ol *observableLedger) Transaction(ctx context.Context, signature string) (*types.TransactionDetail, error) {
	ctx, span := trace.StartSpan(ctx, "ledger.Transaction")
	defer span.End()

	detail, err := ol.ledger.Transaction(ctx, signature)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch transaction", err, "signature", signature)
		return nil, err
	}
	return detail, nil
}

// Checkpoint returns the current ledger position with observability
func (ol *observableLedger) Checkpoint(ctx context.Context) (uint64, error) {
	ctx, span := trace.StartSpan(ctx, "ledger.Checkpoint")
	defer span.End()

	slot, err := ol.ledger.Checkpoint(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch checkpoint", err)
		return 0, err
	}
	return slot, nil
}

// SignAndSubmit signs and submits a transaction with observability
func (ol *observableLedger) SignAndSubmit(ctx context.Context, rawTx []byte, signer types.Signer) (string, error) {
	ctx, span := trace.StartSpan(ctx, "ledger.SignAndSubmit")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Submitting transaction",
		"signer", signer.Address(),
		"size", len(rawTx),
	)

	sig, err := ol.ledger.SignAndSubmit(ctx, rawTx, signer)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to submit transaction", err, "signer", signer.Address())
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Transaction submitted", "signature", sig)
	return sig, nil
}

// Confirm waits for confirmation with observability
func (ol *observableLedger) Confirm(ctx context.Context, signature string) error {
	ctx, span := trace.StartSpan(ctx, "ledger.Confirm")
	defer span.End()

	if err := ol.ledger.Confirm(ctx, signature); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Transaction confirmation failed", err, "signature", signature)
		return err
	}

	logger.DebugSkip(ctx, 1, "Transaction confirmed", "signature", signature)
	return nil
}
