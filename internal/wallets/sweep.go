package wallets

import (
	"context"
	"errors"
	"fmt"
	"math"

	"sol-volume-bot/internal/interfaces"
	"sol-volume-bot/internal/logger"
	"sol-volume-bot/internal/types"
)

// SellAllAndSweep liquidates every worker wallet's holding of the mint back
// into SOL and drains the proceeds to dest. Per-wallet failures are logged
// and skipped; the sweep keeps going so one stuck wallet does not strand the
// rest of the funds.
func (p *Pool) SellAllAndSweep(ctx context.Context, venue interfaces.SwapVenue, treasury interfaces.Treasury, ws []types.Wallet, mint, dest string, slippageBps int) error {
	if len(ws) == 0 {
		return types.ErrNoEligibleWallets
	}
	decimals, err := p.ledger.TokenDecimals(ctx, mint)
	if err != nil {
		return fmt.Errorf("resolve decimals for %s: %w", mint, err)
	}

	var failed int
	for _, w := range ws {
		if err := p.sellAndDrain(ctx, venue, treasury, w, mint, dest, decimals, slippageBps); err != nil {
			logger.Warn(ctx, "Sweep failed for wallet, continuing", "wallet", w.Address, "error", err)
			failed++
		}
	}
	if failed == len(ws) && len(ws) > 0 {
		return fmt.Errorf("sweep failed for all %d wallets", len(ws))
	}
	return nil
}

func (p *Pool) sellAndDrain(ctx context.Context, venue interfaces.SwapVenue, treasury interfaces.Treasury, w types.Wallet, mint, dest string, decimals uint8, slippageBps int) error {
	bal := p.TokenBalanceOf(ctx, w.Address, mint)
	if bal > 0 {
		raw := uint64(math.Round(bal * math.Pow10(int(decimals))))
		quote, err := venue.Quote(ctx, mint, types.NativeMint, raw, slippageBps)
		if err != nil {
			return fmt.Errorf("quote sell: %w", err)
		}
		txBytes, err := venue.BuildSwapTransaction(ctx, quote, w.Address)
		if err != nil {
			return fmt.Errorf("build sell: %w", err)
		}
		signer, err := p.signerFor(w)
		if err != nil {
			return err
		}
		sig, err := p.ledger.SignAndSubmit(ctx, txBytes, signer)
		if err != nil {
			return fmt.Errorf("submit sell: %w", err)
		}
		if err := p.ledger.Confirm(ctx, sig); err != nil {
			return fmt.Errorf("confirm sell: %w", err)
		}
	}

	_, err := treasury.DrainAll(ctx, w, dest)
	if errors.Is(err, types.ErrNothingToSend) {
		return nil
	}
	return err
}
