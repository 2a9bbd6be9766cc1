package wallets

import (
	"context"

	"sol-volume-bot/internal/interfaces"
	"sol-volume-bot/internal/logger"
	"sol-volume-bot/internal/types"
)

// Pool exposes worker-wallet queries to the engines. Balance reads fail
// soft: a single unreachable wallet must never halt a running session, so
// query errors are logged and reported as zero.
type Pool struct {
	ledger    interfaces.Ledger
	signerFor func(types.Wallet) (types.Signer, error)
}

func New(ledger interfaces.Ledger, signerFor func(types.Wallet) (types.Signer, error)) *Pool {
	return &Pool{ledger: ledger, signerFor: signerFor}
}

// BalanceOf returns the wallet's native balance in SOL, or zero on any
// query error.
func (p *Pool) BalanceOf(ctx context.Context, address string) float64 {
	bal, err := p.ledger.Balance(ctx, address)
	if err != nil {
		logger.Warn(ctx, "Balance query failed, treating as zero", "address", address, "error", err)
		return 0
	}
	return bal
}

// TokenBalanceOf returns the wallet's total holding of the mint in UI units,
// or zero on any query error.
func (p *Pool) TokenBalanceOf(ctx context.Context, address, mint string) float64 {
	bal, err := p.ledger.TokenBalance(ctx, address, mint)
	if err != nil {
		logger.Warn(ctx, "Token balance query failed, treating as zero", "address", address, "mint", mint, "error", err)
		return 0
	}
	return bal
}

// Funded returns the subset of wallets holding at least min SOL.
func (p *Pool) Funded(ctx context.Context, ws []types.Wallet, min float64) []types.Wallet {
	funded := make([]types.Wallet, 0, len(ws))
	for _, w := range ws {
		if p.BalanceOf(ctx, w.Address) >= min {
			funded = append(funded, w)
		}
	}
	return funded
}

// SignerFor reconstructs the signer for a pooled wallet.
func (p *Pool) SignerFor(w types.Wallet) (types.Signer, error) {
	return p.signerFor(w)
}

// Generate creates n fresh worker wallets with the supplied keypair factory.
func Generate(n int, newWallet func() types.Wallet) []types.Wallet {
	ws := make([]types.Wallet, 0, n)
	for i := 0; i < n; i++ {
		ws = append(ws, newWallet())
	}
	return ws
}

// Selector walks a candidate list round-robin, never handing out the same
// wallet twice in a row when more than one candidate exists. The candidate
// list may change between calls; selection wraps over whatever is passed in.
type Selector struct {
	next int
	last string
}

func (s *Selector) Pick(candidates []types.Wallet) (types.Wallet, bool) {
	if len(candidates) == 0 {
		return types.Wallet{}, false
	}
	idx := s.next % len(candidates)
	w := candidates[idx]
	if len(candidates) > 1 && w.Address == s.last {
		idx = (idx + 1) % len(candidates)
		w = candidates[idx]
	}
	s.next = idx + 1
	s.last = w.Address
	return w, true
}
