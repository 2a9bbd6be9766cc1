package interfaces

import (
	"context"

	"sol-volume-bot/internal/types"
)

// Ledger is the chain capability the engines consume. Every operation can
// fail transiently; callers treat failure as "unknown", not "false".
type Ledger interface {
	// Balance returns the native balance of the address, in SOL.
	Balance(ctx context.Context, address string) (float64, error)
	// TokenBalance sums every token account the address holds for the mint,
	// in UI units.
	TokenBalance(ctx context.Context, address, mint string) (float64, error)
	// TokenDecimals returns the mint's decimal precision.
	TokenDecimals(ctx context.Context, mint string) (uint8, error)
	// RecentSignatures lists the most recent transaction references
	// touching the address, newest first.
	RecentSignatures(ctx context.Context, address string, limit int) ([]types.SignatureInfo, error)
	// Transaction fetches balance movement detail for one signature.
	Transaction(ctx context.Context, signature string) (*types.TransactionDetail, error)
	// Checkpoint returns the current finalized ledger position.
	Checkpoint(ctx context.Context) (uint64, error)
	// SignAndSubmit signs a raw serialized transaction with the signer and
	// submits it, returning the signature reference.
	SignAndSubmit(ctx context.Context, rawTx []byte, signer types.Signer) (string, error)
	// Confirm blocks until the signature reaches confirmed commitment or
	// the context ends.
	Confirm(ctx context.Context, signature string) error
}

// Treasury moves native funds between project and worker wallets. Fees are
// estimated against the network, never assumed constant.
type Treasury interface {
	// DrainAll sends balance minus the exact network fee from the wallet to
	// the destination. Returns types.ErrNothingToSend when the computed
	// sendable amount is zero or negative.
	DrainAll(ctx context.Context, from types.Wallet, to string) (string, error)
	// DistributeEvenly splits balance-fee-rent evenly among destinations,
	// topping up destinations that do not exist on chain with the rent
	// floor and giving any remainder to the first destination.
	DistributeEvenly(ctx context.Context, from types.Wallet, to []string) (string, error)
}
