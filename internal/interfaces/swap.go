package interfaces

import (
	"context"

	"sol-volume-bot/internal/types"
)

// SwapVenue quotes and builds trades between two assets. Amounts are in the
// input asset's smallest unit.
type SwapVenue interface {
	Quote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*types.SwapQuote, error)
	// BuildSwapTransaction returns the serialized unsigned transaction that
	// executes the quote when signed by signerAddress and submitted.
	BuildSwapTransaction(ctx context.Context, quote *types.SwapQuote, signerAddress string) ([]byte, error)
}
