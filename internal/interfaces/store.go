package interfaces

import (
	"context"

	"sol-volume-bot/internal/types"
)

// ProjectStore persists flat per-owner project records. Implementations
// must be safe for concurrent use; engines share no other state.
type ProjectStore interface {
	Get(ctx context.Context, ownerID int64, tokenMint string) (*types.Project, error)
	Upsert(ctx context.Context, project *types.Project) error
	ListByOwner(ctx context.Context, ownerID int64) ([]types.Project, error)
}

// PriceSource resolves the native asset's reference price in USD. A zero
// return with non-nil error means "unknown".
type PriceSource interface {
	SolUSD(ctx context.Context) (float64, error)
}
