package wallets

import (
	"context"
	"math"

	"sol-volume-bot/internal/interfaces"
	"sol-volume-bot/internal/types"
)

// FreeAllocation is how many worker wallets a project gets at onboarding
// without payment.
const FreeAllocation = 5

// WalletPriceSOL is the price of each worker wallet beyond the free
// allocation.
const WalletPriceSOL = 0.016

// PackageCostSOL prices a purchase of n additional worker wallets.
func PackageCostSOL(n int) float64 {
	return math.Round(float64(n)*WalletPriceSOL*10000) / 10000
}

// FreeRemaining reports how many free worker wallets the project can still
// claim.
func FreeRemaining(p *types.Project) int {
	if n := FreeAllocation - len(p.WorkerWallets); n > 0 {
		return n
	}
	return 0
}

// GrantWorkers appends n fresh worker wallets to the project and returns
// them. The worker list is append-only; wallets are never removed.
func GrantWorkers(p *types.Project, n int, newWallet func() types.Wallet) []types.Wallet {
	granted := make([]types.Wallet, 0, n)
	for i := 0; i < n; i++ {
		w := newWallet()
		granted = append(granted, w)
		p.WorkerWallets = append(p.WorkerWallets, w)
	}
	return granted
}

// PurchaseWorkers grants n paid worker wallets to the owner's project,
// reading and writing through the store only. A running session keeps its
// own project snapshot; the new workers take effect on the next start.
func PurchaseWorkers(ctx context.Context, projects interfaces.ProjectStore, ownerID int64, mint string, n int, newWallet func() types.Wallet) ([]types.Wallet, error) {
	project, err := projects.Get(ctx, ownerID, mint)
	if err != nil {
		return nil, err
	}
	granted := GrantWorkers(project, n, newWallet)
	if err := projects.Upsert(ctx, project); err != nil {
		return nil, err
	}
	return granted, nil
}
