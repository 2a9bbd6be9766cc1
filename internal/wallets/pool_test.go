package wallets

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"sol-volume-bot/internal/store"
	"sol-volume-bot/internal/types"
)

type stubLedger struct {
	balances      map[string]float64
	tokenBalances map[string]float64
	balanceErr    error
}

func (s *stubLedger) Balance(ctx context.Context, address string) (float64, error) {
	if s.balanceErr != nil {
		return 0, s.balanceErr
	}
	return s.balances[address], nil
}
func (s *stubLedger) TokenBalance(ctx context.Context, address, mint string) (float64, error) {
	if s.balanceErr != nil {
		return 0, s.balanceErr
	}
	return s.tokenBalances[address], nil
}
func (s *stubLedger) TokenDecimals(ctx context.Context, mint string) (uint8, error) { return 9, nil }
func (s *stubLedger) RecentSignatures(ctx context.Context, address string, limit int) ([]types.SignatureInfo, error) {
	return nil, nil
}
func (s *stubLedger) Transaction(ctx context.Context, signature string) (*types.TransactionDetail, error) {
	return nil, nil
}
func (s *stubLedger) Checkpoint(ctx context.Context) (uint64, error) { return 0, nil }
func (s *stubLedger) SignAndSubmit(ctx context.Context, rawTx []byte, signer types.Signer) (string, error) {
	return "", nil
}
func (s *stubLedger) Confirm(ctx context.Context, signature string) error { return nil }

func stubSigner(w types.Wallet) (types.Signer, error) { return nil, errors.New("unused") }

func addrWallets(n int) []types.Wallet {
	ws := make([]types.Wallet, 0, n)
	for i := 0; i < n; i++ {
		ws = append(ws, types.Wallet{Address: fmt.Sprintf("w%d", i)})
	}
	return ws
}

func TestBalanceOfFailsSoft(t *testing.T) {
	pool := New(&stubLedger{balanceErr: errors.New("node down")}, stubSigner)
	if got := pool.BalanceOf(context.Background(), "w0"); got != 0 {
		t.Errorf("BalanceOf on error = %f, want 0", got)
	}
	if got := pool.TokenBalanceOf(context.Background(), "w0", "mint"); got != 0 {
		t.Errorf("TokenBalanceOf on error = %f, want 0", got)
	}
}

func TestFundedFiltersByFloor(t *testing.T) {
	pool := New(&stubLedger{balances: map[string]float64{
		"w0": 0.5, "w1": 0.001, "w2": 0.0009,
	}}, stubSigner)

	funded := pool.Funded(context.Background(), addrWallets(3), 0.001)
	if len(funded) != 2 {
		t.Fatalf("funded = %d wallets, want 2", len(funded))
	}
	if funded[0].Address != "w0" || funded[1].Address != "w1" {
		t.Errorf("funded order = %s, %s; want w0, w1", funded[0].Address, funded[1].Address)
	}
}

func TestSelectorNeverRepeatsImmediately(t *testing.T) {
	ws := addrWallets(3)
	var sel Selector
	prev := ""
	for i := 0; i < 50; i++ {
		w, ok := sel.Pick(ws)
		if !ok {
			t.Fatal("expected a pick")
		}
		if w.Address == prev {
			t.Fatalf("iteration %d repeated wallet %s", i, w.Address)
		}
		prev = w.Address
	}
}

func TestSelectorSingleCandidateRepeats(t *testing.T) {
	ws := addrWallets(1)
	var sel Selector
	for i := 0; i < 3; i++ {
		w, ok := sel.Pick(ws)
		if !ok || w.Address != "w0" {
			t.Fatalf("expected w0 every time with one candidate, got %v %v", w.Address, ok)
		}
	}
}

func TestSelectorSurvivesShrinkingSet(t *testing.T) {
	var sel Selector
	sel.Pick(addrWallets(5))
	sel.Pick(addrWallets(5))
	// set shrinks mid-session as wallets drain
	if _, ok := sel.Pick(addrWallets(2)); !ok {
		t.Fatal("expected a pick from the smaller set")
	}
	if _, ok := sel.Pick(nil); ok {
		t.Fatal("expected no pick from an empty set")
	}
}

func TestGenerate(t *testing.T) {
	i := 0
	ws := Generate(4, func() types.Wallet {
		i++
		return types.Wallet{Address: fmt.Sprintf("gen%d", i)}
	})
	if len(ws) != 4 || ws[3].Address != "gen4" {
		t.Errorf("Generate produced %v", ws)
	}
}

func TestGrantWorkersAppendsOnly(t *testing.T) {
	p := &types.Project{WorkerWallets: addrWallets(2)}
	i := 0
	granted := GrantWorkers(p, 3, func() types.Wallet {
		i++
		return types.Wallet{Address: fmt.Sprintf("new%d", i)}
	})

	if len(granted) != 3 {
		t.Fatalf("granted = %d, want 3", len(granted))
	}
	if len(p.WorkerWallets) != 5 {
		t.Fatalf("project has %d workers, want 5", len(p.WorkerWallets))
	}
	// existing wallets untouched, new ones appended in order
	if p.WorkerWallets[0].Address != "w0" || p.WorkerWallets[4].Address != "new3" {
		t.Errorf("unexpected worker order: %v", p.WorkerWallets)
	}
}

func TestPurchaseWorkersWritesThroughStore(t *testing.T) {
	ctx := context.Background()
	projects := store.NewMemoryStore()
	if err := projects.Upsert(ctx, &types.Project{OwnerID: 7, TokenMint: "MintA", WorkerWallets: addrWallets(5)}); err != nil {
		t.Fatal(err)
	}
	// the snapshot a running session would hold
	snapshot, err := projects.Get(ctx, 7, "MintA")
	if err != nil {
		t.Fatal(err)
	}

	i := 0
	granted, err := PurchaseWorkers(ctx, projects, 7, "MintA", 3, func() types.Wallet {
		i++
		return types.Wallet{Address: fmt.Sprintf("paid%d", i)}
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(granted) != 3 {
		t.Fatalf("granted = %d, want 3", len(granted))
	}
	if len(snapshot.WorkerWallets) != 5 {
		t.Errorf("session snapshot has %d workers after purchase, want 5", len(snapshot.WorkerWallets))
	}
	stored, err := projects.Get(ctx, 7, "MintA")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.WorkerWallets) != 8 {
		t.Errorf("stored project has %d workers, want 8", len(stored.WorkerWallets))
	}
}

func TestPurchaseWorkersMissingProject(t *testing.T) {
	_, err := PurchaseWorkers(context.Background(), store.NewMemoryStore(), 7, "MintA", 1, func() types.Wallet {
		return types.Wallet{}
	})
	if !errors.Is(err, types.ErrProjectNotFound) {
		t.Fatalf("err = %v, want ErrProjectNotFound", err)
	}
}

func TestFreeRemaining(t *testing.T) {
	if got := FreeRemaining(&types.Project{}); got != FreeAllocation {
		t.Errorf("fresh project free remaining = %d, want %d", got, FreeAllocation)
	}
	if got := FreeRemaining(&types.Project{WorkerWallets: addrWallets(7)}); got != 0 {
		t.Errorf("over-allocated project free remaining = %d, want 0", got)
	}
}

func TestPackageCostSOL(t *testing.T) {
	if got := PackageCostSOL(5); got != 0.08 {
		t.Errorf("5-pack cost = %.4f, want 0.08", got)
	}
	if got := PackageCostSOL(0); got != 0 {
		t.Errorf("empty package cost = %.4f, want 0", got)
	}
}
