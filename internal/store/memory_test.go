package store

import (
	"context"
	"errors"
	"testing"

	"sol-volume-bot/internal/types"
)

func sampleProject(owner int64, mint string) *types.Project {
	return &types.Project{
		OwnerID:       owner,
		TokenMint:     mint,
		TokenName:     "Sample",
		Status:        "active",
		WorkerWallets: []types.Wallet{{Address: "w0", Secret: "s0"}},
		CustomSettings: map[string]float64{
			"buy_ratio": 60,
		},
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), 1, "MINT"); !errors.Is(err, types.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestMemoryStoreUpsertAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Upsert(ctx, sampleProject(1, "MINT")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, 1, "MINT")
	if err != nil {
		t.Fatal(err)
	}
	if got.TokenName != "Sample" || len(got.WorkerWallets) != 1 {
		t.Errorf("unexpected project: %+v", got)
	}

	// upsert replaces
	p := sampleProject(1, "MINT")
	p.Status = "paused"
	if err := s.Upsert(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get(ctx, 1, "MINT")
	if got.Status != "paused" {
		t.Errorf("status = %s after upsert, want paused", got.Status)
	}
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Upsert(ctx, sampleProject(1, "MINT"))

	got, _ := s.Get(ctx, 1, "MINT")
	got.WorkerWallets = append(got.WorkerWallets, types.Wallet{Address: "rogue"})
	got.CustomSettings["buy_ratio"] = 99

	again, _ := s.Get(ctx, 1, "MINT")
	if len(again.WorkerWallets) != 1 {
		t.Error("caller mutation leaked into the store")
	}
	if again.CustomSettings["buy_ratio"] != 60 {
		t.Error("settings mutation leaked into the store")
	}
}

func TestMemoryStoreListByOwner(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Upsert(ctx, sampleProject(1, "MINT-A"))
	_ = s.Upsert(ctx, sampleProject(1, "MINT-B"))
	_ = s.Upsert(ctx, sampleProject(2, "MINT-C"))

	got, err := s.ListByOwner(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("owner 1 has %d projects, want 2", len(got))
	}
}
