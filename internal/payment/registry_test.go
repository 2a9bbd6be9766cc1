package payment

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"sol-volume-bot/internal/types"
)

func idleWatcher(ledger *scriptedLedger) *Watcher {
	return newWatcher(ledger, 0.08, time.Hour, func(ctx context.Context, d *types.TransactionDetail, got float64) error {
		return nil
	})
}

func TestStartSupersedesPriorWatch(t *testing.T) {
	reg := NewRegistry()
	ledger := &scriptedLedger{checkpoint: 100}

	reg.Start(context.Background(), idleWatcher(ledger))
	// second watch for the same requester cancels and awaits the first
	reg.Start(context.Background(), idleWatcher(ledger))

	if !reg.Stop("req-1") {
		t.Fatal("expected one live watch after supersede")
	}
	if reg.Stop("req-1") {
		t.Error("expected no remaining watch")
	}
}

func TestWatchRemovesItselfOnMatch(t *testing.T) {
	ledger := &scriptedLedger{
		checkpoint: 100,
		sigs:       []types.SignatureInfo{{Signature: "x", Slot: 101}},
		txs:        map[string]*types.TransactionDetail{"x": depositTx("x", 101, 0.08)},
	}

	var calls atomic.Int32
	w := newWatcher(ledger, 0.08, time.Second, func(ctx context.Context, d *types.TransactionDetail, got float64) error {
		calls.Add(1)
		return nil
	})

	reg := NewRegistry()
	reg.Start(context.Background(), w)

	deadline := time.After(2 * time.Second)
	for calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("watch never matched")
		case <-time.After(time.Millisecond):
		}
	}
	// after fulfillment the registry slot empties on its own
	deadline = time.After(2 * time.Second)
	for reg.Stop("req-1") {
		select {
		case <-deadline:
			t.Fatal("watch still registered after match")
		case <-time.After(time.Millisecond):
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("fulfillments = %d, want 1", got)
	}
}

func TestStopAllWaits(t *testing.T) {
	reg := NewRegistry()
	ledger := &scriptedLedger{checkpoint: 100}

	w1 := idleWatcher(ledger)
	w2 := idleWatcher(ledger)
	w2.RequesterID = "req-2"
	reg.Start(context.Background(), w1)
	reg.Start(context.Background(), w2)

	reg.StopAll()
	if reg.Stop("req-1") || reg.Stop("req-2") {
		t.Error("expected all watches stopped")
	}
}
