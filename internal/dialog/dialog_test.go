package dialog

import (
	"context"
	"errors"
	"testing"
)

func TestDispatchRoutesAwaitedInput(t *testing.T) {
	m := NewMachine()
	d := NewDispatcher(m)

	var got string
	d.Register(KindWithdrawAddress, func(ctx context.Context, chatID int64, input string) error {
		got = input
		return nil
	})

	m.Await(7, KindWithdrawAddress)
	if err := d.Dispatch(context.Background(), 7, "some-address"); err != nil {
		t.Fatal(err)
	}
	if got != "some-address" {
		t.Errorf("handler got %q", got)
	}
	// chat is idle again after one delivery
	if m.Current(7) != KindNone {
		t.Errorf("state after dispatch = %q, want idle", m.Current(7))
	}
	if err := d.Dispatch(context.Background(), 7, "again"); !errors.Is(err, ErrNotAwaiting) {
		t.Errorf("second dispatch = %v, want ErrNotAwaiting", err)
	}
}

func TestDispatchIdleChat(t *testing.T) {
	d := NewDispatcher(NewMachine())
	if err := d.Dispatch(context.Background(), 1, "hello"); !errors.Is(err, ErrNotAwaiting) {
		t.Errorf("idle dispatch = %v, want ErrNotAwaiting", err)
	}
}

func TestAwaitLastWriteWins(t *testing.T) {
	m := NewMachine()
	d := NewDispatcher(m)

	calls := map[InputKind]int{}
	for _, k := range []InputKind{KindTokenMint, KindCustomSetting} {
		kind := k
		d.Register(kind, func(ctx context.Context, chatID int64, input string) error {
			calls[kind]++
			return nil
		})
	}

	m.Await(1, KindTokenMint)
	m.Await(1, KindCustomSetting) // replaces the pending prompt
	if err := d.Dispatch(context.Background(), 1, "50"); err != nil {
		t.Fatal(err)
	}
	if calls[KindTokenMint] != 0 || calls[KindCustomSetting] != 1 {
		t.Errorf("calls = %v, want only the latest prompt handled", calls)
	}
}

func TestChatsAreIndependent(t *testing.T) {
	m := NewMachine()
	m.Await(1, KindTokenMint)
	if m.Current(2) != KindNone {
		t.Error("chat 2 should be idle")
	}
	m.Clear(1)
	if m.Current(1) != KindNone {
		t.Error("chat 1 should be idle after clear")
	}
}

func TestUnregisteredKindResetsState(t *testing.T) {
	m := NewMachine()
	d := NewDispatcher(m)

	m.Await(1, KindConfirmOnboard)
	if err := d.Dispatch(context.Background(), 1, "yes"); err == nil {
		t.Fatal("expected error for unregistered kind")
	}
	if m.Current(1) != KindNone {
		t.Error("state should reset even without a handler")
	}
}

func TestHandlerCanPromptForNextInput(t *testing.T) {
	m := NewMachine()
	d := NewDispatcher(m)

	d.Register(KindTokenMint, func(ctx context.Context, chatID int64, input string) error {
		m.Await(chatID, KindConfirmOnboard)
		return nil
	})
	d.Register(KindConfirmOnboard, func(ctx context.Context, chatID int64, input string) error {
		return nil
	})

	m.Await(1, KindTokenMint)
	if err := d.Dispatch(context.Background(), 1, "MintAddr"); err != nil {
		t.Fatal(err)
	}
	if m.Current(1) != KindConfirmOnboard {
		t.Errorf("state = %q, want confirm_onboard chained by the handler", m.Current(1))
	}
}
