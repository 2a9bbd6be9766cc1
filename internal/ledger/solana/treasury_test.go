package solana

import (
	"crypto/ed25519"
	"errors"
	"testing"

	solanago "github.com/gagliardetto/solana-go"

	"sol-volume-bot/internal/types"
)

func TestSplitPlanEvenSplit(t *testing.T) {
	amounts, err := splitPlan(1_000_005_000, 5_000, 0, []bool{true, true})
	if err != nil {
		t.Fatal(err)
	}
	if amounts[0] != 500_000_000 || amounts[1] != 500_000_000 {
		t.Errorf("amounts = %v, want even 500000000 each", amounts)
	}
}

func TestSplitPlanRemainderGoesToFirst(t *testing.T) {
	// 10 lamports over 3 destinations after fee: 3 each + 1 remainder
	amounts, err := splitPlan(5_010, 5_000, 0, []bool{true, true, true})
	if err != nil {
		t.Fatal(err)
	}
	if amounts[0] != 4 || amounts[1] != 3 || amounts[2] != 3 {
		t.Errorf("amounts = %v, want [4 3 3]", amounts)
	}
}

func TestSplitPlanRentTopUpForMissingAccounts(t *testing.T) {
	rent := uint64(890_880)
	amounts, err := splitPlan(1_000_000_000, 5_000, rent, []bool{false, true})
	if err != nil {
		t.Fatal(err)
	}
	distributable := uint64(1_000_000_000) - 5_000 - rent
	share := distributable / 2
	remainder := distributable - share*2
	if amounts[0] != share+rent+remainder {
		t.Errorf("missing account got %d, want share+rent+remainder = %d", amounts[0], share+rent+remainder)
	}
	if amounts[1] != share {
		t.Errorf("existing account got %d, want %d", amounts[1], share)
	}

	var total uint64
	for _, a := range amounts {
		total += a
	}
	if total != 1_000_000_000-5_000 {
		t.Errorf("total distributed %d, want balance minus fee %d", total, 1_000_000_000-5_000)
	}
}

func TestSplitPlanNothingToSend(t *testing.T) {
	cases := []struct {
		name    string
		balance uint64
		fee     uint64
		rent    uint64
		exists  []bool
	}{
		{"fee exceeds balance", 4_000, 5_000, 0, []bool{true}},
		{"rent topups exceed balance", 1_000_000, 5_000, 900_000, []bool{false, false}},
		{"share rounds to zero", 5_001, 5_000, 0, []bool{true, true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := splitPlan(tc.balance, tc.fee, tc.rent, tc.exists); !errors.Is(err, types.ErrNothingToSend) {
				t.Errorf("expected ErrNothingToSend, got %v", err)
			}
		})
	}
}

func TestSplitPlanNoDestinations(t *testing.T) {
	if _, err := splitPlan(1_000_000, 5_000, 0, nil); err == nil {
		t.Error("expected error for empty destination list")
	}
}

func TestWalletSecretRoundTrip(t *testing.T) {
	w := NewWallet()
	signer, err := SignerFor(w)
	if err != nil {
		t.Fatal(err)
	}
	if signer.Address() != w.Address {
		t.Errorf("signer address %s != wallet address %s", signer.Address(), w.Address)
	}
	sig, err := signer.Sign([]byte("message"))
	if err != nil {
		t.Fatal(err)
	}
	if len(sig) != 64 {
		t.Errorf("signature length %d, want 64", len(sig))
	}
}

// The raw ed25519 bytes a signer produces must survive conversion to the
// SDK's Signature type and still verify against the wallet's public key.
func TestSignerBytesConvertToSDKSignature(t *testing.T) {
	w := NewWallet()
	signer, err := SignerFor(w)
	if err != nil {
		t.Fatal(err)
	}

	msg := []byte("transaction message bytes")
	raw, err := signer.Sign(msg)
	if err != nil {
		t.Fatal(err)
	}

	sig := solanago.SignatureFromBytes(raw)
	pub := solanago.MustPublicKeyFromBase58(w.Address)
	if !ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig[:]) {
		t.Fatal("converted signature does not verify against the wallet key")
	}
}

func TestSignerForRejectsMismatchedAddress(t *testing.T) {
	w := NewWallet()
	w.Address = NewWallet().Address
	if _, err := SignerFor(w); err == nil {
		t.Error("expected mismatch error")
	}
}

func TestSignerForRejectsBadSecret(t *testing.T) {
	if _, err := SignerFor(types.Wallet{Secret: "zz"}); err == nil {
		t.Error("expected hex decode error")
	}
	if _, err := SignerFor(types.Wallet{Secret: "abcd"}); err == nil {
		t.Error("expected key length error")
	}
}
