package solana

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"

	"sol-volume-bot/internal/types"
)

// NewWallet generates a fresh keypair. The secret is stored hex-encoded so it
// round-trips cleanly through JSON project records.
func NewWallet() types.Wallet {
	w := solanago.NewWallet()
	return types.Wallet{
		Address: w.PublicKey().String(),
		Secret:  hex.EncodeToString(w.PrivateKey),
	}
}

type keypairSigner struct {
	address string
	key     ed25519.PrivateKey
}

func (s *keypairSigner) Address() string { return s.address }

func (s *keypairSigner) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(s.key, message), nil
}

// SignerFor reconstructs a signer from a stored wallet record.
func SignerFor(w types.Wallet) (types.Signer, error) {
	raw, err := hex.DecodeString(w.Secret)
	if err != nil {
		return nil, fmt.Errorf("decode wallet secret: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("wallet secret has %d bytes, want %d", len(raw), ed25519.PrivateKeySize)
	}
	key := ed25519.PrivateKey(raw)
	pub := solanago.PublicKeyFromBytes(key.Public().(ed25519.PublicKey))
	if w.Address != "" && pub.String() != w.Address {
		return nil, fmt.Errorf("wallet secret does not match address %s", w.Address)
	}
	return &keypairSigner{address: pub.String(), key: key}, nil
}
