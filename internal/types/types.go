package types

import "encoding/json"

// NativeMint is the wrapped-SOL mint, the native side of every swap pair.
const NativeMint = "So11111111111111111111111111111111111111112"

// Wallet is a ledger account the bot controls. Created once, immutable
// thereafter; the secret is a hex-encoded ed25519 private key.
type Wallet struct {
	Address string `json:"pubkey"`
	Secret  string `json:"secret"`
}

// Signer signs raw transaction messages on behalf of one wallet.
type Signer interface {
	Address() string
	Sign(message []byte) ([]byte, error)
}

// Project is one onboarded token for one owner. The worker wallet list is
// append-only and wallets are never shared across projects.
type Project struct {
	OwnerID        int64              `json:"owner_id"`
	TokenMint      string             `json:"token_mint"`
	TokenName      string             `json:"token_name"`
	Status         string             `json:"status"`
	OnboardedAt    string             `json:"date_onboarded"`
	ProjectWallet  *Wallet            `json:"project_wallet"`
	WorkerWallets  []Wallet           `json:"worker_wallets"`
	CustomSettings map[string]float64 `json:"volume_custom_settings,omitempty"`
}

// SignatureInfo is one entry of an address's recent transaction history.
type SignatureInfo struct {
	Signature string
	Slot      uint64
}

// TransactionDetail carries the per-account balance movement of one
// confirmed transaction, in lamports.
type TransactionDetail struct {
	Signature    string
	Slot         uint64
	Accounts     []string
	PreBalances  []uint64
	PostBalances []uint64
}

// SwapQuote is an executable quote from the swap venue. Raw is the venue's
// quote envelope and is passed back verbatim when building the transaction.
type SwapQuote struct {
	InputMint   string
	OutputMint  string
	InAmount    uint64
	OutAmount   uint64
	SlippageBps int
	Raw         json.RawMessage
}

// TradeResult reports one executed trade back to the session loop.
type TradeResult struct {
	Side      string  `json:"side"` // "BUY" or "SELL"
	Amount    float64 `json:"amount"`
	Wallet    string  `json:"wallet"`
	Signature string  `json:"signature"`
}

// TokenInfo is display metadata for a mint, used during onboarding.
type TokenInfo struct {
	Name     string
	Symbol   string
	Decimals uint8
	Supply   uint64
	LogoURI  string
}
