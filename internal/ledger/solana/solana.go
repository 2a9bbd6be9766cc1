package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	bin "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"sol-volume-bot/internal/interfaces"
	"sol-volume-bot/internal/types"
)

const lamportsPerSOL = 1e9

// Client is the Solana implementation of the Ledger capability. Calls are
// spread round-robin across the configured RPC endpoints so one rate-limited
// key does not stall a session.
type Client struct {
	endpoints []string
	clients   []*rpc.Client
	next      atomic.Uint64
}

var _ interfaces.Ledger = (*Client)(nil)

func New(endpoints []string) (*Client, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("at least one RPC endpoint required")
	}
	clients := make([]*rpc.Client, 0, len(endpoints))
	for _, ep := range endpoints {
		clients = append(clients, rpc.New(ep))
	}
	return &Client{endpoints: endpoints, clients: clients}, nil
}

func (c *Client) rpc() *rpc.Client {
	n := c.next.Add(1)
	return c.clients[int(n)%len(c.clients)]
}

// Balance returns the address's native balance in SOL.
func (c *Client) Balance(ctx context.Context, address string) (float64, error) {
	pub, err := solanago.PublicKeyFromBase58(address)
	if err != nil {
		return 0, fmt.Errorf("parse address: %w", err)
	}
	out, err := c.rpc().GetBalance(ctx, pub, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, classify(err)
	}
	return float64(out.Value) / lamportsPerSOL, nil
}

// parsedTokenAccount is the jsonParsed shape of an SPL token account.
type parsedTokenAccount struct {
	Parsed struct {
		Info struct {
			TokenAmount struct {
				Amount   string `json:"amount"`
				Decimals uint8  `json:"decimals"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

// TokenBalance sums every token account the owner holds for the mint and
// returns the total in UI units.
func (c *Client) TokenBalance(ctx context.Context, address, mint string) (float64, error) {
	owner, err := solanago.PublicKeyFromBase58(address)
	if err != nil {
		return 0, fmt.Errorf("parse address: %w", err)
	}
	mintPub, err := solanago.PublicKeyFromBase58(mint)
	if err != nil {
		return 0, fmt.Errorf("parse mint: %w", err)
	}

	out, err := c.rpc().GetTokenAccountsByOwner(ctx, owner,
		&rpc.GetTokenAccountsConfig{Mint: &mintPub},
		&rpc.GetTokenAccountsOpts{Encoding: solanago.EncodingJSONParsed},
	)
	if err != nil {
		return 0, classify(err)
	}

	var totalRaw uint64
	var decimals uint8
	for _, acc := range out.Value {
		raw := acc.Account.Data.GetRawJSON()
		var parsed parsedTokenAccount
		if err := json.Unmarshal(raw, &parsed); err != nil {
			continue
		}
		var amt uint64
		if _, err := fmt.Sscanf(parsed.Parsed.Info.TokenAmount.Amount, "%d", &amt); err != nil {
			continue
		}
		totalRaw += amt
		decimals = parsed.Parsed.Info.TokenAmount.Decimals
	}
	if totalRaw == 0 {
		return 0, nil
	}
	return float64(totalRaw) / pow10(decimals), nil
}

// TokenDecimals resolves the mint's precision from its supply record.
func (c *Client) TokenDecimals(ctx context.Context, mint string) (uint8, error) {
	mintPub, err := solanago.PublicKeyFromBase58(mint)
	if err != nil {
		return 0, fmt.Errorf("parse mint: %w", err)
	}
	out, err := c.rpc().GetTokenSupply(ctx, mintPub, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, classify(err)
	}
	return out.Value.Decimals, nil
}

func (c *Client) RecentSignatures(ctx context.Context, address string, limit int) ([]types.SignatureInfo, error) {
	pub, err := solanago.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("parse address: %w", err)
	}
	out, err := c.rpc().GetSignaturesForAddressWithOpts(ctx, pub, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, classify(err)
	}
	sigs := make([]types.SignatureInfo, 0, len(out))
	for _, s := range out {
		sigs = append(sigs, types.SignatureInfo{Signature: s.Signature.String(), Slot: s.Slot})
	}
	return sigs, nil
}

func (c *Client) Transaction(ctx context.Context, signature string) (*types.TransactionDetail, error) {
	sig, err := solanago.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("parse signature: %w", err)
	}
	maxVersion := uint64(0)
	out, err := c.rpc().GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Commitment:                     rpc.CommitmentFinalized,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		return nil, classify(err)
	}
	if out == nil || out.Meta == nil {
		return nil, types.ErrDataUnavailable
	}
	tx, err := out.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	accounts := make([]string, 0, len(tx.Message.AccountKeys))
	for _, k := range tx.Message.AccountKeys {
		accounts = append(accounts, k.String())
	}
	return &types.TransactionDetail{
		Signature:    signature,
		Slot:         out.Slot,
		Accounts:     accounts,
		PreBalances:  out.Meta.PreBalances,
		PostBalances: out.Meta.PostBalances,
	}, nil
}

// Checkpoint returns the current finalized slot.
func (c *Client) Checkpoint(ctx context.Context) (uint64, error) {
	slot, err := c.rpc().GetSlot(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return 0, classify(err)
	}
	return slot, nil
}

// SignAndSubmit signs a serialized transaction (typically the swap venue's
// payload) with the signer and submits it.
func (c *Client) SignAndSubmit(ctx context.Context, rawTx []byte, signer types.Signer) (string, error) {
	tx, err := solanago.TransactionFromDecoder(bin.NewBinDecoder(rawTx))
	if err != nil {
		return "", fmt.Errorf("decode raw transaction: %w", err)
	}

	msgBytes, err := tx.Message.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}
	sigBytes, err := signer.Sign(msgBytes)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}
	sig := solanago.SignatureFromBytes(sigBytes)

	numRequired := int(tx.Message.Header.NumRequiredSignatures)
	signerIdx := -1
	for i := 0; i < numRequired && i < len(tx.Message.AccountKeys); i++ {
		if tx.Message.AccountKeys[i].String() == signer.Address() {
			signerIdx = i
			break
		}
	}
	if signerIdx < 0 {
		return "", fmt.Errorf("signer %s is not a required signer of the transaction", signer.Address())
	}
	if len(tx.Signatures) < numRequired {
		tx.Signatures = make([]solanago.Signature, numRequired)
	}
	tx.Signatures[signerIdx] = sig

	out, err := c.rpc().SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", classify(err)
	}
	return out.String(), nil
}

// Confirm polls signature status until confirmed commitment or context end.
func (c *Client) Confirm(ctx context.Context, signature string) error {
	sig, err := solanago.SignatureFromBase58(signature)
	if err != nil {
		return fmt.Errorf("parse signature: %w", err)
	}
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		out, err := c.rpc().GetSignatureStatuses(ctx, false, sig)
		if err == nil && out != nil && len(out.Value) > 0 && out.Value[0] != nil {
			st := out.Value[0]
			if st.Err != nil {
				return fmt.Errorf("transaction %s failed on chain: %v", signature, st.Err)
			}
			if st.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				st.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// classify maps the RPC node's "queried data not in hot storage" failure to
// the sentinel callers poll through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "long-term storage") {
		return fmt.Errorf("%w: %v", types.ErrDataUnavailable, err)
	}
	return err
}

func pow10(decimals uint8) float64 {
	p := 1.0
	for i := uint8(0); i < decimals; i++ {
		p *= 10
	}
	return p
}
