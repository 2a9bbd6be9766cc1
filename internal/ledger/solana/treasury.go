package solana

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"

	"sol-volume-bot/internal/interfaces"
	"sol-volume-bot/internal/types"
)

var _ interfaces.Treasury = (*Client)(nil)

// DrainAll sends the wallet's full balance minus the network fee to the
// destination. The fee is estimated against the live network with a probe
// message, never assumed constant.
func (c *Client) DrainAll(ctx context.Context, from types.Wallet, to string) (string, error) {
	signer, err := SignerFor(from)
	if err != nil {
		return "", err
	}
	fromPub, err := solanago.PublicKeyFromBase58(from.Address)
	if err != nil {
		return "", fmt.Errorf("parse source address: %w", err)
	}
	toPub, err := solanago.PublicKeyFromBase58(to)
	if err != nil {
		return "", fmt.Errorf("parse destination address: %w", err)
	}

	bal, err := c.rpc().GetBalance(ctx, fromPub, rpc.CommitmentConfirmed)
	if err != nil {
		return "", classify(err)
	}

	blockhash, err := c.rpc().GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return "", classify(err)
	}

	fee, err := c.estimateTransferFee(ctx, fromPub, []solanago.PublicKey{toPub}, blockhash.Value.Blockhash)
	if err != nil {
		return "", err
	}

	if bal.Value <= fee {
		return "", fmt.Errorf("%w: balance %d lamports, fee %d", types.ErrNothingToSend, bal.Value, fee)
	}
	lamports := bal.Value - fee

	tx, err := solanago.NewTransaction(
		[]solanago.Instruction{
			system.NewTransferInstruction(lamports, fromPub, toPub).Build(),
		},
		blockhash.Value.Blockhash,
		solanago.TransactionPayer(fromPub),
	)
	if err != nil {
		return "", fmt.Errorf("build transfer: %w", err)
	}
	return c.signSubmitConfirm(ctx, tx, signer)
}

// DistributeEvenly splits the wallet's balance across the destinations. Each
// destination that does not yet exist on chain gets the rent floor on top of
// its share so the transfer does not bounce; any indivisible remainder goes
// to the first destination.
func (c *Client) DistributeEvenly(ctx context.Context, from types.Wallet, to []string) (string, error) {
	if len(to) == 0 {
		return "", fmt.Errorf("no destinations")
	}
	signer, err := SignerFor(from)
	if err != nil {
		return "", err
	}
	fromPub, err := solanago.PublicKeyFromBase58(from.Address)
	if err != nil {
		return "", fmt.Errorf("parse source address: %w", err)
	}
	dests := make([]solanago.PublicKey, 0, len(to))
	for _, addr := range to {
		pub, err := solanago.PublicKeyFromBase58(addr)
		if err != nil {
			return "", fmt.Errorf("parse destination %s: %w", addr, err)
		}
		dests = append(dests, pub)
	}

	bal, err := c.rpc().GetBalance(ctx, fromPub, rpc.CommitmentConfirmed)
	if err != nil {
		return "", classify(err)
	}
	rent, err := c.rpc().GetMinimumBalanceForRentExemption(ctx, 0, rpc.CommitmentConfirmed)
	if err != nil {
		return "", classify(err)
	}

	exists := make([]bool, len(dests))
	for i, pub := range dests {
		_, err := c.rpc().GetAccountInfo(ctx, pub)
		switch {
		case err == nil:
			exists[i] = true
		case errors.Is(err, rpc.ErrNotFound):
			exists[i] = false
		default:
			return "", classify(err)
		}
	}

	blockhash, err := c.rpc().GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return "", classify(err)
	}
	fee, err := c.estimateTransferFee(ctx, fromPub, dests, blockhash.Value.Blockhash)
	if err != nil {
		return "", err
	}

	amounts, err := splitPlan(bal.Value, fee, rent, exists)
	if err != nil {
		return "", err
	}

	instrs := make([]solanago.Instruction, 0, len(dests))
	for i, pub := range dests {
		instrs = append(instrs, system.NewTransferInstruction(amounts[i], fromPub, pub).Build())
	}
	tx, err := solanago.NewTransaction(instrs, blockhash.Value.Blockhash, solanago.TransactionPayer(fromPub))
	if err != nil {
		return "", fmt.Errorf("build distribution: %w", err)
	}
	return c.signSubmitConfirm(ctx, tx, signer)
}

// splitPlan computes per-destination lamport amounts for an even split of
// balance minus fee, with rent top-ups for destinations missing on chain and
// the remainder assigned to the first destination.
func splitPlan(balance, fee, rent uint64, exists []bool) ([]uint64, error) {
	n := uint64(len(exists))
	if n == 0 {
		return nil, fmt.Errorf("no destinations")
	}
	topups := uint64(0)
	for _, ok := range exists {
		if !ok {
			topups += rent
		}
	}
	need := fee + topups
	if balance <= need {
		return nil, fmt.Errorf("%w: balance %d lamports, fee+rent %d", types.ErrNothingToSend, balance, need)
	}
	distributable := balance - need
	share := distributable / n
	if share == 0 {
		return nil, fmt.Errorf("%w: %d lamports across %d destinations", types.ErrNothingToSend, distributable, n)
	}
	remainder := distributable - share*n

	amounts := make([]uint64, len(exists))
	for i, ok := range exists {
		amounts[i] = share
		if !ok {
			amounts[i] += rent
		}
	}
	amounts[0] += remainder
	return amounts, nil
}

// estimateTransferFee asks the network what a transfer message with these
// participants would cost, using zero-lamport probe instructions.
func (c *Client) estimateTransferFee(ctx context.Context, from solanago.PublicKey, dests []solanago.PublicKey, blockhash solanago.Hash) (uint64, error) {
	instrs := make([]solanago.Instruction, 0, len(dests))
	for _, pub := range dests {
		instrs = append(instrs, system.NewTransferInstruction(0, from, pub).Build())
	}
	probe, err := solanago.NewTransaction(instrs, blockhash, solanago.TransactionPayer(from))
	if err != nil {
		return 0, fmt.Errorf("build fee probe: %w", err)
	}
	msgBytes, err := probe.Message.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("marshal fee probe: %w", err)
	}
	out, err := c.rpc().GetFeeForMessage(ctx, base64.StdEncoding.EncodeToString(msgBytes), rpc.CommitmentConfirmed)
	if err != nil {
		return 0, classify(err)
	}
	if out.Value == nil {
		return 0, fmt.Errorf("fee unavailable for message")
	}
	return *out.Value, nil
}

func (c *Client) signSubmitConfirm(ctx context.Context, tx *solanago.Transaction, signer types.Signer) (string, error) {
	msgBytes, err := tx.Message.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}
	sigBytes, err := signer.Sign(msgBytes)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}
	tx.Signatures = []solanago.Signature{solanago.SignatureFromBytes(sigBytes)}

	out, err := c.rpc().SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", classify(err)
	}
	if err := c.Confirm(ctx, out.String()); err != nil {
		return "", err
	}
	return out.String(), nil
}
