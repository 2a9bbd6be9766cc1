package dryrun

import (
	"context"

	"github.com/google/uuid"

	"sol-volume-bot/internal/interfaces"
	"sol-volume-bot/internal/logger"
	"sol-volume-bot/internal/types"
)

// simulatedLedger passes reads through to the real chain but fakes
// submission, so DRY_RUN sessions exercise the full trade path without
// spending funds.
type simulatedLedger struct {
	interfaces.Ledger
}

var _ interfaces.Ledger = (*simulatedLedger)(nil)

// Wrap returns a ledger whose submissions are simulated.
func Wrap(ledger interfaces.Ledger) interfaces.Ledger {
	return &simulatedLedger{Ledger: ledger}
}

func (s *simulatedLedger) SignAndSubmit(ctx context.Context, rawTx []byte, signer types.Signer) (string, error) {
	sig := "DRYRUN-" + uuid.NewString()
	logger.Info(ctx, "Simulated transaction submission",
		"signer", signer.Address(), "size", len(rawTx), "signature", sig)
	return sig, nil
}

func (s *simulatedLedger) Confirm(ctx context.Context, signature string) error {
	return nil
}
