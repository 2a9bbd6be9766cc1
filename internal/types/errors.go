package types

import "errors"

var (
	// ErrDataUnavailable marks a transient query-layer failure (the ledger
	// answered but the data is not yet queryable). Callers treat it as
	// "unknown", never as a terminal condition.
	ErrDataUnavailable = errors.New("ledger data not yet available")

	// ErrNoEligibleWallets ends a session: no worker wallet holds the
	// minimum balance.
	ErrNoEligibleWallets = errors.New("no eligible worker wallets")

	// ErrNothingToSend is returned by treasury ops when balance minus fee
	// (and rent reserves) leaves nothing transferable.
	ErrNothingToSend = errors.New("nothing to send after fee and rent")

	// ErrProjectNotFound is returned by project stores on a miss.
	ErrProjectNotFound = errors.New("project not found")
)
