package escrow

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	swap_escrow "github.com/code-payments/code-escrow/pkg/solana/escrow"
)

// depositTransition returns the state after the caller deposits, along with
// the leg they supply
func depositTransition(record *swap_escrow.EscrowAccount, caller ed25519.PublicKey) (swap_escrow.EscrowState, *leg, error) {
	isA, isB := record.IsPartyA(caller), record.IsPartyB(caller)
	if !isA && !isB {
		return 0, nil, swap_escrow.ErrNotAParty
	}

	switch {
	case isA && record.State == swap_escrow.EscrowStateInitialized:
		return swap_escrow.EscrowStateDepositAlice, legX(record), nil
	case isB && record.State == swap_escrow.EscrowStateInitialized:
		return swap_escrow.EscrowStateDepositBob, legY(record), nil
	case isB && record.State == swap_escrow.EscrowStateDepositAlice:
		return swap_escrow.EscrowStateCommitted, legY(record), nil
	case isA && record.State == swap_escrow.EscrowStateDepositBob:
		return swap_escrow.EscrowStateCommitted, legX(record), nil
	}

	return 0, nil, errors.Wrapf(swap_escrow.ErrInvalidState, "cannot deposit in %s", record.State)
}

// withdrawalTransition returns the state after the caller withdraws, along
// with the leg they receive. Party A receives Y and party B receives X.
func withdrawalTransition(record *swap_escrow.EscrowAccount, caller ed25519.PublicKey) (swap_escrow.EscrowState, *leg, error) {
	isA, isB := record.IsPartyA(caller), record.IsPartyB(caller)
	if !isA && !isB {
		return 0, nil, swap_escrow.ErrNotAParty
	}

	switch {
	case isA && record.State == swap_escrow.EscrowStateCommitted:
		return swap_escrow.EscrowStateWithdrawAlice, legY(record), nil
	case isB && record.State == swap_escrow.EscrowStateCommitted:
		return swap_escrow.EscrowStateWithdrawBob, legX(record), nil
	case isB && record.State == swap_escrow.EscrowStateWithdrawAlice:
		return swap_escrow.EscrowStateUninitialized, legX(record), nil
	case isA && record.State == swap_escrow.EscrowStateWithdrawBob:
		return swap_escrow.EscrowStateUninitialized, legY(record), nil
	}

	return 0, nil, errors.Wrapf(swap_escrow.ErrInvalidState, "cannot withdraw in %s", record.State)
}

// cancelTransition returns the state after the only depositor reclaims their
// deposit, along with the leg being returned
func cancelTransition(record *swap_escrow.EscrowAccount, caller ed25519.PublicKey) (swap_escrow.EscrowState, *leg, error) {
	isA, isB := record.IsPartyA(caller), record.IsPartyB(caller)
	if !isA && !isB {
		return 0, nil, swap_escrow.ErrNotAParty
	}

	switch {
	case isA && record.State == swap_escrow.EscrowStateDepositAlice:
		return swap_escrow.EscrowStateInitialized, legX(record), nil
	case isB && record.State == swap_escrow.EscrowStateDepositBob:
		return swap_escrow.EscrowStateInitialized, legY(record), nil
	}

	return 0, nil, errors.Wrapf(swap_escrow.ErrInvalidState, "cannot cancel in %s", record.State)
}
