package escrow

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-escrow/pkg/solana"
	swap_escrow "github.com/code-payments/code-escrow/pkg/solana/escrow"
	"github.com/code-payments/code-escrow/pkg/solana/token"
)

// partyAccounts are the accounts shared by every instruction a party issues
// against an existing escrow
type partyAccounts struct {
	escrow       *solana.AccountInfo
	tokenAccount *solana.AccountInfo
	vault        *solana.AccountInfo
	user         *solana.AccountInfo
	tokenProgram *solana.AccountInfo
}

type transitionFunc func(record *swap_escrow.EscrowAccount, caller ed25519.PublicKey) (swap_escrow.EscrowState, *leg, error)

// transferFunc moves the leg's tokens between the caller's token account and
// the vault
type transferFunc func(ctx context.Context, invoker solana.Invoker, accounts *partyAccounts, record *swap_escrow.EscrowAccount, addressArgs *swap_escrow.GetAddressArgs, l *leg) error

// processPartyInstruction validates every account against the escrow record
// before any tokens move, and persists the new state only once the transfer
// has succeeded.
func (p *Processor) processPartyInstruction(
	ctx context.Context,
	invoker solana.Invoker,
	programID ed25519.PublicKey,
	accounts []*solana.AccountInfo,
	pass swap_escrow.Pass,
	method string,
	next transitionFunc,
	transfer transferFunc,
) (*stateTransition, error) {
	if len(accounts) < 5 {
		return nil, swap_escrow.ErrNotEnoughAccountKeys
	}

	party := &partyAccounts{
		escrow:       accounts[0],
		tokenAccount: accounts[1],
		vault:        accounts[2],
		user:         accounts[3],
		tokenProgram: accounts[4],
	}

	log := p.log.WithFields(logrus.Fields{
		"method": method,
		"escrow": base58.Encode(party.escrow.PublicKey),
		"user":   base58.Encode(party.user.PublicKey),
	})

	if err := verifySigner(party.user); err != nil {
		return nil, errors.Wrap(err, "user")
	}
	if err := verifyProgramAccount(party.tokenProgram, token.ProgramKey); err != nil {
		return nil, errors.Wrap(err, "token program")
	}

	record, err := loadEscrowRecord(programID, party.escrow)
	if err != nil {
		return nil, err
	}

	addressArgs := record.AddressArgs(pass)
	if err := verifyEscrowAddress(programID, party.escrow, record, addressArgs); err != nil {
		return nil, err
	}

	from := record.State
	to, l, err := next(record, party.user.PublicKey)
	if err != nil {
		return nil, err
	}

	log = log.WithFields(logrus.Fields{
		"leg":  l.name,
		"from": from.String(),
		"to":   to.String(),
	})

	if err := verifyVaultAddress(programID, party.vault, l, addressArgs); err != nil {
		return nil, err
	}
	if err := verifyTokenAccount(party.vault, party.escrow.PublicKey, l.mint); err != nil {
		return nil, errors.Wrap(swap_escrow.ErrInvalidVault, err.Error())
	}
	if err := verifyTokenAccount(party.tokenAccount, party.user.PublicKey, l.mint); err != nil {
		return nil, err
	}

	if err := transfer(ctx, invoker, party, record, addressArgs, l); err != nil {
		log.WithError(err).Warn("failure transferring tokens")
		return nil, err
	}

	record.State = to
	copy(party.escrow.Data, record.Marshal())

	return &stateTransition{
		escrow: party.escrow.PublicKey,
		caller: party.user.PublicKey,
		from:   from,
		to:     to,
		amount: l.amount,
	}, nil
}

// transferIn moves the leg from the caller into the vault under the caller's
// signature
func transferIn(ctx context.Context, invoker solana.Invoker, accounts *partyAccounts, _ *swap_escrow.EscrowAccount, _ *swap_escrow.GetAddressArgs, l *leg) error {
	instruction := token.Transfer(
		accounts.tokenAccount.PublicKey,
		accounts.vault.PublicKey,
		accounts.user.PublicKey,
		l.amount,
	)
	return errors.Wrap(invoker.Invoke(ctx, instruction), "error transferring into vault")
}

// transferOut moves the leg from the vault to the caller, signed by the escrow
// record address that holds the vault
func transferOut(ctx context.Context, invoker solana.Invoker, accounts *partyAccounts, record *swap_escrow.EscrowAccount, addressArgs *swap_escrow.GetAddressArgs, l *leg) error {
	instruction := token.Transfer(
		accounts.vault.PublicKey,
		accounts.tokenAccount.PublicKey,
		accounts.escrow.PublicKey,
		l.amount,
	)
	err := invoker.InvokeSigned(ctx, instruction, swap_escrow.GetEscrowSignerSeeds(addressArgs, record.EscrowBump))
	return errors.Wrap(err, "error transferring out of vault")
}
