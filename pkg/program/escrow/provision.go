package escrow

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-escrow/pkg/solana"
	swap_escrow "github.com/code-payments/code-escrow/pkg/solana/escrow"
	"github.com/code-payments/code-escrow/pkg/solana/system"
	"github.com/code-payments/code-escrow/pkg/solana/token"
)

// provisionAccount allocates space bytes at the program derived target,
// funded by the payer up to the rent exempt minimum, and assigns it to owner.
// CreateAccount refuses addresses that already hold lamports, so a prefunded
// target is topped up, allocated and assigned in separate steps.
func provisionAccount(
	ctx context.Context,
	invoker solana.Invoker,
	rent *system.Rent,
	payer, target *solana.AccountInfo,
	space uint64,
	owner ed25519.PublicKey,
	signerSeeds [][]byte,
) error {
	required := rent.MinimumBalance(space)
	if required < 1 {
		required = 1
	}

	if target.Lamports == 0 {
		instruction := system.CreateAccount(payer.PublicKey, target.PublicKey, owner, required, space)
		if err := invoker.InvokeSigned(ctx, instruction, signerSeeds); err != nil {
			return errors.Wrap(err, "error creating account")
		}
		return nil
	}

	if required > target.Lamports {
		instruction := system.Transfer(payer.PublicKey, target.PublicKey, required-target.Lamports)
		if err := invoker.Invoke(ctx, instruction); err != nil {
			return errors.Wrap(err, "error funding prefunded account")
		}
	}
	if err := invoker.InvokeSigned(ctx, system.Allocate(target.PublicKey, space), signerSeeds); err != nil {
		return errors.Wrap(err, "error allocating prefunded account")
	}
	if err := invoker.InvokeSigned(ctx, system.Assign(target.PublicKey, owner), signerSeeds); err != nil {
		return errors.Wrap(err, "error assigning prefunded account")
	}
	return nil
}

// provisionVault creates a token account for the mint at the vault address,
// with the escrow record address as its token level owner
func provisionVault(
	ctx context.Context,
	invoker solana.Invoker,
	rent *system.Rent,
	payer, vault *solana.AccountInfo,
	mint, escrow ed25519.PublicKey,
	signerSeeds [][]byte,
) error {
	err := provisionAccount(ctx, invoker, rent, payer, vault, token.AccountSize, token.ProgramKey, signerSeeds)
	if err != nil {
		return err
	}

	if err := invoker.Invoke(ctx, token.InitializeAccount(vault.PublicKey, mint, escrow)); err != nil {
		return errors.Wrap(err, "error initializing vault token account")
	}
	return nil
}

// verifyExistingVault checks a vault that already holds data is a token
// account for the mint in the custody of the escrow record
func verifyExistingVault(vault *solana.AccountInfo, mint, escrow ed25519.PublicKey) error {
	if err := verifyTokenAccount(vault, escrow, mint); err != nil {
		return errors.Wrap(swap_escrow.ErrInvalidVault, err.Error())
	}
	return nil
}
