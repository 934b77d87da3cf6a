package escrow

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-escrow/pkg/solana"
	swap_escrow "github.com/code-payments/code-escrow/pkg/solana/escrow"
	"github.com/code-payments/code-escrow/pkg/solana/system"
	"github.com/code-payments/code-escrow/pkg/solana/token"
)

// leg is one side of the swap: the mint a party supplies, the amount of it,
// and the vault custodying it
type leg struct {
	name       string
	mint       ed25519.PublicKey
	amount     uint64
	vaultBump  uint8
	vaultSeeds func(*swap_escrow.GetAddressArgs) [][]byte
}

func legX(record *swap_escrow.EscrowAccount) *leg {
	return &leg{
		name:       "x",
		mint:       record.MintX,
		amount:     record.SizeX,
		vaultBump:  record.VaultXBump,
		vaultSeeds: swap_escrow.GetVaultXSeeds,
	}
}

func legY(record *swap_escrow.EscrowAccount) *leg {
	return &leg{
		name:       "y",
		mint:       record.MintY,
		amount:     record.SizeY,
		vaultBump:  record.VaultYBump,
		vaultSeeds: swap_escrow.GetVaultYSeeds,
	}
}

func verifySigner(info *solana.AccountInfo) error {
	if !info.IsSigner {
		return swap_escrow.ErrMissingSignature
	}
	return nil
}

func verifyProgramAccount(info *solana.AccountInfo, expected ed25519.PublicKey) error {
	if !info.HasKey(expected) {
		return swap_escrow.ErrIncorrectProgramAccount
	}
	return nil
}

// loadEscrowRecord decodes the escrow record. A record that was never
// provisioned is treated as being in the uninitialized phase.
func loadEscrowRecord(programID ed25519.PublicKey, info *solana.AccountInfo) (*swap_escrow.EscrowAccount, error) {
	if info.IsEmpty() {
		return nil, errors.Wrap(swap_escrow.ErrInvalidState, "escrow record not initialized")
	}
	if !info.IsOwnedBy(programID) {
		return nil, swap_escrow.ErrIncorrectRecordOwner
	}

	var record swap_escrow.EscrowAccount
	if err := record.Unmarshal(info.Data); err != nil {
		return nil, err
	}
	return &record, nil
}

func verifyEscrowAddress(programID ed25519.PublicKey, info *solana.AccountInfo, record *swap_escrow.EscrowAccount, args *swap_escrow.GetAddressArgs) error {
	err := solana.VerifyProgramAddress(programID, info.PublicKey, record.EscrowBump, swap_escrow.GetEscrowSeeds(args)...)
	if err != nil {
		return errors.Wrap(swap_escrow.ErrEscrowAddressMismatch, err.Error())
	}
	return nil
}

func verifyVaultAddress(programID ed25519.PublicKey, info *solana.AccountInfo, l *leg, args *swap_escrow.GetAddressArgs) error {
	err := solana.VerifyProgramAddress(programID, info.PublicKey, l.vaultBump, l.vaultSeeds(args)...)
	if err != nil {
		return errors.Wrapf(swap_escrow.ErrVaultAddressMismatch, "vault %s: %s", l.name, err.Error())
	}
	return nil
}

// verifyTokenAccount checks the account is a token account held by the owner
// for the expected mint
func verifyTokenAccount(info *solana.AccountInfo, owner, mint ed25519.PublicKey) error {
	if !info.IsOwnedBy(token.ProgramKey) {
		return swap_escrow.ErrTokenAccountNotOwnedByProgram
	}

	var account token.Account
	if !account.Unmarshal(info.Data) || !account.IsInitialized() {
		return errors.Wrap(swap_escrow.ErrTokenAccountNotOwnedByProgram, "not an initialized token account")
	}

	if !bytes.Equal(account.Owner, owner) {
		return swap_escrow.ErrTokenOwnerMismatch
	}
	if !bytes.Equal(account.Mint, mint) {
		return swap_escrow.ErrMintMismatch
	}
	return nil
}

func verifyMint(info *solana.AccountInfo) error {
	if !info.IsOwnedBy(token.ProgramKey) {
		return errors.Wrap(swap_escrow.ErrMintMismatch, "mint not owned by the token program")
	}

	var mint token.Mint
	if !mint.Unmarshal(info.Data) || !mint.IsInitialized {
		return errors.Wrap(swap_escrow.ErrMintMismatch, "not an initialized mint")
	}
	return nil
}

func loadRent(info *solana.AccountInfo) (*system.Rent, error) {
	if err := verifyProgramAccount(info, system.RentSysVar); err != nil {
		return nil, errors.Wrap(err, "rent sysvar")
	}

	var rent system.Rent
	if err := rent.Unmarshal(info.Data); err != nil {
		return nil, errors.Wrap(swap_escrow.ErrIncorrectProgramAccount, err.Error())
	}
	return &rent, nil
}
