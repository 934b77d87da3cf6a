package escrow

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-escrow/pkg/solana"
	swap_escrow "github.com/code-payments/code-escrow/pkg/solana/escrow"
	"github.com/code-payments/code-escrow/pkg/solana/system"
	"github.com/code-payments/code-escrow/pkg/solana/token"
)

func (p *Processor) processInitEscrow(ctx context.Context, invoker solana.Invoker, programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) (*stateTransition, error) {
	var args swap_escrow.InitEscrowInstructionArgs
	if err := args.Unmarshal(data); err != nil {
		return nil, err
	}

	if len(accounts) < 11 {
		return nil, swap_escrow.ErrNotEnoughAccountKeys
	}

	escrowInfo := accounts[0]
	mintXInfo := accounts[1]
	mintYInfo := accounts[2]
	vaultXInfo := accounts[3]
	vaultYInfo := accounts[4]
	payerInfo := accounts[5]
	partyAInfo := accounts[6]
	partyBInfo := accounts[7]
	tokenProgramInfo := accounts[8]
	rentInfo := accounts[9]
	systemProgramInfo := accounts[10]

	log := p.log.WithFields(logrus.Fields{
		"method":  "processInitEscrow",
		"escrow":  base58.Encode(escrowInfo.PublicKey),
		"party_a": base58.Encode(partyAInfo.PublicKey),
		"party_b": base58.Encode(partyBInfo.PublicKey),
		"size_x":  args.AmountX,
		"size_y":  args.AmountY,
	})

	if err := verifySigner(payerInfo); err != nil {
		return nil, errors.Wrap(err, "payer")
	}
	if err := verifyProgramAccount(tokenProgramInfo, token.ProgramKey); err != nil {
		return nil, errors.Wrap(err, "token program")
	}
	if err := verifyProgramAccount(systemProgramInfo, system.ProgramKey[:]); err != nil {
		return nil, errors.Wrap(err, "system program")
	}

	rent, err := loadRent(rentInfo)
	if err != nil {
		return nil, err
	}

	if err := verifyMint(mintXInfo); err != nil {
		return nil, errors.Wrap(err, "mint x")
	}
	if err := verifyMint(mintYInfo); err != nil {
		return nil, errors.Wrap(err, "mint y")
	}

	addressArgs := &swap_escrow.GetAddressArgs{
		PartyA: partyAInfo.PublicKey,
		PartyB: partyBInfo.PublicKey,
		MintX:  mintXInfo.PublicKey,
		MintY:  mintYInfo.PublicKey,
		Pass:   args.Pass,
	}

	escrowAddress, escrowBump, err := swap_escrow.GetEscrowAddress(programID, addressArgs)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving escrow address")
	}
	if !escrowInfo.HasKey(escrowAddress) {
		return nil, swap_escrow.ErrEscrowAddressMismatch
	}

	vaultXAddress, vaultXBump, err := swap_escrow.GetVaultXAddress(programID, addressArgs)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving vault x address")
	}
	if !vaultXInfo.HasKey(vaultXAddress) {
		return nil, errors.Wrap(swap_escrow.ErrVaultAddressMismatch, "vault x")
	}

	vaultYAddress, vaultYBump, err := swap_escrow.GetVaultYAddress(programID, addressArgs)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving vault y address")
	}
	if !vaultYInfo.HasKey(vaultYAddress) {
		return nil, errors.Wrap(swap_escrow.ErrVaultAddressMismatch, "vault y")
	}

	// Records are never reused, even after both parties have withdrawn
	if !escrowInfo.IsEmpty() {
		log.Debug("escrow record already exists")
		return nil, swap_escrow.ErrAlreadyInitialized
	}

	vaults := []struct {
		info        *solana.AccountInfo
		mint        ed25519.PublicKey
		signerSeeds [][]byte
	}{
		{vaultXInfo, mintXInfo.PublicKey, swap_escrow.GetVaultXSignerSeeds(addressArgs, vaultXBump)},
		{vaultYInfo, mintYInfo.PublicKey, swap_escrow.GetVaultYSignerSeeds(addressArgs, vaultYBump)},
	}
	for _, vault := range vaults {
		if vault.info.IsEmpty() {
			err = provisionVault(ctx, invoker, rent, payerInfo, vault.info, vault.mint, escrowAddress, vault.signerSeeds)
		} else {
			err = verifyExistingVault(vault.info, vault.mint, escrowAddress)
		}
		if err != nil {
			return nil, err
		}
	}

	err = provisionAccount(
		ctx,
		invoker,
		rent,
		payerInfo,
		escrowInfo,
		swap_escrow.EscrowAccountSize,
		programID,
		swap_escrow.GetEscrowSignerSeeds(addressArgs, escrowBump),
	)
	if err != nil {
		return nil, err
	}

	record := &swap_escrow.EscrowAccount{
		SizeX:      args.AmountX,
		SizeY:      args.AmountY,
		PartyA:     partyAInfo.PublicKey,
		PartyB:     partyBInfo.PublicKey,
		MintX:      mintXInfo.PublicKey,
		MintY:      mintYInfo.PublicKey,
		State:      swap_escrow.EscrowStateInitialized,
		EscrowBump: escrowBump,
		VaultXBump: vaultXBump,
		VaultYBump: vaultYBump,
	}
	copy(escrowInfo.Data, record.Marshal())

	return &stateTransition{
		escrow: escrowInfo.PublicKey,
		caller: payerInfo.PublicKey,
		from:   swap_escrow.EscrowStateUninitialized,
		to:     swap_escrow.EscrowStateInitialized,
	}, nil
}
