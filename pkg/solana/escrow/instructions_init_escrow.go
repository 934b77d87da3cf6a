package swap_escrow

import (
	"crypto/ed25519"

	"github.com/code-payments/code-escrow/pkg/solana"
)

const (
	InitEscrowInstructionArgsSize = (8 + // amount_x
		8 + // amount_y
		PassSize) // pass
)

type InitEscrowInstructionArgs struct {
	AmountX uint64
	AmountY uint64
	Pass    Pass
}

type InitEscrowInstructionAccounts struct {
	Escrow ed25519.PublicKey
	MintX  ed25519.PublicKey
	MintY  ed25519.PublicKey
	VaultX ed25519.PublicKey
	VaultY ed25519.PublicKey
	Payer  ed25519.PublicKey
	PartyA ed25519.PublicKey
	PartyB ed25519.PublicKey
}

func NewInitEscrowInstruction(
	accounts *InitEscrowInstructionAccounts,
	args *InitEscrowInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 1+InitEscrowInstructionArgsSize)

	putEscrowInstruction(data, EscrowInstructionInitEscrow, &offset)
	putUint64(data, args.AmountX, &offset)
	putUint64(data, args.AmountY, &offset)
	putPass(data, args.Pass, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Escrow,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.MintX,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.MintY,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.VaultX,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.VaultY,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.PartyA,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.PartyB,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSVAR_RENT_PUBKEY,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

// Unmarshal decodes the full instruction data, tag included
func (args *InitEscrowInstructionArgs) Unmarshal(data []byte) error {
	if len(data) != 1+InitEscrowInstructionArgsSize {
		return ErrInvalidInstructionData
	}
	if EscrowInstruction(data[0]) != EscrowInstructionInitEscrow {
		return ErrInvalidInstructionData
	}

	offset := 1

	getUint64(data, &args.AmountX, &offset)
	getUint64(data, &args.AmountY, &offset)
	getPass(data, &args.Pass, &offset)

	return nil
}
