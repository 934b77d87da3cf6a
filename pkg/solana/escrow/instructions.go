package swap_escrow

import (
	"crypto/ed25519"

	"github.com/code-payments/code-escrow/pkg/solana"
)

// Deposit, Withdrawal and Cancel share a data layout (tag followed by the
// pass) and an account list.
func newPassInstruction(
	instruction EscrowInstruction,
	escrow, tokenAccount, vault, user ed25519.PublicKey,
	pass Pass,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 1+PassSize)

	putEscrowInstruction(data, instruction, &offset)
	putPass(data, pass, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  escrow,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  tokenAccount,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  vault,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  user,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func unmarshalPassInstruction(data []byte, expected EscrowInstruction, pass *Pass) error {
	if len(data) != 1+PassSize {
		return ErrInvalidInstructionData
	}
	if EscrowInstruction(data[0]) != expected {
		return ErrInvalidInstructionData
	}

	offset := 1
	getPass(data, pass, &offset)
	return nil
}
