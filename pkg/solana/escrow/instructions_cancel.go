package swap_escrow

import (
	"crypto/ed25519"

	"github.com/code-payments/code-escrow/pkg/solana"
)

const (
	CancelInstructionArgsSize = PassSize // pass
)

type CancelInstructionArgs struct {
	Pass Pass
}

// TokenAccount is the caller's token account for the mint they deposited,
// and Vault is the escrow vault holding that deposit.
type CancelInstructionAccounts struct {
	Escrow       ed25519.PublicKey
	TokenAccount ed25519.PublicKey
	Vault        ed25519.PublicKey
	User         ed25519.PublicKey
}

func NewCancelInstruction(
	accounts *CancelInstructionAccounts,
	args *CancelInstructionArgs,
) solana.Instruction {
	return newPassInstruction(EscrowInstructionCancel, accounts.Escrow, accounts.TokenAccount, accounts.Vault, accounts.User, args.Pass)
}

// Unmarshal decodes the full instruction data, tag included
func (args *CancelInstructionArgs) Unmarshal(data []byte) error {
	return unmarshalPassInstruction(data, EscrowInstructionCancel, &args.Pass)
}
