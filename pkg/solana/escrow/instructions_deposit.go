package swap_escrow

import (
	"crypto/ed25519"

	"github.com/code-payments/code-escrow/pkg/solana"
)

const (
	DepositInstructionArgsSize = PassSize // pass
)

type DepositInstructionArgs struct {
	Pass Pass
}

// TokenAccount is the caller's token account for the mint they supply,
// and Vault is the escrow vault of that mint.
type DepositInstructionAccounts struct {
	Escrow       ed25519.PublicKey
	TokenAccount ed25519.PublicKey
	Vault        ed25519.PublicKey
	User         ed25519.PublicKey
}

func NewDepositInstruction(
	accounts *DepositInstructionAccounts,
	args *DepositInstructionArgs,
) solana.Instruction {
	return newPassInstruction(EscrowInstructionDeposit, accounts.Escrow, accounts.TokenAccount, accounts.Vault, accounts.User, args.Pass)
}

// Unmarshal decodes the full instruction data, tag included
func (args *DepositInstructionArgs) Unmarshal(data []byte) error {
	return unmarshalPassInstruction(data, EscrowInstructionDeposit, &args.Pass)
}
