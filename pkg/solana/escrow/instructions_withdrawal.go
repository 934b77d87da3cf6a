package swap_escrow

import (
	"crypto/ed25519"

	"github.com/code-payments/code-escrow/pkg/solana"
)

const (
	WithdrawalInstructionArgsSize = PassSize // pass
)

type WithdrawalInstructionArgs struct {
	Pass Pass
}

// TokenAccount is the caller's token account for the mint they receive,
// and Vault is the escrow vault of that mint.
type WithdrawalInstructionAccounts struct {
	Escrow       ed25519.PublicKey
	TokenAccount ed25519.PublicKey
	Vault        ed25519.PublicKey
	User         ed25519.PublicKey
}

func NewWithdrawalInstruction(
	accounts *WithdrawalInstructionAccounts,
	args *WithdrawalInstructionArgs,
) solana.Instruction {
	return newPassInstruction(EscrowInstructionWithdrawal, accounts.Escrow, accounts.TokenAccount, accounts.Vault, accounts.User, args.Pass)
}

// Unmarshal decodes the full instruction data, tag included
func (args *WithdrawalInstructionArgs) Unmarshal(data []byte) error {
	return unmarshalPassInstruction(data, EscrowInstructionWithdrawal, &args.Pass)
}
