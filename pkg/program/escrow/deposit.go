package escrow

import (
	"context"
	"crypto/ed25519"

	"github.com/code-payments/code-escrow/pkg/solana"
	swap_escrow "github.com/code-payments/code-escrow/pkg/solana/escrow"
)

func (p *Processor) processDeposit(ctx context.Context, invoker solana.Invoker, programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) (*stateTransition, error) {
	var args swap_escrow.DepositInstructionArgs
	if err := args.Unmarshal(data); err != nil {
		return nil, err
	}

	return p.processPartyInstruction(ctx, invoker, programID, accounts, args.Pass, "processDeposit", depositTransition, transferIn)
}
