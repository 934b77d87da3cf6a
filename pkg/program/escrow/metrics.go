package escrow

import (
	"context"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-escrow/pkg/metrics"
	swap_escrow "github.com/code-payments/code-escrow/pkg/solana/escrow"
)

const (
	stateTransitionEventName     = "EscrowStateTransition"
	rejectedInstructionEventName = "EscrowInstructionRejected"
)

func recordStateTransitionEvent(ctx context.Context, instruction string, transition *stateTransition) {
	metrics.RecordEvent(ctx, stateTransitionEventName, map[string]interface{}{
		"instruction": instruction,
		"escrow":      base58.Encode(transition.escrow),
		"caller":      base58.Encode(transition.caller),
		"from":        transition.from.String(),
		"to":          transition.to.String(),
		"amount":      transition.amount,
	})
}

func recordRejectedInstructionEvent(ctx context.Context, instruction string, err error) {
	kvPairs := map[string]interface{}{
		"instruction": instruction,
		"error":       err.Error(),
	}

	var escrowErr swap_escrow.EscrowError
	if errors.As(err, &escrowErr) {
		kvPairs["code"] = uint32(escrowErr)
		kvPairs["category"] = escrowErr.Category().String()
	}

	metrics.RecordEvent(ctx, rejectedInstructionEventName, kvPairs)
}
