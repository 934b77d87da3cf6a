package escrow

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-escrow/pkg/metrics"
	"github.com/code-payments/code-escrow/pkg/solana"
	swap_escrow "github.com/code-payments/code-escrow/pkg/solana/escrow"
)

const (
	metricsStructName = "program.escrow.processor"
)

// Processor executes the swap escrow program. It holds no state of its own:
// everything it reads or writes lives in the accounts handed to Process.
type Processor struct {
	log *logrus.Entry
}

func NewProcessor() solana.Program {
	return &Processor{
		log: logrus.StandardLogger().WithField("type", "program/escrow/processor"),
	}
}

// stateTransition describes the effect of a successfully processed instruction
type stateTransition struct {
	escrow ed25519.PublicKey
	caller ed25519.PublicKey
	from   swap_escrow.EscrowState
	to     swap_escrow.EscrowState
	amount uint64
}

func (p *Processor) Process(ctx context.Context, invoker solana.Invoker, programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Process")
	defer tracer.End()

	log := p.log.WithField("method", "Process")

	instruction, err := swap_escrow.GetEscrowInstruction(data)
	if err != nil {
		log.WithError(err).Debug("unknown instruction")
		recordRejectedInstructionEvent(ctx, "unknown", err)
		tracer.OnError(err)
		return err
	}

	log = log.WithField("instruction", instruction.String())
	tracer.AddAttribute("instruction", instruction.String())

	var transition *stateTransition
	switch instruction {
	case swap_escrow.EscrowInstructionInitEscrow:
		transition, err = p.processInitEscrow(ctx, invoker, programID, accounts, data)
	case swap_escrow.EscrowInstructionDeposit:
		transition, err = p.processDeposit(ctx, invoker, programID, accounts, data)
	case swap_escrow.EscrowInstructionWithdrawal:
		transition, err = p.processWithdrawal(ctx, invoker, programID, accounts, data)
	case swap_escrow.EscrowInstructionCancel:
		transition, err = p.processCancel(ctx, invoker, programID, accounts, data)
	default:
		err = swap_escrow.ErrInvalidInstructionData
	}

	if err != nil {
		var escrowErr swap_escrow.EscrowError
		if errors.As(err, &escrowErr) {
			log = log.WithField("category", escrowErr.Category().String())
		}
		log.WithError(err).Info("instruction rejected")

		recordRejectedInstructionEvent(ctx, instruction.String(), err)
		tracer.OnError(err)
		return err
	}

	log.WithFields(logrus.Fields{
		"escrow": base58.Encode(transition.escrow),
		"caller": base58.Encode(transition.caller),
		"from":   transition.from.String(),
		"to":     transition.to.String(),
		"amount": transition.amount,
	}).Debug("escrow state transitioned")

	recordStateTransitionEvent(ctx, instruction.String(), transition)
	return nil
}
