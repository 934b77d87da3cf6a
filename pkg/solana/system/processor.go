package system

import (
	"context"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-escrow/pkg/solana"
)

// Processor is an in-process implementation of the subset of the system
// program used to provision accounts: CreateAccount, Transfer, Allocate and
// Assign.
type Processor struct {
	log  *logrus.Entry
	rent func() *Rent
}

// NewProcessor returns a system program processor. The rent provider is
// consulted for every account creation.
func NewProcessor(rent func() *Rent) solana.Program {
	return &Processor{
		log:  logrus.StandardLogger().WithField("type", "solana/system/processor"),
		rent: rent,
	}
}

func (p *Processor) Process(ctx context.Context, _ solana.Invoker, programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	if len(data) < 4 {
		return solana.InstructionErrorInvalidInstructionData
	}

	switch binary.LittleEndian.Uint32(data) {
	case commandCreateAccount:
		return p.processCreateAccount(ctx, accounts, data)
	case commandTransfer:
		return p.processTransfer(ctx, accounts, data)
	case commandAllocate:
		return p.processAllocate(ctx, accounts, data)
	case commandAssign:
		return p.processAssign(ctx, accounts, data)
	default:
		return solana.InstructionErrorInvalidInstructionData
	}
}

func (p *Processor) processCreateAccount(ctx context.Context, accounts []*solana.AccountInfo, data []byte) error {
	if len(data) != 52 {
		return solana.InstructionErrorInvalidInstructionData
	}
	if len(accounts) < 2 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	lamports := binary.LittleEndian.Uint64(data[4:])
	size := binary.LittleEndian.Uint64(data[4+8:])
	owner := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(owner, data[4+2*8:])

	funder, target := accounts[0], accounts[1]

	log := p.log.WithFields(logrus.Fields{
		"method":   "processCreateAccount",
		"funder":   base58.Encode(funder.PublicKey),
		"address":  base58.Encode(target.PublicKey),
		"owner":    base58.Encode(owner),
		"lamports": lamports,
		"size":     size,
	})

	if !funder.IsSigner || !target.IsSigner {
		log.Debug("missing required signature")
		return solana.InstructionErrorMissingRequiredSignature
	}
	if !funder.IsWritable || !target.IsWritable {
		return solana.InstructionErrorInvalidArgument
	}

	if !funder.IsOwnedBy(ProgramKey[:]) || !funder.IsEmpty() {
		log.Debug("funder cannot carry data")
		return errors.Wrap(solana.InstructionErrorInvalidArgument, "funder must be a system account without data")
	}

	// A funded address is in use even without data. Prefunded addresses are
	// provisioned with Transfer, Allocate and Assign instead.
	if target.Lamports > 0 || !target.IsOwnedBy(ProgramKey[:]) || !target.IsEmpty() {
		log.Debug("account already in use")
		return ErrorAccountAlreadyInUse
	}

	if size > MaxPermittedDataLength {
		return ErrorInvalidAccountDataLength
	}

	if funder.Lamports < lamports {
		log.Debug("insufficient funds")
		return ErrorResultWithNegativeLamports
	}

	if !p.rent().IsExempt(lamports, size) {
		log.Debug("account would not be rent exempt")
		return solana.InstructionErrorInsufficientFunds
	}

	funder.Lamports -= lamports
	target.Lamports = lamports
	target.Data = make([]byte, size)
	target.Owner = owner

	log.Trace("account created")
	return nil
}

func (p *Processor) processTransfer(ctx context.Context, accounts []*solana.AccountInfo, data []byte) error {
	if len(data) != 12 {
		return solana.InstructionErrorInvalidInstructionData
	}
	if len(accounts) < 2 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	lamports := binary.LittleEndian.Uint64(data[4:])
	source, destination := accounts[0], accounts[1]

	if !source.IsSigner {
		return solana.InstructionErrorMissingRequiredSignature
	}
	if !source.IsWritable || !destination.IsWritable {
		return solana.InstructionErrorInvalidArgument
	}
	if !source.IsOwnedBy(ProgramKey[:]) || !source.IsEmpty() {
		return errors.Wrap(solana.InstructionErrorInvalidArgument, "source must be a system account without data")
	}
	if source.Lamports < lamports {
		return ErrorResultWithNegativeLamports
	}

	source.Lamports -= lamports
	destination.Lamports += lamports
	return nil
}

func (p *Processor) processAllocate(ctx context.Context, accounts []*solana.AccountInfo, data []byte) error {
	if len(data) != 12 {
		return solana.InstructionErrorInvalidInstructionData
	}
	if len(accounts) < 1 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	size := binary.LittleEndian.Uint64(data[4:])
	target := accounts[0]

	log := p.log.WithFields(logrus.Fields{
		"method":  "processAllocate",
		"address": base58.Encode(target.PublicKey),
		"size":    size,
	})

	if !target.IsSigner {
		log.Debug("missing required signature")
		return solana.InstructionErrorMissingRequiredSignature
	}
	if !target.IsWritable {
		return solana.InstructionErrorInvalidArgument
	}
	if !target.IsOwnedBy(ProgramKey[:]) || !target.IsEmpty() {
		log.Debug("account already in use")
		return ErrorAccountAlreadyInUse
	}
	if size > MaxPermittedDataLength {
		return ErrorInvalidAccountDataLength
	}

	target.Data = make([]byte, size)

	log.Trace("account allocated")
	return nil
}

func (p *Processor) processAssign(ctx context.Context, accounts []*solana.AccountInfo, data []byte) error {
	if len(data) != 36 {
		return solana.InstructionErrorInvalidInstructionData
	}
	if len(accounts) < 1 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	owner := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(owner, data[4:])
	target := accounts[0]

	if target.IsOwnedBy(owner) {
		return nil
	}
	if !target.IsSigner {
		return solana.InstructionErrorMissingRequiredSignature
	}
	if !target.IsWritable {
		return solana.InstructionErrorInvalidArgument
	}
	if !target.IsOwnedBy(ProgramKey[:]) {
		return solana.InstructionErrorIncorrectProgramID
	}

	target.Owner = owner

	p.log.WithFields(logrus.Fields{
		"method":  "processAssign",
		"address": base58.Encode(target.PublicKey),
		"owner":   base58.Encode(owner),
	}).Trace("account assigned")
	return nil
}
