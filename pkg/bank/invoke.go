package bank

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-escrow/pkg/solana"
)

// authorizer decides whether an instruction may request the privileges in an
// account meta
type authorizer func(meta solana.AccountMeta) error

// frame is a single program invocation. Programs receive views of the
// transaction's accounts, and their changes are only copied back once they've
// been verified against the pre-invocation snapshot.
type frame struct {
	programID ed25519.PublicKey
	accounts  []*solana.AccountInfo
	views     map[string]*solana.AccountInfo
	pre       map[string]*solana.AccountInfo
}

func newFrame(state *transactionState, instruction solana.Instruction, authorize authorizer) (*frame, error) {
	f := &frame{
		programID: instruction.Program,
		views:     make(map[string]*solana.AccountInfo),
		pre:       make(map[string]*solana.AccountInfo),
	}

	for _, meta := range instruction.Accounts {
		if err := authorize(meta); err != nil {
			return nil, err
		}

		key := base58.Encode(meta.PublicKey)

		// Duplicate metas share a single view with the union of privileges
		view, ok := f.views[key]
		if !ok {
			account, ok := state.accounts[key]
			if !ok {
				return nil, solana.InstructionErrorMissingAccount
			}

			view = account.Clone()
			view.IsSigner = false
			view.IsWritable = false

			f.views[key] = view
			f.pre[key] = account.Clone()
		}

		view.IsSigner = view.IsSigner || meta.IsSigner
		view.IsWritable = view.IsWritable || meta.IsWritable

		f.accounts = append(f.accounts, view)
	}

	return f, nil
}

// verify checks the changes the program made are ones it was entitled to make
func (f *frame) verify() error {
	var preTotal, postTotal uint64
	for key, view := range f.views {
		pre := f.pre[key]
		preTotal += pre.Lamports
		postTotal += view.Lamports

		if view.Executable != pre.Executable {
			return solana.InstructionErrorExecutableModified
		}

		ownerChanged := !bytes.Equal(pre.Owner, view.Owner)
		dataChanged := !bytes.Equal(pre.Data, view.Data)
		lamportsChanged := pre.Lamports != view.Lamports

		if !view.IsWritable {
			switch {
			case ownerChanged:
				return solana.InstructionErrorModifiedProgramID
			case dataChanged:
				return solana.InstructionErrorReadonlyDataModified
			case lamportsChanged:
				return solana.InstructionErrorReadonlyLamportChange
			}
			continue
		}

		isOwner := pre.IsOwnedBy(f.programID)

		// Only the owner may assign an account, and only while it holds no state
		if ownerChanged && (!isOwner || pre.Executable || !isZeroed(view.Data)) {
			return solana.InstructionErrorModifiedProgramID
		}
		if dataChanged && !isOwner {
			return solana.InstructionErrorExternalAccountDataModified
		}
		if view.Lamports < pre.Lamports && !isOwner {
			return solana.InstructionErrorExternalAccountLamportSpend
		}
	}

	if preTotal != postTotal {
		return solana.InstructionErrorUnbalancedInstruction
	}
	return nil
}

// writeBack copies the frame's account state into the transaction
func (f *frame) writeBack(state *transactionState) {
	for key, view := range f.views {
		account := state.accounts[key]
		account.Owner = append(ed25519.PublicKey(nil), view.Owner...)
		account.Lamports = view.Lamports
		account.Data = append([]byte(nil), view.Data...)
	}
}

// refresh reloads the frame's views from the transaction after a nested
// invocation, and makes the result the new baseline for verification
func (f *frame) refresh(state *transactionState) {
	for key, view := range f.views {
		account := state.accounts[key]
		view.Owner = append(ed25519.PublicKey(nil), account.Owner...)
		view.Lamports = account.Lamports
		view.Data = append([]byte(nil), account.Data...)

		f.pre[key] = account.Clone()
	}
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

func (b *Bank) execute(ctx context.Context, state *transactionState, instruction solana.Instruction, authorize authorizer, depth uint64) error {
	if depth > b.conf.maxCpiDepth.Get(ctx) {
		return solana.InstructionErrorCallDepth
	}

	program, ok := b.getProgram(instruction.Program)
	if !ok {
		return solana.InstructionErrorUnsupportedProgramID
	}

	f, err := newFrame(state, instruction, authorize)
	if err != nil {
		return err
	}

	invoker := &invocation{
		bank:  b,
		state: state,
		frame: f,
		depth: depth,
	}
	if err := program.Process(ctx, invoker, instruction.Program, f.accounts, instruction.Data); err != nil {
		return err
	}

	if err := f.verify(); err != nil {
		return err
	}
	f.writeBack(state)
	return nil
}

// invocation is the solana.Invoker handed to a program while it executes
type invocation struct {
	bank  *Bank
	state *transactionState
	frame *frame
	depth uint64
}

// Invoke implements solana.Invoker.Invoke
func (i *invocation) Invoke(ctx context.Context, instruction solana.Instruction) error {
	return i.InvokeSigned(ctx, instruction)
}

// InvokeSigned implements solana.Invoker.InvokeSigned
func (i *invocation) InvokeSigned(ctx context.Context, instruction solana.Instruction, signerSeeds ...[][]byte) error {
	pdaSigners := make(map[string]struct{})
	for _, seeds := range signerSeeds {
		address, err := solana.CreateProgramAddress(i.frame.programID, seeds...)
		if err != nil {
			return errors.Wrap(solana.InstructionErrorInvalidSeeds, err.Error())
		}
		pdaSigners[base58.Encode(address)] = struct{}{}
	}

	if _, ok := i.frame.views[base58.Encode(instruction.Program)]; !ok {
		return errors.Wrap(solana.InstructionErrorMissingAccount, "program account not passed to caller")
	}

	authorize := func(meta solana.AccountMeta) error {
		key := base58.Encode(meta.PublicKey)

		caller, ok := i.frame.views[key]
		if !ok {
			return solana.InstructionErrorMissingAccount
		}
		if meta.IsWritable && !caller.IsWritable {
			return errors.Wrapf(solana.InstructionErrorPrivilegeEscalation, "%s is not writable", key)
		}
		if meta.IsSigner && !caller.IsSigner {
			if _, ok := pdaSigners[key]; !ok {
				return errors.Wrapf(solana.InstructionErrorPrivilegeEscalation, "%s did not sign", key)
			}
		}
		return nil
	}

	// The callee must observe every change the caller made so far
	if err := i.frame.verify(); err != nil {
		return err
	}
	i.frame.writeBack(i.state)

	err := i.bank.execute(ctx, i.state, instruction, authorize, i.depth+1)
	i.frame.refresh(i.state)
	return err
}
