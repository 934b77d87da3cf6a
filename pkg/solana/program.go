package solana

import (
	"context"
	"crypto/ed25519"
)

// Invoker executes cross-program invocations on behalf of the program that is
// currently being processed.
type Invoker interface {
	// Invoke calls another program. Signer privileges are inherited from the
	// calling instruction.
	Invoke(ctx context.Context, instruction Instruction) error

	// InvokeSigned calls another program, additionally granting signer
	// privileges to every program address derived from the calling program
	// and one of the provided seed sets.
	InvokeSigned(ctx context.Context, instruction Instruction, signerSeeds ...[][]byte) error
}

// Program is an on-chain program that can be executed by the runtime.
type Program interface {
	Process(ctx context.Context, invoker Invoker, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error
}

// ProgramFunc adapts a plain function into a Program
type ProgramFunc func(ctx context.Context, invoker Invoker, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error

func (f ProgramFunc) Process(ctx context.Context, invoker Invoker, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error {
	return f(ctx, invoker, programID, accounts, data)
}
