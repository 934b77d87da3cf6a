package bank

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-escrow/pkg/ledger"
	"github.com/code-payments/code-escrow/pkg/ledger/memory"
	"github.com/code-payments/code-escrow/pkg/solana"
	"github.com/code-payments/code-escrow/pkg/solana/system"
	"github.com/code-payments/code-escrow/pkg/solana/token"
)

type testEnv struct {
	ctx    context.Context
	ledger ledger.Store
	bank   *Bank
}

func setup(t *testing.T, overrides *testOverrides) *testEnv {
	store := memory.New()
	return &testEnv{
		ctx:    context.Background(),
		ledger: store,
		bank:   New(store, withManualTestOverrides(overrides)),
	}
}

func generateKey(t *testing.T) ed25519.PrivateKey {
	_, key, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return key
}

func publicKey(key ed25519.PrivateKey) ed25519.PublicKey {
	return key.Public().(ed25519.PublicKey)
}

func (e *testEnv) lamports(t *testing.T, address ed25519.PublicKey) uint64 {
	account, err := e.bank.GetAccount(e.ctx, address)
	if err == ErrAccountNotFound {
		return 0
	}
	require.NoError(t, err)
	return account.Lamports
}

func requireInstructionError(t *testing.T, err error, index int, key solana.InstructionErrorKey) {
	require.Error(t, err)

	instructionErr, ok := err.(solana.InstructionError)
	require.True(t, ok, err)
	assert.Equal(t, index, instructionErr.Index)
	assert.Equal(t, key, instructionErr.ErrorKey(), err)
}

func TestAirdrop(t *testing.T) {
	env := setup(t, &testOverrides{})
	address := publicKey(generateKey(t))

	_, err := env.bank.GetAccount(env.ctx, address)
	assert.Equal(t, ErrAccountNotFound, err)

	require.NoError(t, env.bank.Airdrop(env.ctx, address, 100))
	require.NoError(t, env.bank.Airdrop(env.ctx, address, 50))

	account, err := env.bank.GetAccount(env.ctx, address)
	require.NoError(t, err)
	assert.EqualValues(t, 150, account.Lamports)
	assert.EqualValues(t, system.ProgramKey[:], account.Owner)
	assert.Empty(t, account.Data)

	assert.Error(t, env.bank.Airdrop(env.ctx, system.RentSysVar, 1))
	assert.Error(t, env.bank.Airdrop(env.ctx, token.ProgramKey, 1))
}

func TestAirdrop_RateLimited(t *testing.T) {
	env := setup(t, &testOverrides{airdropRateLimit: 1})
	address := publicKey(generateKey(t))
	other := publicKey(generateKey(t))

	require.NoError(t, env.bank.Airdrop(env.ctx, address, 100))
	assert.Equal(t, ErrAirdropLimited, env.bank.Airdrop(env.ctx, address, 100))
	require.NoError(t, env.bank.Airdrop(env.ctx, other, 100))

	account, err := env.bank.GetAccount(env.ctx, address)
	require.NoError(t, err)
	assert.EqualValues(t, 100, account.Lamports)
}

func TestSyntheticAccounts(t *testing.T) {
	env := setup(t, &testOverrides{})

	rent, err := env.bank.GetAccount(env.ctx, system.RentSysVar)
	require.NoError(t, err)
	assert.EqualValues(t, system.SysVarOwner, rent.Owner)
	assert.Equal(t, system.DefaultRent().Marshal(), rent.Data)
	assert.Equal(t, system.DefaultRent(), env.bank.Rent(env.ctx))

	program, err := env.bank.GetAccount(env.ctx, token.ProgramKey)
	require.NoError(t, err)
	assert.True(t, program.Executable)
	assert.EqualValues(t, system.NativeLoader, program.Owner)
}

func TestProcess_CreateAccount(t *testing.T) {
	env := setup(t, &testOverrides{})

	payer := generateKey(t)
	account := generateKey(t)
	owner := publicKey(generateKey(t))
	require.NoError(t, env.bank.Airdrop(env.ctx, publicKey(payer), 10_000_000))

	minimum := env.bank.Rent(env.ctx).MinimumBalance(148)
	txn := NewTransaction(
		[]ed25519.PrivateKey{payer, account},
		system.CreateAccount(publicKey(payer), publicKey(account), owner, minimum, 148),
	)

	result, err := env.bank.Process(env.ctx, txn)
	require.NoError(t, err)
	assert.Len(t, result.Updated, 2)

	created, err := env.bank.GetAccount(env.ctx, publicKey(account))
	require.NoError(t, err)
	assert.EqualValues(t, owner, created.Owner)
	assert.EqualValues(t, minimum, created.Lamports)
	assert.Len(t, created.Data, 148)
	assert.EqualValues(t, 10_000_000-minimum, env.lamports(t, publicKey(payer)))

	records, err := env.ledger.GetAllByOwner(env.ctx, base58.Encode(owner))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, base58.Encode(publicKey(account)), records[0].Address)

	// The new account is now in use
	_, err = env.bank.Process(env.ctx, txn)
	requireInstructionError(t, err, 0, solana.InstructionErrorCustom)
}

func TestProcess_MissingSignature(t *testing.T) {
	env := setup(t, &testOverrides{})

	payer := generateKey(t)
	account := generateKey(t)
	require.NoError(t, env.bank.Airdrop(env.ctx, publicKey(payer), 10_000_000))

	txn := NewTransaction(
		[]ed25519.PrivateKey{payer},
		system.CreateAccount(publicKey(payer), publicKey(account), publicKey(payer), 1_000_000, 0),
	)

	_, err := env.bank.Process(env.ctx, txn)
	requireInstructionError(t, err, 0, solana.InstructionErrorMissingRequiredSignature)
	assert.EqualValues(t, 10_000_000, env.lamports(t, publicKey(payer)))
}

func TestProcess_Atomic(t *testing.T) {
	env := setup(t, &testOverrides{})

	source := generateKey(t)
	destination := publicKey(generateKey(t))
	require.NoError(t, env.bank.Airdrop(env.ctx, publicKey(source), 1_000))

	txn := NewTransaction(
		[]ed25519.PrivateKey{source},
		system.Transfer(publicKey(source), destination, 400),
		system.Transfer(publicKey(source), destination, 400),
		system.Transfer(publicKey(source), destination, 400),
	)

	_, err := env.bank.Process(env.ctx, txn)
	requireInstructionError(t, err, 2, solana.InstructionErrorCustom)

	assert.EqualValues(t, 1_000, env.lamports(t, publicKey(source)))
	assert.EqualValues(t, 0, env.lamports(t, destination))

	count, err := env.ledger.Count(env.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	txn.Instructions = txn.Instructions[:2]
	_, err = env.bank.Process(env.ctx, txn)
	require.NoError(t, err)

	assert.EqualValues(t, 200, env.lamports(t, publicKey(source)))
	assert.EqualValues(t, 800, env.lamports(t, destination))
}

func TestProcess_UnsupportedProgram(t *testing.T) {
	env := setup(t, &testOverrides{})

	txn := NewTransaction(nil, solana.NewInstruction(publicKey(generateKey(t)), nil))
	_, err := env.bank.Process(env.ctx, txn)
	requireInstructionError(t, err, 0, solana.InstructionErrorUnsupportedProgramID)

	_, err = env.bank.Process(env.ctx, NewTransaction(nil))
	assert.Equal(t, ErrNoInstructions, err)
}

func TestProcess_AccountModificationRules(t *testing.T) {
	env := setup(t, &testOverrides{})

	programID := publicKey(generateKey(t))
	owned := publicKey(generateKey(t))
	external := publicKey(generateKey(t))

	require.NoError(t, env.ledger.Save(env.ctx,
		&ledger.Record{Address: base58.Encode(owned), Owner: base58.Encode(programID), Lamports: 100, Data: make([]byte, 8)},
		&ledger.Record{Address: base58.Encode(external), Owner: base58.Encode(system.ProgramKey[:]), Lamports: 100},
	))

	var mutate func(accounts []*solana.AccountInfo)
	env.bank.RegisterProgram(programID, solana.ProgramFunc(func(_ context.Context, _ solana.Invoker, _ ed25519.PublicKey, accounts []*solana.AccountInfo, _ []byte) error {
		mutate(accounts)
		return nil
	}))

	for _, tc := range []struct {
		name     string
		writable bool
		mutate   func(accounts []*solana.AccountInfo)
		expected solana.InstructionErrorKey
	}{
		{
			name:     "readonly data",
			mutate:   func(accounts []*solana.AccountInfo) { accounts[0].Data[0] = 1 },
			expected: solana.InstructionErrorReadonlyDataModified,
		},
		{
			name:     "readonly lamports",
			mutate:   func(accounts []*solana.AccountInfo) { accounts[0].Lamports--; accounts[1].Lamports++ },
			expected: solana.InstructionErrorReadonlyLamportChange,
		},
		{
			name:     "external data",
			writable: true,
			mutate:   func(accounts []*solana.AccountInfo) { accounts[1].Data = []byte{1} },
			expected: solana.InstructionErrorExternalAccountDataModified,
		},
		{
			name:     "external spend",
			writable: true,
			mutate:   func(accounts []*solana.AccountInfo) { accounts[1].Lamports--; accounts[0].Lamports++ },
			expected: solana.InstructionErrorExternalAccountLamportSpend,
		},
		{
			name:     "unbalanced",
			writable: true,
			mutate:   func(accounts []*solana.AccountInfo) { accounts[0].Lamports++ },
			expected: solana.InstructionErrorUnbalancedInstruction,
		},
		{
			name:     "assign with data",
			writable: true,
			mutate:   func(accounts []*solana.AccountInfo) { accounts[0].Data[0] = 1; accounts[0].Owner = external },
			expected: solana.InstructionErrorModifiedProgramID,
		},
		{
			name:     "executable",
			writable: true,
			mutate:   func(accounts []*solana.AccountInfo) { accounts[0].Executable = true },
			expected: solana.InstructionErrorExecutableModified,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mutate = tc.mutate

			meta := solana.NewReadonlyAccountMeta
			if tc.writable {
				meta = solana.NewAccountMeta
			}

			txn := NewTransaction(nil, solana.NewInstruction(programID, nil, meta(owned, false), meta(external, false)))
			_, err := env.bank.Process(env.ctx, txn)
			requireInstructionError(t, err, 0, tc.expected)
		})
	}

	mutate = func(accounts []*solana.AccountInfo) {
		accounts[0].Data[0] = 1
		accounts[0].Lamports -= 10
		accounts[1].Lamports += 10
	}
	txn := NewTransaction(nil, solana.NewInstruction(programID, nil, solana.NewAccountMeta(owned, false), solana.NewAccountMeta(external, false)))
	_, err := env.bank.Process(env.ctx, txn)
	require.NoError(t, err)

	account, err := env.bank.GetAccount(env.ctx, owned)
	require.NoError(t, err)
	assert.EqualValues(t, 90, account.Lamports)
	assert.EqualValues(t, 1, account.Data[0])
	assert.EqualValues(t, 110, env.lamports(t, external))
}

func TestProcess_DuplicateAccounts(t *testing.T) {
	env := setup(t, &testOverrides{})

	programID := publicKey(generateKey(t))

	env.bank.RegisterProgram(programID, solana.ProgramFunc(func(_ context.Context, _ solana.Invoker, _ ed25519.PublicKey, accounts []*solana.AccountInfo, _ []byte) error {
		require.Len(t, accounts, 2)
		assert.True(t, accounts[0] == accounts[1])
		assert.True(t, accounts[0].IsSigner)
		assert.True(t, accounts[0].IsWritable)
		return nil
	}))

	key := generateKey(t)
	address := publicKey(key)
	txn := NewTransaction(
		[]ed25519.PrivateKey{key},
		solana.NewInstruction(programID, nil, solana.NewReadonlyAccountMeta(address, true), solana.NewAccountMeta(address, false)),
	)
	_, err := env.bank.Process(env.ctx, txn)
	require.NoError(t, err)
}

func TestProcess_CrossProgramInvocation(t *testing.T) {
	env := setup(t, &testOverrides{})

	programID := publicKey(generateKey(t))
	seeds := [][]byte{[]byte("treasury")}
	treasury, bump, err := solana.FindProgramAddressAndBump(programID, seeds...)
	require.NoError(t, err)
	signerSeeds := append(seeds, []byte{bump})

	destination := publicKey(generateKey(t))
	require.NoError(t, env.bank.Airdrop(env.ctx, treasury, 1_000))

	var signed bool
	env.bank.RegisterProgram(programID, solana.ProgramFunc(func(ctx context.Context, invoker solana.Invoker, _ ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
		instruction := system.Transfer(accounts[0].PublicKey, accounts[1].PublicKey, 250)
		if !signed {
			return invoker.Invoke(ctx, instruction)
		}
		if err := invoker.InvokeSigned(ctx, instruction, signerSeeds); err != nil {
			return err
		}

		// Views reflect the nested invocation
		assert.EqualValues(t, 750, accounts[0].Lamports)
		assert.EqualValues(t, 250, accounts[1].Lamports)
		return nil
	}))

	newTxn := func(accounts ...solana.AccountMeta) *Transaction {
		return NewTransaction(nil, solana.NewInstruction(programID, nil, accounts...))
	}

	// No signer privileges for the program address
	txn := newTxn(
		solana.NewAccountMeta(treasury, false),
		solana.NewAccountMeta(destination, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey[:], false),
	)
	_, err = env.bank.Process(env.ctx, txn)
	requireInstructionError(t, err, 0, solana.InstructionErrorPrivilegeEscalation)

	signed = true

	// Callee program not passed to the caller
	_, err = env.bank.Process(env.ctx, newTxn(solana.NewAccountMeta(treasury, false), solana.NewAccountMeta(destination, false)))
	requireInstructionError(t, err, 0, solana.InstructionErrorMissingAccount)

	// Writable privileges can't be escalated
	txn = newTxn(
		solana.NewAccountMeta(treasury, false),
		solana.NewReadonlyAccountMeta(destination, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey[:], false),
	)
	_, err = env.bank.Process(env.ctx, txn)
	requireInstructionError(t, err, 0, solana.InstructionErrorPrivilegeEscalation)

	txn = newTxn(
		solana.NewAccountMeta(treasury, false),
		solana.NewAccountMeta(destination, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey[:], false),
	)
	_, err = env.bank.Process(env.ctx, txn)
	require.NoError(t, err)

	assert.EqualValues(t, 750, env.lamports(t, treasury))
	assert.EqualValues(t, 250, env.lamports(t, destination))
}

func TestProcess_CallDepth(t *testing.T) {
	env := setup(t, &testOverrides{maxCpiDepth: 2})

	programID := publicKey(generateKey(t))

	var calls int
	env.bank.RegisterProgram(programID, solana.ProgramFunc(func(ctx context.Context, invoker solana.Invoker, programID ed25519.PublicKey, _ []*solana.AccountInfo, data []byte) error {
		calls++
		if data[0] == 0 {
			return nil
		}
		return invoker.Invoke(ctx, solana.NewInstruction(programID, []byte{data[0] - 1}, solana.NewReadonlyAccountMeta(programID, false)))
	}))

	newTxn := func(depth byte) *Transaction {
		return NewTransaction(nil, solana.NewInstruction(programID, []byte{depth}, solana.NewReadonlyAccountMeta(programID, false)))
	}

	_, err := env.bank.Process(env.ctx, newTxn(2))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	_, err = env.bank.Process(env.ctx, newTxn(3))
	requireInstructionError(t, err, 0, solana.InstructionErrorCallDepth)
}
