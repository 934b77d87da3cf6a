package bank

import (
	"context"
	"crypto/ed25519"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	xrate "golang.org/x/time/rate"

	"github.com/code-payments/code-escrow/pkg/ledger"
	"github.com/code-payments/code-escrow/pkg/metrics"
	"github.com/code-payments/code-escrow/pkg/rate"
	"github.com/code-payments/code-escrow/pkg/solana"
	"github.com/code-payments/code-escrow/pkg/solana/system"
	"github.com/code-payments/code-escrow/pkg/solana/token"
	sync_util "github.com/code-payments/code-escrow/pkg/sync"
)

const (
	metricsStructName = "bank"
)

var (
	ErrNoInstructions  = errors.New("transaction has no instructions")
	ErrAccountNotFound = ledger.ErrAccountNotFound
	ErrAirdropLimited  = errors.New("airdrop rate limit exceeded")
)

// Transaction is an ordered list of instructions executed atomically. Every
// account marked as a signer by an instruction must have its private key in
// Signers.
type Transaction struct {
	Instructions []solana.Instruction
	Signers      []ed25519.PrivateKey
}

func NewTransaction(signers []ed25519.PrivateKey, instructions ...solana.Instruction) *Transaction {
	return &Transaction{
		Instructions: instructions,
		Signers:      signers,
	}
}

// Result is the outcome of a successfully committed transaction
type Result struct {
	Id uuid.UUID

	// Updated is the set of addresses whose state was persisted
	Updated []string
}

// Bank executes transactions against programs registered with it, persisting
// the resulting account state to a ledger. A transaction either commits every
// account change it made, or none of them.
type Bank struct {
	log    *logrus.Entry
	conf   *conf
	ledger ledger.Store
	locks  *sync_util.StripedLock

	airdropLimiter rate.Limiter

	programsMu sync.RWMutex
	programs   map[string]solana.Program
}

// New returns a bank with the system and token programs registered
func New(store ledger.Store, configProvider ConfigProvider) *Bank {
	conf := configProvider()

	var airdropLimiter rate.Limiter = &rate.NoLimiter{}
	if limit := conf.airdropRateLimit.Get(context.Background()); limit > 0 {
		airdropLimiter = rate.NewLocalRateLimiter(xrate.Limit(limit))
	}

	b := &Bank{
		log:      logrus.StandardLogger().WithField("type", "bank"),
		conf:     conf,
		ledger:   store,
		locks:    sync_util.NewStripedLock(uint(conf.lockStripes.Get(context.Background()))),
		programs: make(map[string]solana.Program),

		airdropLimiter: airdropLimiter,
	}

	b.RegisterProgram(system.ProgramKey[:], system.NewProcessor(func() *system.Rent {
		return conf.rent(context.Background())
	}))
	b.RegisterProgram(token.ProgramKey, token.NewProcessor())

	return b
}

// RegisterProgram makes a program executable at the provided address
func (b *Bank) RegisterProgram(programID ed25519.PublicKey, program solana.Program) {
	b.programsMu.Lock()
	defer b.programsMu.Unlock()

	b.programs[base58.Encode(programID)] = program
}

func (b *Bank) getProgram(programID ed25519.PublicKey) (solana.Program, bool) {
	b.programsMu.RLock()
	defer b.programsMu.RUnlock()

	program, ok := b.programs[base58.Encode(programID)]
	return program, ok
}

// Rent returns the rent parameters currently in effect
func (b *Bank) Rent(ctx context.Context) *system.Rent {
	return b.conf.rent(ctx)
}

// Process executes every instruction in the transaction in order. The first
// failing instruction aborts the transaction and is reported as a
// solana.InstructionError.
func (b *Bank) Process(ctx context.Context, txn *Transaction) (*Result, error) {
	ctx, end := metrics.StartTransaction(ctx, "bank.Process")
	defer end()

	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Process")
	defer tracer.End()

	start := time.Now()
	id := uuid.New()

	log := b.log.WithFields(logrus.Fields{
		"method":      "Process",
		"transaction": id.String(),
	})

	if len(txn.Instructions) == 0 {
		return nil, ErrNoInstructions
	}

	signers := make(map[string]struct{})
	for _, signer := range txn.Signers {
		signers[base58.Encode(signer.Public().(ed25519.PublicKey))] = struct{}{}
	}

	keys := accountKeys(txn)
	unlock := b.locks.LockAll(keys...)
	defer unlock()

	state, err := b.loadAccounts(ctx, keys)
	if err != nil {
		log.WithError(err).Warn("failure loading accounts")
		tracer.OnError(err)
		return nil, err
	}

	for i, instruction := range txn.Instructions {
		authorize := func(meta solana.AccountMeta) error {
			if !meta.IsSigner {
				return nil
			}
			if _, ok := signers[base58.Encode(meta.PublicKey)]; !ok {
				return solana.InstructionErrorMissingRequiredSignature
			}
			return nil
		}

		err := b.execute(ctx, state, instruction, authorize, 0)
		if err != nil {
			instructionErr := solana.InstructionError{Index: i, Err: err}

			log.WithError(err).WithFields(logrus.Fields{
				"instruction": i,
				"program":     base58.Encode(instruction.Program),
				"error_key":   instructionErr.ErrorKey(),
			}).Debug("transaction failed")

			metrics.RecordCount(ctx, metricsStructName+".transaction.failed", 1)
			tracer.OnError(instructionErr)
			return nil, instructionErr
		}
	}

	updated, err := b.commit(ctx, state)
	if err != nil {
		log.WithError(err).Warn("failure committing transaction")
		tracer.OnError(err)
		return nil, err
	}

	metrics.RecordCount(ctx, metricsStructName+".transaction.committed", 1)
	metrics.RecordDuration(ctx, metricsStructName+".transaction.duration", time.Since(start))

	log.WithField("updated", len(updated)).Trace("transaction committed")

	return &Result{
		Id:      id,
		Updated: updated,
	}, nil
}

// GetAccount returns the current state of the account at the provided address
func (b *Bank) GetAccount(ctx context.Context, address ed25519.PublicKey) (*solana.AccountInfo, error) {
	if account, ok := b.syntheticAccount(ctx, address); ok {
		return account, nil
	}

	record, err := b.ledger.Get(ctx, base58.Encode(address))
	if err != nil {
		return nil, err
	}
	return fromRecord(record)
}

// Airdrop credits lamports to the address, creating a system account if
// nothing lives there yet
func (b *Bank) Airdrop(ctx context.Context, address ed25519.PublicKey, lamports uint64) error {
	log := b.log.WithFields(logrus.Fields{
		"method":   "Airdrop",
		"address":  base58.Encode(address),
		"lamports": lamports,
	})

	if _, ok := b.syntheticAccount(ctx, address); ok {
		return errors.New("cannot airdrop to a program or sysvar")
	}

	if !b.airdropLimiter.Allow(base58.Encode(address)) {
		log.Debug("airdrop rate limited")
		return ErrAirdropLimited
	}

	unlock := b.locks.LockAll(address)
	defer unlock()

	state, err := b.loadAccounts(ctx, [][]byte{address})
	if err != nil {
		return err
	}

	account := state.accounts[base58.Encode(address)]
	if account.Lamports+lamports < account.Lamports {
		return errors.New("airdrop overflows account balance")
	}
	account.Lamports += lamports

	if _, err := b.commit(ctx, state); err != nil {
		log.WithError(err).Warn("failure saving airdrop")
		return err
	}

	log.Trace("airdrop completed")
	return nil
}
