package bank

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-escrow/pkg/ledger"
	"github.com/code-payments/code-escrow/pkg/solana"
	"github.com/code-payments/code-escrow/pkg/solana/system"
)

// transactionState holds the working copy of every account a transaction
// references. Nothing is persisted until the whole transaction succeeds.
type transactionState struct {
	order     []string
	accounts  map[string]*solana.AccountInfo
	loaded    map[string]*solana.AccountInfo
	synthetic map[string]struct{}
}

// accountKeys returns every distinct address referenced by the transaction, in
// order of first appearance
func accountKeys(txn *Transaction) [][]byte {
	seen := make(map[string]struct{})

	var keys [][]byte
	add := func(key ed25519.PublicKey) {
		encoded := base58.Encode(key)
		if _, ok := seen[encoded]; ok {
			return
		}
		seen[encoded] = struct{}{}
		keys = append(keys, key)
	}

	for _, instruction := range txn.Instructions {
		add(instruction.Program)
		for _, meta := range instruction.Accounts {
			add(meta.PublicKey)
		}
	}

	return keys
}

func (b *Bank) loadAccounts(ctx context.Context, keys [][]byte) (*transactionState, error) {
	state := &transactionState{
		accounts:  make(map[string]*solana.AccountInfo),
		loaded:    make(map[string]*solana.AccountInfo),
		synthetic: make(map[string]struct{}),
	}

	for _, key := range keys {
		address := base58.Encode(key)

		account, ok := b.syntheticAccount(ctx, key)
		if ok {
			state.synthetic[address] = struct{}{}
		} else {
			record, err := b.ledger.Get(ctx, address)
			switch err {
			case nil:
				account, err = fromRecord(record)
				if err != nil {
					return nil, err
				}
			case ledger.ErrAccountNotFound:
				account = &solana.AccountInfo{
					PublicKey: append(ed25519.PublicKey(nil), key...),
					Owner:     append(ed25519.PublicKey(nil), system.ProgramKey[:]...),
				}
			default:
				return nil, errors.Wrapf(err, "error loading account %s", address)
			}
		}

		state.order = append(state.order, address)
		state.accounts[address] = account
		state.loaded[address] = account.Clone()
	}

	return state, nil
}

// syntheticAccount returns the account for addresses that are served by the
// bank itself rather than the ledger: registered programs and the rent sysvar
func (b *Bank) syntheticAccount(ctx context.Context, address ed25519.PublicKey) (*solana.AccountInfo, bool) {
	if _, ok := b.getProgram(address); ok {
		return &solana.AccountInfo{
			PublicKey:  append(ed25519.PublicKey(nil), address...),
			Owner:      system.NativeLoader,
			Lamports:   1,
			Executable: true,
		}, true
	}

	if bytes.Equal(address, system.RentSysVar) {
		return &solana.AccountInfo{
			PublicKey: system.RentSysVar,
			Owner:     system.SysVarOwner,
			Lamports:  1,
			Data:      b.conf.rent(ctx).Marshal(),
		}, true
	}

	return nil, false
}

// commit persists every ledger account the transaction changed
func (b *Bank) commit(ctx context.Context, state *transactionState) ([]string, error) {
	var updated []string
	var records []*ledger.Record
	for _, address := range state.order {
		if _, ok := state.synthetic[address]; ok {
			continue
		}

		account := state.accounts[address]
		if isUnchanged(state.loaded[address], account) {
			continue
		}

		updated = append(updated, address)
		records = append(records, toRecord(account))
	}

	if len(records) == 0 {
		return nil, nil
	}

	if err := b.ledger.Save(ctx, records...); err != nil {
		return nil, errors.Wrap(err, "error saving accounts")
	}
	return updated, nil
}

func isUnchanged(before, after *solana.AccountInfo) bool {
	return bytes.Equal(before.Owner, after.Owner) &&
		before.Lamports == after.Lamports &&
		bytes.Equal(before.Data, after.Data) &&
		before.Executable == after.Executable
}

func toRecord(account *solana.AccountInfo) *ledger.Record {
	return &ledger.Record{
		Address:    base58.Encode(account.PublicKey),
		Owner:      base58.Encode(account.Owner),
		Lamports:   account.Lamports,
		Data:       append([]byte(nil), account.Data...),
		Executable: account.Executable,
	}
}

func fromRecord(record *ledger.Record) (*solana.AccountInfo, error) {
	address, err := base58.Decode(record.Address)
	if err != nil || len(address) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid account address %q", record.Address)
	}

	owner, err := base58.Decode(record.Owner)
	if err != nil || len(owner) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid owner %q for account %s", record.Owner, record.Address)
	}

	return &solana.AccountInfo{
		PublicKey:  address,
		Owner:      owner,
		Lamports:   record.Lamports,
		Data:       record.Data,
		Executable: record.Executable,
	}, nil
}
