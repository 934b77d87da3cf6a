package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-escrow/pkg/bank"
	"github.com/code-payments/code-escrow/pkg/solana"
	swap_escrow "github.com/code-payments/code-escrow/pkg/solana/escrow"
	"github.com/code-payments/code-escrow/pkg/solana/system"
	"github.com/code-payments/code-escrow/pkg/solana/token"
)

const payerLamports = 10_000_000_000

type participant struct {
	name   string
	key    ed25519.PrivateKey
	tokenX ed25519.PublicKey
	tokenY ed25519.PublicKey
}

func (p *participant) public() ed25519.PublicKey {
	return p.key.Public().(ed25519.PublicKey)
}

type swap struct {
	log    *logrus.Entry
	bank   *bank.Bank
	config Config

	payer         ed25519.PrivateKey
	mintAuthority ed25519.PrivateKey
	mintX         ed25519.PublicKey
	mintY         ed25519.PublicKey

	alice *participant
	bob   *participant

	pass   swap_escrow.Pass
	escrow ed25519.PublicKey
	vaultX ed25519.PublicKey
	vaultY ed25519.PublicKey
}

// runSwap sets up two parties holding mint X and mint Y respectively, and
// trades AmountX of X for AmountY of Y through a freshly initialized escrow
func runSwap(ctx context.Context, b *bank.Bank, config Config) error {
	s := &swap{
		log:    logrus.StandardLogger().WithField("type", "cmd/escrow-demo/swap"),
		bank:   b,
		config: config,
	}

	if err := s.setup(ctx); err != nil {
		return errors.Wrap(err, "error setting up parties")
	}

	steps := []struct {
		name        string
		signer      *participant
		instruction func() solana.Instruction
	}{
		{"deposit", s.alice, func() solana.Instruction { return s.deposit(s.alice, s.alice.tokenX, s.vaultX) }},
		{"deposit", s.bob, func() solana.Instruction { return s.deposit(s.bob, s.bob.tokenY, s.vaultY) }},
		{"withdrawal", s.alice, func() solana.Instruction { return s.withdrawal(s.alice, s.alice.tokenY, s.vaultY) }},
		{"withdrawal", s.bob, func() solana.Instruction { return s.withdrawal(s.bob, s.bob.tokenX, s.vaultX) }},
	}
	if config.PartyBWithdrawsFirst {
		steps[2], steps[3] = steps[3], steps[2]
	}

	if err := s.initEscrow(ctx); err != nil {
		return errors.Wrap(err, "error initializing escrow")
	}

	for _, step := range steps {
		result, err := s.bank.Process(ctx, bank.NewTransaction([]ed25519.PrivateKey{step.signer.key}, step.instruction()))
		if err != nil {
			return errors.Wrapf(err, "error processing %s by %s", step.name, step.signer.name)
		}

		record, err := s.record(ctx)
		if err != nil {
			return err
		}

		s.log.WithFields(logrus.Fields{
			"txn":    result.Id.String(),
			"step":   step.name,
			"party":  step.signer.name,
			"state":  record.State.String(),
			"escrow": base58.Encode(s.escrow),
		}).Info("step completed")
	}

	return s.logBalances(ctx)
}

func (s *swap) setup(ctx context.Context) error {
	var err error

	if s.pass, err = swap_escrow.NewPass([]byte(s.config.Pass)); err != nil {
		return errors.Wrap(err, "invalid pass")
	}

	if s.payer, err = newKeypair(); err != nil {
		return err
	}
	if err := s.bank.Airdrop(ctx, s.payer.Public().(ed25519.PublicKey), payerLamports); err != nil {
		return err
	}

	if s.mintAuthority, err = newKeypair(); err != nil {
		return err
	}
	if s.mintX, err = s.createMint(ctx); err != nil {
		return errors.Wrap(err, "error creating mint x")
	}
	if s.mintY, err = s.createMint(ctx); err != nil {
		return errors.Wrap(err, "error creating mint y")
	}

	if s.alice, err = s.newParticipant(ctx, "alice", s.config.AmountX, 0); err != nil {
		return err
	}
	if s.bob, err = s.newParticipant(ctx, "bob", 0, s.config.AmountY); err != nil {
		return err
	}

	args := &swap_escrow.GetAddressArgs{
		PartyA: s.alice.public(),
		PartyB: s.bob.public(),
		MintX:  s.mintX,
		MintY:  s.mintY,
		Pass:   s.pass,
	}
	if s.escrow, _, err = swap_escrow.GetEscrowAddress(swap_escrow.PROGRAM_ID, args); err != nil {
		return err
	}
	if s.vaultX, _, err = swap_escrow.GetVaultXAddress(swap_escrow.PROGRAM_ID, args); err != nil {
		return err
	}
	if s.vaultY, _, err = swap_escrow.GetVaultYAddress(swap_escrow.PROGRAM_ID, args); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"alice":   base58.Encode(s.alice.public()),
		"bob":     base58.Encode(s.bob.public()),
		"mint_x":  base58.Encode(s.mintX),
		"mint_y":  base58.Encode(s.mintY),
		"escrow":  base58.Encode(s.escrow),
		"vault_x": base58.Encode(s.vaultX),
		"vault_y": base58.Encode(s.vaultY),
	}).Info("parties funded")

	return nil
}

func (s *swap) newParticipant(ctx context.Context, name string, amountX, amountY uint64) (*participant, error) {
	key, err := newKeypair()
	if err != nil {
		return nil, err
	}

	p := &participant{name: name, key: key}
	if p.tokenX, err = s.createTokenAccount(ctx, s.mintX, p.public()); err != nil {
		return nil, errors.Wrapf(err, "error creating %s token account for mint x", name)
	}
	if p.tokenY, err = s.createTokenAccount(ctx, s.mintY, p.public()); err != nil {
		return nil, errors.Wrapf(err, "error creating %s token account for mint y", name)
	}

	for _, mint := range []struct {
		mint    ed25519.PublicKey
		account ed25519.PublicKey
		amount  uint64
	}{
		{s.mintX, p.tokenX, amountX},
		{s.mintY, p.tokenY, amountY},
	} {
		if mint.amount == 0 {
			continue
		}

		_, err := s.bank.Process(ctx, bank.NewTransaction(
			[]ed25519.PrivateKey{s.mintAuthority},
			token.MintTo(mint.mint, mint.account, s.mintAuthority.Public().(ed25519.PublicKey), mint.amount),
		))
		if err != nil {
			return nil, errors.Wrapf(err, "error minting to %s", name)
		}
	}

	return p, nil
}

func (s *swap) createMint(ctx context.Context) (ed25519.PublicKey, error) {
	mint, err := newKeypair()
	if err != nil {
		return nil, err
	}
	address := mint.Public().(ed25519.PublicKey)

	_, err = s.bank.Process(ctx, bank.NewTransaction(
		[]ed25519.PrivateKey{s.payer, mint},
		system.CreateAccount(
			s.payer.Public().(ed25519.PublicKey),
			address,
			token.ProgramKey,
			s.bank.Rent(ctx).MinimumBalance(token.MintSize),
			token.MintSize,
		),
		token.InitializeMint(address, s.mintAuthority.Public().(ed25519.PublicKey), nil, 0),
	))
	return address, err
}

func (s *swap) createTokenAccount(ctx context.Context, mint, owner ed25519.PublicKey) (ed25519.PublicKey, error) {
	account, err := newKeypair()
	if err != nil {
		return nil, err
	}
	address := account.Public().(ed25519.PublicKey)

	_, err = s.bank.Process(ctx, bank.NewTransaction(
		[]ed25519.PrivateKey{s.payer, account},
		system.CreateAccount(
			s.payer.Public().(ed25519.PublicKey),
			address,
			token.ProgramKey,
			s.bank.Rent(ctx).MinimumBalance(token.AccountSize),
			token.AccountSize,
		),
		token.InitializeAccount(address, mint, owner),
	))
	return address, err
}

func (s *swap) initEscrow(ctx context.Context) error {
	instruction := swap_escrow.NewInitEscrowInstruction(
		&swap_escrow.InitEscrowInstructionAccounts{
			Escrow: s.escrow,
			MintX:  s.mintX,
			MintY:  s.mintY,
			VaultX: s.vaultX,
			VaultY: s.vaultY,
			Payer:  s.payer.Public().(ed25519.PublicKey),
			PartyA: s.alice.public(),
			PartyB: s.bob.public(),
		},
		&swap_escrow.InitEscrowInstructionArgs{
			AmountX: s.config.AmountX,
			AmountY: s.config.AmountY,
			Pass:    s.pass,
		},
	)

	result, err := s.bank.Process(ctx, bank.NewTransaction([]ed25519.PrivateKey{s.payer}, instruction))
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"txn":      result.Id.String(),
		"escrow":   base58.Encode(s.escrow),
		"amount_x": s.config.AmountX,
		"amount_y": s.config.AmountY,
	}).Info("escrow initialized")
	return nil
}

func (s *swap) deposit(p *participant, tokenAccount, vault ed25519.PublicKey) solana.Instruction {
	return swap_escrow.NewDepositInstruction(
		&swap_escrow.DepositInstructionAccounts{
			Escrow:       s.escrow,
			TokenAccount: tokenAccount,
			Vault:        vault,
			User:         p.public(),
		},
		&swap_escrow.DepositInstructionArgs{Pass: s.pass},
	)
}

func (s *swap) withdrawal(p *participant, tokenAccount, vault ed25519.PublicKey) solana.Instruction {
	return swap_escrow.NewWithdrawalInstruction(
		&swap_escrow.WithdrawalInstructionAccounts{
			Escrow:       s.escrow,
			TokenAccount: tokenAccount,
			Vault:        vault,
			User:         p.public(),
		},
		&swap_escrow.WithdrawalInstructionArgs{Pass: s.pass},
	)
}

func (s *swap) record(ctx context.Context) (*swap_escrow.EscrowAccount, error) {
	info, err := s.bank.GetAccount(ctx, s.escrow)
	if err != nil {
		return nil, errors.Wrap(err, "error getting escrow record")
	}

	var record swap_escrow.EscrowAccount
	if err := record.Unmarshal(info.Data); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *swap) logBalances(ctx context.Context) error {
	for _, account := range []struct {
		name    string
		address ed25519.PublicKey
	}{
		{"alice_x", s.alice.tokenX},
		{"alice_y", s.alice.tokenY},
		{"bob_x", s.bob.tokenX},
		{"bob_y", s.bob.tokenY},
		{"vault_x", s.vaultX},
		{"vault_y", s.vaultY},
	} {
		info, err := s.bank.GetAccount(ctx, account.address)
		if err != nil {
			return errors.Wrapf(err, "error getting %s", account.name)
		}

		var tokenAccount token.Account
		if !tokenAccount.Unmarshal(info.Data) {
			return errors.Errorf("%s is not a token account", account.name)
		}

		s.log.WithFields(logrus.Fields{
			"account": account.name,
			"address": base58.Encode(account.address),
			"balance": tokenAccount.Amount,
		}).Info("final balance")
	}
	return nil
}

func newKeypair() (ed25519.PrivateKey, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	return key, err
}
