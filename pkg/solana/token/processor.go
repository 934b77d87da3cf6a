package token

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-escrow/pkg/solana"
	"github.com/code-payments/code-escrow/pkg/solana/system"
)

// Processor is an in-process implementation of the token program commands
// needed to custody funds: InitializeMint, InitializeAccount, Transfer and
// MintTo. Account layouts match the on-chain program byte for byte.
type Processor struct {
	log *logrus.Entry
}

func NewProcessor() solana.Program {
	return &Processor{
		log: logrus.StandardLogger().WithField("type", "solana/token/processor"),
	}
}

func (p *Processor) Process(ctx context.Context, _ solana.Invoker, programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return solana.InstructionErrorInvalidInstructionData
	}

	switch Command(data[0]) {
	case CommandInitializeMint:
		return p.processInitializeMint(programID, accounts, data)
	case CommandInitializeAccount:
		return p.processInitializeAccount(programID, accounts, data)
	case CommandTransfer:
		return p.processTransfer(programID, accounts, data)
	case CommandMintTo:
		return p.processMintTo(programID, accounts, data)
	default:
		return solana.InstructionErrorInvalidInstructionData
	}
}

func (p *Processor) processInitializeMint(programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	if len(data) != 67 {
		return solana.InstructionErrorInvalidInstructionData
	}
	if len(accounts) < 2 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	mintInfo, rentInfo := accounts[0], accounts[1]

	if !mintInfo.IsOwnedBy(programID) {
		return solana.InstructionErrorIncorrectProgramID
	}

	var mint Mint
	if !mint.Unmarshal(mintInfo.Data) {
		return solana.InstructionErrorInvalidAccountData
	}
	if mint.IsInitialized {
		return ErrorAlreadyInUse
	}

	rent, err := loadRent(rentInfo)
	if err != nil {
		return err
	}
	if !rent.IsExempt(mintInfo.Lamports, uint64(len(mintInfo.Data))) {
		return ErrorNotRentExempt
	}

	mint.MintAuthority = make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(mint.MintAuthority, data[2:34])
	if data[34] == 1 {
		mint.FreezeAuthority = make(ed25519.PublicKey, ed25519.PublicKeySize)
		copy(mint.FreezeAuthority, data[35:])
	}
	mint.Decimals = data[1]
	mint.IsInitialized = true

	copy(mintInfo.Data, mint.Marshal())
	return nil
}

func (p *Processor) processInitializeAccount(programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	if len(data) != 1 {
		return solana.InstructionErrorInvalidInstructionData
	}
	if len(accounts) < 4 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	accountInfo, mintInfo, ownerInfo, rentInfo := accounts[0], accounts[1], accounts[2], accounts[3]

	log := p.log.WithFields(logrus.Fields{
		"method":  "processInitializeAccount",
		"account": base58.Encode(accountInfo.PublicKey),
		"mint":    base58.Encode(mintInfo.PublicKey),
		"owner":   base58.Encode(ownerInfo.PublicKey),
	})

	if !accountInfo.IsOwnedBy(programID) {
		return solana.InstructionErrorIncorrectProgramID
	}

	var account Account
	if !account.Unmarshal(accountInfo.Data) {
		return solana.InstructionErrorInvalidAccountData
	}
	if account.IsInitialized() {
		log.Debug("account already initialized")
		return ErrorAlreadyInUse
	}

	rent, err := loadRent(rentInfo)
	if err != nil {
		return err
	}
	if !rent.IsExempt(accountInfo.Lamports, uint64(len(accountInfo.Data))) {
		log.Debug("account not rent exempt")
		return ErrorNotRentExempt
	}

	if _, err := loadMint(programID, mintInfo); err != nil {
		log.WithError(err).Debug("invalid mint")
		return err
	}

	account = Account{
		Mint:  append(ed25519.PublicKey(nil), mintInfo.PublicKey...),
		Owner: append(ed25519.PublicKey(nil), ownerInfo.PublicKey...),
		State: AccountStateInitialized,
	}
	copy(accountInfo.Data, account.Marshal())

	log.Trace("token account initialized")
	return nil
}

func (p *Processor) processTransfer(programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	if len(data) != 9 {
		return solana.InstructionErrorInvalidInstructionData
	}
	if len(accounts) < 3 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	amount := binary.LittleEndian.Uint64(data[1:])
	sourceInfo, destInfo, authorityInfo := accounts[0], accounts[1], accounts[2]

	log := p.log.WithFields(logrus.Fields{
		"method":      "processTransfer",
		"source":      base58.Encode(sourceInfo.PublicKey),
		"destination": base58.Encode(destInfo.PublicKey),
		"authority":   base58.Encode(authorityInfo.PublicKey),
		"amount":      amount,
	})

	source, err := loadAccount(programID, sourceInfo)
	if err != nil {
		return err
	}
	dest, err := loadAccount(programID, destInfo)
	if err != nil {
		return err
	}

	if source.State == AccountStateFrozen || dest.State == AccountStateFrozen {
		return ErrorAccountFrozen
	}
	if !bytes.Equal(source.Mint, dest.Mint) {
		log.Debug("mint mismatch")
		return ErrorMintMismatch
	}
	if !bytes.Equal(source.Owner, authorityInfo.PublicKey) {
		log.Debug("owner mismatch")
		return ErrorOwnerMismatch
	}
	if !authorityInfo.IsSigner {
		log.Debug("authority did not sign")
		return solana.InstructionErrorMissingRequiredSignature
	}
	if source.Amount < amount {
		log.Debug("insufficient funds")
		return ErrorInsufficientFunds
	}

	if sourceInfo.HasKey(destInfo.PublicKey) {
		return nil
	}

	if dest.Amount+amount < dest.Amount {
		return ErrorOverflow
	}

	source.Amount -= amount
	dest.Amount += amount

	copy(sourceInfo.Data, source.Marshal())
	copy(destInfo.Data, dest.Marshal())

	log.Trace("tokens transferred")
	return nil
}

func (p *Processor) processMintTo(programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	if len(data) != 9 {
		return solana.InstructionErrorInvalidInstructionData
	}
	if len(accounts) < 3 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	amount := binary.LittleEndian.Uint64(data[1:])
	mintInfo, destInfo, authorityInfo := accounts[0], accounts[1], accounts[2]

	mint, err := loadMint(programID, mintInfo)
	if err != nil {
		return err
	}
	dest, err := loadAccount(programID, destInfo)
	if err != nil {
		return err
	}

	if dest.State == AccountStateFrozen {
		return ErrorAccountFrozen
	}
	if !bytes.Equal(dest.Mint, mintInfo.PublicKey) {
		return ErrorMintMismatch
	}
	if len(mint.MintAuthority) == 0 {
		return ErrorFixedSupply
	}
	if !bytes.Equal(mint.MintAuthority, authorityInfo.PublicKey) {
		return ErrorOwnerMismatch
	}
	if !authorityInfo.IsSigner {
		return solana.InstructionErrorMissingRequiredSignature
	}
	if mint.Supply+amount < mint.Supply || dest.Amount+amount < dest.Amount {
		return ErrorOverflow
	}

	mint.Supply += amount
	dest.Amount += amount

	copy(mintInfo.Data, mint.Marshal())
	copy(destInfo.Data, dest.Marshal())
	return nil
}

func loadAccount(programID ed25519.PublicKey, info *solana.AccountInfo) (*Account, error) {
	if !info.IsOwnedBy(programID) {
		return nil, solana.InstructionErrorIncorrectProgramID
	}

	var account Account
	if !account.Unmarshal(info.Data) {
		return nil, solana.InstructionErrorInvalidAccountData
	}
	if !account.IsInitialized() {
		return nil, ErrorUninitializedState
	}
	return &account, nil
}

func loadMint(programID ed25519.PublicKey, info *solana.AccountInfo) (*Mint, error) {
	if !info.IsOwnedBy(programID) {
		return nil, ErrorInvalidMint
	}

	var mint Mint
	if !mint.Unmarshal(info.Data) || !mint.IsInitialized {
		return nil, ErrorInvalidMint
	}
	return &mint, nil
}

func loadRent(info *solana.AccountInfo) (*system.Rent, error) {
	if !info.HasKey(system.RentSysVar) {
		return nil, errors.Wrap(solana.InstructionErrorInvalidArgument, "invalid rent sysvar")
	}

	var rent system.Rent
	if err := rent.Unmarshal(info.Data); err != nil {
		return nil, solana.InstructionErrorInvalidAccountData
	}
	return &rent, nil
}
