package swap_escrow

import (
	"fmt"

	"github.com/code-payments/code-escrow/pkg/solana"
)

type EscrowError uint32

const (
	// Instruction data is malformed or has an unknown tag
	ErrInvalidInstructionData EscrowError = iota + 0x1770

	// Escrow record data is malformed
	ErrInvalidAccountData

	// Fewer accounts were provided than the instruction requires
	ErrNotEnoughAccountKeys

	// Caller is neither party of the escrow
	ErrNotAParty

	// A required signature is missing
	ErrMissingSignature

	// Token account is not owned by the caller
	ErrTokenOwnerMismatch

	// Token account is not owned by the token program
	ErrTokenAccountNotOwnedByProgram

	// A program or sysvar account does not match the expected address
	ErrIncorrectProgramAccount

	// Escrow record address does not match its derivation
	ErrEscrowAddressMismatch

	// Vault address does not match its derivation
	ErrVaultAddressMismatch

	// Escrow record is not owned by the escrow program
	ErrIncorrectRecordOwner

	// Instruction is not valid for the current escrow state
	ErrInvalidState

	// Escrow record storage is already in use
	ErrAlreadyInitialized

	// Token account mint does not match the expected mint
	ErrMintMismatch

	// A pre-existing vault is not a token account under escrow custody
	ErrInvalidVault
)

type ErrorCategory uint8

const (
	ErrorCategoryUnknown ErrorCategory = iota
	ErrorCategoryMalformedInput
	ErrorCategoryAuthorization
	ErrorCategoryAddressIntegrity
	ErrorCategoryStateSequencing
	ErrorCategoryMint
)

func (e EscrowError) Error() string {
	return fmt.Sprintf("escrow error 0x%x: %s", uint32(e), e.message())
}

// CustomErrorCode returns the program error code reported by the runtime
func (e EscrowError) CustomErrorCode() solana.CustomError {
	return solana.CustomError(e)
}

func (e EscrowError) Category() ErrorCategory {
	switch e {
	case ErrInvalidInstructionData, ErrInvalidAccountData, ErrNotEnoughAccountKeys:
		return ErrorCategoryMalformedInput
	case ErrNotAParty, ErrMissingSignature, ErrTokenOwnerMismatch, ErrTokenAccountNotOwnedByProgram, ErrIncorrectProgramAccount:
		return ErrorCategoryAuthorization
	case ErrEscrowAddressMismatch, ErrVaultAddressMismatch, ErrIncorrectRecordOwner, ErrInvalidVault:
		return ErrorCategoryAddressIntegrity
	case ErrInvalidState, ErrAlreadyInitialized:
		return ErrorCategoryStateSequencing
	case ErrMintMismatch:
		return ErrorCategoryMint
	}
	return ErrorCategoryUnknown
}

func (e EscrowError) message() string {
	switch e {
	case ErrInvalidInstructionData:
		return "invalid instruction data"
	case ErrInvalidAccountData:
		return "invalid escrow account data"
	case ErrNotEnoughAccountKeys:
		return "not enough account keys"
	case ErrNotAParty:
		return "caller is not a party to the escrow"
	case ErrMissingSignature:
		return "missing required signature"
	case ErrTokenOwnerMismatch:
		return "token account owner mismatch"
	case ErrTokenAccountNotOwnedByProgram:
		return "token account not owned by the token program"
	case ErrIncorrectProgramAccount:
		return "incorrect program account"
	case ErrEscrowAddressMismatch:
		return "escrow address mismatch"
	case ErrVaultAddressMismatch:
		return "vault address mismatch"
	case ErrIncorrectRecordOwner:
		return "escrow record not owned by the program"
	case ErrInvalidState:
		return "invalid escrow state"
	case ErrAlreadyInitialized:
		return "escrow already initialized"
	case ErrMintMismatch:
		return "mint mismatch"
	case ErrInvalidVault:
		return "invalid vault account"
	}
	return "unknown"
}

func (c ErrorCategory) String() string {
	switch c {
	case ErrorCategoryMalformedInput:
		return "malformed_input"
	case ErrorCategoryAuthorization:
		return "authorization"
	case ErrorCategoryAddressIntegrity:
		return "address_integrity"
	case ErrorCategoryStateSequencing:
		return "state_sequencing"
	case ErrorCategoryMint:
		return "mint"
	}
	return "unknown"
}
