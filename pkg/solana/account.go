package solana

import (
	"bytes"
	"crypto/ed25519"
)

// AccountInfo is a program's view of an account while an instruction is
// being processed. Programs mutate Lamports, Data and Owner in place, and the
// runtime validates the changes once the program returns.
type AccountInfo struct {
	PublicKey  ed25519.PublicKey
	Owner      ed25519.PublicKey
	Lamports   uint64
	Data       []byte
	Executable bool

	IsSigner   bool
	IsWritable bool
}

// IsOwnedBy returns whether the account is owned by the provided program
func (a *AccountInfo) IsOwnedBy(program ed25519.PublicKey) bool {
	return bytes.Equal(a.Owner, program)
}

// HasKey returns whether the account lives at the provided address
func (a *AccountInfo) HasKey(key ed25519.PublicKey) bool {
	return bytes.Equal(a.PublicKey, key)
}

// IsEmpty returns whether the account has no data allocated
func (a *AccountInfo) IsEmpty() bool {
	return len(a.Data) == 0
}

func (a *AccountInfo) Clone() *AccountInfo {
	return &AccountInfo{
		PublicKey:  append(ed25519.PublicKey(nil), a.PublicKey...),
		Owner:      append(ed25519.PublicKey(nil), a.Owner...),
		Lamports:   a.Lamports,
		Data:       append([]byte(nil), a.Data...),
		Executable: a.Executable,
		IsSigner:   a.IsSigner,
		IsWritable: a.IsWritable,
	}
}
