package swap_escrow

import (
	"crypto/ed25519"
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("SwapEscrow111111111111111111111111111111111")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID    = ed25519.PublicKey(mustBase58Decode("11111111111111111111111111111111"))
	SPL_TOKEN_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"))

	SYSVAR_RENT_PUBKEY = ed25519.PublicKey(mustBase58Decode("SysvarRent111111111111111111111111111111111"))
)

const PassSize = 32

// Pass is the caller chosen secret that distinguishes escrows between the
// same two parties over the same pair of mints
type Pass [PassSize]byte

// NewPass builds a Pass from at most PassSize bytes. Shorter values are
// right padded with zeros.
func NewPass(value []byte) (Pass, error) {
	var pass Pass
	if len(value) > PassSize {
		return pass, ErrInvalidInstructionData
	}
	copy(pass[:], value)
	return pass, nil
}
