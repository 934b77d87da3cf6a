package swap_escrow

import (
	"crypto/ed25519"

	"github.com/code-payments/code-escrow/pkg/solana"
)

var (
	escrowPrefix = []byte("escrow")
	vaultXPrefix = []byte("vault_x")
	vaultYPrefix = []byte("vault_y")
)

// GetAddressArgs identifies an escrow. The same arguments derive the escrow
// record and both of its vaults.
type GetAddressArgs struct {
	PartyA ed25519.PublicKey
	PartyB ed25519.PublicKey
	MintX  ed25519.PublicKey
	MintY  ed25519.PublicKey
	Pass   Pass
}

func GetEscrowAddress(program ed25519.PublicKey, args *GetAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(program, GetEscrowSeeds(args)...)
}

func GetVaultXAddress(program ed25519.PublicKey, args *GetAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(program, GetVaultXSeeds(args)...)
}

func GetVaultYAddress(program ed25519.PublicKey, args *GetAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(program, GetVaultYSeeds(args)...)
}

// GetEscrowSeeds returns the derivation seeds of the escrow record, without
// the bump
func GetEscrowSeeds(args *GetAddressArgs) [][]byte {
	return args.seeds(escrowPrefix)
}

func GetVaultXSeeds(args *GetAddressArgs) [][]byte {
	return args.seeds(vaultXPrefix)
}

func GetVaultYSeeds(args *GetAddressArgs) [][]byte {
	return args.seeds(vaultYPrefix)
}

// GetEscrowSignerSeeds returns the seeds, bump included, the program signs
// with on behalf of the escrow record
func GetEscrowSignerSeeds(args *GetAddressArgs, bump uint8) [][]byte {
	return append(GetEscrowSeeds(args), []byte{bump})
}

func GetVaultXSignerSeeds(args *GetAddressArgs, bump uint8) [][]byte {
	return append(GetVaultXSeeds(args), []byte{bump})
}

func GetVaultYSignerSeeds(args *GetAddressArgs, bump uint8) [][]byte {
	return append(GetVaultYSeeds(args), []byte{bump})
}

func (args *GetAddressArgs) seeds(prefix []byte) [][]byte {
	pass := args.Pass
	return [][]byte{
		prefix,
		args.PartyA,
		args.PartyB,
		args.MintX,
		args.MintY,
		pass[:],
	}
}
