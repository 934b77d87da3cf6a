package swap_escrow

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	EscrowAccountSize = (8 + // size_x
		8 + // size_y
		32 + // party_a
		32 + // party_b
		32 + // mint_x
		32 + // mint_y
		1 + // state
		1 + // escrow_bump
		1 + // vault_x_bump
		1) // vault_y_bump
)

// EscrowAccount is the persistent record of a swap between party A, who
// supplies SizeX of MintX, and party B, who supplies SizeY of MintY.
type EscrowAccount struct {
	SizeX      uint64
	SizeY      uint64
	PartyA     ed25519.PublicKey
	PartyB     ed25519.PublicKey
	MintX      ed25519.PublicKey
	MintY      ed25519.PublicKey
	State      EscrowState
	EscrowBump uint8
	VaultXBump uint8
	VaultYBump uint8
}

func (obj *EscrowAccount) Marshal() []byte {
	data := make([]byte, EscrowAccountSize)

	var offset int

	putUint64(data, obj.SizeX, &offset)
	putUint64(data, obj.SizeY, &offset)
	putKey(data, obj.PartyA, &offset)
	putKey(data, obj.PartyB, &offset)
	putKey(data, obj.MintX, &offset)
	putKey(data, obj.MintY, &offset)
	putEscrowState(data, obj.State, &offset)
	putUint8(data, obj.EscrowBump, &offset)
	putUint8(data, obj.VaultXBump, &offset)
	putUint8(data, obj.VaultYBump, &offset)

	return data
}

func (obj *EscrowAccount) Unmarshal(data []byte) error {
	if len(data) != EscrowAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	getUint64(data, &obj.SizeX, &offset)
	getUint64(data, &obj.SizeY, &offset)
	getKey(data, &obj.PartyA, &offset)
	getKey(data, &obj.PartyB, &offset)
	getKey(data, &obj.MintX, &offset)
	getKey(data, &obj.MintY, &offset)
	getEscrowState(data, &obj.State, &offset)
	getUint8(data, &obj.EscrowBump, &offset)
	getUint8(data, &obj.VaultXBump, &offset)
	getUint8(data, &obj.VaultYBump, &offset)

	if !obj.State.IsValid() {
		return ErrInvalidAccountData
	}

	return nil
}

// IsPartyA returns whether the key is the party supplying MintX
func (obj *EscrowAccount) IsPartyA(key ed25519.PublicKey) bool {
	return bytes.Equal(obj.PartyA, key)
}

// IsPartyB returns whether the key is the party supplying MintY
func (obj *EscrowAccount) IsPartyB(key ed25519.PublicKey) bool {
	return bytes.Equal(obj.PartyB, key)
}

// AddressArgs returns the derivation arguments of this escrow for a pass
func (obj *EscrowAccount) AddressArgs(pass Pass) *GetAddressArgs {
	return &GetAddressArgs{
		PartyA: obj.PartyA,
		PartyB: obj.PartyB,
		MintX:  obj.MintX,
		MintY:  obj.MintY,
		Pass:   pass,
	}
}

func (obj *EscrowAccount) String() string {
	return fmt.Sprintf(
		"EscrowAccount{size_x=%d,size_y=%d,party_a=%s,party_b=%s,mint_x=%s,mint_y=%s,state=%s,escrow_bump=%d,vault_x_bump=%d,vault_y_bump=%d}",
		obj.SizeX,
		obj.SizeY,
		base58.Encode(obj.PartyA),
		base58.Encode(obj.PartyB),
		base58.Encode(obj.MintX),
		base58.Encode(obj.MintY),
		obj.State.String(),
		obj.EscrowBump,
		obj.VaultXBump,
		obj.VaultYBump,
	)
}
