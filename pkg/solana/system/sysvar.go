package system

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-escrow/pkg/solana/binary"
)

// https://explorer.solana.com/address/11111111111111111111111111111111
var SystemAccount ed25519.PublicKey

// RentSysVar points to the system variable "Rent"
//
// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/sysvar/rent.rs#L11
var RentSysVar ed25519.PublicKey

// SysVarOwner is the owner of every sysvar account
var SysVarOwner ed25519.PublicKey

// NativeLoader owns every builtin program account
var NativeLoader ed25519.PublicKey

func init() {
	RentSysVar = mustBase58Decode("SysvarRent111111111111111111111111111111111")
	SysVarOwner = mustBase58Decode("Sysvar1111111111111111111111111111111111111")
	NativeLoader = mustBase58Decode("NativeLoader1111111111111111111111111111111")
	SystemAccount = mustBase58Decode("11111111111111111111111111111111")
}

const (
	// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/rent.rs#L38
	AccountStorageOverhead = 128

	DefaultLamportsPerByteYear = 1_000_000_000 / 100 * 365 / (1024 * 1024)
	DefaultExemptionThreshold  = 2.0
	DefaultBurnPercent         = 50
)

const RentSize = 8 + // lamports_per_byte_year
	8 + // exemption_threshold
	1 // burn_percent

var ErrInvalidRentSize = errors.New("invalid rent sysvar size")

// Rent is the layout of the rent sysvar account data
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/rent.rs#L12
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
	BurnPercent         uint8
}

func DefaultRent() *Rent {
	return &Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
		BurnPercent:         DefaultBurnPercent,
	}
}

// MinimumBalance is the minimum number of lamports an account of the provided
// data size must hold to be exempt from rent
func (r *Rent) MinimumBalance(size uint64) uint64 {
	bytes := AccountStorageOverhead + size
	return uint64(float64(bytes*r.LamportsPerByteYear) * r.ExemptionThreshold)
}

// IsExempt returns whether an account with the provided balance and data size
// is exempt from rent
func (r *Rent) IsExempt(lamports, size uint64) bool {
	return lamports >= r.MinimumBalance(size)
}

func (r *Rent) Marshal() []byte {
	b := make([]byte, RentSize)

	var offset int
	binary.PutUint64(b, r.LamportsPerByteYear, &offset)
	binary.PutFloat64(b[offset:], r.ExemptionThreshold, &offset)
	binary.PutUint8(b[offset:], r.BurnPercent, &offset)

	return b
}

func (r *Rent) Unmarshal(data []byte) error {
	if len(data) != RentSize {
		return ErrInvalidRentSize
	}

	var offset int
	binary.GetUint64(data, &r.LamportsPerByteYear, &offset)
	binary.GetFloat64(data[offset:], &r.ExemptionThreshold, &offset)
	binary.GetUint8(data[offset:], &r.BurnPercent, &offset)

	return nil
}

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
