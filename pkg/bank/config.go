package bank

import (
	"context"

	"github.com/code-payments/code-escrow/pkg/config"
	"github.com/code-payments/code-escrow/pkg/config/env"
	"github.com/code-payments/code-escrow/pkg/config/memory"
	"github.com/code-payments/code-escrow/pkg/config/wrapper"
	"github.com/code-payments/code-escrow/pkg/solana/system"
)

const (
	envConfigPrefix = "BANK_"

	RentLamportsPerByteYearConfigEnvName = envConfigPrefix + "RENT_LAMPORTS_PER_BYTE_YEAR"
	defaultRentLamportsPerByteYear       = system.DefaultLamportsPerByteYear

	RentExemptionThresholdConfigEnvName = envConfigPrefix + "RENT_EXEMPTION_THRESHOLD"
	defaultRentExemptionThreshold       = system.DefaultExemptionThreshold

	RentBurnPercentConfigEnvName = envConfigPrefix + "RENT_BURN_PERCENT"
	defaultRentBurnPercent       = system.DefaultBurnPercent

	MaxCpiDepthConfigEnvName = envConfigPrefix + "MAX_CPI_DEPTH"
	defaultMaxCpiDepth       = 4

	LockStripesConfigEnvName = envConfigPrefix + "LOCK_STRIPES"
	defaultLockStripes       = 64

	// Airdrops per second per address. Zero disables the limit.
	AirdropRateLimitConfigEnvName = envConfigPrefix + "AIRDROP_RATE_LIMIT"
	defaultAirdropRateLimit       = 0
)

type conf struct {
	rentLamportsPerByteYear config.Uint64
	rentExemptionThreshold  config.Float64
	rentBurnPercent         config.Uint64
	maxCpiDepth             config.Uint64
	lockStripes             config.Uint64
	airdropRateLimit        config.Float64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			rentLamportsPerByteYear: env.NewUint64Config(RentLamportsPerByteYearConfigEnvName, defaultRentLamportsPerByteYear),
			rentExemptionThreshold:  env.NewFloat64Config(RentExemptionThresholdConfigEnvName, defaultRentExemptionThreshold),
			rentBurnPercent:         env.NewUint64Config(RentBurnPercentConfigEnvName, defaultRentBurnPercent),
			maxCpiDepth:             env.NewUint64Config(MaxCpiDepthConfigEnvName, defaultMaxCpiDepth),
			lockStripes:             env.NewUint64Config(LockStripesConfigEnvName, defaultLockStripes),
			airdropRateLimit:        env.NewFloat64Config(AirdropRateLimitConfigEnvName, defaultAirdropRateLimit),
		}
	}
}

type testOverrides struct {
	maxCpiDepth      uint64
	airdropRateLimit float64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	maxCpiDepth := uint64(defaultMaxCpiDepth)
	if overrides.maxCpiDepth > 0 {
		maxCpiDepth = overrides.maxCpiDepth
	}

	return func() *conf {
		return &conf{
			rentLamportsPerByteYear: wrapper.NewUint64Config(memory.NewConfig(uint64(defaultRentLamportsPerByteYear)), defaultRentLamportsPerByteYear),
			rentExemptionThreshold:  wrapper.NewFloat64Config(memory.NewConfig(defaultRentExemptionThreshold), defaultRentExemptionThreshold),
			rentBurnPercent:         wrapper.NewUint64Config(memory.NewConfig(uint64(defaultRentBurnPercent)), defaultRentBurnPercent),
			maxCpiDepth:             wrapper.NewUint64Config(memory.NewConfig(maxCpiDepth), maxCpiDepth),
			lockStripes:             wrapper.NewUint64Config(memory.NewConfig(uint64(defaultLockStripes)), defaultLockStripes),
			airdropRateLimit:        wrapper.NewFloat64Config(memory.NewConfig(overrides.airdropRateLimit), defaultAirdropRateLimit),
		}
	}
}

func (c *conf) rent(ctx context.Context) *system.Rent {
	return &system.Rent{
		LamportsPerByteYear: c.rentLamportsPerByteYear.Get(ctx),
		ExemptionThreshold:  c.rentExemptionThreshold.Get(ctx),
		BurnPercent:         uint8(c.rentBurnPercent.Get(ctx)),
	}
}
