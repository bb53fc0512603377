package config

import "time"

const (
	defaultTransactionLiveTime         = 24 * time.Hour
	defaultAltBlockTransactionLiveTime = 7 * 24 * time.Hour
	defaultPeriodsToForgetDeleted      = 7
	defaultMaxTransactionCount         = 10000
	defaultFusionTxMaxPerBlock         = 3
	defaultExpirySweepInterval         = 60 * time.Second
	defaultVerifiedCacheSize           = 4096
)

type PoolConfig struct {
	// How long an entry may stay in the pool.
	TransactionLiveTime time.Duration `yaml:"transactionLiveTime"`
	// How long an entry kept by an alternative block may stay in the pool.
	AltBlockTransactionLiveTime time.Duration `yaml:"altBlockTransactionLiveTime"`
	// Removed transactions are refused for this many live time periods.
	NumberOfPeriodsToForgetTransactionDeletedFromPool int `yaml:"numberOfPeriodsToForgetTransactionDeletedFromPool"`

	MaxTransactionCount int `yaml:"maxTransactionCount"`
	// Fusion transactions per block template. Zero selects the default and a
	// negative value keeps fusion transactions out of templates.
	FusionTxMaxPerBlock int           `yaml:"fusionTxMaxPerBlock"`
	ExpirySweepInterval time.Duration `yaml:"expirySweepInterval"`

	// Number of verified transaction hashes remembered by the validator.
	VerifiedCacheSize int `yaml:"verifiedCacheSize"`
}

// WithDefaults returns a copy of the PoolConfig with any missing fields set
// to their default values.
func (c PoolConfig) WithDefaults() PoolConfig {
	cpy := c
	if cpy.TransactionLiveTime == 0 {
		cpy.TransactionLiveTime = defaultTransactionLiveTime
	}
	if cpy.AltBlockTransactionLiveTime == 0 {
		cpy.AltBlockTransactionLiveTime = defaultAltBlockTransactionLiveTime
	}
	if cpy.NumberOfPeriodsToForgetTransactionDeletedFromPool == 0 {
		cpy.NumberOfPeriodsToForgetTransactionDeletedFromPool =
			defaultPeriodsToForgetDeleted
	}
	if cpy.MaxTransactionCount == 0 {
		cpy.MaxTransactionCount = defaultMaxTransactionCount
	}
	if cpy.FusionTxMaxPerBlock == 0 {
		cpy.FusionTxMaxPerBlock = defaultFusionTxMaxPerBlock
	}
	if cpy.ExpirySweepInterval == 0 {
		cpy.ExpirySweepInterval = defaultExpirySweepInterval
	}
	if cpy.VerifiedCacheSize == 0 {
		cpy.VerifiedCacheSize = defaultVerifiedCacheSize
	}
	return cpy
}

// FusionTxLimit is the number of fusion transactions a block template may
// take.
func (c PoolConfig) FusionTxLimit() int {
	return max(c.FusionTxMaxPerBlock, 0)
}
