package config

const (
	defaultGenesisCoinbaseTxHex = "013c01ff000101029b2e4c0281c0b02e7c53291a94d1d0cbff8883f8024f5142ee494ffbbd0880712101a9a4569f7e10164a32324b2b878ae32d98be0949ce6e0150ba1d7e54d60969e5"
	defaultGenesisNonce         = uint32(70)

	defaultPublicAddressBase58Prefix  = uint64(6)
	defaultDisplayDecimalPoint        = 8
	defaultMinimumFee                 = uint64(1000000)
	defaultDustThreshold              = uint64(1000000)
	defaultBlockGrantedFullRewardZone = uint64(20000)
	defaultMinerTxBlobReservedSize    = uint64(600)
	defaultFusionTxMinInputCount      = 12
	defaultFusionTxMinInOutCountRatio = 4
	defaultDifficultyTarget           = uint64(120)
	defaultLockedTxAllowedDeltaBlocks = uint64(1)
	defaultMinedMoneyUnlockWindow     = uint32(10)
)

type CurrencyConfig struct {
	GenesisCoinbaseTxHex string `yaml:"genesisCoinbaseTxHex"`
	GenesisNonce         uint32 `yaml:"genesisNonce"`
	GenesisTimestamp     uint64 `yaml:"genesisTimestamp"`

	PublicAddressBase58Prefix uint64 `yaml:"publicAddressBase58Prefix"`
	// Number of digits after the decimal point when formatting amounts.
	DisplayDecimalPoint int `yaml:"displayDecimalPoint"`

	MinimumFee           uint64 `yaml:"minimumFee"`
	DefaultDustThreshold uint64 `yaml:"defaultDustThreshold"`

	BlockGrantedFullRewardZone uint64 `yaml:"blockGrantedFullRewardZone"`
	MinerTxBlobReservedSize    uint64 `yaml:"minerTxBlobReservedSize"`
	// Defaults to 125% of the full reward zone minus the miner reserve.
	MaxTransactionSize uint64 `yaml:"maxTransactionSize"`

	// Defaults to 30% of the full reward zone.
	FusionTxMaxSize            uint64 `yaml:"fusionTxMaxSize"`
	FusionTxMinInputCount      int    `yaml:"fusionTxMinInputCount"`
	FusionTxMinInOutCountRatio int    `yaml:"fusionTxMinInOutCountRatio"`

	// Target block interval in seconds.
	DifficultyTarget           uint64 `yaml:"difficultyTarget"`
	LockedTxAllowedDeltaBlocks uint64 `yaml:"lockedTxAllowedDeltaBlocks"`
	// Defaults to one block interval per allowed delta block.
	LockedTxAllowedDeltaSeconds uint64 `yaml:"lockedTxAllowedDeltaSeconds"`
	// Blocks an output must be buried under before it is used as a decoy.
	MinedMoneyUnlockWindow uint32 `yaml:"minedMoneyUnlockWindow"`
}

// WithDefaults returns a copy of the CurrencyConfig with any missing fields
// set to the mainnet values.
func (c CurrencyConfig) WithDefaults() CurrencyConfig {
	cpy := c
	if cpy.GenesisCoinbaseTxHex == "" {
		cpy.GenesisCoinbaseTxHex = defaultGenesisCoinbaseTxHex
	}
	if cpy.GenesisNonce == 0 {
		cpy.GenesisNonce = defaultGenesisNonce
	}
	if cpy.PublicAddressBase58Prefix == 0 {
		cpy.PublicAddressBase58Prefix = defaultPublicAddressBase58Prefix
	}
	if cpy.DisplayDecimalPoint == 0 {
		cpy.DisplayDecimalPoint = defaultDisplayDecimalPoint
	}
	if cpy.MinimumFee == 0 {
		cpy.MinimumFee = defaultMinimumFee
	}
	if cpy.DefaultDustThreshold == 0 {
		cpy.DefaultDustThreshold = defaultDustThreshold
	}
	if cpy.BlockGrantedFullRewardZone == 0 {
		cpy.BlockGrantedFullRewardZone = defaultBlockGrantedFullRewardZone
	}
	if cpy.MinerTxBlobReservedSize == 0 {
		cpy.MinerTxBlobReservedSize = defaultMinerTxBlobReservedSize
	}
	if cpy.MaxTransactionSize == 0 {
		cpy.MaxTransactionSize = cpy.BlockGrantedFullRewardZone*125/100 -
			cpy.MinerTxBlobReservedSize
	}
	if cpy.FusionTxMaxSize == 0 {
		cpy.FusionTxMaxSize = cpy.BlockGrantedFullRewardZone * 30 / 100
	}
	if cpy.FusionTxMinInputCount == 0 {
		cpy.FusionTxMinInputCount = defaultFusionTxMinInputCount
	}
	if cpy.FusionTxMinInOutCountRatio == 0 {
		cpy.FusionTxMinInOutCountRatio = defaultFusionTxMinInOutCountRatio
	}
	if cpy.DifficultyTarget == 0 {
		cpy.DifficultyTarget = defaultDifficultyTarget
	}
	if cpy.LockedTxAllowedDeltaBlocks == 0 {
		cpy.LockedTxAllowedDeltaBlocks = defaultLockedTxAllowedDeltaBlocks
	}
	if cpy.LockedTxAllowedDeltaSeconds == 0 {
		cpy.LockedTxAllowedDeltaSeconds = cpy.DifficultyTarget *
			cpy.LockedTxAllowedDeltaBlocks
	}
	if cpy.MinedMoneyUnlockWindow == 0 {
		cpy.MinedMoneyUnlockWindow = defaultMinedMoneyUnlockWindow
	}
	return cpy
}
