package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBConfigWithDefaults(t *testing.T) {
	tests := []struct {
		name     string
		input    DBConfig
		expected DBConfig
	}{
		{
			name:  "Empty config",
			input: DBConfig{},
			expected: DBConfig{
				Path:                ".vigcoin/store",
				NoticePercentage:    70,
				WarnPercentage:      90,
				TerminatePercentage: 95,
			},
		},
		{
			name: "Config with custom path",
			input: DBConfig{
				Path: "/custom/path/store",
			},
			expected: DBConfig{
				Path:                "/custom/path/store",
				NoticePercentage:    70,
				WarnPercentage:      90,
				TerminatePercentage: 95,
			},
		},
		{
			name: "Config with custom percentages",
			input: DBConfig{
				Path:                "/custom/path/store",
				NoticePercentage:    50,
				WarnPercentage:      60,
				TerminatePercentage: 99,
			},
			expected: DBConfig{
				Path:                "/custom/path/store",
				NoticePercentage:    50,
				WarnPercentage:      60,
				TerminatePercentage: 99,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.input.WithDefaults())
		})
	}
}

func TestCurrencyConfigWithDefaults(t *testing.T) {
	cfg := CurrencyConfig{}.WithDefaults()

	assert.Equal(t, defaultGenesisCoinbaseTxHex, cfg.GenesisCoinbaseTxHex)
	assert.Equal(t, uint32(70), cfg.GenesisNonce)
	assert.Equal(t, uint64(1000000), cfg.MinimumFee)
	assert.Equal(t, uint64(1000000), cfg.DefaultDustThreshold)
	assert.Equal(t, 8, cfg.DisplayDecimalPoint)
	assert.Equal(t, uint64(24400), cfg.MaxTransactionSize)
	assert.Equal(t, uint64(6000), cfg.FusionTxMaxSize)
	assert.Equal(t, 12, cfg.FusionTxMinInputCount)
	assert.Equal(t, 4, cfg.FusionTxMinInOutCountRatio)
	assert.Equal(t, uint32(10), cfg.MinedMoneyUnlockWindow)

	// Derived sizes follow an overridden reward zone.
	cfg = CurrencyConfig{BlockGrantedFullRewardZone: 100000}.WithDefaults()
	assert.Equal(t, uint64(124400), cfg.MaxTransactionSize)
	assert.Equal(t, uint64(30000), cfg.FusionTxMaxSize)

	cfg = CurrencyConfig{MinimumFee: 5, FusionTxMaxSize: 10}.WithDefaults()
	assert.Equal(t, uint64(5), cfg.MinimumFee)
	assert.Equal(t, uint64(10), cfg.FusionTxMaxSize)
}

func TestPoolConfigWithDefaults(t *testing.T) {
	cfg := PoolConfig{}.WithDefaults()
	assert.Equal(t, 24*time.Hour, cfg.TransactionLiveTime)
	assert.Equal(t, 7*24*time.Hour, cfg.AltBlockTransactionLiveTime)
	assert.Equal(t, 7, cfg.NumberOfPeriodsToForgetTransactionDeletedFromPool)
	assert.Equal(t, 10000, cfg.MaxTransactionCount)
	assert.Equal(t, 3, cfg.FusionTxMaxPerBlock)
	assert.Equal(t, time.Minute, cfg.ExpirySweepInterval)

	cfg = PoolConfig{MaxTransactionCount: 2}.WithDefaults()
	assert.Equal(t, 2, cfg.MaxTransactionCount)
}

func TestPoolConfigFusionTxLimit(t *testing.T) {
	tests := []struct {
		name       string
		configured int
		want       int
	}{
		{"default", 0, 3},
		{"explicit", 5, 5},
		{"disabled", -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := PoolConfig{FusionTxMaxPerBlock: tt.configured}.WithDefaults()
			assert.Equal(t, tt.want, cfg.FusionTxLimit())
		})
	}
}

func TestLoadConfigCreatesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg.DB)
	require.NotNil(t, cfg.Currency)
	require.NotNil(t, cfg.Pool)
	assert.Equal(t, filepath.Join(dir, "store"), cfg.DB.Path)

	_, err = os.Stat(filepath.Join(dir, ConfigFileName))
	require.NoError(t, err)

	cfg.Pool.MaxTransactionCount = 42
	cfg.MetricsListenAddr = "127.0.0.1:9100"
	require.NoError(t, SaveConfig(dir, cfg))

	loaded, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Equal(t, 42, loaded.Pool.MaxTransactionCount)
}

func TestLoadConfigRejectsInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, ConfigFileName),
		[]byte("db: [unterminated"),
		0644,
	))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
