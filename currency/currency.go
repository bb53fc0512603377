package currency

import (
	"encoding/hex"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vigcoin/coin/config"
	"github.com/vigcoin/coin/cryptonote"
	"go.uber.org/zap"
)

const (
	GenesisBlockMajorVersion uint8 = 1
	GenesisBlockMinorVersion uint8 = 0

	// MaxBlockNumber separates height based unlock times from timestamps.
	MaxBlockNumber uint64 = 500000000
)

var ErrInvalidAmount = errors.New("invalid amount")

// Currency holds the monetary and size rules shared by the validator, the
// pool and the builder.
type Currency struct {
	config  config.CurrencyConfig
	logger  *zap.Logger
	genesis *cryptonote.Block
}

func NewCurrency(
	cfg *config.CurrencyConfig,
	logger *zap.Logger,
) (*Currency, error) {
	c := &Currency{
		config: cfg.WithDefaults(),
		logger: logger,
	}

	genesis, err := c.buildGenesisBlock()
	if err != nil {
		return nil, errors.Wrap(err, "new currency")
	}
	c.genesis = genesis

	return c, nil
}

func (c *Currency) MinimumFee() uint64 { return c.config.MinimumFee }

func (c *Currency) DefaultDustThreshold() uint64 {
	return c.config.DefaultDustThreshold
}

func (c *Currency) MaxTransactionSize() uint64 {
	return c.config.MaxTransactionSize
}

func (c *Currency) MinerTxBlobReservedSize() uint64 {
	return c.config.MinerTxBlobReservedSize
}

func (c *Currency) BlockGrantedFullRewardZone() uint64 {
	return c.config.BlockGrantedFullRewardZone
}

func (c *Currency) FusionTxMaxSize() uint64 { return c.config.FusionTxMaxSize }

func (c *Currency) FusionTxMinInputCount() int {
	return c.config.FusionTxMinInputCount
}

func (c *Currency) FusionTxMinInOutCountRatio() int {
	return c.config.FusionTxMinInOutCountRatio
}

func (c *Currency) MinedMoneyUnlockWindow() uint32 {
	return c.config.MinedMoneyUnlockWindow
}

func (c *Currency) PublicAddressBase58Prefix() uint64 {
	return c.config.PublicAddressBase58Prefix
}

// IsUnlocked reports whether an output with unlockTime is spendable when the
// chain tip is at topIndex. Values below MaxBlockNumber are block indexes,
// the rest are unix timestamps.
func (c *Currency) IsUnlocked(
	unlockTime uint64,
	topIndex uint32,
	now time.Time,
) bool {
	if unlockTime < MaxBlockNumber {
		return uint64(topIndex)+c.config.LockedTxAllowedDeltaBlocks >= unlockTime
	}
	return uint64(now.Unix())+c.config.LockedTxAllowedDeltaSeconds >=
		unlockTime
}

// IsFusionAmounts reports whether the amounts have the shape of a fusion
// transaction: enough non-dust inputs consolidated into the canonical digit
// decomposition of their sum, listed in ascending order.
func (c *Currency) IsFusionAmounts(
	inputs []uint64,
	outputs []uint64,
	size uint64,
) bool {
	if size > c.config.FusionTxMaxSize {
		return false
	}
	if len(inputs) < c.config.FusionTxMinInputCount {
		return false
	}
	if len(inputs) < len(outputs)*c.config.FusionTxMinInOutCountRatio {
		return false
	}

	var sum uint64
	for _, amount := range inputs {
		if amount < c.config.DefaultDustThreshold {
			return false
		}
		if sum+amount < sum {
			return false
		}
		sum += amount
	}

	expected := DecomposeAmount(sum, c.config.DefaultDustThreshold)
	slices.Sort(expected)
	return slices.Equal(expected, outputs)
}

// IsFusionTransaction applies IsFusionAmounts to a transaction whose inputs
// are all key inputs.
func (c *Currency) IsFusionTransaction(
	tx *cryptonote.Transaction,
	size uint64,
) bool {
	inputs := make([]uint64, 0, len(tx.Inputs))
	for _, in := range tx.Inputs {
		key, ok := in.(cryptonote.KeyInput)
		if !ok {
			return false
		}
		inputs = append(inputs, key.Amount)
	}

	outputs := make([]uint64, 0, len(tx.Outputs))
	for _, out := range tx.Outputs {
		outputs = append(outputs, out.Amount)
	}

	return c.IsFusionAmounts(inputs, outputs, size)
}

// DecomposeAmount splits amount into single-digit chunks, lowest order first.
// Low-order chunks are merged into one dust chunk while their sum stays within
// dustThreshold. 62387455827 with threshold 1000000 yields 455827, 7000000,
// 80000000, 300000000, 2000000000, 60000000000.
func DecomposeAmount(amount uint64, dustThreshold uint64) []uint64 {
	var out []uint64
	dust := uint64(0)
	dustHandled := false

	for order := uint64(1); amount != 0; order *= 10 {
		chunk := (amount % 10) * order
		amount /= 10

		if dust+chunk <= dustThreshold {
			dust += chunk
			continue
		}
		if !dustHandled && dust != 0 {
			out = append(out, dust)
			dustHandled = true
		}
		if chunk != 0 {
			out = append(out, chunk)
		}
	}

	if !dustHandled && dust != 0 {
		out = append(out, dust)
	}
	return out
}

// FormatAmount renders atomic units with DisplayDecimalPoint fraction digits.
func (c *Currency) FormatAmount(amount uint64) string {
	d := decimal.NewFromBigInt(
		new(big.Int).SetUint64(amount),
		-int32(c.config.DisplayDecimalPoint),
	)
	return d.StringFixed(int32(c.config.DisplayDecimalPoint))
}

// ParseAmount converts a decimal string to atomic units. Fraction digits
// beyond DisplayDecimalPoint are accepted only when they are zero.
func (c *Currency) ParseAmount(s string) (uint64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrap(ErrInvalidAmount, err.Error())
	}
	if d.IsNegative() {
		return 0, errors.Wrap(ErrInvalidAmount, "negative amount")
	}

	atomic := d.Shift(int32(c.config.DisplayDecimalPoint))
	if !atomic.IsInteger() {
		return 0, errors.Wrap(ErrInvalidAmount, "too many fraction digits")
	}

	value := atomic.BigInt()
	if !value.IsUint64() {
		return 0, errors.Wrap(ErrInvalidAmount, "amount overflow")
	}
	return value.Uint64(), nil
}

// GenesisBlock returns a copy of the genesis block.
func (c *Currency) GenesisBlock() cryptonote.Block {
	return *c.genesis
}

func (c *Currency) buildGenesisBlock() (*cryptonote.Block, error) {
	blob, err := hex.DecodeString(c.config.GenesisCoinbaseTxHex)
	if err != nil {
		return nil, errors.Wrap(err, "genesis coinbase hex")
	}

	block := &cryptonote.Block{
		BlockHeader: cryptonote.BlockHeader{
			MajorVersion: GenesisBlockMajorVersion,
			MinorVersion: GenesisBlockMinorVersion,
			Timestamp:    c.config.GenesisTimestamp,
			Nonce:        c.config.GenesisNonce,
		},
	}
	if err := block.BaseTransaction.FromCanonicalBytes(blob); err != nil {
		return nil, errors.Wrap(err, "genesis coinbase")
	}
	if !block.BaseTransaction.IsCoinbase() {
		return nil, errors.New("genesis transaction is not a coinbase")
	}

	id, err := block.Hash()
	if err != nil {
		return nil, errors.Wrap(err, "genesis hash")
	}
	c.logger.Debug("genesis block", zap.String("block_hash", id.String()))

	return block, nil
}
