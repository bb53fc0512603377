package validator

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/pkg/errors"
	"github.com/vigcoin/coin/config"
	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/cryptonote"
	"github.com/vigcoin/coin/currency"
	"github.com/vigcoin/coin/types/consensus"
	"github.com/vigcoin/coin/types/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var _ consensus.TransactionInputsChecker = (*Validator)(nil)

// Validator checks transaction inputs against the main chain: spent key
// images, referenced outputs, unlock times and signatures.
type Validator struct {
	keyImages store.KeyImageStore
	outputs   store.OutputStore
	oracle    consensus.BlockchainHeightOracle
	currency  *currency.Currency
	clock     clock.Clock
	// verified maps a transaction id to the max used block of its last
	// successful signature check.
	verified *lru.Cache[crypto.Hash, consensus.BlockInfo]
	logger   *zap.Logger
}

func NewValidator(
	keyImages store.KeyImageStore,
	outputs store.OutputStore,
	oracle consensus.BlockchainHeightOracle,
	currency *currency.Currency,
	clock clock.Clock,
	cfg *config.PoolConfig,
	logger *zap.Logger,
) (*Validator, error) {
	verified, err := lru.New[crypto.Hash, consensus.BlockInfo](
		cfg.WithDefaults().VerifiedCacheSize,
	)
	if err != nil {
		return nil, errors.Wrap(err, "new validator")
	}

	return &Validator{
		keyImages: keyImages,
		outputs:   outputs,
		oracle:    oracle,
		currency:  currency,
		clock:     clock,
		verified:  verified,
		logger:    logger,
	}, nil
}

// CheckTransactionInputs implements consensus.TransactionInputsChecker.
func (v *Validator) CheckTransactionInputs(
	tx *cryptonote.Transaction,
) (consensus.BlockInfo, error) {
	start := time.Now()
	defer func() {
		inputCheckDuration.Observe(time.Since(start).Seconds())
	}()

	info, err := v.checkTransactionInputs(tx)
	if err != nil {
		if cryptonote.KindOf(err) == cryptonote.KindUnknown {
			inputChecksTotal.WithLabelValues("error").Inc()
		} else {
			inputChecksTotal.WithLabelValues("reject").Inc()
		}
		v.logger.Debug("transaction inputs rejected", zap.Error(err))
		return consensus.BlockInfo{}, errors.Wrap(err, "check transaction inputs")
	}

	inputChecksTotal.WithLabelValues("accept").Inc()
	return info, nil
}

func (v *Validator) checkTransactionInputs(
	tx *cryptonote.Transaction,
) (consensus.BlockInfo, error) {
	if err := CheckSignaturesPresent(tx); err != nil {
		return consensus.BlockInfo{}, err
	}

	for _, image := range tx.KeyImages() {
		if !crypto.CheckKeyImage(image) {
			return consensus.BlockInfo{}, errors.Wrap(
				cryptonote.ErrInvalidKeyImage,
				image.String(),
			)
		}
		spent, err := v.keyImages.Contains(image)
		if err != nil {
			return consensus.BlockInfo{}, err
		}
		if spent {
			return consensus.BlockInfo{}, errors.Wrap(
				cryptonote.ErrDoubleSpend,
				image.String(),
			)
		}
	}

	id, err := cryptonote.GetTransactionHash(tx)
	if err != nil {
		return consensus.BlockInfo{}, err
	}
	if cached, ok := v.verified.Get(id); ok && v.isOnMainChain(cached) {
		signatureCacheHits.Inc()
		return cached, nil
	}

	prefixHash, err := cryptonote.GetTransactionPrefixHash(
		&tx.TransactionPrefix,
	)
	if err != nil {
		return consensus.BlockInfo{}, err
	}

	height := v.oracle.GetCurrentHeight()
	var topIndex uint32
	if height > 0 {
		topIndex = height - 1
	}
	now := v.clock.Now()

	var maxUsed uint32
	// Inputs are independent, so their signatures verify concurrently.
	var g errgroup.Group
	for i, in := range tx.Inputs {
		switch input := in.(type) {
		case cryptonote.KeyInput:
			entries, err := v.outputs.GetOutputKeys(
				input.Amount,
				cryptonote.AbsoluteOutputOffsets(input.OutputIndexes),
			)
			if err != nil {
				return consensus.BlockInfo{}, wrapOutputError(err, i)
			}

			ring := make([]crypto.PublicKey, len(entries))
			for j, entry := range entries {
				if !v.currency.IsUnlocked(entry.UnlockTime, topIndex, now) {
					return consensus.BlockInfo{}, errors.Wrapf(
						cryptonote.ErrLockedOutput,
						"input %d",
						i,
					)
				}
				ring[j] = entry.Key
				maxUsed = max(maxUsed, entry.BlockIndex)
			}

			sigs := tx.Signatures[i][:len(ring)]
			g.Go(func() error {
				if !crypto.CheckRingSignature(
					prefixHash,
					input.KeyImage,
					ring,
					sigs,
				) {
					return errors.Wrapf(
						cryptonote.ErrInvalidSignature,
						"input %d",
						i,
					)
				}
				return nil
			})

		case cryptonote.MultisignatureInput:
			entry, err := v.outputs.GetMultisignatureOutput(
				input.Amount,
				input.OutputIndex,
			)
			if err != nil {
				return consensus.BlockInfo{}, wrapOutputError(err, i)
			}
			if entry.Spent {
				return consensus.BlockInfo{}, errors.Wrapf(
					cryptonote.ErrDoubleSpend,
					"input %d",
					i,
				)
			}
			if !v.currency.IsUnlocked(entry.UnlockTime, topIndex, now) {
				return consensus.BlockInfo{}, errors.Wrapf(
					cryptonote.ErrLockedOutput,
					"input %d",
					i,
				)
			}
			if input.SignatureCount != entry.Output.RequiredSignatureCount {
				return consensus.BlockInfo{}, errors.Wrapf(
					cryptonote.ErrSignatureCount,
					"input %d",
					i,
				)
			}
			maxUsed = max(maxUsed, entry.BlockIndex)

			keys := entry.Output.Keys
			sigs := tx.Signatures[i][:input.SignatureCount]
			g.Go(func() error {
				if !checkMultisignature(prefixHash, keys, sigs) {
					return errors.Wrapf(
						cryptonote.ErrInvalidSignature,
						"input %d",
						i,
					)
				}
				return nil
			})

		default:
			return consensus.BlockInfo{}, errors.Wrapf(
				cryptonote.ErrUnsupportedInput,
				"input %d",
				i,
			)
		}
	}

	if err := g.Wait(); err != nil {
		return consensus.BlockInfo{}, err
	}

	blockID, err := v.oracle.GetBlockIDByHeight(maxUsed)
	if err != nil {
		return consensus.BlockInfo{}, errors.Wrap(err, "max used block")
	}
	info := consensus.BlockInfo{Height: maxUsed, ID: blockID}
	v.verified.Add(id, info)
	return info, nil
}

func wrapOutputError(err error, input int) error {
	if errors.Is(err, store.ErrNotFound) {
		return errors.Wrapf(cryptonote.ErrUnknownOutput, "input %d", input)
	}
	return errors.Wrapf(err, "input %d", input)
}

// checkMultisignature matches signatures to keys in order. Each key signs at
// most once and keys may be skipped.
func checkMultisignature(
	prefixHash crypto.Hash,
	keys []crypto.PublicKey,
	sigs []crypto.Signature,
) bool {
	k := 0
	for _, sig := range sigs {
		for k < len(keys) && !crypto.CheckSignature(prefixHash, keys[k], sig) {
			k++
		}
		if k == len(keys) {
			return false
		}
		k++
	}
	return true
}

func (v *Validator) isOnMainChain(info consensus.BlockInfo) bool {
	if info.Height >= v.oracle.GetCurrentHeight() {
		return false
	}
	id, err := v.oracle.GetBlockIDByHeight(info.Height)
	return err == nil && id == info.ID
}

func (v *Validator) tail() consensus.BlockInfo {
	height := v.oracle.GetCurrentHeight()
	if height == 0 {
		return consensus.BlockInfo{}
	}
	id, err := v.oracle.GetBlockIDByHeight(height - 1)
	if err != nil {
		return consensus.BlockInfo{}
	}
	return consensus.BlockInfo{Height: height - 1, ID: id}
}

// RecheckTransactionInputs implements consensus.TransactionInputsChecker.
// A transaction that failed is not checked again until the chain moves past
// lastFailedBlock. One that passed is checked again only when its
// maxUsedBlock left the main chain.
func (v *Validator) RecheckTransactionInputs(
	tx *cryptonote.Transaction,
	maxUsedBlock *consensus.BlockInfo,
	lastFailedBlock *consensus.BlockInfo,
) bool {
	if maxUsedBlock.Empty() {
		if !lastFailedBlock.Empty() &&
			v.oracle.GetCurrentHeight() > lastFailedBlock.Height &&
			v.isBlock(*lastFailedBlock) {
			return false
		}
		return v.recheck(tx, maxUsedBlock, lastFailedBlock)
	}

	if maxUsedBlock.Height >= v.oracle.GetCurrentHeight() {
		return false
	}
	if !v.isBlock(*maxUsedBlock) {
		if !lastFailedBlock.Empty() && v.isBlock(*lastFailedBlock) {
			return false
		}
		return v.recheck(tx, maxUsedBlock, lastFailedBlock)
	}
	return true
}

func (v *Validator) isBlock(info consensus.BlockInfo) bool {
	id, err := v.oracle.GetBlockIDByHeight(info.Height)
	return err == nil && id == info.ID
}

func (v *Validator) recheck(
	tx *cryptonote.Transaction,
	maxUsedBlock *consensus.BlockInfo,
	lastFailedBlock *consensus.BlockInfo,
) bool {
	info, err := v.CheckTransactionInputs(tx)
	if err != nil {
		*lastFailedBlock = v.tail()
		return false
	}
	*maxUsedBlock = info
	return true
}

// HaveSpentKeyImages implements consensus.TransactionInputsChecker.
func (v *Validator) HaveSpentKeyImages(
	tx *cryptonote.Transaction,
) (bool, error) {
	for _, image := range tx.KeyImages() {
		spent, err := v.keyImages.Contains(image)
		if err != nil {
			return false, errors.Wrap(err, "have spent key images")
		}
		if spent {
			return true, nil
		}
	}
	return false, nil
}

// CheckTransactionSize implements consensus.TransactionInputsChecker.
func (v *Validator) CheckTransactionSize(blobSize uint64) error {
	if blobSize > v.currency.MaxTransactionSize() {
		return errors.Wrapf(
			cryptonote.ErrTransactionTooBig,
			"size %d exceeds %d",
			blobSize,
			v.currency.MaxTransactionSize(),
		)
	}
	return nil
}
