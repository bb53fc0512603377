package builder

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"sort"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/pkg/errors"
	"github.com/vigcoin/coin/cryptonote"
	"github.com/vigcoin/coin/currency"
	"github.com/vigcoin/coin/types/consensus"
	"github.com/vigcoin/coin/types/store"
)

// DecoySelector draws ring members among the outputs of an amount that are
// buried deep enough and already spendable.
type DecoySelector struct {
	outputs  store.OutputStore
	oracle   consensus.BlockchainHeightOracle
	currency *currency.Currency
	clock    clock.Clock
}

func NewDecoySelector(
	outputs store.OutputStore,
	oracle consensus.BlockchainHeightOracle,
	currency *currency.Currency,
	clock clock.Clock,
) *DecoySelector {
	return &DecoySelector{
		outputs:  outputs,
		oracle:   oracle,
		currency: currency,
		clock:    clock,
	}
}

// SelectDecoys picks mixin distinct outputs of the amount besides real and
// returns a source entry holding the ring. Outputs from the last
// MinedMoneyUnlockWindow blocks and outputs still locked are never picked.
// The caller fills in the real transaction public key and the real output
// index in that transaction.
func (s *DecoySelector) SelectDecoys(
	amount uint64,
	mixin int,
	real SourceOutput,
) (SourceEntry, error) {
	count, err := s.outputs.GetOutputCount(amount)
	if err != nil {
		return SourceEntry{}, errors.Wrap(err, "select decoys")
	}
	if real.GlobalIndex >= count {
		return SourceEntry{}, errors.Wrap(
			cryptonote.ErrDecoyIndexOutOfRange,
			"select decoys",
		)
	}

	height := s.oracle.GetCurrentHeight()
	end, err := s.allowedEnd(amount, count, height)
	if err != nil {
		return SourceEntry{}, errors.Wrap(err, "select decoys")
	}

	var topIndex uint32
	if height > 0 {
		topIndex = height - 1
	}
	now := s.clock.Now()

	outputs := make([]SourceOutput, 0, mixin+1)
	for _, idx := range rand.Perm(int(end)) {
		if len(outputs) == mixin {
			break
		}
		if uint32(idx) == real.GlobalIndex {
			continue
		}
		entries, err := s.outputs.GetOutputKeys(amount, []uint32{uint32(idx)})
		if err != nil {
			return SourceEntry{}, errors.Wrap(err, "select decoys")
		}
		entry := entries[0]
		if !s.currency.IsUnlocked(entry.UnlockTime, topIndex, now) {
			continue
		}
		outputs = append(outputs, SourceOutput{
			GlobalIndex: entry.GlobalIndex,
			Key:         entry.Key,
		})
	}
	if len(outputs) < mixin {
		return SourceEntry{}, errors.Wrapf(
			cryptonote.ErrNotEnoughDecoys,
			"select decoys: %d usable outputs for ring of %d",
			len(outputs),
			mixin+1,
		)
	}

	outputs = append(outputs, real)
	slices.SortFunc(outputs, func(a, b SourceOutput) int {
		return cmp.Compare(a.GlobalIndex, b.GlobalIndex)
	})

	return SourceEntry{
		Amount:     amount,
		Outputs:    outputs,
		RealOutput: slices.Index(outputs, real),
	}, nil
}

// allowedEnd returns the number of leading outputs of the amount that are at
// least MinedMoneyUnlockWindow blocks deep. Outputs are stored in block
// order, so the deep ones form a prefix.
func (s *DecoySelector) allowedEnd(
	amount uint64,
	count uint32,
	height uint32,
) (uint32, error) {
	window := uint64(s.currency.MinedMoneyUnlockWindow())
	var searchErr error
	end := sort.Search(int(count), func(i int) bool {
		if searchErr != nil {
			return true
		}
		entries, err := s.outputs.GetOutputKeys(amount, []uint32{uint32(i)})
		if err != nil {
			searchErr = err
			return true
		}
		return uint64(entries[0].BlockIndex)+window > uint64(height)
	})
	return uint32(end), searchErr
}
