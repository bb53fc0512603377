package mempool

import (
	"time"

	"github.com/vigcoin/coin/crypto"
	"go.uber.org/zap"
)

// FillBlockTemplate picks the transactions for a new block. Ordinary
// transactions fill the block in priority order up to the median size. Up to
// FusionTxLimit fusion transactions then take whatever room is left
// below the median. Ordinary transactions continue past the median up to
// twice the median less the miner transaction reserve, or maxCumulativeSize
// if smaller; zero fee ones never go past the median. Transactions whose
// inputs no longer check out, or that conflict with one already picked, are
// skipped.
func (p *Pool) FillBlockTemplate(
	median uint64,
	maxCumulativeSize uint64,
) ([]*Entry, uint64, uint64) {
	start := time.Now()
	defer func() {
		fillDuration.Observe(time.Since(start).Seconds())
	}()

	p.mu.Lock()
	defer p.mu.Unlock()

	var maxTotalSize uint64
	if reserved := p.currency.MinerTxBlobReservedSize(); 2*median > reserved {
		maxTotalSize = 2*median - reserved
	}
	maxTotalSize = min(maxTotalSize, maxCumulativeSize)
	medianLimit := min(median, maxTotalSize)

	template := newBlockTemplate()
	visited := make(map[crypto.Hash]struct{}, len(p.entries))
	var totalSize, totalFee uint64
	fusionCount := 0

	try := func(entry *Entry, limit uint64) bool {
		if _, ok := visited[entry.ID]; ok {
			return false
		}
		if entry.Fee == 0 {
			limit = min(limit, medianLimit)
		}
		if totalSize+entry.BlobSize > limit {
			return false
		}
		// A failed readiness or conflict check does not change within one
		// fill, so the entry is not looked at again.
		visited[entry.ID] = struct{}{}
		if !p.isReadyToGo(
			entry.Transaction,
			&entry.MaxUsedBlock,
			&entry.LastFailedBlock,
		) || !template.add(entry) {
			return false
		}
		totalSize += entry.BlobSize
		totalFee += entry.Fee
		return true
	}

	p.byPriority.Ascend(func(entry *Entry) bool {
		if !entry.Fusion {
			try(entry, medianLimit)
		}
		return totalSize < medianLimit
	})

	p.byPriority.Ascend(func(entry *Entry) bool {
		if fusionCount >= p.config.FusionTxLimit() ||
			totalSize >= medianLimit {
			return false
		}
		if entry.Fusion && try(entry, medianLimit) {
			fusionCount++
		}
		return true
	})

	p.byPriority.Ascend(func(entry *Entry) bool {
		if !entry.Fusion {
			try(entry, maxTotalSize)
		}
		return totalSize < maxTotalSize
	})

	ordinaryCount := len(template.entries) - fusionCount
	fillTransactions.WithLabelValues("fusion").Observe(float64(fusionCount))
	fillTransactions.WithLabelValues("ordinary").Observe(float64(ordinaryCount))
	p.logger.Debug(
		"block template filled",
		zap.Uint64("median", median),
		zap.Int("fusion", fusionCount),
		zap.Int("ordinary", ordinaryCount),
		zap.Uint64("total_size", totalSize),
		zap.Uint64("total_fee", totalFee),
	)
	return template.entries, totalSize, totalFee
}
