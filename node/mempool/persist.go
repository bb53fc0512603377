package mempool

import (
	"time"

	"github.com/pkg/errors"
	"github.com/vigcoin/coin/cryptonote"
	"github.com/vigcoin/coin/types/store"
	"go.uber.org/zap"
)

// Init loads the pool saved by Deinit and drops what expired meanwhile.
func (p *Pool) Init() error {
	records, deleted, err := p.store.LoadEntries()
	if err != nil {
		return errors.Wrap(err, "init")
	}

	p.mu.Lock()
	for _, record := range records {
		tx := &cryptonote.Transaction{}
		if err := tx.FromCanonicalBytes(record.Blob); err != nil {
			p.logger.Warn(
				"dropping undecodable pool transaction",
				zap.String("tx_hash", record.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if _, ok := p.entries[record.ID]; ok {
			continue
		}

		blobSize := uint64(len(record.Blob))
		p.insert(&Entry{
			ID:          record.ID,
			Transaction: tx,
			BlobSize:    blobSize,
			Fee:         record.Fee,
			ReceiveTime: time.Unix(0, record.ReceiveTimeNano),
			KeptByBlock: record.KeptByBlock,
			Fusion: record.Fee == 0 &&
				p.currency.IsFusionTransaction(tx, blobSize),
			MaxUsedBlock:    record.MaxUsedBlock,
			LastFailedBlock: record.LastFailedBlock,
		})
	}
	for _, record := range deleted {
		p.recentlyDeleted[record.ID] = time.Unix(record.DeletedAt, 0)
	}
	count := len(p.entries)
	p.mu.Unlock()

	removed := p.RemoveExpiredTransactions()
	p.logger.Info(
		"mempool loaded",
		zap.Int("transactions", count-removed),
		zap.Int("expired", removed),
	)
	return nil
}

// Deinit saves the pool for the next Init.
func (p *Pool) Deinit() error {
	p.mu.RLock()
	records := make([]*store.PoolRecord, 0, len(p.entries))
	for _, entry := range p.entries {
		blob, err := entry.Transaction.ToCanonicalBytes()
		if err != nil {
			p.mu.RUnlock()
			return errors.Wrap(err, "deinit")
		}
		records = append(records, &store.PoolRecord{
			ID:              entry.ID,
			Blob:            blob,
			Fee:             entry.Fee,
			ReceiveTimeNano: entry.ReceiveTime.UnixNano(),
			KeptByBlock:     entry.KeptByBlock,
			MaxUsedBlock:    entry.MaxUsedBlock,
			LastFailedBlock: entry.LastFailedBlock,
		})
	}
	deleted := make([]store.DeletedRecord, 0, len(p.recentlyDeleted))
	for id, deletedAt := range p.recentlyDeleted {
		deleted = append(deleted, store.DeletedRecord{
			ID:        id,
			DeletedAt: deletedAt.Unix(),
		})
	}
	p.mu.RUnlock()

	if err := p.store.SaveEntries(records, deleted); err != nil {
		p.logger.Error("failed to save mempool", zap.Error(err))
		return errors.Wrap(err, "deinit")
	}
	p.logger.Info("mempool saved", zap.Int("transactions", len(records)))
	return nil
}
