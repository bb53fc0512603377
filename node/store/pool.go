package store

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/types/consensus"
	"github.com/vigcoin/coin/types/store"
	"go.uber.org/zap"
)

// poolStateVersion guards the snapshot layout. A snapshot written with a
// different version is discarded on load.
const poolStateVersion = 1

var _ store.PoolStore = (*PebblePoolStore)(nil)

type PebblePoolStore struct {
	db     store.KVDB
	logger *zap.Logger
}

func NewPebblePoolStore(db store.KVDB, logger *zap.Logger) *PebblePoolStore {
	return &PebblePoolStore{
		db,
		logger,
	}
}

func poolEntryKey(id crypto.Hash) []byte {
	key := []byte{POOL, POOL_ENTRY}
	key = append(key, id[:]...)
	return key
}

func poolDeletedKey(id crypto.Hash) []byte {
	key := []byte{POOL, POOL_DELETED}
	key = append(key, id[:]...)
	return key
}

func poolVersionKey() []byte {
	return []byte{POOL, POOL_VERSION}
}

const blockInfoSize = 4 + crypto.HashSize

func appendBlockInfo(data []byte, info consensus.BlockInfo) []byte {
	data = binary.BigEndian.AppendUint32(data, info.Height)
	return append(data, info.ID[:]...)
}

func readBlockInfo(data []byte) consensus.BlockInfo {
	info := consensus.BlockInfo{Height: binary.BigEndian.Uint32(data)}
	copy(info.ID[:], data[4:blockInfoSize])
	return info
}

// Entry layout: fee(8) | receive time in ns(8) | kept(1) | max used block |
// last failed block | transaction blob.
const poolRecordHeaderSize = 17 + 2*blockInfoSize

func encodePoolRecord(record *store.PoolRecord) []byte {
	data := make([]byte, 0, poolRecordHeaderSize+len(record.Blob))
	data = binary.BigEndian.AppendUint64(data, record.Fee)
	data = binary.BigEndian.AppendUint64(data, uint64(record.ReceiveTimeNano))
	if record.KeptByBlock {
		data = append(data, 1)
	} else {
		data = append(data, 0)
	}
	data = appendBlockInfo(data, record.MaxUsedBlock)
	data = appendBlockInfo(data, record.LastFailedBlock)
	return append(data, record.Blob...)
}

func decodePoolRecord(id crypto.Hash, data []byte) (*store.PoolRecord, error) {
	if len(data) < poolRecordHeaderSize {
		return nil, errors.Errorf("invalid pool record length %d", len(data))
	}

	record := &store.PoolRecord{
		ID:              id,
		Fee:             binary.BigEndian.Uint64(data[0:8]),
		ReceiveTimeNano: int64(binary.BigEndian.Uint64(data[8:16])),
		KeptByBlock:     data[16] == 1,
	}
	record.MaxUsedBlock = readBlockInfo(data[17:])
	record.LastFailedBlock = readBlockInfo(data[17+blockInfoSize:])
	record.Blob = append([]byte{}, data[poolRecordHeaderSize:]...)
	return record, nil
}

func (p *PebblePoolStore) SaveEntries(
	entries []*store.PoolRecord,
	deleted []store.DeletedRecord,
) error {
	txn := p.db.NewBatch(false)
	if err := txn.DeleteRange([]byte{POOL}, []byte{POOL + 1}); err != nil {
		_ = txn.Abort()
		return errors.Wrap(err, "save entries")
	}

	for _, record := range entries {
		if err := txn.Set(
			poolEntryKey(record.ID),
			encodePoolRecord(record),
		); err != nil {
			_ = txn.Abort()
			return errors.Wrap(err, "save entries")
		}
	}

	for _, record := range deleted {
		if err := txn.Set(
			poolDeletedKey(record.ID),
			binary.BigEndian.AppendUint64(nil, uint64(record.DeletedAt)),
		); err != nil {
			_ = txn.Abort()
			return errors.Wrap(err, "save entries")
		}
	}

	if err := txn.Set(
		poolVersionKey(),
		binary.BigEndian.AppendUint32(nil, poolStateVersion),
	); err != nil {
		_ = txn.Abort()
		return errors.Wrap(err, "save entries")
	}

	if err := txn.Commit(); err != nil {
		return errors.Wrap(err, "save entries")
	}

	p.logger.Debug(
		"saved pool state",
		zap.Int("transactions", len(entries)),
		zap.Int("deleted", len(deleted)),
	)
	return nil
}

func (p *PebblePoolStore) LoadEntries() (
	[]*store.PoolRecord,
	[]store.DeletedRecord,
	error,
) {
	version, err := getCopy(p.db, poolVersionKey())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, errors.Wrap(err, "load entries")
	}
	if len(version) != 4 ||
		binary.BigEndian.Uint32(version) != poolStateVersion {
		p.logger.Warn("discarding pool state with unknown version")
		return nil, nil, nil
	}

	entries := []*store.PoolRecord{}
	iter, err := p.db.NewIter(
		[]byte{POOL, POOL_ENTRY},
		[]byte{POOL, POOL_ENTRY + 1},
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load entries")
	}
	for iter.First(); iter.Valid(); iter.Next() {
		var id crypto.Hash
		copy(id[:], iter.Key()[2:])
		record, err := decodePoolRecord(id, iter.Value())
		if err != nil {
			iter.Close()
			return nil, nil, errors.Wrap(err, "load entries")
		}
		entries = append(entries, record)
	}
	if err := iter.Close(); err != nil {
		return nil, nil, errors.Wrap(err, "load entries")
	}

	deleted := []store.DeletedRecord{}
	iter, err = p.db.NewIter(
		[]byte{POOL, POOL_DELETED},
		[]byte{POOL, POOL_DELETED + 1},
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load entries")
	}
	for iter.First(); iter.Valid(); iter.Next() {
		value := iter.Value()
		if len(value) != 8 {
			iter.Close()
			return nil, nil, errors.Wrap(
				errors.Errorf("invalid deleted record length %d", len(value)),
				"load entries",
			)
		}
		var id crypto.Hash
		copy(id[:], iter.Key()[2:])
		deleted = append(deleted, store.DeletedRecord{
			ID:        id,
			DeletedAt: int64(binary.BigEndian.Uint64(value)),
		})
	}
	if err := iter.Close(); err != nil {
		return nil, nil, errors.Wrap(err, "load entries")
	}

	return entries, deleted, nil
}
