package store

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/types/consensus"
	"github.com/vigcoin/coin/types/store"
	"go.uber.org/zap"
)

var (
	_ store.BlockIndexStore            = (*PebbleBlockIndexStore)(nil)
	_ consensus.BlockchainHeightOracle = (*PebbleBlockIndexStore)(nil)
)

const blockRecordSize = crypto.HashSize + 16

type PebbleBlockIndexStore struct {
	db     store.KVDB
	logger *zap.Logger
}

func NewPebbleBlockIndexStore(
	db store.KVDB,
	logger *zap.Logger,
) *PebbleBlockIndexStore {
	return &PebbleBlockIndexStore{
		db,
		logger,
	}
}

func blockRecordKey(height uint32) []byte {
	key := []byte{BLOCK, BLOCK_RECORD}
	return binary.BigEndian.AppendUint32(key, height)
}

func blockHeightKey() []byte {
	return []byte{BLOCK, BLOCK_HEIGHT}
}

// id (32) | transaction count (8) | timestamp (8)
func encodeBlockRecord(record store.BlockRecord) []byte {
	data := make([]byte, 0, blockRecordSize)
	data = append(data, record.ID[:]...)
	data = binary.BigEndian.AppendUint64(data, record.TransactionCount)
	return binary.BigEndian.AppendUint64(data, record.Timestamp)
}

func decodeBlockRecord(data []byte) (store.BlockRecord, error) {
	if len(data) != blockRecordSize {
		return store.BlockRecord{}, errors.Errorf(
			"invalid block record length %d",
			len(data),
		)
	}

	var record store.BlockRecord
	copy(record.ID[:], data[:crypto.HashSize])
	record.TransactionCount = binary.BigEndian.Uint64(data[crypto.HashSize:])
	record.Timestamp = binary.BigEndian.Uint64(data[crypto.HashSize+8:])
	return record, nil
}

func (p *PebbleBlockIndexStore) NewTransaction(indexed bool) (
	store.Transaction,
	error,
) {
	return p.db.NewBatch(indexed), nil
}

// GetCurrentHeight returns the number of blocks on the main chain.
func (p *PebbleBlockIndexStore) GetCurrentHeight() uint32 {
	height, err := readCount(p.db, blockHeightKey())
	if err != nil {
		p.logger.Error("failed to read chain height", zap.Error(err))
		return 0
	}
	return height
}

func (p *PebbleBlockIndexStore) GetGenesisHash() crypto.Hash {
	id, err := p.GetBlockIDByHeight(0)
	if err != nil {
		return crypto.NullHash
	}
	return id
}

func (p *PebbleBlockIndexStore) GetBlockIDByHeight(
	height uint32,
) (crypto.Hash, error) {
	record, err := p.GetBlockRecord(height)
	if err != nil {
		return crypto.NullHash, err
	}
	return record.ID, nil
}

func (p *PebbleBlockIndexStore) GetBlockRecord(
	height uint32,
) (store.BlockRecord, error) {
	data, err := getCopy(p.db, blockRecordKey(height))
	if err != nil {
		return store.BlockRecord{}, errors.Wrapf(
			err,
			"get block record %d",
			height,
		)
	}

	record, err := decodeBlockRecord(data)
	return record, errors.Wrapf(err, "get block record %d", height)
}

func (p *PebbleBlockIndexStore) PushBlock(
	txn store.Transaction,
	record store.BlockRecord,
) error {
	height, err := readCount(txn, blockHeightKey())
	if err != nil {
		return errors.Wrap(err, "push block")
	}
	if err := txn.Set(
		blockRecordKey(height),
		encodeBlockRecord(record),
	); err != nil {
		return errors.Wrap(err, "push block")
	}
	return errors.Wrap(
		txn.Set(blockHeightKey(), binary.BigEndian.AppendUint32(nil, height+1)),
		"push block",
	)
}

func (p *PebbleBlockIndexStore) PopBlock(txn store.Transaction) error {
	height, err := readCount(txn, blockHeightKey())
	if err != nil {
		return errors.Wrap(err, "pop block")
	}
	if height == 0 {
		return errors.Wrap(store.ErrNotFound, "pop block")
	}
	if err := txn.Delete(blockRecordKey(height - 1)); err != nil {
		return errors.Wrap(err, "pop block")
	}
	return errors.Wrap(
		txn.Set(blockHeightKey(), binary.BigEndian.AppendUint32(nil, height-1)),
		"pop block",
	)
}
