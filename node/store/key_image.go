package store

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/types/store"
	"go.uber.org/zap"
)

var _ store.KeyImageStore = (*PebbleKeyImageStore)(nil)

type PebbleKeyImageStore struct {
	db     store.KVDB
	logger *zap.Logger
}

func NewPebbleKeyImageStore(
	db store.KVDB,
	logger *zap.Logger,
) *PebbleKeyImageStore {
	return &PebbleKeyImageStore{
		db,
		logger,
	}
}

func keyImageKey(image crypto.KeyImage) []byte {
	key := []byte{KEY_IMAGE, KEY_IMAGE_SPENT}
	key = append(key, image[:]...)
	return key
}

func (p *PebbleKeyImageStore) NewTransaction(indexed bool) (
	store.Transaction,
	error,
) {
	return p.db.NewBatch(indexed), nil
}

func (p *PebbleKeyImageStore) Contains(image crypto.KeyImage) (bool, error) {
	_, err := getCopy(p.db, keyImageKey(image))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, errors.Wrap(err, "contains")
	}
	return true, nil
}

// BlockIndexOf returns the block that spent image.
func (p *PebbleKeyImageStore) BlockIndexOf(
	image crypto.KeyImage,
) (uint32, error) {
	data, err := getCopy(p.db, keyImageKey(image))
	if err != nil {
		return 0, errors.Wrap(err, "block index of")
	}
	if len(data) != 4 {
		return 0, errors.Wrap(
			errors.Errorf("invalid record length %d", len(data)),
			"block index of",
		)
	}
	return binary.BigEndian.Uint32(data), nil
}

func (p *PebbleKeyImageStore) Insert(
	txn store.Transaction,
	image crypto.KeyImage,
	blockIndex uint32,
) error {
	value := binary.BigEndian.AppendUint32(nil, blockIndex)
	if err := txn.Set(keyImageKey(image), value); err != nil {
		return errors.Wrap(err, "insert")
	}
	return nil
}

func (p *PebbleKeyImageStore) Remove(
	txn store.Transaction,
	image crypto.KeyImage,
) error {
	if err := txn.Delete(keyImageKey(image)); err != nil {
		return errors.Wrap(err, "remove")
	}
	return nil
}
