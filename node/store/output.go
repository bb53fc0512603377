package store

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/types/store"
	"go.uber.org/zap"
)

var _ store.OutputStore = (*PebbleOutputStore)(nil)

// PebbleOutputStore keeps key and multisignature outputs per amount. Writes
// need an indexed transaction, as appending reads the running count back.
type PebbleOutputStore struct {
	db     store.KVDB
	logger *zap.Logger
}

func NewPebbleOutputStore(
	db store.KVDB,
	logger *zap.Logger,
) *PebbleOutputStore {
	return &PebbleOutputStore{
		db,
		logger,
	}
}

func outputCountKey(kind byte, amount uint64) []byte {
	key := []byte{OUTPUT, kind}
	key = binary.BigEndian.AppendUint64(key, amount)
	return key
}

func outputKey(kind byte, amount uint64, globalIndex uint32) []byte {
	key := []byte{OUTPUT, kind}
	key = binary.BigEndian.AppendUint64(key, amount)
	key = binary.BigEndian.AppendUint32(key, globalIndex)
	return key
}

func (p *PebbleOutputStore) NewTransaction(indexed bool) (
	store.Transaction,
	error,
) {
	return p.db.NewBatch(indexed), nil
}

func readCount(reader getter, key []byte) (uint32, error) {
	data, err := getCopy(reader, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(data) != 4 {
		return 0, errors.Errorf("invalid count length %d", len(data))
	}
	return binary.BigEndian.Uint32(data), nil
}

func (p *PebbleOutputStore) GetOutputCount(amount uint64) (uint32, error) {
	count, err := readCount(p.db, outputCountKey(OUTPUT_KEY_COUNT, amount))
	return count, errors.Wrap(err, "get output count")
}

func encodeOutputEntry(entry store.OutputEntry) []byte {
	data := make([]byte, 0, crypto.KeySize+12)
	data = append(data, entry.Key[:]...)
	data = binary.BigEndian.AppendUint32(data, entry.BlockIndex)
	data = binary.BigEndian.AppendUint64(data, entry.UnlockTime)
	return data
}

func decodeOutputEntry(
	globalIndex uint32,
	data []byte,
) (store.OutputEntry, error) {
	if len(data) != crypto.KeySize+12 {
		return store.OutputEntry{}, errors.Errorf(
			"invalid output length %d",
			len(data),
		)
	}

	entry := store.OutputEntry{GlobalIndex: globalIndex}
	copy(entry.Key[:], data[:crypto.KeySize])
	entry.BlockIndex = binary.BigEndian.Uint32(data[crypto.KeySize:])
	entry.UnlockTime = binary.BigEndian.Uint64(data[crypto.KeySize+4:])
	return entry, nil
}

func (p *PebbleOutputStore) GetOutputKeys(
	amount uint64,
	globalIndexes []uint32,
) ([]store.OutputEntry, error) {
	entries := make([]store.OutputEntry, 0, len(globalIndexes))
	for _, idx := range globalIndexes {
		data, err := getCopy(p.db, outputKey(OUTPUT_KEY, amount, idx))
		if err != nil {
			return nil, errors.Wrapf(err, "get output keys: index %d", idx)
		}

		entry, err := decodeOutputEntry(idx, data)
		if err != nil {
			return nil, errors.Wrap(err, "get output keys")
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (p *PebbleOutputStore) AddKeyOutput(
	txn store.Transaction,
	amount uint64,
	entry store.OutputEntry,
) (uint32, error) {
	countKey := outputCountKey(OUTPUT_KEY_COUNT, amount)
	idx, err := readCount(txn, countKey)
	if err != nil {
		return 0, errors.Wrap(err, "add key output")
	}

	entry.GlobalIndex = idx
	if err := txn.Set(
		outputKey(OUTPUT_KEY, amount, idx),
		encodeOutputEntry(entry),
	); err != nil {
		return 0, errors.Wrap(err, "add key output")
	}
	if err := txn.Set(
		countKey,
		binary.BigEndian.AppendUint32(nil, idx+1),
	); err != nil {
		return 0, errors.Wrap(err, "add key output")
	}

	return idx, nil
}

func encodeMultisignatureEntry(entry store.MultisignatureOutputEntry) []byte {
	data := make([]byte, 0, 14+len(entry.Output.Keys)*crypto.KeySize)
	data = binary.BigEndian.AppendUint32(data, entry.BlockIndex)
	data = binary.BigEndian.AppendUint64(data, entry.UnlockTime)
	if entry.Spent {
		data = append(data, 1)
	} else {
		data = append(data, 0)
	}
	data = append(data, entry.Output.RequiredSignatureCount)
	for _, k := range entry.Output.Keys {
		data = append(data, k[:]...)
	}
	return data
}

func decodeMultisignatureEntry(
	globalIndex uint32,
	data []byte,
) (*store.MultisignatureOutputEntry, error) {
	if len(data) < 14 || (len(data)-14)%crypto.KeySize != 0 {
		return nil, errors.Errorf("invalid multisignature length %d", len(data))
	}

	entry := &store.MultisignatureOutputEntry{
		GlobalIndex: globalIndex,
		BlockIndex:  binary.BigEndian.Uint32(data[0:4]),
		UnlockTime:  binary.BigEndian.Uint64(data[4:12]),
		Spent:       data[12] == 1,
	}
	entry.Output.RequiredSignatureCount = data[13]

	keys := data[14:]
	for len(keys) > 0 {
		var k crypto.PublicKey
		copy(k[:], keys[:crypto.KeySize])
		entry.Output.Keys = append(entry.Output.Keys, k)
		keys = keys[crypto.KeySize:]
	}
	return entry, nil
}

func (p *PebbleOutputStore) GetMultisignatureOutput(
	amount uint64,
	globalIndex uint32,
) (*store.MultisignatureOutputEntry, error) {
	data, err := getCopy(p.db, outputKey(OUTPUT_MULTISIG, amount, globalIndex))
	if err != nil {
		return nil, errors.Wrap(err, "get multisignature output")
	}

	entry, err := decodeMultisignatureEntry(globalIndex, data)
	return entry, errors.Wrap(err, "get multisignature output")
}

func (p *PebbleOutputStore) AddMultisignatureOutput(
	txn store.Transaction,
	amount uint64,
	entry store.MultisignatureOutputEntry,
) (uint32, error) {
	countKey := outputCountKey(OUTPUT_MULTISIG_COUNT, amount)
	idx, err := readCount(txn, countKey)
	if err != nil {
		return 0, errors.Wrap(err, "add multisignature output")
	}

	entry.GlobalIndex = idx
	if err := txn.Set(
		outputKey(OUTPUT_MULTISIG, amount, idx),
		encodeMultisignatureEntry(entry),
	); err != nil {
		return 0, errors.Wrap(err, "add multisignature output")
	}
	if err := txn.Set(
		countKey,
		binary.BigEndian.AppendUint32(nil, idx+1),
	); err != nil {
		return 0, errors.Wrap(err, "add multisignature output")
	}

	return idx, nil
}

func (p *PebbleOutputStore) SetMultisignatureOutputSpent(
	txn store.Transaction,
	amount uint64,
	globalIndex uint32,
	spent bool,
) error {
	key := outputKey(OUTPUT_MULTISIG, amount, globalIndex)
	data, err := getCopy(txn, key)
	if err != nil {
		return errors.Wrap(err, "set multisignature output spent")
	}

	entry, err := decodeMultisignatureEntry(globalIndex, data)
	if err != nil {
		return errors.Wrap(err, "set multisignature output spent")
	}
	entry.Spent = spent

	return errors.Wrap(
		txn.Set(key, encodeMultisignatureEntry(*entry)),
		"set multisignature output spent",
	)
}

func (p *PebbleOutputStore) removeLast(
	txn store.Transaction,
	countKind byte,
	kind byte,
	amount uint64,
) error {
	countKey := outputCountKey(countKind, amount)
	count, err := readCount(txn, countKey)
	if err != nil {
		return err
	}
	if count == 0 {
		return store.ErrNotFound
	}

	if err := txn.Delete(outputKey(kind, amount, count-1)); err != nil {
		return err
	}
	if count == 1 {
		return txn.Delete(countKey)
	}
	return txn.Set(countKey, binary.BigEndian.AppendUint32(nil, count-1))
}

func (p *PebbleOutputStore) RemoveLastKeyOutput(
	txn store.Transaction,
	amount uint64,
) error {
	return errors.Wrap(
		p.removeLast(txn, OUTPUT_KEY_COUNT, OUTPUT_KEY, amount),
		"remove last key output",
	)
}

func (p *PebbleOutputStore) RemoveLastMultisignatureOutput(
	txn store.Transaction,
	amount uint64,
) error {
	return errors.Wrap(
		p.removeLast(txn, OUTPUT_MULTISIG_COUNT, OUTPUT_MULTISIG, amount),
		"remove last multisignature output",
	)
}
