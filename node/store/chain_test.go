package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/cryptonote"
	tstore "github.com/vigcoin/coin/types/store"
	"go.uber.org/zap"
)

func TestKeyImageStore(t *testing.T) {
	s := NewPebbleKeyImageStore(setupTestDB(t), zap.NewNop())
	image := crypto.KeyImage{1, 2, 3}

	found, err := s.Contains(image)
	require.NoError(t, err)
	assert.False(t, found)

	txn, err := s.NewTransaction(false)
	require.NoError(t, err)
	require.NoError(t, s.Insert(txn, image, 42))
	require.NoError(t, txn.Commit())

	found, err = s.Contains(image)
	require.NoError(t, err)
	assert.True(t, found)

	height, err := s.BlockIndexOf(image)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), height)

	txn, err = s.NewTransaction(false)
	require.NoError(t, err)
	require.NoError(t, s.Remove(txn, image))
	require.NoError(t, txn.Commit())

	found, err = s.Contains(image)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = s.BlockIndexOf(image)
	assert.ErrorIs(t, err, tstore.ErrNotFound)
}

func TestOutputStoreKeyOutputs(t *testing.T) {
	s := NewPebbleOutputStore(setupTestDB(t), zap.NewNop())
	const amount = 1000

	count, err := s.GetOutputCount(amount)
	require.NoError(t, err)
	assert.Zero(t, count)

	txn, err := s.NewTransaction(true)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		idx, err := s.AddKeyOutput(txn, amount, tstore.OutputEntry{
			Key:        crypto.PublicKey{byte(i + 1)},
			BlockIndex: uint32(10 + i),
			UnlockTime: uint64(i),
		})
		require.NoError(t, err)
		assert.Equal(t, uint32(i), idx)
	}
	// Another amount has its own index space.
	idx, err := s.AddKeyOutput(txn, amount+1, tstore.OutputEntry{})
	require.NoError(t, err)
	assert.Zero(t, idx)
	require.NoError(t, txn.Commit())

	count, err = s.GetOutputCount(amount)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), count)

	entries, err := s.GetOutputKeys(amount, []uint32{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []tstore.OutputEntry{
		{GlobalIndex: 2, Key: crypto.PublicKey{3}, BlockIndex: 12, UnlockTime: 2},
		{GlobalIndex: 0, Key: crypto.PublicKey{1}, BlockIndex: 10, UnlockTime: 0},
	}, entries)

	_, err = s.GetOutputKeys(amount, []uint32{0, 3})
	assert.ErrorIs(t, err, tstore.ErrNotFound)
}

func TestOutputStoreMultisignatureOutputs(t *testing.T) {
	s := NewPebbleOutputStore(setupTestDB(t), zap.NewNop())
	const amount = 5000

	output := cryptonote.MultisignatureOutput{
		Keys:                   []crypto.PublicKey{{1}, {2}, {3}},
		RequiredSignatureCount: 2,
	}

	txn, err := s.NewTransaction(true)
	require.NoError(t, err)
	idx, err := s.AddMultisignatureOutput(
		txn,
		amount,
		tstore.MultisignatureOutputEntry{
			Output:     output,
			BlockIndex: 7,
			UnlockTime: 100,
		},
	)
	require.NoError(t, err)
	assert.Zero(t, idx)
	require.NoError(t, txn.Commit())

	entry, err := s.GetMultisignatureOutput(amount, 0)
	require.NoError(t, err)
	assert.Equal(t, output, entry.Output)
	assert.Equal(t, uint32(7), entry.BlockIndex)
	assert.Equal(t, uint64(100), entry.UnlockTime)
	assert.False(t, entry.Spent)

	txn, err = s.NewTransaction(true)
	require.NoError(t, err)
	require.NoError(t, s.SetMultisignatureOutputSpent(txn, amount, 0, true))
	require.NoError(t, txn.Commit())

	entry, err = s.GetMultisignatureOutput(amount, 0)
	require.NoError(t, err)
	assert.True(t, entry.Spent)

	_, err = s.GetMultisignatureOutput(amount, 1)
	assert.ErrorIs(t, err, tstore.ErrNotFound)

	// Key output counts are unaffected.
	count, err := s.GetOutputCount(amount)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOutputStoreRemoveLast(t *testing.T) {
	s := NewPebbleOutputStore(setupTestDB(t), zap.NewNop())
	const amount = 700

	txn, err := s.NewTransaction(true)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := s.AddKeyOutput(txn, amount, tstore.OutputEntry{
			Key: crypto.PublicKey{byte(i + 1)},
		})
		require.NoError(t, err)
	}
	_, err = s.AddMultisignatureOutput(
		txn,
		amount,
		tstore.MultisignatureOutputEntry{},
	)
	require.NoError(t, err)
	require.NoError(t, txn.Commit())

	txn, err = s.NewTransaction(true)
	require.NoError(t, err)
	require.NoError(t, s.RemoveLastKeyOutput(txn, amount))
	require.NoError(t, s.RemoveLastMultisignatureOutput(txn, amount))
	assert.ErrorIs(
		t,
		s.RemoveLastMultisignatureOutput(txn, amount),
		tstore.ErrNotFound,
	)
	require.NoError(t, txn.Commit())

	count, err := s.GetOutputCount(amount)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), count)
	_, err = s.GetOutputKeys(amount, []uint32{1})
	assert.ErrorIs(t, err, tstore.ErrNotFound)
	_, err = s.GetMultisignatureOutput(amount, 0)
	assert.ErrorIs(t, err, tstore.ErrNotFound)

	// The freed index is handed out again.
	txn, err = s.NewTransaction(true)
	require.NoError(t, err)
	idx, err := s.AddKeyOutput(txn, amount, tstore.OutputEntry{})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), idx)
	require.NoError(t, txn.Abort())
}

func TestBlockIndexStore(t *testing.T) {
	s := NewPebbleBlockIndexStore(setupTestDB(t), zap.NewNop())

	assert.Zero(t, s.GetCurrentHeight())
	assert.Equal(t, crypto.NullHash, s.GetGenesisHash())
	_, err := s.GetBlockIDByHeight(0)
	assert.ErrorIs(t, err, tstore.ErrNotFound)

	genesis := tstore.BlockRecord{
		ID:               crypto.Hash{1},
		TransactionCount: 1,
		Timestamp:        1000,
	}
	next := tstore.BlockRecord{
		ID:               crypto.Hash{2},
		TransactionCount: 4,
		Timestamp:        1120,
	}
	txn, err := s.NewTransaction(true)
	require.NoError(t, err)
	require.NoError(t, s.PushBlock(txn, genesis))
	require.NoError(t, s.PushBlock(txn, next))
	require.NoError(t, txn.Commit())

	assert.Equal(t, uint32(2), s.GetCurrentHeight())
	assert.Equal(t, crypto.Hash{1}, s.GetGenesisHash())
	id, err := s.GetBlockIDByHeight(1)
	require.NoError(t, err)
	assert.Equal(t, crypto.Hash{2}, id)
	record, err := s.GetBlockRecord(1)
	require.NoError(t, err)
	assert.Equal(t, next, record)

	txn, err = s.NewTransaction(true)
	require.NoError(t, err)
	require.NoError(t, s.PopBlock(txn))
	require.NoError(t, s.PopBlock(txn))
	assert.ErrorIs(t, s.PopBlock(txn), tstore.ErrNotFound)
	require.NoError(t, txn.Commit())

	assert.Zero(t, s.GetCurrentHeight())
	_, err = s.GetBlockIDByHeight(1)
	assert.ErrorIs(t, err, tstore.ErrNotFound)
}
