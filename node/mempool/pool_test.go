package mempool

import (
	"context"
	"encoding/binary"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/ticker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vigcoin/coin/config"
	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/cryptonote"
	"github.com/vigcoin/coin/currency"
	"github.com/vigcoin/coin/node/indexing"
	nodestore "github.com/vigcoin/coin/node/store"
	"github.com/vigcoin/coin/types/consensus"
	"github.com/vigcoin/coin/types/mocks"
	"github.com/vigcoin/coin/types/store"
	"go.uber.org/zap"
)

const (
	coin    = uint64(1000000)
	txSize  = 2000
	startTS = int64(1700000000)

	startNano = startTS * int64(time.Second)
)

var keyImageCounter atomic.Uint32

func nextKeyImage() crypto.KeyImage {
	var image crypto.KeyImage
	binary.LittleEndian.PutUint32(image[:], keyImageCounter.Add(1))
	return image
}

func outputKey(t *testing.T) crypto.PublicKey {
	kp, err := crypto.GenerateKeys()
	require.NoError(t, err)
	return kp.Public
}

// padTo grows extra until the transaction encodes to size bytes. Zero
// leaves the transaction as is.
func padTo(t *testing.T, tx *cryptonote.Transaction, size int) {
	if size == 0 {
		return
	}
	for i := 0; i < 4; i++ {
		n, err := tx.BlobSize()
		require.NoError(t, err)
		if n == size {
			return
		}
		tx.Extra = make([]byte, len(tx.Extra)+size-n)
	}
	n, err := tx.BlobSize()
	require.NoError(t, err)
	require.Equal(t, size, n)
}

func ordinaryTx(t *testing.T, fee uint64, size int) *cryptonote.Transaction {
	tx := &cryptonote.Transaction{
		TransactionPrefix: cryptonote.TransactionPrefix{
			Version: cryptonote.CurrentTransactionVersion,
			Inputs: []cryptonote.TransactionInput{
				cryptonote.KeyInput{
					Amount:        coin + fee,
					OutputIndexes: []uint32{0},
					KeyImage:      nextKeyImage(),
				},
			},
			Outputs: []cryptonote.TransactionOutput{
				{Amount: coin, Target: cryptonote.KeyOutput{Key: outputKey(t)}},
			},
		},
		Signatures: [][]crypto.Signature{make([]crypto.Signature, 1)},
	}
	padTo(t, tx, size)
	return tx
}

// fusionTx consolidates twelve one coin inputs into 2 and 10 coins.
func fusionTx(t *testing.T, size int) *cryptonote.Transaction {
	tx := &cryptonote.Transaction{
		TransactionPrefix: cryptonote.TransactionPrefix{
			Version: cryptonote.CurrentTransactionVersion,
		},
	}
	for i := 0; i < 12; i++ {
		tx.Inputs = append(tx.Inputs, cryptonote.KeyInput{
			Amount:        coin,
			OutputIndexes: []uint32{uint32(i)},
			KeyImage:      nextKeyImage(),
		})
		tx.Signatures = append(tx.Signatures, make([]crypto.Signature, 1))
	}
	tx.Outputs = []cryptonote.TransactionOutput{
		{Amount: 2 * coin, Target: cryptonote.KeyOutput{Key: outputKey(t)}},
		{Amount: 10 * coin, Target: cryptonote.KeyOutput{Key: outputKey(t)}},
	}
	padTo(t, tx, size)
	return tx
}

func txID(t *testing.T, tx *cryptonote.Transaction) crypto.Hash {
	id, err := cryptonote.GetTransactionHash(tx)
	require.NoError(t, err)
	return id
}

type fixture struct {
	pool    *Pool
	checker *mocks.MockTransactionInputsChecker
	clock   *clock.TestClock
	store   *mocks.MockPoolStore
}

func newFixture(t *testing.T, cfg config.PoolConfig) *fixture {
	cur, err := currency.NewCurrency(&config.CurrencyConfig{}, zap.NewNop())
	require.NoError(t, err)

	f := &fixture{
		checker: &mocks.MockTransactionInputsChecker{},
		clock:   clock.NewTestClock(time.Unix(startTS, 0)),
		store:   &mocks.MockPoolStore{},
	}
	f.pool = NewPool(
		f.checker,
		cur,
		f.store,
		indexing.NewPaymentIDIndex(),
		indexing.NewTimestampIndex(),
		f.clock,
		&cfg,
		zap.NewNop(),
	)
	return f
}

// acceptAll makes every chain dependent check pass. Expectations registered
// before it take precedence.
func (f *fixture) acceptAll() {
	f.checker.On("CheckTransactionInputs", mock.Anything).
		Return(consensus.BlockInfo{}, nil)
	f.checker.On("CheckTransactionSize", mock.Anything).Return(nil)
	f.checker.On(
		"RecheckTransactionInputs",
		mock.Anything,
		mock.Anything,
		mock.Anything,
	).Return(true)
	f.checker.On("HaveSpentKeyImages", mock.Anything).Return(false, nil)
}

func (f *fixture) add(
	t *testing.T,
	tx *cryptonote.Transaction,
	keptByBlock bool,
) AddResult {
	result, err := f.pool.AddTransaction(tx, keptByBlock)
	require.NoError(t, err)
	require.True(t, result.Added)
	return result
}

func TestAddTransaction(t *testing.T) {
	f := newFixture(t, config.PoolConfig{})
	f.acceptAll()

	tx := ordinaryTx(t, coin, 0)
	result := f.add(t, tx, false)
	assert.Equal(t, txID(t, tx), result.ID)
	assert.True(t, result.Relay)
	assert.True(t, f.pool.HaveTransaction(result.ID))
	assert.Equal(t, 1, f.pool.GetTransactionCount())

	got, ok := f.pool.GetTransaction(result.ID)
	require.True(t, ok)
	assert.Same(t, tx, got)

	_, err := f.pool.AddTransaction(tx, false)
	assert.ErrorIs(t, err, cryptonote.ErrTransactionExists)

	entry, ok := f.pool.TakeTransaction(result.ID)
	require.True(t, ok)
	assert.Equal(t, coin, entry.Fee)
	assert.False(t, f.pool.HaveTransaction(result.ID))
	_, ok = f.pool.TakeTransaction(result.ID)
	assert.False(t, ok)

	// Taken transactions are not remembered as deleted.
	f.add(t, tx, false)
}

func TestAddTransactionRejects(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, f *fixture) *cryptonote.Transaction
		err   error
	}{
		{
			name: "structure",
			setup: func(t *testing.T, f *fixture) *cryptonote.Transaction {
				tx := ordinaryTx(t, coin, 0)
				tx.Signatures = nil
				return tx
			},
			err: cryptonote.ErrSignatureCount,
		},
		{
			name: "outputs exceed inputs",
			setup: func(t *testing.T, f *fixture) *cryptonote.Transaction {
				tx := ordinaryTx(t, coin, 0)
				tx.Outputs[0].Amount = 10 * coin
				return tx
			},
			err: cryptonote.ErrOutputsExceedInputs,
		},
		{
			name: "fee too small",
			setup: func(t *testing.T, f *fixture) *cryptonote.Transaction {
				return ordinaryTx(t, coin-1, 0)
			},
			err: cryptonote.ErrFeeTooSmall,
		},
		{
			name: "spent in pool",
			setup: func(t *testing.T, f *fixture) *cryptonote.Transaction {
				f.acceptAll()
				first := ordinaryTx(t, coin, 0)
				f.add(t, first, false)
				second := ordinaryTx(t, 2*coin, 0)
				second.Inputs[0] = cryptonote.KeyInput{
					Amount:        3 * coin,
					OutputIndexes: []uint32{7},
					KeyImage:      first.Inputs[0].(cryptonote.KeyInput).KeyImage,
				}
				return second
			},
			err: cryptonote.ErrDoubleSpend,
		},
		{
			name: "inputs rejected",
			setup: func(t *testing.T, f *fixture) *cryptonote.Transaction {
				tx := ordinaryTx(t, coin, 0)
				f.checker.On("CheckTransactionInputs", tx).
					Return(consensus.BlockInfo{}, cryptonote.ErrUnknownOutput)
				return tx
			},
			err: cryptonote.ErrUnknownOutput,
		},
		{
			name: "too big",
			setup: func(t *testing.T, f *fixture) *cryptonote.Transaction {
				tx := ordinaryTx(t, coin, 1500)
				f.checker.On("CheckTransactionSize", uint64(1500)).
					Return(cryptonote.ErrTransactionTooBig)
				return tx
			},
			err: cryptonote.ErrTransactionTooBig,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, config.PoolConfig{})
			tx := tt.setup(t, f)
			f.acceptAll()

			before := f.pool.GetTransactionCount()
			_, err := f.pool.AddTransaction(tx, false)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, before, f.pool.GetTransactionCount())
		})
	}
}

func TestAddTransactionPoolFull(t *testing.T) {
	f := newFixture(t, config.PoolConfig{MaxTransactionCount: 2})
	f.acceptAll()

	f.add(t, ordinaryTx(t, coin, 0), false)
	f.add(t, ordinaryTx(t, coin, 0), false)

	_, err := f.pool.AddTransaction(ordinaryTx(t, coin, 0), false)
	assert.ErrorIs(t, err, cryptonote.ErrPoolFull)
	assert.Equal(t, cryptonote.KindPoolFull, cryptonote.KindOf(err))

	// Transactions from a popped block are always taken back.
	f.add(t, ordinaryTx(t, coin, 0), true)
	assert.Equal(t, 3, f.pool.GetTransactionCount())
}

func TestAddTransactionKeptByBlock(t *testing.T) {
	f := newFixture(t, config.PoolConfig{})

	first := ordinaryTx(t, coin, 0)
	image := first.Inputs[0].(cryptonote.KeyInput).KeyImage

	// A conflicting zero fee transaction whose inputs no longer check out.
	conflicting := ordinaryTx(t, 0, 0)
	conflicting.Inputs[0] = cryptonote.KeyInput{
		Amount:        coin,
		OutputIndexes: []uint32{9},
		KeyImage:      image,
	}
	f.checker.On("CheckTransactionInputs", conflicting).
		Return(consensus.BlockInfo{}, cryptonote.ErrUnknownOutput)
	f.acceptAll()

	f.add(t, first, false)

	_, err := f.pool.AddTransaction(conflicting, false)
	assert.ErrorIs(t, err, cryptonote.ErrFeeTooSmall)

	result := f.add(t, conflicting, true)
	assert.False(t, result.Relay)
	assert.Equal(t, 2, f.pool.GetTransactionCount())

	// The key image stays claimed until both spenders are gone.
	_, ok := f.pool.TakeTransaction(txID(t, first))
	require.True(t, ok)
	_, err = f.pool.AddTransaction(ordinaryTx(t, coin, 0), false)
	require.NoError(t, err)

	again := ordinaryTx(t, coin, 0)
	again.Inputs[0] = cryptonote.KeyInput{
		Amount:        2 * coin,
		OutputIndexes: []uint32{4},
		KeyImage:      image,
	}
	_, err = f.pool.AddTransaction(again, false)
	assert.ErrorIs(t, err, cryptonote.ErrDoubleSpend)

	_, ok = f.pool.TakeTransaction(result.ID)
	require.True(t, ok)
	f.add(t, again, false)
}

func TestFusionAdmission(t *testing.T) {
	f := newFixture(t, config.PoolConfig{})
	f.acceptAll()

	result := f.add(t, fusionTx(t, 0), false)
	assert.True(t, result.Relay)

	entries, _, _ := f.pool.FillBlockTemplate(20600, 1<<20)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Fusion)
	assert.Zero(t, entries[0].Fee)
}

func TestPriorityOrder(t *testing.T) {
	f := newFixture(t, config.PoolConfig{})
	f.acceptAll()

	// Fee per byte: b > c == a, and c is smaller than a.
	a := ordinaryTx(t, 2*coin, 2000)
	b := ordinaryTx(t, 2*coin, 1500)
	c := ordinaryTx(t, coin, 1000)
	d := ordinaryTx(t, coin, 1000)
	f.add(t, a, false)
	f.add(t, b, false)
	f.add(t, c, false)
	f.clock.SetTime(time.Unix(startTS+1, 0))
	f.add(t, d, false)

	assert.Equal(
		t,
		[]*cryptonote.Transaction{b, c, d, a},
		f.pool.GetTransactions(),
	)
}

func TestHigherPriorityLargeValues(t *testing.T) {
	a := &Entry{Fee: ^uint64(0), BlobSize: 3}
	b := &Entry{Fee: ^uint64(0) - 1, BlobSize: 3}
	assert.True(t, higherPriority(a, b))
	assert.False(t, higherPriority(b, a))
	assert.False(t, higherPriority(a, a))
}

func TestFillBlockTemplate(t *testing.T) {
	tests := []struct {
		name         string
		ordinary     int
		fusion       int
		median       uint64
		wantOrdinary int
		wantFusion   int
	}{
		{"both plentiful", 20, 20, 20600, 20, 0},
		{"room below median", 5, 20, 20600, 5, 3},
		{"few ordinary", 2, 20, 20600, 2, 3},
		{"fusion only", 0, 20, 20600, 0, 3},
		{"few fusion", 20, 2, 20600, 20, 0},
		{"fusion fills the gap", 9, 2, 20600, 9, 1},
		{"small median", 10, 3, 5000, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, config.PoolConfig{})
			f.acceptAll()

			for i := 0; i < tt.ordinary; i++ {
				f.add(t, ordinaryTx(t, coin+uint64(i), txSize), false)
			}
			for i := 0; i < tt.fusion; i++ {
				f.add(t, fusionTx(t, txSize), false)
			}

			entries, totalSize, totalFee := f.pool.FillBlockTemplate(
				tt.median,
				1<<20,
			)

			var ordinary, fusion int
			var size, fee uint64
			for _, entry := range entries {
				if entry.Fusion {
					fusion++
				} else {
					ordinary++
				}
				size += entry.BlobSize
				fee += entry.Fee
			}
			assert.Equal(t, tt.wantOrdinary, ordinary)
			assert.Equal(t, tt.wantFusion, fusion)
			assert.Equal(t, size, totalSize)
			assert.Equal(t, fee, totalFee)
			assert.LessOrEqual(t, totalSize, 2*tt.median)
		})
	}
}

func TestFillBlockTemplateFusionCap(t *testing.T) {
	tests := []struct {
		name       string
		configured int
		wantFusion int
	}{
		{"default", 0, 3},
		{"one", 1, 1},
		{"disabled", -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, config.PoolConfig{
				FusionTxMaxPerBlock: tt.configured,
			})
			f.acceptAll()
			for i := 0; i < 5; i++ {
				f.add(t, fusionTx(t, txSize), false)
			}

			entries, _, _ := f.pool.FillBlockTemplate(20600, 1<<20)
			assert.Len(t, entries, tt.wantFusion)
			for _, entry := range entries {
				assert.True(t, entry.Fusion)
			}
		})
	}
}

func TestFillBlockTemplateLimits(t *testing.T) {
	f := newFixture(t, config.PoolConfig{})
	f.acceptAll()

	for i := 0; i < 5; i++ {
		f.add(t, ordinaryTx(t, coin, txSize), false)
	}
	// Zero fee transactions only fill up to the median.
	for i := 0; i < 5; i++ {
		f.add(t, ordinaryTx(t, 0, txSize), true)
	}

	entries, totalSize, _ := f.pool.FillBlockTemplate(7000, 1<<20)
	assert.Len(t, entries, 5)
	assert.Equal(t, uint64(10000), totalSize)
	for _, entry := range entries {
		assert.NotZero(t, entry.Fee)
	}

	entries, totalSize, _ = f.pool.FillBlockTemplate(20000, 1<<20)
	assert.Len(t, entries, 10)
	assert.Equal(t, uint64(20000), totalSize)

	entries, totalSize, _ = f.pool.FillBlockTemplate(20000, 6000)
	assert.Len(t, entries, 3)
	assert.Equal(t, uint64(6000), totalSize)
}

func TestFillBlockTemplateSkipsUnready(t *testing.T) {
	f := newFixture(t, config.PoolConfig{})

	stale := ordinaryTx(t, 5*coin, txSize)
	spent := ordinaryTx(t, 4*coin, txSize)
	ready := ordinaryTx(t, coin, txSize)
	f.checker.On(
		"RecheckTransactionInputs",
		stale,
		mock.Anything,
		mock.Anything,
	).Return(false)
	f.checker.On("HaveSpentKeyImages", spent).Return(true, nil)
	f.acceptAll()

	f.add(t, stale, false)
	f.add(t, spent, false)
	f.add(t, ready, false)

	entries, _, totalFee := f.pool.FillBlockTemplate(20000, 1<<20)
	require.Len(t, entries, 1)
	assert.Equal(t, txID(t, ready), entries[0].ID)
	assert.Equal(t, coin, totalFee)

	added, deleted := f.pool.GetDifference(
		[]crypto.Hash{txID(t, stale), {0xee}},
	)
	assert.Equal(t, []crypto.Hash{txID(t, ready)}, added)
	assert.Equal(t, []crypto.Hash{txID(t, stale), {0xee}}, deleted)
}

func TestFillBlockTemplateConflicts(t *testing.T) {
	f := newFixture(t, config.PoolConfig{})
	f.acceptAll()

	first := ordinaryTx(t, 2*coin, txSize)
	second := ordinaryTx(t, coin, txSize)
	second.Inputs[0] = cryptonote.KeyInput{
		Amount:        2 * coin,
		OutputIndexes: []uint32{3},
		KeyImage:      first.Inputs[0].(cryptonote.KeyInput).KeyImage,
	}
	f.add(t, first, false)
	f.add(t, second, true)

	entries, _, _ := f.pool.FillBlockTemplate(20000, 1<<20)
	require.Len(t, entries, 1)
	assert.Equal(t, txID(t, first), entries[0].ID)
}

func TestRemoveExpiredTransactions(t *testing.T) {
	f := newFixture(t, config.PoolConfig{
		TransactionLiveTime:                               time.Hour,
		AltBlockTransactionLiveTime:                       2 * time.Hour,
		NumberOfPeriodsToForgetTransactionDeletedFromPool: 2,
	})
	f.acceptAll()

	ordinary := ordinaryTx(t, coin, 0)
	kept := ordinaryTx(t, coin, 0)
	f.add(t, ordinary, false)
	f.add(t, kept, true)

	start := time.Unix(startTS, 0)
	f.clock.SetTime(start.Add(time.Hour))
	assert.Zero(t, f.pool.RemoveExpiredTransactions())

	f.clock.SetTime(start.Add(time.Hour + time.Minute))
	assert.Equal(t, 1, f.pool.RemoveExpiredTransactions())
	assert.False(t, f.pool.HaveTransaction(txID(t, ordinary)))
	assert.True(t, f.pool.HaveTransaction(txID(t, kept)))

	// Recently deleted transactions are ignored without error.
	result, err := f.pool.AddTransaction(ordinary, false)
	require.NoError(t, err)
	assert.False(t, result.Added)
	assert.False(t, f.pool.HaveTransaction(result.ID))

	f.clock.SetTime(start.Add(2*time.Hour + time.Minute))
	assert.Equal(t, 1, f.pool.RemoveExpiredTransactions())
	assert.Zero(t, f.pool.GetTransactionCount())

	// Deleted ids are forgotten after two live times.
	f.clock.SetTime(start.Add(3*time.Hour + 2*time.Minute))
	f.pool.RemoveExpiredTransactions()
	f.add(t, ordinary, false)
}

func TestClearStaleMarkers(t *testing.T) {
	f := newFixture(t, config.PoolConfig{})
	f.acceptAll()

	tx := ordinaryTx(t, coin, 0)
	id := f.add(t, tx, false).ID

	f.pool.mu.Lock()
	entry := f.pool.entries[id]
	entry.MaxUsedBlock = consensus.BlockInfo{Height: 9, ID: crypto.Hash{9}}
	entry.LastFailedBlock = consensus.BlockInfo{Height: 5, ID: crypto.Hash{5}}
	f.pool.mu.Unlock()

	f.pool.OnBlockchainInc(11, crypto.Hash{10})
	assert.Equal(t, uint32(9), entry.MaxUsedBlock.Height)
	assert.Equal(t, uint32(5), entry.LastFailedBlock.Height)

	// Block 9 was replaced.
	f.pool.OnBlockchainInc(10, crypto.Hash{0x99})
	assert.True(t, entry.MaxUsedBlock.Empty())
	assert.False(t, entry.LastFailedBlock.Empty())

	f.pool.OnBlockchainDec(5, crypto.Hash{4})
	assert.True(t, entry.LastFailedBlock.Empty())
}

func TestIndexQueries(t *testing.T) {
	f := newFixture(t, config.PoolConfig{})
	f.acceptAll()

	paymentID := crypto.Hash{0x42}
	tx := ordinaryTx(t, coin, 0)
	extra, err := cryptonote.AddExtraNonceToExtra(
		nil,
		cryptonote.SetPaymentIDToNonce(paymentID),
	)
	require.NoError(t, err)
	tx.Extra = extra
	id := f.add(t, tx, false).ID

	f.clock.SetTime(time.Unix(startTS+100, 0))
	later := f.add(t, ordinaryTx(t, coin, 0), false).ID

	assert.Equal(t, []crypto.Hash{id}, f.pool.GetTransactionIDsByPaymentID(paymentID))

	ids, total, err := f.pool.GetTransactionIDsByTimestamp(
		uint64(startTS),
		uint64(startTS+100),
		1,
	)
	require.NoError(t, err)
	assert.Equal(t, []crypto.Hash{id}, ids)
	assert.Equal(t, uint64(2), total)

	ids, _, err = f.pool.GetTransactionIDsByTimestamp(
		uint64(startTS+1),
		uint64(startTS+100),
		10,
	)
	require.NoError(t, err)
	assert.Equal(t, []crypto.Hash{later}, ids)

	_, _, err = f.pool.GetTransactionIDsByTimestamp(2, 1, 10)
	assert.ErrorIs(t, err, indexing.ErrInvalidRange)

	f.pool.TakeTransaction(id)
	assert.Empty(t, f.pool.GetTransactionIDsByPaymentID(paymentID))
}

func TestPersistence(t *testing.T) {
	db, err := nodestore.NewPebbleDB(
		zap.NewNop(),
		&config.DBConfig{Path: "mempool", InMemoryDONOTUSE: true},
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	poolStore := nodestore.NewPebblePoolStore(db, zap.NewNop())

	cfg := config.PoolConfig{TransactionLiveTime: time.Hour}
	f := newFixture(t, cfg)
	f.pool.store = poolStore
	f.acceptAll()

	kept := ordinaryTx(t, coin, 0)
	expiring := ordinaryTx(t, 2*coin, 0)
	f.clock.SetTime(time.Unix(startTS, 250))
	f.add(t, kept, true)
	f.add(t, expiring, false)
	f.clock.SetTime(time.Unix(startTS+3000, 0))
	fresh := ordinaryTx(t, 3*coin, 0)
	f.add(t, fresh, false)
	require.NoError(t, f.pool.Deinit())

	restored := newFixture(t, cfg)
	restored.pool.store = poolStore
	restored.clock.SetTime(time.Unix(startTS+3700, 0))
	require.NoError(t, restored.pool.Init())

	assert.True(t, restored.pool.HaveTransaction(txID(t, kept)))
	assert.True(t, restored.pool.HaveTransaction(txID(t, fresh)))
	assert.False(t, restored.pool.HaveTransaction(txID(t, expiring)))

	restored.pool.mu.RLock()
	entry := restored.pool.entries[txID(t, kept)]
	_, deleted := restored.pool.recentlyDeleted[txID(t, expiring)]
	restored.pool.mu.RUnlock()
	assert.True(t, entry.KeptByBlock)
	assert.Equal(t, coin, entry.Fee)
	assert.Equal(t, time.Unix(startTS, 250), entry.ReceiveTime)
	assert.True(t, deleted)
}

func TestInitDropsUndecodable(t *testing.T) {
	f := newFixture(t, config.PoolConfig{})
	good := ordinaryTx(t, coin, 0)
	blob, err := good.ToCanonicalBytes()
	require.NoError(t, err)

	f.store.On("LoadEntries").Return(
		[]*store.PoolRecord{
			{ID: crypto.Hash{1}, Blob: []byte{0xff}, ReceiveTimeNano: startNano},
			{ID: txID(t, good), Blob: blob, Fee: coin, ReceiveTimeNano: startNano},
		},
		[]store.DeletedRecord{{ID: crypto.Hash{2}, DeletedAt: startTS}},
		nil,
	)
	require.NoError(t, f.pool.Init())
	assert.Equal(t, 1, f.pool.GetTransactionCount())
	assert.True(t, f.pool.HaveTransaction(txID(t, good)))

	f.store.On("SaveEntries", mock.Anything, mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			records := args.Get(0).([]*store.PoolRecord)
			require.Len(t, records, 1)
			assert.Equal(t, blob, records[0].Blob)
			deleted := args.Get(1).([]store.DeletedRecord)
			assert.Equal(
				t,
				[]store.DeletedRecord{{ID: crypto.Hash{2}, DeletedAt: startTS}},
				deleted,
			)
		})
	require.NoError(t, f.pool.Deinit())
	f.store.AssertExpectations(t)
}

func TestStartStop(t *testing.T) {
	f := newFixture(t, config.PoolConfig{TransactionLiveTime: time.Minute})
	f.acceptAll()
	force := ticker.NewForce(time.Hour)
	t.Cleanup(force.Stop)
	f.pool.WithTicker(force)

	tx := ordinaryTx(t, coin, 0)
	f.add(t, tx, false)
	f.clock.SetTime(time.Unix(startTS+120, 0))

	require.NoError(t, f.pool.Start(context.Background()))
	require.NoError(t, f.pool.Start(context.Background()))
	force.Force <- time.Now()

	assert.Eventually(t, func() bool {
		return !f.pool.HaveTransaction(txID(t, tx))
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, f.pool.Stop())
	require.NoError(t, f.pool.Stop())
}
