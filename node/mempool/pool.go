package mempool

import (
	"context"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/ticker"
	"github.com/pkg/errors"
	"github.com/vigcoin/coin/config"
	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/cryptonote"
	"github.com/vigcoin/coin/currency"
	"github.com/vigcoin/coin/node/indexing"
	"github.com/vigcoin/coin/node/validator"
	"github.com/vigcoin/coin/types/consensus"
	"github.com/vigcoin/coin/types/store"
	"go.uber.org/zap"
)

// AddResult describes an accepted transaction. Added is false when the
// transaction was recently removed from the pool and was ignored.
type AddResult struct {
	ID    crypto.Hash
	Added bool
	Relay bool
}

// Pool holds transactions waiting for a block. One lock guards all of its
// state; admission holds it from the pool double spend check until the
// insertion.
type Pool struct {
	mu              sync.RWMutex
	entries         map[crypto.Hash]*Entry
	byPriority      *btree.BTreeG[*Entry]
	spentKeyImages  map[crypto.KeyImage]map[crypto.Hash]struct{}
	spentOutputs    map[globalOutput]struct{}
	recentlyDeleted map[crypto.Hash]time.Time

	checker    consensus.TransactionInputsChecker
	currency   *currency.Currency
	store      store.PoolStore
	paymentIDs *indexing.PaymentIDIndex
	timestamps *indexing.TimestampIndex
	clock      clock.Clock
	config     config.PoolConfig
	logger     *zap.Logger

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	ticker  ticker.Ticker
}

func NewPool(
	checker consensus.TransactionInputsChecker,
	currency *currency.Currency,
	poolStore store.PoolStore,
	paymentIDs *indexing.PaymentIDIndex,
	timestamps *indexing.TimestampIndex,
	clock clock.Clock,
	cfg *config.PoolConfig,
	logger *zap.Logger,
) *Pool {
	poolConfig := cfg.WithDefaults()
	return &Pool{
		entries:         map[crypto.Hash]*Entry{},
		byPriority:      btree.NewG(32, higherPriority),
		spentKeyImages:  map[crypto.KeyImage]map[crypto.Hash]struct{}{},
		spentOutputs:    map[globalOutput]struct{}{},
		recentlyDeleted: map[crypto.Hash]time.Time{},
		checker:         checker,
		currency:        currency,
		store:           poolStore,
		paymentIDs:      paymentIDs,
		timestamps:      timestamps,
		clock:           clock,
		config:          poolConfig,
		logger:          logger.With(zap.String("component", "mempool")),
		ticker:          ticker.New(poolConfig.ExpirySweepInterval),
	}
}

// WithTicker replaces the expiry sweep ticker.
func (p *Pool) WithTicker(t ticker.Ticker) *Pool {
	p.ticker = t
	return p
}

// AddTransaction runs admission for tx. Transactions kept by block come from
// a block being switched out of the main chain and skip the fee, pool double
// spend, and size checks; failing input checks do not reject them.
func (p *Pool) AddTransaction(
	tx *cryptonote.Transaction,
	keptByBlock bool,
) (AddResult, error) {
	result, err := p.addTransaction(tx, keptByBlock)
	switch {
	case err != nil:
		admissionsTotal.WithLabelValues("rejected").Inc()
		p.logger.Debug(
			"transaction rejected",
			zap.String("tx_hash", result.ID.String()),
			zap.Bool("kept_by_block", keptByBlock),
			zap.Error(err),
		)
		return result, errors.Wrap(err, "add transaction")
	case !result.Added:
		admissionsTotal.WithLabelValues("ignored").Inc()
		p.logger.Debug(
			"recently deleted transaction ignored",
			zap.String("tx_hash", result.ID.String()),
		)
	default:
		admissionsTotal.WithLabelValues("added").Inc()
		p.logger.Debug(
			"transaction added",
			zap.String("tx_hash", result.ID.String()),
			zap.Bool("kept_by_block", keptByBlock),
			zap.Bool("relay", result.Relay),
		)
	}
	return result, nil
}

func (p *Pool) addTransaction(
	tx *cryptonote.Transaction,
	keptByBlock bool,
) (AddResult, error) {
	blob, err := tx.ToCanonicalBytes()
	if err != nil {
		return AddResult{}, err
	}
	result := AddResult{ID: crypto.FastHash(blob)}
	blobSize := uint64(len(blob))

	if err := validator.CheckStructure(tx); err != nil {
		return result, err
	}
	fee, err := validator.GetFee(&tx.TransactionPrefix)
	if err != nil {
		return result, err
	}
	fusion := fee == 0 && p.currency.IsFusionTransaction(tx, blobSize)
	if !keptByBlock && !fusion && fee < p.currency.MinimumFee() {
		return result, errors.Wrapf(
			cryptonote.ErrFeeTooSmall,
			"fee %d, minimum %d",
			fee,
			p.currency.MinimumFee(),
		)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.entries[result.ID]; ok {
		return result, cryptonote.ErrTransactionExists
	}
	if !keptByBlock && len(p.entries) >= p.config.MaxTransactionCount {
		return result, cryptonote.ErrPoolFull
	}
	if !keptByBlock && p.haveSpentInputs(tx) {
		return result, errors.Wrap(
			cryptonote.ErrDoubleSpend,
			"inputs spent by pool transaction",
		)
	}

	inputsValid := true
	maxUsedBlock, err := p.checker.CheckTransactionInputs(tx)
	if err != nil {
		if !keptByBlock {
			return result, err
		}
		inputsValid = false
		maxUsedBlock = consensus.BlockInfo{}
	}

	if !keptByBlock {
		if err := p.checker.CheckTransactionSize(blobSize); err != nil {
			return result, err
		}
		if _, ok := p.recentlyDeleted[result.ID]; ok {
			return result, nil
		}
	}

	p.insert(&Entry{
		ID:           result.ID,
		Transaction:  tx,
		BlobSize:     blobSize,
		Fee:          fee,
		ReceiveTime:  p.clock.Now(),
		KeptByBlock:  keptByBlock,
		Fusion:       fusion,
		MaxUsedBlock: maxUsedBlock,
	})

	result.Added = true
	result.Relay = inputsValid && (fee > 0 || fusion)
	return result, nil
}

// haveSpentInputs reports whether another pool transaction spends an input of
// tx.
func (p *Pool) haveSpentInputs(tx *cryptonote.Transaction) bool {
	for _, in := range tx.Inputs {
		switch v := in.(type) {
		case cryptonote.KeyInput:
			if len(p.spentKeyImages[v.KeyImage]) > 0 {
				return true
			}
		case cryptonote.MultisignatureInput:
			if _, ok := p.spentOutputs[globalOutput{v.Amount, v.OutputIndex}]; ok {
				return true
			}
		}
	}
	return false
}

func (p *Pool) insert(entry *Entry) {
	p.entries[entry.ID] = entry
	p.byPriority.ReplaceOrInsert(entry)

	for _, in := range entry.Transaction.Inputs {
		switch v := in.(type) {
		case cryptonote.KeyInput:
			ids, ok := p.spentKeyImages[v.KeyImage]
			if !ok {
				ids = map[crypto.Hash]struct{}{}
				p.spentKeyImages[v.KeyImage] = ids
			}
			ids[entry.ID] = struct{}{}
		case cryptonote.MultisignatureInput:
			if !entry.KeptByBlock {
				p.spentOutputs[globalOutput{v.Amount, v.OutputIndex}] = struct{}{}
			}
		}
	}

	p.paymentIDs.AddTransaction(entry.Transaction, entry.ID)
	p.timestamps.Add(uint64(entry.ReceiveTime.Unix()), entry.ID)
	poolSize.Set(float64(len(p.entries)))
}

func (p *Pool) remove(entry *Entry) {
	delete(p.entries, entry.ID)
	p.byPriority.Delete(entry)

	for _, in := range entry.Transaction.Inputs {
		switch v := in.(type) {
		case cryptonote.KeyInput:
			ids := p.spentKeyImages[v.KeyImage]
			delete(ids, entry.ID)
			if len(ids) == 0 {
				delete(p.spentKeyImages, v.KeyImage)
			}
		case cryptonote.MultisignatureInput:
			if !entry.KeptByBlock {
				delete(p.spentOutputs, globalOutput{v.Amount, v.OutputIndex})
			}
		}
	}

	p.paymentIDs.RemoveTransaction(entry.Transaction, entry.ID)
	p.timestamps.Remove(uint64(entry.ReceiveTime.Unix()), entry.ID)
	poolSize.Set(float64(len(p.entries)))
}

// TakeTransaction removes the transaction from the pool and returns its entry.
func (p *Pool) TakeTransaction(id crypto.Hash) (*Entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[id]
	if !ok {
		return nil, false
	}
	p.remove(entry)
	evictionsTotal.WithLabelValues("taken").Inc()
	return entry, true
}

func (p *Pool) HaveTransaction(id crypto.Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.entries[id]
	return ok
}

func (p *Pool) GetTransaction(id crypto.Hash) (*cryptonote.Transaction, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entry, ok := p.entries[id]
	if !ok {
		return nil, false
	}
	return entry.Transaction, true
}

// GetTransactions returns the pool transactions in priority order.
func (p *Pool) GetTransactions() []*cryptonote.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	txs := make([]*cryptonote.Transaction, 0, len(p.entries))
	p.byPriority.Ascend(func(entry *Entry) bool {
		txs = append(txs, entry.Transaction)
		return true
	})
	return txs
}

func (p *Pool) GetTransactionCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.entries)
}

// GetDifference compares the ids a peer knows with the pool's transactions
// that are ready for a block. It returns the ready ids the peer does not know
// and the known ids that are not ready in the pool.
func (p *Pool) GetDifference(
	known []crypto.Hash,
) (added []crypto.Hash, deleted []crypto.Hash) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	knownSet := make(map[crypto.Hash]struct{}, len(known))
	for _, id := range known {
		knownSet[id] = struct{}{}
	}

	p.byPriority.Ascend(func(entry *Entry) bool {
		// Markers are only updated under the write lock.
		maxUsed, lastFailed := entry.MaxUsedBlock, entry.LastFailedBlock
		if !p.isReadyToGo(entry.Transaction, &maxUsed, &lastFailed) {
			return true
		}
		if _, ok := knownSet[entry.ID]; ok {
			delete(knownSet, entry.ID)
		} else {
			added = append(added, entry.ID)
		}
		return true
	})

	for _, id := range known {
		if _, ok := knownSet[id]; ok {
			deleted = append(deleted, id)
			delete(knownSet, id)
		}
	}
	return added, deleted
}

func (p *Pool) isReadyToGo(
	tx *cryptonote.Transaction,
	maxUsedBlock *consensus.BlockInfo,
	lastFailedBlock *consensus.BlockInfo,
) bool {
	if !p.checker.RecheckTransactionInputs(tx, maxUsedBlock, lastFailedBlock) {
		return false
	}
	spent, err := p.checker.HaveSpentKeyImages(tx)
	if err != nil {
		p.logger.Warn("failed to check spent key images", zap.Error(err))
		return false
	}
	return !spent
}

func (p *Pool) GetTransactionIDsByPaymentID(
	paymentID crypto.Hash,
) []crypto.Hash {
	return p.paymentIDs.Find(paymentID)
}

// GetTransactionIDsByTimestamp returns up to limit ids received within
// [begin, end] unix seconds, and the number received in that range.
func (p *Pool) GetTransactionIDsByTimestamp(
	begin uint64,
	end uint64,
	limit uint64,
) ([]crypto.Hash, uint64, error) {
	ids, total, err := p.timestamps.Find(begin, end, limit)
	if err != nil {
		return nil, 0, errors.Wrap(err, "get transaction ids by timestamp")
	}
	return ids, total, nil
}

// OnBlockchainInc is called after a block is appended; height is the new
// chain height and topID the id of the new top block.
func (p *Pool) OnBlockchainInc(height uint32, topID crypto.Hash) {
	p.clearStaleMarkers(height, topID)
}

// OnBlockchainDec is called after the top block is popped.
func (p *Pool) OnBlockchainDec(height uint32, topID crypto.Hash) {
	p.clearStaleMarkers(height, topID)
}

// clearStaleMarkers drops input check markers that name blocks no longer on
// the main chain, so that the next readiness check runs the full input
// checks again.
func (p *Pool) clearStaleMarkers(height uint32, topID crypto.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stale := func(info consensus.BlockInfo) bool {
		if info.Empty() {
			return false
		}
		if info.Height >= height {
			return true
		}
		return height > 0 && info.Height == height-1 && info.ID != topID
	}

	cleared := 0
	for _, entry := range p.entries {
		if stale(entry.MaxUsedBlock) {
			entry.MaxUsedBlock = consensus.BlockInfo{}
			cleared++
		}
		if stale(entry.LastFailedBlock) {
			entry.LastFailedBlock = consensus.BlockInfo{}
			cleared++
		}
	}
	if cleared > 0 {
		p.logger.Debug(
			"cleared stale input check markers",
			zap.Uint32("height", height),
			zap.Int("cleared", cleared),
		)
	}
}
