package chain

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/cryptonote"
	"github.com/vigcoin/coin/currency"
	"github.com/vigcoin/coin/node/indexing"
	"github.com/vigcoin/coin/node/mempool"
	"github.com/vigcoin/coin/types/store"
	"go.uber.org/zap"
)

var (
	ErrNotChainTip          = errors.New("block does not extend the chain tip")
	ErrTransactionsMismatch = errors.New("transactions do not match block")
)

// TransactionPool is the part of the pool the chain keeps in step with the
// main chain.
type TransactionPool interface {
	AddTransaction(
		tx *cryptonote.Transaction,
		keptByBlock bool,
	) (mempool.AddResult, error)
	TakeTransaction(id crypto.Hash) (*mempool.Entry, bool)
	OnBlockchainInc(height uint32, topID crypto.Hash)
	OnBlockchainDec(height uint32, topID crypto.Hash)
}

// Chain applies main chain blocks to the spent key image and output stores
// and keeps the block indexes and the pool in step. Blocks are assumed to
// have passed consensus checks elsewhere.
type Chain struct {
	mu         sync.Mutex
	blocks     store.BlockIndexStore
	keyImages  store.KeyImageStore
	outputs    store.OutputStore
	pool       TransactionPool
	generated  *indexing.GeneratedTransactionsIndex
	timestamps *indexing.TimestampIndex
	currency   *currency.Currency
	logger     *zap.Logger
}

func NewChain(
	blocks store.BlockIndexStore,
	keyImages store.KeyImageStore,
	outputs store.OutputStore,
	pool TransactionPool,
	currency *currency.Currency,
	logger *zap.Logger,
) *Chain {
	return &Chain{
		blocks:     blocks,
		keyImages:  keyImages,
		outputs:    outputs,
		pool:       pool,
		generated:  indexing.NewGeneratedTransactionsIndex(),
		timestamps: indexing.NewTimestampIndex(),
		currency:   currency,
		logger:     logger.With(zap.String("component", "chain")),
	}
}

// Init rebuilds the block indexes from the stored blocks, or pushes the
// genesis block on an empty store.
func (c *Chain) Init() error {
	height := c.blocks.GetCurrentHeight()
	if height == 0 {
		genesis := c.currency.GenesisBlock()
		if err := c.PushBlock(&genesis, nil); err != nil {
			return errors.Wrap(err, "init")
		}
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generated.Clear()
	c.timestamps.Clear()
	for h := uint32(0); h < height; h++ {
		record, err := c.blocks.GetBlockRecord(h)
		if err != nil {
			return errors.Wrap(err, "init")
		}
		if err := c.generated.Add(h, record.TransactionCount); err != nil {
			return errors.Wrap(err, "init")
		}
		c.timestamps.Add(record.Timestamp, record.ID)
	}

	c.logger.Info("chain loaded", zap.Uint32("height", height))
	return nil
}

// PushBlock appends block, whose transactions other than the base one are
// txs in block order.
func (c *Chain) PushBlock(
	block *cryptonote.Block,
	txs []*cryptonote.Transaction,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := block.Hash()
	if err != nil {
		return errors.Wrap(err, "push block")
	}

	height := c.blocks.GetCurrentHeight()
	if height > 0 {
		top, err := c.blocks.GetBlockIDByHeight(height - 1)
		if err != nil {
			return errors.Wrap(err, "push block")
		}
		if block.PreviousBlockHash != top {
			return errors.Wrapf(ErrNotChainTip, "push block %s", id)
		}
	}
	if err := checkTransactions(block, txs); err != nil {
		return errors.Wrap(err, "push block")
	}

	all := make([]*cryptonote.Transaction, 0, len(txs)+1)
	all = append(all, &block.BaseTransaction)
	all = append(all, txs...)

	txn, err := c.blocks.NewTransaction(true)
	if err != nil {
		return errors.Wrap(err, "push block")
	}
	seen := map[crypto.KeyImage]struct{}{}
	for _, tx := range all {
		if err := c.applyTransaction(txn, tx, height, seen); err != nil {
			txn.Abort()
			return errors.Wrap(err, "push block")
		}
	}
	if err := c.blocks.PushBlock(txn, store.BlockRecord{
		ID:               id,
		TransactionCount: uint64(len(all)),
		Timestamp:        block.Timestamp,
	}); err != nil {
		txn.Abort()
		return errors.Wrap(err, "push block")
	}
	if err := txn.Commit(); err != nil {
		return errors.Wrap(err, "push block")
	}

	if err := c.generated.Add(height, uint64(len(all))); err != nil {
		return errors.Wrap(err, "push block")
	}
	c.timestamps.Add(block.Timestamp, id)

	for _, txID := range block.TransactionHashes {
		c.pool.TakeTransaction(txID)
	}
	c.pool.OnBlockchainInc(height+1, id)

	c.logger.Info(
		"block pushed",
		zap.Uint32("height", height),
		zap.String("block_hash", id.String()),
		zap.Int("transactions", len(all)),
	)
	return nil
}

func checkTransactions(
	block *cryptonote.Block,
	txs []*cryptonote.Transaction,
) error {
	if len(txs) != len(block.TransactionHashes) {
		return errors.Wrapf(
			ErrTransactionsMismatch,
			"%d transactions for %d hashes",
			len(txs),
			len(block.TransactionHashes),
		)
	}
	for i, tx := range txs {
		id, err := cryptonote.GetTransactionHash(tx)
		if err != nil {
			return err
		}
		if id != block.TransactionHashes[i] {
			return errors.Wrapf(ErrTransactionsMismatch, "transaction %d", i)
		}
	}
	return nil
}

func (c *Chain) applyTransaction(
	txn store.Transaction,
	tx *cryptonote.Transaction,
	height uint32,
	seen map[crypto.KeyImage]struct{},
) error {
	for _, in := range tx.Inputs {
		switch v := in.(type) {
		case cryptonote.KeyInput:
			spent, err := c.keyImages.Contains(v.KeyImage)
			if err != nil {
				return err
			}
			if _, ok := seen[v.KeyImage]; ok || spent {
				return errors.Wrapf(
					cryptonote.ErrDoubleSpend,
					"key image %x",
					v.KeyImage[:],
				)
			}
			seen[v.KeyImage] = struct{}{}
			if err := c.keyImages.Insert(txn, v.KeyImage, height); err != nil {
				return err
			}
		case cryptonote.MultisignatureInput:
			if err := c.outputs.SetMultisignatureOutputSpent(
				txn,
				v.Amount,
				v.OutputIndex,
				true,
			); err != nil {
				return err
			}
		}
	}

	for _, out := range tx.Outputs {
		switch target := out.Target.(type) {
		case cryptonote.KeyOutput:
			if _, err := c.outputs.AddKeyOutput(txn, out.Amount, store.OutputEntry{
				Key:        target.Key,
				BlockIndex: height,
				UnlockTime: tx.UnlockTime,
			}); err != nil {
				return err
			}
		case cryptonote.MultisignatureOutput:
			if _, err := c.outputs.AddMultisignatureOutput(
				txn,
				out.Amount,
				store.MultisignatureOutputEntry{
					Output:     target,
					BlockIndex: height,
					UnlockTime: tx.UnlockTime,
				},
			); err != nil {
				return err
			}
		}
	}
	return nil
}

// PopBlock removes the top block, which must be block, and returns its
// transactions to the pool.
func (c *Chain) PopBlock(
	block *cryptonote.Block,
	txs []*cryptonote.Transaction,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := block.Hash()
	if err != nil {
		return errors.Wrap(err, "pop block")
	}

	height := c.blocks.GetCurrentHeight()
	if height <= 1 {
		return errors.Wrap(ErrNotChainTip, "pop block: genesis")
	}
	top, err := c.blocks.GetBlockIDByHeight(height - 1)
	if err != nil {
		return errors.Wrap(err, "pop block")
	}
	if top != id {
		return errors.Wrapf(ErrNotChainTip, "pop block %s", id)
	}
	if err := checkTransactions(block, txs); err != nil {
		return errors.Wrap(err, "pop block")
	}

	all := make([]*cryptonote.Transaction, 0, len(txs)+1)
	all = append(all, &block.BaseTransaction)
	all = append(all, txs...)

	txn, err := c.blocks.NewTransaction(true)
	if err != nil {
		return errors.Wrap(err, "pop block")
	}
	for i := len(all) - 1; i >= 0; i-- {
		if err := c.revertTransaction(txn, all[i]); err != nil {
			txn.Abort()
			return errors.Wrap(err, "pop block")
		}
	}
	if err := c.blocks.PopBlock(txn); err != nil {
		txn.Abort()
		return errors.Wrap(err, "pop block")
	}
	if err := txn.Commit(); err != nil {
		return errors.Wrap(err, "pop block")
	}

	if err := c.generated.Remove(height - 1); err != nil {
		return errors.Wrap(err, "pop block")
	}
	c.timestamps.Remove(block.Timestamp, id)

	newTop, err := c.blocks.GetBlockIDByHeight(height - 2)
	if err != nil {
		return errors.Wrap(err, "pop block")
	}
	c.pool.OnBlockchainDec(height-1, newTop)
	for _, tx := range txs {
		if _, err := c.pool.AddTransaction(tx, true); err != nil {
			c.logger.Debug(
				"popped transaction not returned to pool",
				zap.Error(err),
			)
		}
	}

	c.logger.Info(
		"block popped",
		zap.Uint32("height", height-1),
		zap.String("block_hash", id.String()),
	)
	return nil
}

func (c *Chain) revertTransaction(
	txn store.Transaction,
	tx *cryptonote.Transaction,
) error {
	for i := len(tx.Outputs) - 1; i >= 0; i-- {
		out := tx.Outputs[i]
		switch out.Target.(type) {
		case cryptonote.KeyOutput:
			if err := c.outputs.RemoveLastKeyOutput(txn, out.Amount); err != nil {
				return err
			}
		case cryptonote.MultisignatureOutput:
			if err := c.outputs.RemoveLastMultisignatureOutput(
				txn,
				out.Amount,
			); err != nil {
				return err
			}
		}
	}

	for _, in := range tx.Inputs {
		switch v := in.(type) {
		case cryptonote.KeyInput:
			if err := c.keyImages.Remove(txn, v.KeyImage); err != nil {
				return err
			}
		case cryptonote.MultisignatureInput:
			if err := c.outputs.SetMultisignatureOutputSpent(
				txn,
				v.Amount,
				v.OutputIndex,
				false,
			); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetGeneratedTransactionsCount returns the number of transactions in the
// blocks up to and including height.
func (c *Chain) GetGeneratedTransactionsCount(height uint32) (uint64, bool) {
	return c.generated.Find(height)
}

// GetBlockIDsByTimestamp returns up to limit ids of blocks with timestamps
// in [begin, end], and the number of such blocks.
func (c *Chain) GetBlockIDsByTimestamp(
	begin uint64,
	end uint64,
	limit uint64,
) ([]crypto.Hash, uint64, error) {
	ids, total, err := c.timestamps.Find(begin, end, limit)
	if err != nil {
		return nil, 0, errors.Wrap(err, "get block ids by timestamp")
	}
	return ids, total, nil
}
