package consensus

import (
	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/cryptonote"
)

// BlockInfo names a main chain block. The zero value means no block.
type BlockInfo struct {
	Height uint32
	ID     crypto.Hash
}

func (b BlockInfo) Empty() bool {
	return b.ID == crypto.NullHash
}

// BlockchainHeightOracle answers main chain queries.
type BlockchainHeightOracle interface {
	GetCurrentHeight() uint32
	GetGenesisHash() crypto.Hash
	GetBlockIDByHeight(height uint32) (crypto.Hash, error)
}

// TransactionInputsChecker performs the chain dependent checks of a
// transaction on behalf of the pool.
type TransactionInputsChecker interface {
	// CheckTransactionInputs verifies every input against the chain and
	// returns the highest block that any ring member comes from.
	CheckTransactionInputs(tx *cryptonote.Transaction) (BlockInfo, error)
	// RecheckTransactionInputs repeats the input checks only when the chain
	// has moved away from the recorded blocks, updating them.
	RecheckTransactionInputs(
		tx *cryptonote.Transaction,
		maxUsedBlock *BlockInfo,
		lastFailedBlock *BlockInfo,
	) bool
	HaveSpentKeyImages(tx *cryptonote.Transaction) (bool, error)
	CheckTransactionSize(blobSize uint64) error
}
