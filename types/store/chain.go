package store

import (
	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/cryptonote"
)

// KeyImageStore is the set of key images spent on the main chain.
type KeyImageStore interface {
	NewTransaction(indexed bool) (Transaction, error)
	Contains(image crypto.KeyImage) (bool, error)
	// Insert records image as spent in the block at blockIndex.
	Insert(txn Transaction, image crypto.KeyImage, blockIndex uint32) error
	Remove(txn Transaction, image crypto.KeyImage) error
}

// OutputEntry is a key output as referenced by ring members.
type OutputEntry struct {
	GlobalIndex uint32
	Key         crypto.PublicKey
	BlockIndex  uint32
	UnlockTime  uint64
}

type MultisignatureOutputEntry struct {
	GlobalIndex uint32
	Output      cryptonote.MultisignatureOutput
	BlockIndex  uint32
	UnlockTime  uint64
	Spent       bool
}

// OutputStore indexes outputs per amount by global index, the space ring
// members and multisignature inputs refer to.
type OutputStore interface {
	NewTransaction(indexed bool) (Transaction, error)
	// GetOutputCount returns the number of key outputs with the amount.
	GetOutputCount(amount uint64) (uint32, error)
	// GetOutputKeys resolves absolute global indexes in order. A missing index
	// fails with ErrNotFound.
	GetOutputKeys(amount uint64, globalIndexes []uint32) ([]OutputEntry, error)
	GetMultisignatureOutput(
		amount uint64,
		globalIndex uint32,
	) (*MultisignatureOutputEntry, error)
	// AddKeyOutput appends an output and returns its global index.
	AddKeyOutput(
		txn Transaction,
		amount uint64,
		entry OutputEntry,
	) (uint32, error)
	AddMultisignatureOutput(
		txn Transaction,
		amount uint64,
		entry MultisignatureOutputEntry,
	) (uint32, error)
	SetMultisignatureOutputSpent(
		txn Transaction,
		amount uint64,
		globalIndex uint32,
		spent bool,
	) error
	// RemoveLastKeyOutput and RemoveLastMultisignatureOutput undo the most
	// recent add for the amount.
	RemoveLastKeyOutput(txn Transaction, amount uint64) error
	RemoveLastMultisignatureOutput(txn Transaction, amount uint64) error
}

// BlockRecord is what the block index keeps per main chain block.
type BlockRecord struct {
	ID crypto.Hash
	// Number of transactions in the block, base transaction included.
	TransactionCount uint64
	Timestamp        uint64
}

// BlockIndexStore keeps the main chain blocks by height.
type BlockIndexStore interface {
	NewTransaction(indexed bool) (Transaction, error)
	GetCurrentHeight() uint32
	GetGenesisHash() crypto.Hash
	GetBlockIDByHeight(height uint32) (crypto.Hash, error)
	GetBlockRecord(height uint32) (BlockRecord, error)
	// PushBlock appends record at the current height.
	PushBlock(txn Transaction, record BlockRecord) error
	// PopBlock removes the top block.
	PopBlock(txn Transaction) error
}
