package store

import (
	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/types/consensus"
)

// PoolRecord is the persisted form of a pool entry.
type PoolRecord struct {
	ID              crypto.Hash
	Blob            []byte
	Fee             uint64
	ReceiveTimeNano int64 // Unix nanoseconds
	KeptByBlock     bool
	MaxUsedBlock    consensus.BlockInfo
	LastFailedBlock consensus.BlockInfo
}

type DeletedRecord struct {
	ID        crypto.Hash
	DeletedAt int64
}

// PoolStore persists the pool between restarts. SaveEntries replaces the
// previous snapshot.
type PoolStore interface {
	SaveEntries(entries []*PoolRecord, deleted []DeletedRecord) error
	LoadEntries() ([]*PoolRecord, []DeletedRecord, error)
}
