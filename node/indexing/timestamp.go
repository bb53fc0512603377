package indexing

import (
	"bytes"
	"sync"

	"github.com/google/btree"
	"github.com/vigcoin/coin/crypto"
)

type timestampEntry struct {
	timestamp uint64
	hash      crypto.Hash
}

func timestampLess(a, b timestampEntry) bool {
	if a.timestamp != b.timestamp {
		return a.timestamp < b.timestamp
	}
	return bytes.Compare(a.hash[:], b.hash[:]) < 0
}

// TimestampIndex orders block or transaction hashes by timestamp for range
// queries.
type TimestampIndex struct {
	mu    sync.RWMutex
	index *btree.BTreeG[timestampEntry]
}

func NewTimestampIndex() *TimestampIndex {
	return &TimestampIndex{index: btree.NewG(32, timestampLess)}
}

func (t *TimestampIndex) Add(timestamp uint64, hash crypto.Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.index.ReplaceOrInsert(timestampEntry{timestamp, hash})
}

func (t *TimestampIndex) Remove(timestamp uint64, hash crypto.Hash) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, found := t.index.Delete(timestampEntry{timestamp, hash})
	return found
}

// Find returns up to limit hashes with timestamps in [begin, end], oldest
// first, and the number of hashes in the range.
func (t *TimestampIndex) Find(
	begin uint64,
	end uint64,
	limit uint64,
) ([]crypto.Hash, uint64, error) {
	if begin > end {
		return nil, 0, ErrInvalidRange
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	hashes := []crypto.Hash{}
	var total uint64
	t.index.AscendGreaterOrEqual(
		timestampEntry{timestamp: begin},
		func(entry timestampEntry) bool {
			if entry.timestamp > end {
				return false
			}
			total++
			if uint64(len(hashes)) < limit {
				hashes = append(hashes, entry.hash)
			}
			return true
		},
	)
	return hashes, total, nil
}

func (t *TimestampIndex) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.index.Clear(false)
}
