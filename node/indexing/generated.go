package indexing

import (
	"sync"

	"github.com/pkg/errors"
)

// GeneratedTransactionsIndex keeps the cumulative transaction count, coinbase
// included, at every height. It grows and shrinks only at the tail.
type GeneratedTransactionsIndex struct {
	mu     sync.RWMutex
	counts []uint64
}

func NewGeneratedTransactionsIndex() *GeneratedTransactionsIndex {
	return &GeneratedTransactionsIndex{}
}

// Add records a block at height holding txCount transactions. height must be
// the next height.
func (g *GeneratedTransactionsIndex) Add(height uint32, txCount uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if int(height) != len(g.counts) {
		return errors.Wrapf(
			ErrHeightMismatch,
			"add height %d, expected %d",
			height,
			len(g.counts),
		)
	}

	var last uint64
	if len(g.counts) > 0 {
		last = g.counts[len(g.counts)-1]
	}
	g.counts = append(g.counts, last+txCount)
	return nil
}

// Remove drops the tail height.
func (g *GeneratedTransactionsIndex) Remove(height uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.counts) == 0 || int(height) != len(g.counts)-1 {
		return errors.Wrapf(ErrHeightMismatch, "remove height %d", height)
	}
	g.counts = g.counts[:len(g.counts)-1]
	return nil
}

// Find returns the number of transactions up to and including height.
func (g *GeneratedTransactionsIndex) Find(height uint32) (uint64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if int(height) >= len(g.counts) {
		return 0, false
	}
	return g.counts[height], true
}

func (g *GeneratedTransactionsIndex) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counts = nil
}
