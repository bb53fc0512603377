package indexing

import (
	"slices"
	"sync"

	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/cryptonote"
)

// PaymentIDIndex maps payment ids to the transactions carrying them.
type PaymentIDIndex struct {
	mu    sync.RWMutex
	index map[crypto.Hash][]crypto.Hash
}

func NewPaymentIDIndex() *PaymentIDIndex {
	return &PaymentIDIndex{index: map[crypto.Hash][]crypto.Hash{}}
}

// AddTransaction indexes tx under the payment id in its extra, if any.
func (p *PaymentIDIndex) AddTransaction(
	tx *cryptonote.Transaction,
	id crypto.Hash,
) bool {
	paymentID := cryptonote.GetPaymentIDFromExtra(tx.Extra)
	if paymentID.IsNone() {
		return false
	}
	p.Add(paymentID.UnwrapOr(crypto.NullHash), id)
	return true
}

// RemoveTransaction undoes AddTransaction.
func (p *PaymentIDIndex) RemoveTransaction(
	tx *cryptonote.Transaction,
	id crypto.Hash,
) bool {
	paymentID := cryptonote.GetPaymentIDFromExtra(tx.Extra)
	if paymentID.IsNone() {
		return false
	}
	return p.Remove(paymentID.UnwrapOr(crypto.NullHash), id)
}

func (p *PaymentIDIndex) Add(paymentID crypto.Hash, txID crypto.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if slices.Contains(p.index[paymentID], txID) {
		return
	}
	p.index[paymentID] = append(p.index[paymentID], txID)
}

func (p *PaymentIDIndex) Remove(paymentID crypto.Hash, txID crypto.Hash) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := p.index[paymentID]
	i := slices.Index(ids, txID)
	if i < 0 {
		return false
	}
	ids = slices.Delete(ids, i, i+1)
	if len(ids) == 0 {
		delete(p.index, paymentID)
	} else {
		p.index[paymentID] = ids
	}
	return true
}

// Find returns the transactions with the payment id in insertion order.
func (p *PaymentIDIndex) Find(paymentID crypto.Hash) []crypto.Hash {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return slices.Clone(p.index[paymentID])
}

func (p *PaymentIDIndex) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.index = map[crypto.Hash][]crypto.Hash{}
}
