package mempool

import (
	"bytes"
	"math/bits"
	"time"

	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/cryptonote"
	"github.com/vigcoin/coin/types/consensus"
)

// Entry is a pending transaction together with the state the pool keeps
// about it.
type Entry struct {
	ID          crypto.Hash
	Transaction *cryptonote.Transaction
	BlobSize    uint64
	Fee         uint64
	ReceiveTime time.Time
	KeptByBlock bool
	Fusion      bool

	// Input check markers, see
	// consensus.TransactionInputsChecker.RecheckTransactionInputs.
	MaxUsedBlock    consensus.BlockInfo
	LastFailedBlock consensus.BlockInfo
}

func (e *Entry) clone() *Entry {
	cpy := *e
	return &cpy
}

// higherPriority orders entries by fee per byte, descending. Equal rates go
// to the smaller blob, then to the older entry, then to the lower id so that
// the order is total.
func higherPriority(a, b *Entry) bool {
	// a.Fee/a.BlobSize > b.Fee/b.BlobSize without division or overflow.
	aHi, aLo := bits.Mul64(a.Fee, b.BlobSize)
	bHi, bLo := bits.Mul64(b.Fee, a.BlobSize)
	if aHi != bHi {
		return aHi > bHi
	}
	if aLo != bLo {
		return aLo > bLo
	}
	if a.BlobSize != b.BlobSize {
		return a.BlobSize < b.BlobSize
	}
	if !a.ReceiveTime.Equal(b.ReceiveTime) {
		return a.ReceiveTime.Before(b.ReceiveTime)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

type globalOutput struct {
	amount uint64
	index  uint32
}

// blockTemplate collects the transactions picked for a block and refuses any
// that conflict with one already picked.
type blockTemplate struct {
	keyImages map[crypto.KeyImage]struct{}
	outputs   map[globalOutput]struct{}
	entries   []*Entry
}

func newBlockTemplate() *blockTemplate {
	return &blockTemplate{
		keyImages: map[crypto.KeyImage]struct{}{},
		outputs:   map[globalOutput]struct{}{},
	}
}

func (b *blockTemplate) add(entry *Entry) bool {
	images := map[crypto.KeyImage]struct{}{}
	outputs := map[globalOutput]struct{}{}
	for _, in := range entry.Transaction.Inputs {
		switch v := in.(type) {
		case cryptonote.KeyInput:
			if _, ok := b.keyImages[v.KeyImage]; ok {
				return false
			}
			images[v.KeyImage] = struct{}{}
		case cryptonote.MultisignatureInput:
			out := globalOutput{v.Amount, v.OutputIndex}
			if _, ok := b.outputs[out]; ok {
				return false
			}
			outputs[out] = struct{}{}
		}
	}

	for image := range images {
		b.keyImages[image] = struct{}{}
	}
	for out := range outputs {
		b.outputs[out] = struct{}{}
	}
	b.entries = append(b.entries, entry.clone())
	return true
}
