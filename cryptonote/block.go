package cryptonote

import (
	"github.com/pkg/errors"
	"github.com/vigcoin/coin/crypto"
)

type BlockHeader struct {
	MajorVersion      uint8
	MinorVersion      uint8
	Nonce             uint32
	Timestamp         uint64
	PreviousBlockHash crypto.Hash
}

type Block struct {
	BlockHeader
	BaseTransaction   Transaction
	TransactionHashes []crypto.Hash
}

func (h *BlockHeader) ToCanonicalBytes() ([]byte, error) {
	return h.appendCanonical(nil), nil
}

func (h *BlockHeader) appendCanonical(buf []byte) []byte {
	buf = appendVarint(buf, uint64(h.MajorVersion))
	buf = appendVarint(buf, uint64(h.MinorVersion))
	buf = appendVarint(buf, h.Timestamp)
	buf = append(buf, h.PreviousBlockHash[:]...)
	return append(
		buf,
		byte(h.Nonce),
		byte(h.Nonce>>8),
		byte(h.Nonce>>16),
		byte(h.Nonce>>24),
	)
}

func (h *BlockHeader) FromCanonicalBytes(data []byte) error {
	r := newReader(data)
	if err := h.readCanonical(r); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	if r.remaining() != 0 {
		return errors.Wrap(ErrTrailingData, "from canonical bytes")
	}
	return nil
}

func (h *BlockHeader) readCanonical(r *reader) error {
	var err error
	if h.MajorVersion, err = r.readUint8(); err != nil {
		return errors.Wrap(err, "major version")
	}
	if h.MinorVersion, err = r.readUint8(); err != nil {
		return errors.Wrap(err, "minor version")
	}
	if h.Timestamp, err = r.readUint64(); err != nil {
		return errors.Wrap(err, "timestamp")
	}
	if err = r.readInto(h.PreviousBlockHash[:]); err != nil {
		return errors.Wrap(err, "previous block hash")
	}
	if h.Nonce, err = r.readUint32LE(); err != nil {
		return errors.Wrap(err, "nonce")
	}
	return nil
}

// ToCanonicalBytes encodes the header, the base transaction and the hashes of
// the other transactions in the block. The base transaction always carries
// its full signature section because no length precedes the hash list.
func (b *Block) ToCanonicalBytes() ([]byte, error) {
	base := &b.BaseTransaction
	if requiredSignatures(base.Inputs) > 0 && len(base.Signatures) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "base transaction signatures")
	}
	buf := b.BlockHeader.appendCanonical(nil)

	buf, err := b.BaseTransaction.appendCanonical(buf)
	if err != nil {
		return nil, errors.Wrap(err, "base transaction")
	}

	buf = appendVarint(buf, uint64(len(b.TransactionHashes)))
	for _, h := range b.TransactionHashes {
		buf = append(buf, h[:]...)
	}
	return buf, nil
}

func (b *Block) FromCanonicalBytes(data []byte) error {
	r := newReader(data)
	if err := b.BlockHeader.readCanonical(r); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}

	base := &b.BaseTransaction
	if err := base.TransactionPrefix.readCanonical(r); err != nil {
		return errors.Wrap(err, "base transaction")
	}
	if err := base.readSignatures(r); err != nil {
		return errors.Wrap(err, "base transaction")
	}

	count, err := r.readCount(crypto.HashSize)
	if err != nil {
		return errors.Wrap(err, "transaction hash count")
	}
	b.TransactionHashes = nil
	if count > 0 {
		b.TransactionHashes = make([]crypto.Hash, count)
	}
	for i := range b.TransactionHashes {
		if err := r.readInto(b.TransactionHashes[i][:]); err != nil {
			return errors.Wrapf(err, "transaction hash %d", i)
		}
	}

	if r.remaining() != 0 {
		return errors.Wrap(ErrTrailingData, "from canonical bytes")
	}
	return nil
}

// HashingBlob is the header, the tree hash over the base transaction and the
// block's transactions, and the transaction count including the base one.
func (b *Block) HashingBlob() ([]byte, error) {
	baseHash, err := GetTransactionHash(&b.BaseTransaction)
	if err != nil {
		return nil, errors.Wrap(err, "hashing blob")
	}

	hashes := make([]crypto.Hash, 0, len(b.TransactionHashes)+1)
	hashes = append(hashes, baseHash)
	hashes = append(hashes, b.TransactionHashes...)
	root := crypto.TreeHash(hashes)

	buf := b.BlockHeader.appendCanonical(nil)
	buf = append(buf, root[:]...)
	buf = appendVarint(buf, uint64(len(hashes)))
	return buf, nil
}

// Hash is the block id: FastHash over the length-prefixed hashing blob.
func (b *Block) Hash() (crypto.Hash, error) {
	blob, err := b.HashingBlob()
	if err != nil {
		return crypto.NullHash, err
	}
	return crypto.FastHash(appendVarint(nil, uint64(len(blob))), blob), nil
}
