package cryptonote

import (
	"github.com/pkg/errors"
	"github.com/vigcoin/coin/crypto"
)

// GetTransactionHash is the transaction id: FastHash over the full encoding.
func GetTransactionHash(tx *Transaction) (crypto.Hash, error) {
	blob, err := tx.ToCanonicalBytes()
	if err != nil {
		return crypto.NullHash, errors.Wrap(err, "get transaction hash")
	}
	return crypto.FastHash(blob), nil
}

// GetTransactionPrefixHash is the message signed by every input.
func GetTransactionPrefixHash(prefix *TransactionPrefix) (crypto.Hash, error) {
	blob, err := prefix.ToCanonicalBytes()
	if err != nil {
		return crypto.NullHash, errors.Wrap(
			err,
			"get transaction prefix hash",
		)
	}
	return crypto.FastHash(blob), nil
}

// ParseTransaction decodes blob and returns the transaction with its id and
// prefix hash.
func ParseTransaction(
	blob []byte,
) (*Transaction, crypto.Hash, crypto.Hash, error) {
	tx := &Transaction{}
	if err := tx.FromCanonicalBytes(blob); err != nil {
		return nil, crypto.NullHash, crypto.NullHash, errors.Wrap(
			err,
			"parse transaction",
		)
	}

	prefixHash, err := GetTransactionPrefixHash(&tx.TransactionPrefix)
	if err != nil {
		return nil, crypto.NullHash, crypto.NullHash, err
	}
	return tx, crypto.FastHash(blob), prefixHash, nil
}
