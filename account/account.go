package account

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/vigcoin/coin/crypto"
)

const addressChecksumSize = 4

var (
	ErrAddressChecksum = errors.New("address checksum mismatch")
	ErrAddressPrefix   = errors.New("address prefix mismatch")
)

// Address is the public half of an account: the spend key receives funds and
// the view key lets the owner find them.
type Address struct {
	SpendPublicKey crypto.PublicKey
	ViewPublicKey  crypto.PublicKey
}

type AccountKeys struct {
	Address        Address
	SpendSecretKey crypto.SecretKey
	ViewSecretKey  crypto.SecretKey
}

// GenerateAccountKeys creates an account from a random spend key.
func GenerateAccountKeys() (AccountKeys, error) {
	spend, err := crypto.GenerateKeys()
	if err != nil {
		return AccountKeys{}, errors.Wrap(err, "generate account keys")
	}
	return FromSpendSecret(spend.Secret)
}

// FromSpendSecret restores an account. The view secret is the spend secret
// hashed to a scalar.
func FromSpendSecret(spendSecret crypto.SecretKey) (AccountKeys, error) {
	spendPublic, err := crypto.SecretKeyToPublicKey(spendSecret)
	if err != nil {
		return AccountKeys{}, errors.Wrap(err, "from spend secret")
	}

	viewSecret := crypto.HashToScalar(spendSecret[:])
	viewPublic, err := crypto.SecretKeyToPublicKey(viewSecret)
	if err != nil {
		return AccountKeys{}, errors.Wrap(err, "from spend secret")
	}

	return AccountKeys{
		Address: Address{
			SpendPublicKey: spendPublic,
			ViewPublicKey:  viewPublic,
		},
		SpendSecretKey: spendSecret,
		ViewSecretKey:  viewSecret,
	}, nil
}

// String renders the address as varint(prefix) || spend || view || checksum
// in block base58.
func (a Address) String(prefix uint64) string {
	payload := binary.AppendUvarint(nil, prefix)
	payload = append(payload, a.SpendPublicKey[:]...)
	payload = append(payload, a.ViewPublicKey[:]...)

	checksum := crypto.FastHash(payload)
	payload = append(payload, checksum[:addressChecksumSize]...)
	return encodeBlocks(payload)
}

// ParseAddress decodes an address and checks its prefix, checksum and keys.
func ParseAddress(s string, prefix uint64) (Address, error) {
	raw, err := decodeBlocks(s)
	if err != nil {
		return Address{}, errors.Wrap(err, "parse address")
	}
	if len(raw) <= addressChecksumSize {
		return Address{}, errors.Wrap(ErrInvalidBase58, "parse address")
	}

	payload := raw[:len(raw)-addressChecksumSize]
	checksum := crypto.FastHash(payload)
	if !bytes.Equal(checksum[:addressChecksumSize], raw[len(payload):]) {
		return Address{}, errors.Wrap(ErrAddressChecksum, "parse address")
	}

	tag, n := binary.Uvarint(payload)
	if n <= 0 {
		return Address{}, errors.Wrap(ErrInvalidBase58, "parse address")
	}
	if tag != prefix {
		return Address{}, errors.Wrap(ErrAddressPrefix, "parse address")
	}

	keys := payload[n:]
	if len(keys) != 2*crypto.KeySize {
		return Address{}, errors.Wrap(ErrInvalidBase58, "parse address")
	}

	var addr Address
	copy(addr.SpendPublicKey[:], keys[:crypto.KeySize])
	copy(addr.ViewPublicKey[:], keys[crypto.KeySize:])
	if !crypto.CheckKey(addr.SpendPublicKey) ||
		!crypto.CheckKey(addr.ViewPublicKey) {
		return Address{}, errors.Wrap(crypto.ErrInvalidPoint, "parse address")
	}

	return addr, nil
}
