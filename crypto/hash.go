package crypto

import (
	"encoding/hex"

	"filippo.io/edwards25519"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

const HashSize = 32

type Hash [HashSize]byte

var NullHash = Hash{}

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

func HashFromString(s string) (Hash, error) {
	var h Hash
	if err := decodeHex(s, h[:]); err != nil {
		return h, errors.Wrap(err, "hash from string")
	}
	return h, nil
}

// FastHash is cn_fast_hash, the original Keccak-256 without NIST padding,
// over the concatenation of data.
func FastHash(data ...[]byte) Hash {
	k := sha3.NewLegacyKeccak256()
	for _, d := range data {
		k.Write(d)
	}

	var h Hash
	k.Sum(h[:0])
	return h
}

func hashToScalar(data ...[]byte) *edwards25519.Scalar {
	h := FastHash(data...)

	var wide [64]byte
	copy(wide[:], h[:])
	s, err := new(edwards25519.Scalar).SetUniformBytes(wide[:])
	if err != nil {
		// SetUniformBytes only fails on a length mismatch.
		panic(err)
	}
	return s
}

// HashToScalar hashes data with FastHash and reduces the result modulo the
// group order.
func HashToScalar(data ...[]byte) SecretKey {
	var s SecretKey
	copy(s[:], hashToScalar(data...).Bytes())
	return s
}

// TreeHash computes the Merkle root used for block identity. A single hash is
// its own root; an empty list has the null hash as its root.
func TreeHash(hashes []Hash) Hash {
	switch len(hashes) {
	case 0:
		return NullHash
	case 1:
		return hashes[0]
	case 2:
		return FastHash(hashes[0][:], hashes[1][:])
	}

	count := len(hashes)
	cnt := treeHashCount(count)
	ints := make([]Hash, cnt)
	copy(ints, hashes[:2*cnt-count])

	for i, j := 2*cnt-count, 2*cnt-count; j < cnt; i, j = i+2, j+1 {
		ints[j] = FastHash(hashes[i][:], hashes[i+1][:])
	}

	for cnt > 2 {
		cnt >>= 1
		for i, j := 0, 0; j < cnt; i, j = i+2, j+1 {
			ints[j] = FastHash(ints[i][:], ints[i+1][:])
		}
	}

	return FastHash(ints[0][:], ints[1][:])
}

// treeHashCount returns the largest power of two strictly below count.
func treeHashCount(count int) int {
	pow := 2
	for pow < count {
		pow <<= 1
	}
	return pow >> 1
}
