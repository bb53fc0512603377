package crypto

import (
	"encoding/binary"

	"filippo.io/edwards25519"
	"github.com/pkg/errors"
)

// GenerateKeyDerivation computes 8·(sec·key). The sender calls it with the
// recipient's view public key and the transaction secret key; the recipient
// with the transaction public key and its view secret key.
func GenerateKeyDerivation(
	key PublicKey,
	sec SecretKey,
) (KeyDerivation, error) {
	p, err := decodePoint(key[:])
	if err != nil {
		return KeyDerivation{}, errors.Wrap(err, "generate key derivation")
	}
	s, err := decodeScalar(sec[:])
	if err != nil {
		return KeyDerivation{}, errors.Wrap(err, "generate key derivation")
	}

	p = new(edwards25519.Point).ScalarMult(s, p)
	p.MultByCofactor(p)

	var d KeyDerivation
	copy(d[:], p.Bytes())
	return d, nil
}

// derivationToScalar is H_s(derivation || varint(outputIndex) || suffix).
func derivationToScalar(
	derivation KeyDerivation,
	outputIndex uint64,
	suffix []byte,
) *edwards25519.Scalar {
	buf := make([]byte, 0, KeySize+binary.MaxVarintLen64+len(suffix))
	buf = append(buf, derivation[:]...)
	buf = binary.AppendUvarint(buf, outputIndex)
	buf = append(buf, suffix...)
	return hashToScalar(buf)
}

// DerivePublicKey returns the one-time output key base + H_s(...)·G.
func DerivePublicKey(
	derivation KeyDerivation,
	outputIndex uint64,
	base PublicKey,
) (PublicKey, error) {
	return DerivePublicKeyWithSuffix(derivation, outputIndex, base, nil)
}

func DerivePublicKeyWithSuffix(
	derivation KeyDerivation,
	outputIndex uint64,
	base PublicKey,
	suffix []byte,
) (PublicKey, error) {
	p, err := decodePoint(base[:])
	if err != nil {
		return PublicKey{}, errors.Wrap(err, "derive public key")
	}

	s := derivationToScalar(derivation, outputIndex, suffix)
	p.Add(p, new(edwards25519.Point).ScalarBaseMult(s))

	var out PublicKey
	copy(out[:], p.Bytes())
	return out, nil
}

// DeriveSecretKey returns the one-time output secret base + H_s(...).
func DeriveSecretKey(
	derivation KeyDerivation,
	outputIndex uint64,
	base SecretKey,
) (SecretKey, error) {
	return DeriveSecretKeyWithSuffix(derivation, outputIndex, base, nil)
}

func DeriveSecretKeyWithSuffix(
	derivation KeyDerivation,
	outputIndex uint64,
	base SecretKey,
	suffix []byte,
) (SecretKey, error) {
	b, err := decodeScalar(base[:])
	if err != nil {
		return SecretKey{}, errors.Wrap(err, "derive secret key")
	}

	s := derivationToScalar(derivation, outputIndex, suffix)
	s.Add(s, b)

	var out SecretKey
	copy(out[:], s.Bytes())
	return out, nil
}

// UnderivePublicKey recovers the spend public key from a one-time output key,
// letting a view-only wallet recognize its outputs.
func UnderivePublicKey(
	derivation KeyDerivation,
	outputIndex uint64,
	outputKey PublicKey,
) (PublicKey, error) {
	p, err := decodePoint(outputKey[:])
	if err != nil {
		return PublicKey{}, errors.Wrap(err, "underive public key")
	}

	s := derivationToScalar(derivation, outputIndex, nil)
	p.Subtract(p, new(edwards25519.Point).ScalarBaseMult(s))

	var out PublicKey
	copy(out[:], p.Bytes())
	return out, nil
}
