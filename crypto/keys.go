package crypto

import (
	"crypto/rand"
	"encoding/hex"

	"filippo.io/edwards25519"
	"github.com/pkg/errors"
)

const (
	KeySize       = 32
	SignatureSize = 64
)

type PublicKey [KeySize]byte

type SecretKey [KeySize]byte

// KeyDerivation is the shared secret 8·a·R between a transaction key and a
// view key.
type KeyDerivation [KeySize]byte

type KeyImage [KeySize]byte

// Signature holds a (c, r) scalar pair.
type Signature [SignatureSize]byte

type KeyPair struct {
	Public PublicKey
	Secret SecretKey
}

func (k PublicKey) String() string     { return hex.EncodeToString(k[:]) }
func (k KeyImage) String() string      { return hex.EncodeToString(k[:]) }
func (k KeyDerivation) String() string { return hex.EncodeToString(k[:]) }

// C returns the challenge half of the signature.
func (s *Signature) C() []byte { return s[:32] }

// R returns the response half of the signature.
func (s *Signature) R() []byte { return s[32:] }

func PublicKeyFromString(s string) (PublicKey, error) {
	var k PublicKey
	if err := decodeHex(s, k[:]); err != nil {
		return k, errors.Wrap(err, "public key from string")
	}
	return k, nil
}

func SecretKeyFromString(s string) (SecretKey, error) {
	var k SecretKey
	if err := decodeHex(s, k[:]); err != nil {
		return k, errors.Wrap(err, "secret key from string")
	}
	return k, nil
}

func decodeHex(s string, out []byte) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) != len(out) {
		return errors.Errorf("expected %d bytes, got %d", len(out), len(b))
	}
	copy(out, b)
	return nil
}

// RandomScalar returns a uniformly random scalar reduced from 64 bytes of
// entropy.
func RandomScalar() (*edwards25519.Scalar, error) {
	var buf [64]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, errors.Wrap(err, "random scalar")
	}
	s, err := new(edwards25519.Scalar).SetUniformBytes(buf[:])
	if err != nil {
		return nil, errors.Wrap(err, "random scalar")
	}
	return s, nil
}

// GenerateKeys creates a fresh key pair with Public = Secret·G.
func GenerateKeys() (KeyPair, error) {
	s, err := RandomScalar()
	if err != nil {
		return KeyPair{}, errors.Wrap(err, "generate keys")
	}

	var kp KeyPair
	copy(kp.Secret[:], s.Bytes())
	copy(
		kp.Public[:],
		new(edwards25519.Point).ScalarBaseMult(s).Bytes(),
	)
	return kp, nil
}

// SecretKeyToPublicKey computes sec·G. The secret key must be a canonical
// scalar.
func SecretKeyToPublicKey(sec SecretKey) (PublicKey, error) {
	s, err := decodeScalar(sec[:])
	if err != nil {
		return PublicKey{}, errors.Wrap(err, "secret key to public key")
	}

	var pub PublicKey
	copy(pub[:], new(edwards25519.Point).ScalarBaseMult(s).Bytes())
	return pub, nil
}

// CheckKey reports whether the public key decodes to a curve point.
func CheckKey(key PublicKey) bool {
	_, err := decodePoint(key[:])
	return err == nil
}
