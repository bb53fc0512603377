package crypto

import (
	"filippo.io/edwards25519"
	"github.com/pkg/errors"
)

var (
	ErrInvalidPoint  = errors.New("invalid point")
	ErrInvalidScalar = errors.New("invalid scalar")
)

// scalarOne and scalarMinusOne are used to compute L·P as (L-1)·P + P.
var (
	scalarOne      = mustScalar([]byte{1})
	scalarMinusOne = new(edwards25519.Scalar).Negate(scalarOne)
)

func mustScalar(le []byte) *edwards25519.Scalar {
	var b [32]byte
	copy(b[:], le)
	s, err := new(edwards25519.Scalar).SetCanonicalBytes(b[:])
	if err != nil {
		panic(err)
	}
	return s
}

func decodePoint(b []byte) (*edwards25519.Point, error) {
	p, err := new(edwards25519.Point).SetBytes(b)
	if err != nil {
		return nil, ErrInvalidPoint
	}
	return p, nil
}

func decodeScalar(b []byte) (*edwards25519.Scalar, error) {
	s, err := new(edwards25519.Scalar).SetCanonicalBytes(b)
	if err != nil {
		return nil, ErrInvalidScalar
	}
	return s, nil
}

// IsCanonicalScalar reports whether b encodes an integer in [0, L).
func IsCanonicalScalar(b []byte) bool {
	if len(b) != 32 {
		return false
	}
	_, err := decodeScalar(b)
	return err == nil
}

// IsValidPoint reports whether b decodes to a point on the curve.
func IsValidPoint(b []byte) bool {
	if len(b) != 32 {
		return false
	}
	_, err := decodePoint(b)
	return err == nil
}

// ScalarMultBase computes s·G in constant time.
func ScalarMultBase(s SecretKey) (PublicKey, error) {
	return SecretKeyToPublicKey(s)
}

// ScalarMult computes s·P in constant time.
func ScalarMult(s SecretKey, p PublicKey) (PublicKey, error) {
	sc, err := decodeScalar(s[:])
	if err != nil {
		return PublicKey{}, errors.Wrap(err, "scalar mult")
	}
	pt, err := decodePoint(p[:])
	if err != nil {
		return PublicKey{}, errors.Wrap(err, "scalar mult")
	}

	var out PublicKey
	copy(out[:], new(edwards25519.Point).ScalarMult(sc, pt).Bytes())
	return out, nil
}

func AddKeys(a, b PublicKey) (PublicKey, error) {
	pa, err := decodePoint(a[:])
	if err != nil {
		return PublicKey{}, errors.Wrap(err, "add keys")
	}
	pb, err := decodePoint(b[:])
	if err != nil {
		return PublicKey{}, errors.Wrap(err, "add keys")
	}

	var out PublicKey
	copy(out[:], new(edwards25519.Point).Add(pa, pb).Bytes())
	return out, nil
}

func SubKeys(a, b PublicKey) (PublicKey, error) {
	pa, err := decodePoint(a[:])
	if err != nil {
		return PublicKey{}, errors.Wrap(err, "sub keys")
	}
	pb, err := decodePoint(b[:])
	if err != nil {
		return PublicKey{}, errors.Wrap(err, "sub keys")
	}

	var out PublicKey
	copy(out[:], new(edwards25519.Point).Subtract(pa, pb).Bytes())
	return out, nil
}

// IsInPrimeSubgroup reports whether L·P is the identity, i.e. P carries no
// small-order component.
func IsInPrimeSubgroup(key [32]byte) bool {
	p, err := decodePoint(key[:])
	if err != nil {
		return false
	}

	lp := new(edwards25519.Point).ScalarMult(scalarMinusOne, p)
	lp.Add(lp, p)
	return lp.Equal(edwards25519.NewIdentityPoint()) == 1
}
