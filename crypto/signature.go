package crypto

import (
	"filippo.io/edwards25519"
	"github.com/pkg/errors"
)

// GenerateSignature produces a Schnorr signature over prefixHash:
// c = H(m || pub || k·G), r = k - c·sec.
func GenerateSignature(
	prefixHash Hash,
	pub PublicKey,
	sec SecretKey,
) (Signature, error) {
	x, err := decodeScalar(sec[:])
	if err != nil {
		return Signature{}, errors.Wrap(err, "generate signature")
	}
	k, err := RandomScalar()
	if err != nil {
		return Signature{}, errors.Wrap(err, "generate signature")
	}

	comm := new(edwards25519.Point).ScalarBaseMult(k)
	c := hashToScalar(prefixHash[:], pub[:], comm.Bytes())
	r := new(edwards25519.Scalar).Multiply(c, x)
	r.Subtract(k, r)

	var sig Signature
	copy(sig[:32], c.Bytes())
	copy(sig[32:], r.Bytes())
	return sig, nil
}

// CheckSignature verifies a signature produced by GenerateSignature.
func CheckSignature(prefixHash Hash, pub PublicKey, sig Signature) bool {
	p, err := decodePoint(pub[:])
	if err != nil {
		return false
	}
	c, err := decodeScalar(sig.C())
	if err != nil {
		return false
	}
	r, err := decodeScalar(sig.R())
	if err != nil {
		return false
	}

	comm := new(edwards25519.Point).VarTimeDoubleScalarBaseMult(c, p, r)
	if comm.Equal(edwards25519.NewIdentityPoint()) == 1 {
		return false
	}

	expected := hashToScalar(prefixHash[:], pub[:], comm.Bytes())
	return expected.Equal(c) == 1
}
