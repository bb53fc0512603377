package crypto

import (
	"filippo.io/edwards25519"
	"filippo.io/edwards25519/field"
	"github.com/pkg/errors"
)

// Montgomery A coefficient of curve25519 and the square roots used by the
// Elligator-style map below. The sign of each root is irrelevant because the
// map normalizes the sign of x at the end.
var (
	feOne    = new(field.Element).One()
	feZero   = new(field.Element).Zero()
	feA      = new(field.Element).Mult32(feOne, 486662)
	feMA     = new(field.Element).Negate(feA)
	feMA2    = new(field.Element).Negate(new(field.Element).Square(feA))
	feSqrtM1 = mustSqrt(new(field.Element).Negate(feOne))

	// A·(A+2)
	feAA2 = new(field.Element).Multiply(
		feA,
		new(field.Element).Add(feA, new(field.Element).Mult32(feOne, 2)),
	)

	feFFFB1 = mustSqrt(new(field.Element).Negate(new(field.Element).Add(feAA2, feAA2)))
	feFFFB2 = mustSqrt(new(field.Element).Add(feAA2, feAA2))
	feFFFB3 = mustSqrt(new(field.Element).Negate(new(field.Element).Multiply(feSqrtM1, feAA2)))
	feFFFB4 = mustSqrt(new(field.Element).Multiply(feSqrtM1, feAA2))
)

func mustSqrt(x *field.Element) *field.Element {
	r, wasSquare := new(field.Element).SqrtRatio(x, feOne)
	if wasSquare != 1 {
		panic("crypto: constant is not a square")
	}
	return r
}

func feIsZero(x *field.Element) bool {
	return x.Equal(feZero) == 1
}

// feDivPowM1 computes (u/v)^((p+3)/8) as u·v^3·(u·v^7)^((p-5)/8).
func feDivPowM1(u, v *field.Element) *field.Element {
	v3 := new(field.Element).Square(v)
	v3.Multiply(v3, v)
	uv7 := new(field.Element).Square(v3)
	uv7.Multiply(uv7, v)
	uv7.Multiply(uv7, u)

	t := new(field.Element).Pow22523(uv7)
	t.Multiply(t, v3)
	return t.Multiply(t, u)
}

// fromFieldBytes maps 32 arbitrary bytes onto the curve. All 256 bits take
// part: the top bit contributes 2^255 = 19 mod p.
func fromFieldBytes(s [32]byte) (*edwards25519.Point, error) {
	u, err := new(field.Element).SetBytes(s[:])
	if err != nil {
		return nil, err
	}
	if s[31]&0x80 != 0 {
		u.Add(u, new(field.Element).Mult32(feOne, 19))
	}

	v := new(field.Element).Square(u)
	v.Add(v, v)
	w := new(field.Element).Add(v, feOne)
	x := new(field.Element).Square(w)
	y := new(field.Element).Multiply(feMA2, v)
	x.Add(x, y)

	rX := feDivPowM1(w, x)
	y.Square(rX)
	x.Multiply(y, x)
	y.Subtract(w, x)

	z := new(field.Element).Set(feMA)
	var sign int
	switch {
	case feIsZero(y):
		rX.Multiply(rX, feFFFB2)
		rX.Multiply(rX, u)
		z.Multiply(z, v)
	case feIsZero(new(field.Element).Add(w, x)):
		rX.Multiply(rX, feFFFB1)
		rX.Multiply(rX, u)
		z.Multiply(z, v)
	default:
		x.Multiply(x, feSqrtM1)
		y.Subtract(w, x)
		if feIsZero(y) {
			rX.Multiply(rX, feFFFB4)
		} else {
			rX.Multiply(rX, feFFFB3)
		}
		sign = 1
	}

	if rX.IsNegative() != sign {
		rX.Negate(rX)
	}

	rZ := new(field.Element).Add(z, w)
	rY := new(field.Element).Subtract(z, w)
	rX.Multiply(rX, rZ)

	// Projective (X:Y:Z) to extended (XZ:YZ:Z^2:XY).
	return new(edwards25519.Point).SetExtendedCoordinates(
		new(field.Element).Multiply(rX, rZ),
		new(field.Element).Multiply(rY, rZ),
		new(field.Element).Square(rZ),
		new(field.Element).Multiply(rX, rY),
	)
}

// hashToPoint is hash_to_ec: map FastHash(key) onto the curve and clear the
// cofactor.
func hashToPoint(key []byte) (*edwards25519.Point, error) {
	h := FastHash(key)
	p, err := fromFieldBytes(h)
	if err != nil {
		return nil, errors.Wrap(err, "hash to point")
	}
	return p.MultByCofactor(p), nil
}

// HashToPoint exposes hashToPoint on encoded keys.
func HashToPoint(key PublicKey) (PublicKey, error) {
	p, err := hashToPoint(key[:])
	if err != nil {
		return PublicKey{}, err
	}

	var out PublicKey
	copy(out[:], p.Bytes())
	return out, nil
}
