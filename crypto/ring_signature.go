package crypto

import (
	"filippo.io/edwards25519"
	"github.com/pkg/errors"
)

var (
	ErrEmptyRing          = errors.New("empty ring")
	ErrSecretIndex        = errors.New("secret index out of range")
	ErrSecretKeyNotInRing = errors.New("secret key does not match ring member")
)

// ringBuffer accumulates prefixHash || a_0 || b_0 || ... || a_n-1 || b_n-1.
type ringBuffer []byte

func newRingBuffer(prefixHash Hash, n int) ringBuffer {
	buf := make(ringBuffer, 0, HashSize+2*KeySize*n)
	return append(buf, prefixHash[:]...)
}

func (b ringBuffer) add(a, bb *edwards25519.Point) ringBuffer {
	b = append(b, a.Bytes()...)
	return append(b, bb.Bytes()...)
}

// GenerateRingSignature proves knowledge of the secret key of
// ring[secIndex] without revealing the index. For every member i the
// commitments are
//
//	a_i = c_i·P_i + r_i·G
//	b_i = r_i·Hp(P_i) + c_i·I
//
// where the real member uses a_s = k·G, b_s = k·Hp(P_s), and the ring is
// closed with c_s = H(m, a, b) - sum(c_i) and r_s = k - c_s·x.
func GenerateRingSignature(
	prefixHash Hash,
	image KeyImage,
	ring []PublicKey,
	sec SecretKey,
	secIndex int,
) ([]Signature, error) {
	if len(ring) == 0 {
		return nil, ErrEmptyRing
	}
	if secIndex < 0 || secIndex >= len(ring) {
		return nil, ErrSecretIndex
	}

	x, err := decodeScalar(sec[:])
	if err != nil {
		return nil, errors.Wrap(err, "generate ring signature")
	}
	if !pointEquals(
		new(edwards25519.Point).ScalarBaseMult(x),
		ring[secIndex][:],
	) {
		return nil, ErrSecretKeyNotInRing
	}

	imagePoint, err := decodePoint(image[:])
	if err != nil {
		return nil, errors.Wrap(err, "generate ring signature")
	}

	sigs := make([]Signature, len(ring))
	buf := newRingBuffer(prefixHash, len(ring))
	sum := edwards25519.NewScalar()
	var k *edwards25519.Scalar

	for i, pub := range ring {
		p, err := decodePoint(pub[:])
		if err != nil {
			return nil, errors.Wrapf(err, "generate ring signature: member %d", i)
		}
		hp, err := hashToPoint(pub[:])
		if err != nil {
			return nil, errors.Wrap(err, "generate ring signature")
		}

		if i == secIndex {
			k, err = RandomScalar()
			if err != nil {
				return nil, errors.Wrap(err, "generate ring signature")
			}
			buf = buf.add(
				new(edwards25519.Point).ScalarBaseMult(k),
				new(edwards25519.Point).ScalarMult(k, hp),
			)
			continue
		}

		c, err := RandomScalar()
		if err != nil {
			return nil, errors.Wrap(err, "generate ring signature")
		}
		r, err := RandomScalar()
		if err != nil {
			return nil, errors.Wrap(err, "generate ring signature")
		}

		a, b := ringCommitments(c, r, p, hp, imagePoint)
		buf = buf.add(a, b)
		sum.Add(sum, c)
		copy(sigs[i][:32], c.Bytes())
		copy(sigs[i][32:], r.Bytes())
	}

	h := hashToScalar(buf)
	cs := new(edwards25519.Scalar).Subtract(h, sum)
	rs := new(edwards25519.Scalar).Multiply(cs, x)
	rs.Subtract(k, rs)
	copy(sigs[secIndex][:32], cs.Bytes())
	copy(sigs[secIndex][32:], rs.Bytes())

	return sigs, nil
}

// CheckRingSignature recomputes every commitment pair and accepts iff
// H(m, a, b) - sum(c_i) is zero. Any undecodable point or non-canonical
// scalar rejects.
func CheckRingSignature(
	prefixHash Hash,
	image KeyImage,
	ring []PublicKey,
	sigs []Signature,
) bool {
	if len(ring) == 0 || len(ring) != len(sigs) {
		return false
	}

	imagePoint, err := decodePoint(image[:])
	if err != nil {
		return false
	}

	buf := newRingBuffer(prefixHash, len(ring))
	sum := edwards25519.NewScalar()
	for i, pub := range ring {
		c, err := decodeScalar(sigs[i].C())
		if err != nil {
			return false
		}
		r, err := decodeScalar(sigs[i].R())
		if err != nil {
			return false
		}
		p, err := decodePoint(pub[:])
		if err != nil {
			return false
		}
		hp, err := hashToPoint(pub[:])
		if err != nil {
			return false
		}

		a, b := ringCommitments(c, r, p, hp, imagePoint)
		buf = buf.add(a, b)
		sum.Add(sum, c)
	}

	h := hashToScalar(buf)
	h.Subtract(h, sum)
	return h.Equal(edwards25519.NewScalar()) == 1
}

// ringCommitments computes (c·P + r·G, r·Hp(P) + c·I). All inputs are public.
func ringCommitments(
	c, r *edwards25519.Scalar,
	p, hp, image *edwards25519.Point,
) (*edwards25519.Point, *edwards25519.Point) {
	a := new(edwards25519.Point).VarTimeDoubleScalarBaseMult(c, p, r)
	b := new(edwards25519.Point).VarTimeMultiScalarMult(
		[]*edwards25519.Scalar{r, c},
		[]*edwards25519.Point{hp, image},
	)
	return a, b
}

func pointEquals(p *edwards25519.Point, encoded []byte) bool {
	q, err := decodePoint(encoded)
	if err != nil {
		return false
	}
	return p.Equal(q) == 1
}
