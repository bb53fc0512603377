package crypto

import (
	"filippo.io/edwards25519"
	"github.com/pkg/errors"
)

// GenerateKeyImage computes sec·Hp(pub). For a given output the image is the
// same no matter who computes it, which is what exposes a double spend.
func GenerateKeyImage(pub PublicKey, sec SecretKey) (KeyImage, error) {
	s, err := decodeScalar(sec[:])
	if err != nil {
		return KeyImage{}, errors.Wrap(err, "generate key image")
	}
	hp, err := hashToPoint(pub[:])
	if err != nil {
		return KeyImage{}, errors.Wrap(err, "generate key image")
	}

	var image KeyImage
	copy(image[:], new(edwards25519.Point).ScalarMult(s, hp).Bytes())
	return image, nil
}

// CheckKeyImage reports whether the image decodes and lies in the prime-order
// subgroup.
func CheckKeyImage(image KeyImage) bool {
	return IsInPrimeSubgroup(image)
}
