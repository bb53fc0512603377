package cryptonote

import (
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/pkg/errors"
	"github.com/vigcoin/coin/crypto"
)

// Extra field tags.
const (
	ExtraTagPadding   byte = 0x00
	ExtraTagPublicKey byte = 0x01
	ExtraTagNonce     byte = 0x02

	ExtraNoncePaymentID byte = 0x00

	ExtraPaddingMaxCount = 255
	ExtraNonceMaxCount   = 255
)

// ExtraField is one of ExtraPadding, ExtraPublicKey or ExtraNonce.
type ExtraField interface {
	isExtraField()
}

// ExtraPadding counts the padding bytes including its tag. Padding runs to
// the end of extra.
type ExtraPadding struct {
	Size int
}

type ExtraPublicKey struct {
	PublicKey crypto.PublicKey
}

type ExtraNonce struct {
	Nonce []byte
}

func (ExtraPadding) isExtraField()   {}
func (ExtraPublicKey) isExtraField() {}
func (ExtraNonce) isExtraField()     {}

// ParseExtra splits extra into its tagged fields. Unknown tags, non-zero
// padding and truncated fields fail with ErrMalformedExtra.
func ParseExtra(extra []byte) ([]ExtraField, error) {
	fields, err := parseExtra(extra)
	if err != nil {
		return nil, errors.Wrap(err, "parse extra")
	}
	return fields, nil
}

// parseExtra returns the fields decoded before any error.
func parseExtra(extra []byte) ([]ExtraField, error) {
	var fields []ExtraField
	r := newReader(extra)

	for r.remaining() > 0 {
		tag, _ := r.readByte()
		switch tag {
		case ExtraTagPadding:
			size := 1
			for ; r.remaining() > 0 && size <= ExtraPaddingMaxCount; size++ {
				b, _ := r.readByte()
				if b != 0 {
					return fields, ErrMalformedExtra
				}
			}
			if size > ExtraPaddingMaxCount {
				return fields, ErrMalformedExtra
			}
			fields = append(fields, ExtraPadding{Size: size})
		case ExtraTagPublicKey:
			var f ExtraPublicKey
			if err := r.readInto(f.PublicKey[:]); err != nil {
				return fields, ErrMalformedExtra
			}
			fields = append(fields, f)
		case ExtraTagNonce:
			size, err := r.readByte()
			if err != nil {
				return fields, ErrMalformedExtra
			}
			nonce, err := r.readBytes(int(size))
			if err != nil {
				return fields, ErrMalformedExtra
			}
			fields = append(fields, ExtraNonce{Nonce: nonce})
		default:
			return fields, ErrMalformedExtra
		}
	}

	return fields, nil
}

// AddTransactionPublicKeyToExtra appends a public key field.
func AddTransactionPublicKeyToExtra(
	extra []byte,
	key crypto.PublicKey,
) []byte {
	extra = append(extra, ExtraTagPublicKey)
	return append(extra, key[:]...)
}

// AddExtraNonceToExtra appends a nonce field. Nonces are at most
// ExtraNonceMaxCount bytes.
func AddExtraNonceToExtra(extra []byte, nonce []byte) ([]byte, error) {
	if len(nonce) > ExtraNonceMaxCount {
		return nil, errors.Wrap(ErrMalformedExtra, "nonce too long")
	}
	extra = append(extra, ExtraTagNonce, byte(len(nonce)))
	return append(extra, nonce...), nil
}

// SetPaymentIDToNonce encodes a payment id as nonce contents.
func SetPaymentIDToNonce(paymentID crypto.Hash) []byte {
	nonce := make([]byte, 0, 1+crypto.HashSize)
	nonce = append(nonce, ExtraNoncePaymentID)
	return append(nonce, paymentID[:]...)
}

// GetPaymentIDFromNonce extracts a payment id from nonce contents.
func GetPaymentIDFromNonce(nonce []byte) fn.Option[crypto.Hash] {
	if len(nonce) != 1+crypto.HashSize || nonce[0] != ExtraNoncePaymentID {
		return fn.None[crypto.Hash]()
	}
	var id crypto.Hash
	copy(id[:], nonce[1:])
	return fn.Some(id)
}

// GetTransactionPublicKeyFromExtra returns the first public key field. Fields
// after a malformed region are not considered.
func GetTransactionPublicKeyFromExtra(
	extra []byte,
) fn.Option[crypto.PublicKey] {
	fields, _ := parseExtra(extra)
	for _, f := range fields {
		if pk, ok := f.(ExtraPublicKey); ok {
			return fn.Some(pk.PublicKey)
		}
	}
	return fn.None[crypto.PublicKey]()
}

// GetPaymentIDFromExtra returns the payment id of the first nonce field, if
// that nonce holds one.
func GetPaymentIDFromExtra(extra []byte) fn.Option[crypto.Hash] {
	fields, _ := parseExtra(extra)
	for _, f := range fields {
		if n, ok := f.(ExtraNonce); ok {
			return GetPaymentIDFromNonce(n.Nonce)
		}
	}
	return fn.None[crypto.Hash]()
}
