package cryptonote

import (
	"github.com/vigcoin/coin/crypto"
)

// Variant tags for inputs and output targets.
const (
	TagBaseInput           byte = 0xff
	TagKeyInput            byte = 0x02
	TagMultisignatureInput byte = 0x03

	TagKeyOutput            byte = 0x02
	TagMultisignatureOutput byte = 0x03
)

const CurrentTransactionVersion uint8 = 1

// TransactionInput is one of BaseInput, KeyInput or MultisignatureInput.
type TransactionInput interface {
	Tag() byte
	isTransactionInput()
}

// BaseInput is the coinbase input of a block's base transaction.
type BaseInput struct {
	BlockIndex uint32
}

// KeyInput spends one output out of a ring of same-amount outputs.
// OutputIndexes are delta encoded: the first entry is absolute and each
// following entry is the distance from the previous one.
type KeyInput struct {
	Amount        uint64
	OutputIndexes []uint32
	KeyImage      crypto.KeyImage
}

// MultisignatureInput spends the multisignature output with the given global
// index for the amount.
type MultisignatureInput struct {
	Amount         uint64
	SignatureCount uint8
	OutputIndex    uint32
}

func (BaseInput) Tag() byte           { return TagBaseInput }
func (KeyInput) Tag() byte            { return TagKeyInput }
func (MultisignatureInput) Tag() byte { return TagMultisignatureInput }

func (BaseInput) isTransactionInput()           {}
func (KeyInput) isTransactionInput()            {}
func (MultisignatureInput) isTransactionInput() {}

// TransactionOutputTarget is one of KeyOutput or MultisignatureOutput.
type TransactionOutputTarget interface {
	Tag() byte
	isTransactionOutputTarget()
}

type KeyOutput struct {
	Key crypto.PublicKey
}

type MultisignatureOutput struct {
	Keys                   []crypto.PublicKey
	RequiredSignatureCount uint8
}

func (KeyOutput) Tag() byte            { return TagKeyOutput }
func (MultisignatureOutput) Tag() byte { return TagMultisignatureOutput }

func (KeyOutput) isTransactionOutputTarget()            {}
func (MultisignatureOutput) isTransactionOutputTarget() {}

type TransactionOutput struct {
	Amount uint64
	Target TransactionOutputTarget
}

type TransactionPrefix struct {
	Version    uint8
	UnlockTime uint64
	Inputs     []TransactionInput
	Outputs    []TransactionOutput
	Extra      []byte
}

// Transaction is a prefix plus one signature list per input. A nil
// Signatures field denotes a prefix-only transaction.
type Transaction struct {
	TransactionPrefix
	Signatures [][]crypto.Signature
}

// RequiredSignatureCount returns how many signatures the input carries.
func RequiredSignatureCount(in TransactionInput) int {
	switch v := in.(type) {
	case KeyInput:
		return len(v.OutputIndexes)
	case MultisignatureInput:
		return int(v.SignatureCount)
	default:
		return 0
	}
}

// InputAmount returns the amount spent by an input, zero for coinbase.
func InputAmount(in TransactionInput) uint64 {
	switch v := in.(type) {
	case KeyInput:
		return v.Amount
	case MultisignatureInput:
		return v.Amount
	default:
		return 0
	}
}

// KeyImages lists the key images of all key inputs, in input order.
func (p *TransactionPrefix) KeyImages() []crypto.KeyImage {
	var images []crypto.KeyImage
	for _, in := range p.Inputs {
		if k, ok := in.(KeyInput); ok {
			images = append(images, k.KeyImage)
		}
	}
	return images
}

// IsCoinbase reports whether the prefix has exactly one input and it is a
// BaseInput.
func (p *TransactionPrefix) IsCoinbase() bool {
	if len(p.Inputs) != 1 {
		return false
	}
	_, ok := p.Inputs[0].(BaseInput)
	return ok
}

// AbsoluteOutputOffsets converts delta-encoded offsets to global indexes.
func AbsoluteOutputOffsets(relative []uint32) []uint32 {
	out := make([]uint32, len(relative))
	var acc uint32
	for i, off := range relative {
		acc += off
		out[i] = acc
	}
	return out
}

// RelativeOutputOffsets converts ascending global indexes to delta encoding.
func RelativeOutputOffsets(absolute []uint32) []uint32 {
	out := make([]uint32, len(absolute))
	var prev uint32
	for i, idx := range absolute {
		out[i] = idx - prev
		prev = idx
	}
	return out
}
