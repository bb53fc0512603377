package validator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/cryptonote"
)

func validTx() *cryptonote.Transaction {
	key := mustKeyPair().Public
	return &cryptonote.Transaction{
		TransactionPrefix: cryptonote.TransactionPrefix{
			Version: 1,
			Inputs: []cryptonote.TransactionInput{
				cryptonote.KeyInput{
					Amount:        100,
					OutputIndexes: []uint32{1, 2},
					KeyImage:      crypto.KeyImage{1},
				},
				cryptonote.MultisignatureInput{
					Amount:         50,
					SignatureCount: 1,
					OutputIndex:    3,
				},
			},
			Outputs: []cryptonote.TransactionOutput{
				{Amount: 60, Target: cryptonote.KeyOutput{Key: key}},
				{
					Amount: 80,
					Target: cryptonote.MultisignatureOutput{
						Keys:                   []crypto.PublicKey{key, key},
						RequiredSignatureCount: 2,
					},
				},
			},
		},
		Signatures: [][]crypto.Signature{make([]crypto.Signature, 2), make([]crypto.Signature, 1)},
	}
}

// invalidKey returns the first small y encoding with no matching x.
func invalidKey() crypto.PublicKey {
	for y := byte(2); y < 255; y++ {
		var key crypto.PublicKey
		key[0] = y
		if !crypto.CheckKey(key) {
			return key
		}
	}
	panic("no invalid encoding found")
}

func TestCheckStructure(t *testing.T) {
	require.NoError(t, CheckStructure(validTx()))

	tests := []struct {
		name   string
		mutate func(tx *cryptonote.Transaction)
		expect error
	}{
		{
			name:   "no inputs",
			mutate: func(tx *cryptonote.Transaction) { tx.Inputs = nil; tx.Signatures = nil },
			expect: cryptonote.ErrEmptyInputs,
		},
		{
			name: "coinbase input",
			mutate: func(tx *cryptonote.Transaction) {
				tx.Inputs[1] = cryptonote.BaseInput{BlockIndex: 1}
			},
			expect: cryptonote.ErrUnsupportedInput,
		},
		{
			name: "empty ring",
			mutate: func(tx *cryptonote.Transaction) {
				tx.Inputs[0] = cryptonote.KeyInput{Amount: 100}
			},
			expect: cryptonote.ErrEmptyRing,
		},
		{
			name: "inputs overflow",
			mutate: func(tx *cryptonote.Transaction) {
				tx.Inputs[1] = cryptonote.MultisignatureInput{
					Amount:         math.MaxUint64,
					SignatureCount: 1,
				}
			},
			expect: cryptonote.ErrInputsOverflow,
		},
		{
			name: "outputs overflow",
			mutate: func(tx *cryptonote.Transaction) {
				tx.Outputs[0].Amount = math.MaxUint64
			},
			expect: cryptonote.ErrOutputsOverflow,
		},
		{
			name: "duplicate key image",
			mutate: func(tx *cryptonote.Transaction) {
				tx.Inputs[1] = tx.Inputs[0]
				tx.Signatures[1] = make([]crypto.Signature, 2)
			},
			expect: cryptonote.ErrDuplicateKeyImage,
		},
		{
			name: "duplicate multisignature usage",
			mutate: func(tx *cryptonote.Transaction) {
				tx.Inputs[0] = tx.Inputs[1]
				tx.Signatures[0] = make([]crypto.Signature, 1)
			},
			expect: cryptonote.ErrDuplicateMultisigUsage,
		},
		{
			name: "zero output",
			mutate: func(tx *cryptonote.Transaction) {
				tx.Outputs[0].Amount = 0
			},
			expect: cryptonote.ErrZeroOutputAmount,
		},
		{
			name: "invalid output key",
			mutate: func(tx *cryptonote.Transaction) {
				tx.Outputs[0].Target = cryptonote.KeyOutput{Key: invalidKey()}
			},
			expect: cryptonote.ErrInvalidOutputKey,
		},
		{
			name: "multisignature requires too many",
			mutate: func(tx *cryptonote.Transaction) {
				target := tx.Outputs[1].Target.(cryptonote.MultisignatureOutput)
				target.RequiredSignatureCount = 3
				tx.Outputs[1].Target = target
			},
			expect: cryptonote.ErrInvalidMultisigOutput,
		},
		{
			name: "missing signature list",
			mutate: func(tx *cryptonote.Transaction) {
				tx.Signatures = tx.Signatures[:1]
			},
			expect: cryptonote.ErrSignatureCount,
		},
		{
			name: "short signature list",
			mutate: func(tx *cryptonote.Transaction) {
				tx.Signatures[0] = tx.Signatures[0][:1]
			},
			expect: cryptonote.ErrSignatureCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTx()
			tt.mutate(tx)
			err := CheckStructure(tx)
			assert.ErrorIs(t, err, tt.expect)
			assert.ErrorIs(t, err, cryptonote.ErrStructuralInvalid)
		})
	}
}

func TestGetFee(t *testing.T) {
	tx := validTx()
	fee, err := GetFee(&tx.TransactionPrefix)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), fee)

	tx.Outputs[0].Amount = 71
	_, err = GetFee(&tx.TransactionPrefix)
	assert.ErrorIs(t, err, cryptonote.ErrOutputsExceedInputs)
}
