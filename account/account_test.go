package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigcoin/coin/crypto"
)

const testPrefix = 6

func TestBlockBase58(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"one zero byte", []byte{0}, "11"},
		{"one byte", []byte{0xff}, "5Q"},
		{"full zero block", make([]byte, 8), "11111111111"},
		{
			"full max block",
			[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
			"jpXCZedGfVQ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := encodeBlocks(tt.input)
			assert.Equal(t, tt.want, encoded)

			decoded, err := decodeBlocks(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.input, decoded)
		})
	}

	for n := 1; n <= 20; n++ {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i*37 + n)
		}
		encoded := encodeBlocks(data)
		assert.Len(t, encoded, (n/8)*11+encodedBlockSizes[n%8])
		decoded, err := decodeBlocks(encoded)
		require.NoError(t, err)
		assert.Equal(t, data, decoded)
	}

	_, err := decodeBlocks("1111")
	assert.ErrorIs(t, err, ErrInvalidBase58)
	_, err = decodeBlocks("zzzzzzzzzzz")
	assert.ErrorIs(t, err, ErrInvalidBase58)
	_, err = decodeBlocks("0OIl")
	assert.ErrorIs(t, err, ErrInvalidBase58)
}

func TestAccountKeys(t *testing.T) {
	keys, err := GenerateAccountKeys()
	require.NoError(t, err)

	spendPub, err := crypto.SecretKeyToPublicKey(keys.SpendSecretKey)
	require.NoError(t, err)
	assert.Equal(t, spendPub, keys.Address.SpendPublicKey)

	viewPub, err := crypto.SecretKeyToPublicKey(keys.ViewSecretKey)
	require.NoError(t, err)
	assert.Equal(t, viewPub, keys.Address.ViewPublicKey)

	restored, err := FromSpendSecret(keys.SpendSecretKey)
	require.NoError(t, err)
	assert.Equal(t, keys, restored)
}

func TestAddressRoundTrip(t *testing.T) {
	keys, err := GenerateAccountKeys()
	require.NoError(t, err)

	str := keys.Address.String(testPrefix)
	// 1 prefix byte + 64 key bytes + 4 checksum bytes = 69 bytes.
	assert.Len(t, str, 8*11+encodedBlockSizes[5])

	parsed, err := ParseAddress(str, testPrefix)
	require.NoError(t, err)
	assert.Equal(t, keys.Address, parsed)

	_, err = ParseAddress(str, testPrefix+1)
	assert.ErrorIs(t, err, ErrAddressPrefix)

	// Flip one character in the key region.
	tampered := []byte(str)
	if tampered[20] == '2' {
		tampered[20] = '3'
	} else {
		tampered[20] = '2'
	}
	_, err = ParseAddress(string(tampered), testPrefix)
	assert.Error(t, err)

	_, err = ParseAddress("", testPrefix)
	assert.ErrorIs(t, err, ErrInvalidBase58)
}
