package account

import (
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	fullBlockSize        = 8
	fullEncodedBlockSize = 11
)

// encodedBlockSizes maps a block length in bytes to its encoded length.
var encodedBlockSizes = [fullBlockSize + 1]int{0, 2, 3, 5, 6, 7, 9, 10, 11}

var ErrInvalidBase58 = errors.New("invalid base58")

// encodeBlocks encodes data in 8 byte blocks, each rendered as a fixed width
// base58 number so that the output length depends only on the input length.
func encodeBlocks(data []byte) string {
	var sb strings.Builder
	for len(data) > 0 {
		n := min(fullBlockSize, len(data))
		sb.WriteString(encodeBlock(data[:n]))
		data = data[n:]
	}
	return sb.String()
}

func encodeBlock(block []byte) string {
	// Leading '1's stand for zero digits, so stripping them leaves the
	// minimal rendering of the block's value.
	digits := strings.TrimLeft(base58.Encode(block), "1")
	width := encodedBlockSizes[len(block)]
	return strings.Repeat("1", width-len(digits)) + digits
}

func decodeBlocks(s string) ([]byte, error) {
	var out []byte
	for len(s) > 0 {
		n := min(fullEncodedBlockSize, len(s))
		block, err := decodeBlock(s[:n])
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
		s = s[n:]
	}
	return out, nil
}

func decodeBlock(s string) ([]byte, error) {
	size := -1
	for i, width := range encodedBlockSizes {
		if width == len(s) {
			size = i
			break
		}
	}
	if size <= 0 {
		return nil, errors.Wrap(ErrInvalidBase58, "block length")
	}

	raw, err := base58.Decode(s)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidBase58, err.Error())
	}

	// Drop leading zero bytes, then the value must fit the block.
	i := 0
	for i < len(raw) && raw[i] == 0 {
		i++
	}
	raw = raw[i:]
	if len(raw) > size {
		return nil, errors.Wrap(ErrInvalidBase58, "block overflow")
	}

	block := make([]byte, size)
	copy(block[size-len(raw):], raw)
	return block, nil
}
