package cryptonote

import (
	"encoding/binary"
)

// reader is a bounds-checked cursor over an encoded buffer. Every read that
// would run past the end fails with ErrTruncatedStream.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) readByte() (byte, error) {
	if r.remaining() < 1 {
		return 0, ErrTruncatedStream
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// readBytes returns a copy of the next n bytes. A zero length yields nil.
func (r *reader) readBytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, ErrTruncatedStream
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

func (r *reader) readInto(out []byte) error {
	if r.remaining() < len(out) {
		return ErrTruncatedStream
	}
	copy(out, r.buf[r.pos:r.pos+len(out)])
	r.pos += len(out)
	return nil
}

func (r *reader) readUint32LE() (uint32, error) {
	var b [4]byte
	if err := r.readInto(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// readVarint decodes a varint that must fit in bits bits. A zero byte after
// the first one is a non-minimal encoding and is rejected.
func (r *reader) readVarint(bits uint) (uint64, error) {
	var value uint64
	for shift := uint(0); ; shift += 7 {
		piece, err := r.readByte()
		if err != nil {
			return 0, err
		}
		if shift >= bits-7 && uint64(piece) >= uint64(1)<<(bits-shift) {
			return 0, ErrVarintOverflow
		}
		if piece == 0 && shift != 0 {
			return 0, ErrNonCanonicalVarint
		}
		value |= uint64(piece&0x7f) << shift
		if piece&0x80 == 0 {
			return value, nil
		}
	}
}

func (r *reader) readUint64() (uint64, error) {
	return r.readVarint(64)
}

func (r *reader) readUint32() (uint32, error) {
	v, err := r.readVarint(32)
	return uint32(v), err
}

func (r *reader) readUint8() (uint8, error) {
	v, err := r.readVarint(8)
	return uint8(v), err
}

// readCount reads an element count and rejects counts that cannot possibly
// be satisfied by the remaining bytes, given each element takes at least
// minSize bytes.
func (r *reader) readCount(minSize int) (int, error) {
	v, err := r.readUint64()
	if err != nil {
		return 0, err
	}
	if minSize > 0 && v > uint64(r.remaining()/minSize) {
		return 0, ErrTruncatedStream
	}
	return int(v), nil
}

func appendVarint(buf []byte, v uint64) []byte {
	return binary.AppendUvarint(buf, v)
}
