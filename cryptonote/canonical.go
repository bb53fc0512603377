package cryptonote

import (
	"github.com/pkg/errors"
	"github.com/vigcoin/coin/crypto"
)

func (p *TransactionPrefix) ToCanonicalBytes() ([]byte, error) {
	buf, err := p.appendCanonical(nil)
	if err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	return buf, nil
}

func (p *TransactionPrefix) appendCanonical(buf []byte) ([]byte, error) {
	// Write version and unlock_time
	buf = appendVarint(buf, uint64(p.Version))
	buf = appendVarint(buf, p.UnlockTime)

	// Write inputs
	buf = appendVarint(buf, uint64(len(p.Inputs)))
	for i, in := range p.Inputs {
		var err error
		buf, err = appendInput(buf, in)
		if err != nil {
			return nil, errors.Wrapf(err, "input %d", i)
		}
	}

	// Write outputs
	buf = appendVarint(buf, uint64(len(p.Outputs)))
	for i, out := range p.Outputs {
		var err error
		buf, err = appendOutput(buf, out)
		if err != nil {
			return nil, errors.Wrapf(err, "output %d", i)
		}
	}

	// Write extra
	buf = appendVarint(buf, uint64(len(p.Extra)))
	buf = append(buf, p.Extra...)
	return buf, nil
}

func appendInput(buf []byte, in TransactionInput) ([]byte, error) {
	switch v := in.(type) {
	case BaseInput:
		buf = append(buf, TagBaseInput)
		buf = appendVarint(buf, uint64(v.BlockIndex))
	case KeyInput:
		buf = append(buf, TagKeyInput)
		buf = appendVarint(buf, v.Amount)
		buf = appendVarint(buf, uint64(len(v.OutputIndexes)))
		for _, idx := range v.OutputIndexes {
			buf = appendVarint(buf, uint64(idx))
		}
		buf = append(buf, v.KeyImage[:]...)
	case MultisignatureInput:
		buf = append(buf, TagMultisignatureInput)
		buf = appendVarint(buf, v.Amount)
		buf = appendVarint(buf, uint64(v.SignatureCount))
		buf = appendVarint(buf, uint64(v.OutputIndex))
	default:
		return nil, ErrInvalidArgument
	}
	return buf, nil
}

func appendOutput(buf []byte, out TransactionOutput) ([]byte, error) {
	buf = appendVarint(buf, out.Amount)
	switch v := out.Target.(type) {
	case KeyOutput:
		buf = append(buf, TagKeyOutput)
		buf = append(buf, v.Key[:]...)
	case MultisignatureOutput:
		buf = append(buf, TagMultisignatureOutput)
		buf = appendVarint(buf, uint64(len(v.Keys)))
		for _, k := range v.Keys {
			buf = append(buf, k[:]...)
		}
		buf = appendVarint(buf, uint64(v.RequiredSignatureCount))
	default:
		return nil, ErrInvalidArgument
	}
	return buf, nil
}

func (p *TransactionPrefix) FromCanonicalBytes(data []byte) error {
	r := newReader(data)
	if err := p.readCanonical(r); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	if r.remaining() != 0 {
		return errors.Wrap(ErrTrailingData, "from canonical bytes")
	}
	return nil
}

func (p *TransactionPrefix) readCanonical(r *reader) error {
	var err error

	// Read version and unlock_time
	if p.Version, err = r.readUint8(); err != nil {
		return errors.Wrap(err, "version")
	}
	if p.UnlockTime, err = r.readUint64(); err != nil {
		return errors.Wrap(err, "unlock time")
	}

	// Read inputs
	count, err := r.readCount(2)
	if err != nil {
		return errors.Wrap(err, "input count")
	}
	p.Inputs = nil
	if count > 0 {
		p.Inputs = make([]TransactionInput, count)
	}
	for i := range p.Inputs {
		if p.Inputs[i], err = readInput(r); err != nil {
			return errors.Wrapf(err, "input %d", i)
		}
	}

	// Read outputs
	count, err = r.readCount(4)
	if err != nil {
		return errors.Wrap(err, "output count")
	}
	p.Outputs = nil
	if count > 0 {
		p.Outputs = make([]TransactionOutput, count)
	}
	for i := range p.Outputs {
		if p.Outputs[i], err = readOutput(r); err != nil {
			return errors.Wrapf(err, "output %d", i)
		}
	}

	// Read extra
	count, err = r.readCount(1)
	if err != nil {
		return errors.Wrap(err, "extra size")
	}
	if p.Extra, err = r.readBytes(count); err != nil {
		return errors.Wrap(err, "extra")
	}
	return nil
}

func readInput(r *reader) (TransactionInput, error) {
	tag, err := r.readByte()
	if err != nil {
		return nil, err
	}

	switch tag {
	case TagBaseInput:
		height, err := r.readUint32()
		if err != nil {
			return nil, err
		}
		return BaseInput{BlockIndex: height}, nil
	case TagKeyInput:
		var in KeyInput
		if in.Amount, err = r.readUint64(); err != nil {
			return nil, err
		}
		count, err := r.readCount(1)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			in.OutputIndexes = make([]uint32, count)
		}
		for i := range in.OutputIndexes {
			if in.OutputIndexes[i], err = r.readUint32(); err != nil {
				return nil, err
			}
		}
		if err := r.readInto(in.KeyImage[:]); err != nil {
			return nil, err
		}
		return in, nil
	case TagMultisignatureInput:
		var in MultisignatureInput
		if in.Amount, err = r.readUint64(); err != nil {
			return nil, err
		}
		if in.SignatureCount, err = r.readUint8(); err != nil {
			return nil, err
		}
		if in.OutputIndex, err = r.readUint32(); err != nil {
			return nil, err
		}
		return in, nil
	default:
		return nil, ErrUnknownTag
	}
}

func readOutput(r *reader) (TransactionOutput, error) {
	var out TransactionOutput
	var err error
	if out.Amount, err = r.readUint64(); err != nil {
		return out, err
	}

	tag, err := r.readByte()
	if err != nil {
		return out, err
	}

	switch tag {
	case TagKeyOutput:
		var target KeyOutput
		if err := r.readInto(target.Key[:]); err != nil {
			return out, err
		}
		out.Target = target
	case TagMultisignatureOutput:
		var target MultisignatureOutput
		count, err := r.readCount(crypto.KeySize)
		if err != nil {
			return out, err
		}
		if count > 0 {
			target.Keys = make([]crypto.PublicKey, count)
		}
		for i := range target.Keys {
			if err := r.readInto(target.Keys[i][:]); err != nil {
				return out, err
			}
		}
		if target.RequiredSignatureCount, err = r.readUint8(); err != nil {
			return out, err
		}
		out.Target = target
	default:
		return out, ErrUnknownTag
	}
	return out, nil
}

// ToCanonicalBytes encodes the prefix followed by the signatures. The
// signature section carries no counts: its shape follows from the inputs. A
// transaction with nil Signatures encodes as its prefix alone.
func (t *Transaction) ToCanonicalBytes() ([]byte, error) {
	buf, err := t.appendCanonical(nil)
	if err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	return buf, nil
}

func (t *Transaction) appendCanonical(buf []byte) ([]byte, error) {
	buf, err := t.TransactionPrefix.appendCanonical(buf)
	if err != nil {
		return nil, err
	}
	if len(t.Signatures) == 0 {
		return buf, nil
	}

	// Write signatures
	if len(t.Signatures) != len(t.Inputs) {
		return nil, errors.Wrap(ErrInvalidArgument, "signature list size")
	}
	for i, in := range t.Inputs {
		if len(t.Signatures[i]) != RequiredSignatureCount(in) {
			return nil, errors.Wrapf(
				ErrInvalidArgument,
				"signature count for input %d",
				i,
			)
		}
		for _, sig := range t.Signatures[i] {
			buf = append(buf, sig[:]...)
		}
	}
	return buf, nil
}

func (t *Transaction) FromCanonicalBytes(data []byte) error {
	r := newReader(data)
	if err := t.readCanonical(r); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	if r.remaining() != 0 {
		return errors.Wrap(ErrTrailingData, "from canonical bytes")
	}
	return nil
}

func (t *Transaction) readCanonical(r *reader) error {
	if err := t.TransactionPrefix.readCanonical(r); err != nil {
		return err
	}
	// Nothing after the prefix: prefix-only encoding.
	if r.remaining() == 0 {
		t.Signatures = nil
		return nil
	}
	return t.readSignatures(r)
}

// readSignatures reads the signature section, whose shape follows from the
// inputs already decoded.
func (t *Transaction) readSignatures(r *reader) error {
	t.Signatures = nil
	total := requiredSignatures(t.Inputs)
	if total == 0 {
		return nil
	}

	// Read signatures
	if total > r.remaining()/crypto.SignatureSize {
		return errors.Wrap(ErrTruncatedStream, "signatures")
	}
	t.Signatures = make([][]crypto.Signature, len(t.Inputs))
	for i, in := range t.Inputs {
		n := RequiredSignatureCount(in)
		if n == 0 {
			continue
		}
		t.Signatures[i] = make([]crypto.Signature, n)
		for j := range t.Signatures[i] {
			if err := r.readInto(t.Signatures[i][j][:]); err != nil {
				return errors.Wrapf(err, "signature %d of input %d", j, i)
			}
		}
	}
	return nil
}

func requiredSignatures(inputs []TransactionInput) int {
	total := 0
	for _, in := range inputs {
		total += RequiredSignatureCount(in)
	}
	return total
}

// BlobSize returns the length of the full encoding.
func (t *Transaction) BlobSize() (int, error) {
	b, err := t.ToCanonicalBytes()
	if err != nil {
		return 0, err
	}
	return len(b), nil
}
