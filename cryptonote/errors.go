package cryptonote

import (
	"github.com/pkg/errors"
)

// Kind classifies why a transaction, block or encoding was rejected.
type Kind int

const (
	KindUnknown Kind = iota
	// KindDecode covers malformed bytes: truncation, non-canonical varints and
	// unknown tags.
	KindDecode
	// KindCryptoInvalid covers bad points or scalars and failed signatures.
	KindCryptoInvalid
	// KindStructuralInvalid covers problems visible from the transaction alone.
	KindStructuralInvalid
	// KindContextualInvalid covers problems that depend on chain or pool state.
	KindContextualInvalid
	KindPoolFull
	KindExpired
)

func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "decode error"
	case KindCryptoInvalid:
		return "crypto invalid"
	case KindStructuralInvalid:
		return "structural invalid"
	case KindContextualInvalid:
		return "contextual invalid"
	case KindPoolFull:
		return "pool full"
	case KindExpired:
		return "expired"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Reason
}

// Is matches class errors (no reason) by kind, and specific errors by
// identity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Reason == "" {
		return t.Kind == e.Kind
	}
	return t == e
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Class errors, for errors.Is(err, ErrContextualInvalid) style checks.
var (
	ErrDecode            = &Error{Kind: KindDecode}
	ErrCryptoInvalid     = &Error{Kind: KindCryptoInvalid}
	ErrStructuralInvalid = &Error{Kind: KindStructuralInvalid}
	ErrContextualInvalid = &Error{Kind: KindContextualInvalid}
	ErrPoolFullClass     = &Error{Kind: KindPoolFull}
	ErrExpiredClass      = &Error{Kind: KindExpired}
)

// Decode errors.
var (
	ErrTruncatedStream    = &Error{KindDecode, "truncated stream"}
	ErrInvalidArgument    = &Error{KindDecode, "invalid argument"}
	ErrNonCanonicalVarint = &Error{KindDecode, "non-canonical varint"}
	ErrVarintOverflow     = &Error{KindDecode, "varint overflow"}
	ErrUnknownTag         = &Error{KindDecode, "unknown variant tag"}
	ErrTrailingData       = &Error{KindDecode, "trailing data"}
)

// Crypto errors.
var (
	ErrInvalidKey       = &Error{KindCryptoInvalid, "invalid public key"}
	ErrInvalidKeyImage  = &Error{KindCryptoInvalid, "invalid key image"}
	ErrInvalidSignature = &Error{KindCryptoInvalid, "signature verification failed"}
)

// Structural errors.
var (
	ErrUnsupportedInput       = &Error{KindStructuralInvalid, "unsupported input type"}
	ErrUnsupportedOutput      = &Error{KindStructuralInvalid, "unsupported output type"}
	ErrInputsOverflow         = &Error{KindStructuralInvalid, "inputs amount overflow"}
	ErrOutputsOverflow        = &Error{KindStructuralInvalid, "outputs amount overflow"}
	ErrDuplicateKeyImage      = &Error{KindStructuralInvalid, "duplicate key image in transaction"}
	ErrDuplicateMultisigUsage = &Error{KindStructuralInvalid, "multisignature output used twice"}
	ErrZeroOutputAmount       = &Error{KindStructuralInvalid, "zero output amount"}
	ErrInvalidOutputKey       = &Error{KindStructuralInvalid, "invalid output key"}
	ErrInvalidMultisigOutput  = &Error{KindStructuralInvalid, "required signatures exceed keys"}
	ErrEmptyInputs            = &Error{KindStructuralInvalid, "transaction has no inputs"}
	ErrEmptyRing              = &Error{KindStructuralInvalid, "key input has no output indexes"}
	ErrSignatureCount         = &Error{KindStructuralInvalid, "signature count mismatch"}
	ErrOutputsExceedInputs    = &Error{KindStructuralInvalid, "outputs exceed inputs"}
	ErrMalformedExtra         = &Error{KindStructuralInvalid, "malformed extra"}
	ErrTransactionTooBig      = &Error{KindStructuralInvalid, "transaction too big"}
	ErrZeroDestinationAmount  = &Error{KindStructuralInvalid, "zero destination amount"}
)

// Contextual errors.
var (
	ErrDoubleSpend          = &Error{KindContextualInvalid, "double spend"}
	ErrUnknownOutput        = &Error{KindContextualInvalid, "referenced output not found"}
	ErrLockedOutput         = &Error{KindContextualInvalid, "referenced output is locked"}
	ErrDecoyIndexOutOfRange = &Error{KindContextualInvalid, "decoy index out of range"}
	ErrNotEnoughDecoys      = &Error{KindContextualInvalid, "not enough outputs for ring"}
	ErrEphemeralKeyMismatch = &Error{KindContextualInvalid, "derived key does not match real output"}
	ErrInsufficientFunds    = &Error{KindContextualInvalid, "insufficient funds"}
	ErrFeeTooSmall          = &Error{KindContextualInvalid, "fee too small"}
	ErrTransactionExists    = &Error{KindContextualInvalid, "transaction already in pool"}
)

// Pool lifecycle errors.
var (
	ErrPoolFull = &Error{KindPoolFull, "pool transaction limit reached"}
	ErrExpired  = &Error{KindExpired, "transaction expired"}
)
