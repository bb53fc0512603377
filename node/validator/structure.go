package validator

import (
	"github.com/pkg/errors"
	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/cryptonote"
)

// CheckStructure runs every check that needs nothing but the transaction and
// returns the first failure.
func CheckStructure(tx *cryptonote.Transaction) error {
	checks := []func(*cryptonote.Transaction) error{
		CheckInputTypesSupported,
		CheckInputsOverflow,
		CheckOutputsOverflow,
		CheckNoDuplicateKeyImages,
		CheckNoDuplicateMultisigUsage,
		CheckOutputsValid,
		CheckSignaturesPresent,
	}
	for _, check := range checks {
		if err := check(tx); err != nil {
			return errors.Wrap(err, "check structure")
		}
	}
	return nil
}

// CheckInputTypesSupported accepts key and multisignature inputs only. A key
// input must reference at least one output.
func CheckInputTypesSupported(tx *cryptonote.Transaction) error {
	if len(tx.Inputs) == 0 {
		return cryptonote.ErrEmptyInputs
	}
	for i, in := range tx.Inputs {
		switch v := in.(type) {
		case cryptonote.KeyInput:
			if len(v.OutputIndexes) == 0 {
				return errors.Wrapf(cryptonote.ErrEmptyRing, "input %d", i)
			}
		case cryptonote.MultisignatureInput:
		default:
			return errors.Wrapf(cryptonote.ErrUnsupportedInput, "input %d", i)
		}
	}
	return nil
}

func CheckInputsOverflow(tx *cryptonote.Transaction) error {
	if _, err := GetInputAmount(&tx.TransactionPrefix); err != nil {
		return err
	}
	return nil
}

func CheckOutputsOverflow(tx *cryptonote.Transaction) error {
	if _, err := GetOutputAmount(&tx.TransactionPrefix); err != nil {
		return err
	}
	return nil
}

func CheckNoDuplicateKeyImages(tx *cryptonote.Transaction) error {
	seen := make(map[crypto.KeyImage]struct{}, len(tx.Inputs))
	for _, image := range tx.KeyImages() {
		if _, ok := seen[image]; ok {
			return errors.Wrap(cryptonote.ErrDuplicateKeyImage, image.String())
		}
		seen[image] = struct{}{}
	}
	return nil
}

type multisigUsage struct {
	amount      uint64
	outputIndex uint32
}

func CheckNoDuplicateMultisigUsage(tx *cryptonote.Transaction) error {
	seen := map[multisigUsage]struct{}{}
	for _, in := range tx.Inputs {
		v, ok := in.(cryptonote.MultisignatureInput)
		if !ok {
			continue
		}
		usage := multisigUsage{v.Amount, v.OutputIndex}
		if _, ok := seen[usage]; ok {
			return errors.Wrapf(
				cryptonote.ErrDuplicateMultisigUsage,
				"amount %d index %d",
				v.Amount,
				v.OutputIndex,
			)
		}
		seen[usage] = struct{}{}
	}
	return nil
}

// CheckOutputsValid requires non-zero amounts and valid keys. A
// multisignature output cannot require more signatures than it has keys.
func CheckOutputsValid(tx *cryptonote.Transaction) error {
	for i, out := range tx.Outputs {
		if out.Amount == 0 {
			return errors.Wrapf(cryptonote.ErrZeroOutputAmount, "output %d", i)
		}

		switch v := out.Target.(type) {
		case cryptonote.KeyOutput:
			if !crypto.CheckKey(v.Key) {
				return errors.Wrapf(cryptonote.ErrInvalidOutputKey, "output %d", i)
			}
		case cryptonote.MultisignatureOutput:
			if int(v.RequiredSignatureCount) > len(v.Keys) {
				return errors.Wrapf(
					cryptonote.ErrInvalidMultisigOutput,
					"output %d",
					i,
				)
			}
			for _, key := range v.Keys {
				if !crypto.CheckKey(key) {
					return errors.Wrapf(
						cryptonote.ErrInvalidOutputKey,
						"output %d",
						i,
					)
				}
			}
		default:
			return errors.Wrapf(cryptonote.ErrUnsupportedOutput, "output %d", i)
		}
	}
	return nil
}

// CheckSignaturesPresent only counts signatures. Verification needs the ring
// keys and is done by Validator.
func CheckSignaturesPresent(tx *cryptonote.Transaction) error {
	if len(tx.Signatures) < len(tx.Inputs) {
		return errors.Wrapf(
			cryptonote.ErrSignatureCount,
			"%d signature lists for %d inputs",
			len(tx.Signatures),
			len(tx.Inputs),
		)
	}
	for i, in := range tx.Inputs {
		if len(tx.Signatures[i]) < cryptonote.RequiredSignatureCount(in) {
			return errors.Wrapf(cryptonote.ErrSignatureCount, "input %d", i)
		}
	}
	return nil
}
