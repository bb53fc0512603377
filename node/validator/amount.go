package validator

import (
	"github.com/vigcoin/coin/cryptonote"
)

// GetInputAmount sums the inputs, failing on wraparound.
func GetInputAmount(prefix *cryptonote.TransactionPrefix) (uint64, error) {
	var sum uint64
	for _, in := range prefix.Inputs {
		amount := cryptonote.InputAmount(in)
		if sum > amount+sum {
			return 0, cryptonote.ErrInputsOverflow
		}
		sum += amount
	}
	return sum, nil
}

// GetOutputAmount sums the outputs, failing on wraparound.
func GetOutputAmount(prefix *cryptonote.TransactionPrefix) (uint64, error) {
	var sum uint64
	for _, out := range prefix.Outputs {
		if sum > out.Amount+sum {
			return 0, cryptonote.ErrOutputsOverflow
		}
		sum += out.Amount
	}
	return sum, nil
}

// GetFee returns inputs minus outputs.
func GetFee(prefix *cryptonote.TransactionPrefix) (uint64, error) {
	in, err := GetInputAmount(prefix)
	if err != nil {
		return 0, err
	}
	out, err := GetOutputAmount(prefix)
	if err != nil {
		return 0, err
	}
	if out > in {
		return 0, cryptonote.ErrOutputsExceedInputs
	}
	return in - out, nil
}
