package builder

import (
	"slices"
	"sort"

	"github.com/pkg/errors"
	"github.com/vigcoin/coin/account"
	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/cryptonote"
	"go.uber.org/zap"
)

// SourceOutput is one ring member: an output of the source amount and its
// global index.
type SourceOutput struct {
	GlobalIndex uint32
	Key         crypto.PublicKey
}

// SourceEntry describes an output to spend together with its decoys.
// Outputs[RealOutput] is the output owned by the sender, created as output
// RealOutputIndexInTransaction of the transaction with public key
// RealTransactionPublicKey.
type SourceEntry struct {
	Amount                       uint64
	Outputs                      []SourceOutput
	RealOutput                   int
	RealTransactionPublicKey     crypto.PublicKey
	RealOutputIndexInTransaction uint64
}

type DestinationEntry struct {
	Address account.Address
	Amount  uint64
}

type inputContext struct {
	ring      []crypto.PublicKey
	realIndex int
	ephemeral crypto.KeyPair
	image     crypto.KeyImage
}

type TransactionBuilder struct {
	logger *zap.Logger
}

func NewTransactionBuilder(logger *zap.Logger) *TransactionBuilder {
	return &TransactionBuilder{logger: logger}
}

// Build assembles and signs a transaction. It returns the transaction with
// its one-time secret key, which the sender keeps to prove payments.
//
// Destinations are ordered by ascending amount, stable for equal amounts,
// before output indexes are assigned. The ring of each source is ordered by
// global index.
func (b *TransactionBuilder) Build(
	sender account.AccountKeys,
	sources []SourceEntry,
	destinations []DestinationEntry,
	extra []byte,
	unlockTime uint64,
) (*cryptonote.Transaction, crypto.SecretKey, error) {
	txKey, err := crypto.GenerateKeys()
	if err != nil {
		return nil, crypto.SecretKey{}, errors.Wrap(err, "build")
	}

	tx := &cryptonote.Transaction{
		TransactionPrefix: cryptonote.TransactionPrefix{
			Version:    cryptonote.CurrentTransactionVersion,
			UnlockTime: unlockTime,
			Extra: cryptonote.AddTransactionPublicKeyToExtra(
				slices.Clone(extra),
				txKey.Public,
			),
		},
	}

	var inputsAmount uint64
	contexts := make([]inputContext, 0, len(sources))
	for i, src := range sources {
		ctx, err := b.prepareInput(sender, src)
		if err != nil {
			return nil, crypto.SecretKey{}, errors.Wrapf(err, "build: source %d", i)
		}
		if inputsAmount > inputsAmount+src.Amount {
			return nil, crypto.SecretKey{}, errors.Wrap(
				cryptonote.ErrInputsOverflow,
				"build",
			)
		}
		inputsAmount += src.Amount

		globals := make([]uint32, len(src.Outputs))
		for j, out := range src.Outputs {
			globals[j] = out.GlobalIndex
		}
		slices.Sort(globals)

		tx.Inputs = append(tx.Inputs, cryptonote.KeyInput{
			Amount:        src.Amount,
			OutputIndexes: cryptonote.RelativeOutputOffsets(globals),
			KeyImage:      ctx.image,
		})
		contexts = append(contexts, ctx)
	}

	sorted := slices.Clone(destinations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount < sorted[j].Amount
	})

	var outputsAmount uint64
	for i, dst := range sorted {
		if dst.Amount == 0 {
			return nil, crypto.SecretKey{}, errors.Wrapf(
				cryptonote.ErrZeroDestinationAmount,
				"build: destination %d",
				i,
			)
		}

		derivation, err := crypto.GenerateKeyDerivation(
			dst.Address.ViewPublicKey,
			txKey.Secret,
		)
		if err != nil {
			return nil, crypto.SecretKey{}, errors.Wrapf(
				err,
				"build: destination %d",
				i,
			)
		}
		key, err := crypto.DerivePublicKey(
			derivation,
			uint64(i),
			dst.Address.SpendPublicKey,
		)
		if err != nil {
			return nil, crypto.SecretKey{}, errors.Wrapf(
				err,
				"build: destination %d",
				i,
			)
		}

		if outputsAmount > outputsAmount+dst.Amount {
			return nil, crypto.SecretKey{}, errors.Wrap(
				cryptonote.ErrOutputsOverflow,
				"build",
			)
		}
		outputsAmount += dst.Amount
		tx.Outputs = append(tx.Outputs, cryptonote.TransactionOutput{
			Amount: dst.Amount,
			Target: cryptonote.KeyOutput{Key: key},
		})
	}

	if outputsAmount > inputsAmount {
		return nil, crypto.SecretKey{}, errors.Wrapf(
			cryptonote.ErrInsufficientFunds,
			"build: outputs %d exceed inputs %d",
			outputsAmount,
			inputsAmount,
		)
	}

	prefixHash, err := cryptonote.GetTransactionPrefixHash(
		&tx.TransactionPrefix,
	)
	if err != nil {
		return nil, crypto.SecretKey{}, errors.Wrap(err, "build")
	}

	tx.Signatures = make([][]crypto.Signature, len(contexts))
	for i, ctx := range contexts {
		sigs, err := crypto.GenerateRingSignature(
			prefixHash,
			ctx.image,
			ctx.ring,
			ctx.ephemeral.Secret,
			ctx.realIndex,
		)
		if err != nil {
			return nil, crypto.SecretKey{}, errors.Wrapf(err, "build: input %d", i)
		}
		tx.Signatures[i] = sigs
	}

	b.logger.Debug(
		"built transaction",
		zap.Int("inputs", len(tx.Inputs)),
		zap.Int("outputs", len(tx.Outputs)),
		zap.Uint64("fee", inputsAmount-outputsAmount),
	)
	return tx, txKey.Secret, nil
}

// prepareInput recovers the one-time key pair of the real output, checks it
// against the ring and orders the ring by global index.
func (b *TransactionBuilder) prepareInput(
	sender account.AccountKeys,
	src SourceEntry,
) (inputContext, error) {
	if src.RealOutput < 0 || src.RealOutput >= len(src.Outputs) {
		return inputContext{}, errors.Wrapf(
			cryptonote.ErrDecoyIndexOutOfRange,
			"real output %d of %d",
			src.RealOutput,
			len(src.Outputs),
		)
	}

	derivation, err := crypto.GenerateKeyDerivation(
		src.RealTransactionPublicKey,
		sender.ViewSecretKey,
	)
	if err != nil {
		return inputContext{}, err
	}
	ephemeralPublic, err := crypto.DerivePublicKey(
		derivation,
		src.RealOutputIndexInTransaction,
		sender.Address.SpendPublicKey,
	)
	if err != nil {
		return inputContext{}, err
	}
	ephemeralSecret, err := crypto.DeriveSecretKey(
		derivation,
		src.RealOutputIndexInTransaction,
		sender.SpendSecretKey,
	)
	if err != nil {
		return inputContext{}, err
	}

	real := src.Outputs[src.RealOutput]
	if ephemeralPublic != real.Key {
		return inputContext{}, cryptonote.ErrEphemeralKeyMismatch
	}

	image, err := crypto.GenerateKeyImage(ephemeralPublic, ephemeralSecret)
	if err != nil {
		return inputContext{}, err
	}

	outputs := slices.Clone(src.Outputs)
	sort.SliceStable(outputs, func(i, j int) bool {
		return outputs[i].GlobalIndex < outputs[j].GlobalIndex
	})

	ctx := inputContext{
		ring:      make([]crypto.PublicKey, len(outputs)),
		realIndex: -1,
		ephemeral: crypto.KeyPair{Public: ephemeralPublic, Secret: ephemeralSecret},
		image:     image,
	}
	for i, out := range outputs {
		ctx.ring[i] = out.Key
		if out == real && ctx.realIndex < 0 {
			ctx.realIndex = i
		}
	}
	return ctx, nil
}
