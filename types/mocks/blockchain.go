package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/cryptonote"
	"github.com/vigcoin/coin/types/consensus"
)

type MockBlockchainHeightOracle struct {
	mock.Mock
}

var _ consensus.BlockchainHeightOracle = (*MockBlockchainHeightOracle)(nil)

func (m *MockBlockchainHeightOracle) GetCurrentHeight() uint32 {
	args := m.Called()
	return args.Get(0).(uint32)
}

func (m *MockBlockchainHeightOracle) GetGenesisHash() crypto.Hash {
	args := m.Called()
	return args.Get(0).(crypto.Hash)
}

func (m *MockBlockchainHeightOracle) GetBlockIDByHeight(
	height uint32,
) (crypto.Hash, error) {
	args := m.Called(height)
	return args.Get(0).(crypto.Hash), args.Error(1)
}

type MockTransactionInputsChecker struct {
	mock.Mock
}

var _ consensus.TransactionInputsChecker = (*MockTransactionInputsChecker)(nil)

func (m *MockTransactionInputsChecker) CheckTransactionInputs(
	tx *cryptonote.Transaction,
) (consensus.BlockInfo, error) {
	args := m.Called(tx)
	return args.Get(0).(consensus.BlockInfo), args.Error(1)
}

func (m *MockTransactionInputsChecker) RecheckTransactionInputs(
	tx *cryptonote.Transaction,
	maxUsedBlock *consensus.BlockInfo,
	lastFailedBlock *consensus.BlockInfo,
) bool {
	args := m.Called(tx, maxUsedBlock, lastFailedBlock)
	return args.Bool(0)
}

func (m *MockTransactionInputsChecker) HaveSpentKeyImages(
	tx *cryptonote.Transaction,
) (bool, error) {
	args := m.Called(tx)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionInputsChecker) CheckTransactionSize(
	blobSize uint64,
) error {
	args := m.Called(blobSize)
	return args.Error(0)
}
