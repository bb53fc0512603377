package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vigcoin/coin/crypto"
	"github.com/vigcoin/coin/types/store"
)

type MockKeyImageStore struct {
	mock.Mock
}

var _ store.KeyImageStore = (*MockKeyImageStore)(nil)

func (m *MockKeyImageStore) NewTransaction(indexed bool) (
	store.Transaction,
	error,
) {
	args := m.Called(indexed)
	return args.Get(0).(store.Transaction), args.Error(1)
}

func (m *MockKeyImageStore) Contains(image crypto.KeyImage) (bool, error) {
	args := m.Called(image)
	return args.Bool(0), args.Error(1)
}

func (m *MockKeyImageStore) Insert(
	txn store.Transaction,
	image crypto.KeyImage,
	blockIndex uint32,
) error {
	args := m.Called(txn, image, blockIndex)
	return args.Error(0)
}

func (m *MockKeyImageStore) Remove(
	txn store.Transaction,
	image crypto.KeyImage,
) error {
	args := m.Called(txn, image)
	return args.Error(0)
}

type MockOutputStore struct {
	mock.Mock
}

var _ store.OutputStore = (*MockOutputStore)(nil)

func (m *MockOutputStore) NewTransaction(indexed bool) (
	store.Transaction,
	error,
) {
	args := m.Called(indexed)
	return args.Get(0).(store.Transaction), args.Error(1)
}

func (m *MockOutputStore) GetOutputCount(amount uint64) (uint32, error) {
	args := m.Called(amount)
	return args.Get(0).(uint32), args.Error(1)
}

func (m *MockOutputStore) GetOutputKeys(
	amount uint64,
	globalIndexes []uint32,
) ([]store.OutputEntry, error) {
	args := m.Called(amount, globalIndexes)
	entries, _ := args.Get(0).([]store.OutputEntry)
	return entries, args.Error(1)
}

func (m *MockOutputStore) GetMultisignatureOutput(
	amount uint64,
	globalIndex uint32,
) (*store.MultisignatureOutputEntry, error) {
	args := m.Called(amount, globalIndex)
	entry, _ := args.Get(0).(*store.MultisignatureOutputEntry)
	return entry, args.Error(1)
}

func (m *MockOutputStore) AddKeyOutput(
	txn store.Transaction,
	amount uint64,
	entry store.OutputEntry,
) (uint32, error) {
	args := m.Called(txn, amount, entry)
	return args.Get(0).(uint32), args.Error(1)
}

func (m *MockOutputStore) AddMultisignatureOutput(
	txn store.Transaction,
	amount uint64,
	entry store.MultisignatureOutputEntry,
) (uint32, error) {
	args := m.Called(txn, amount, entry)
	return args.Get(0).(uint32), args.Error(1)
}

func (m *MockOutputStore) SetMultisignatureOutputSpent(
	txn store.Transaction,
	amount uint64,
	globalIndex uint32,
	spent bool,
) error {
	args := m.Called(txn, amount, globalIndex, spent)
	return args.Error(0)
}

func (m *MockOutputStore) RemoveLastKeyOutput(
	txn store.Transaction,
	amount uint64,
) error {
	args := m.Called(txn, amount)
	return args.Error(0)
}

func (m *MockOutputStore) RemoveLastMultisignatureOutput(
	txn store.Transaction,
	amount uint64,
) error {
	args := m.Called(txn, amount)
	return args.Error(0)
}
