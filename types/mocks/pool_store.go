package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vigcoin/coin/types/store"
)

type MockPoolStore struct {
	mock.Mock
}

var _ store.PoolStore = (*MockPoolStore)(nil)

func (m *MockPoolStore) SaveEntries(
	entries []*store.PoolRecord,
	deleted []store.DeletedRecord,
) error {
	args := m.Called(entries, deleted)
	return args.Error(0)
}

func (m *MockPoolStore) LoadEntries() (
	[]*store.PoolRecord,
	[]store.DeletedRecord,
	error,
) {
	args := m.Called()
	entries, _ := args.Get(0).([]*store.PoolRecord)
	deleted, _ := args.Get(1).([]store.DeletedRecord)
	return entries, deleted, args.Error(2)
}
