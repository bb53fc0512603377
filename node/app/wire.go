//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/vigcoin/coin/config"
	"github.com/vigcoin/coin/currency"
	"github.com/vigcoin/coin/node/builder"
	"github.com/vigcoin/coin/node/chain"
	"github.com/vigcoin/coin/node/indexing"
	"github.com/vigcoin/coin/node/mempool"
	"github.com/vigcoin/coin/node/store"
	"github.com/vigcoin/coin/node/validator"
	"github.com/vigcoin/coin/types/consensus"
	tstore "github.com/vigcoin/coin/types/store"
	"go.uber.org/zap"
)

var storeSet = wire.NewSet(
	wire.FieldsOf(new(*config.Config), "DB"),
	store.NewPebbleDB,
	wire.Bind(new(tstore.KVDB), new(*store.PebbleDB)),
	store.NewPebbleKeyImageStore,
	store.NewPebbleOutputStore,
	store.NewPebblePoolStore,
	store.NewPebbleBlockIndexStore,
	wire.Bind(new(tstore.KeyImageStore), new(*store.PebbleKeyImageStore)),
	wire.Bind(new(tstore.OutputStore), new(*store.PebbleOutputStore)),
	wire.Bind(new(tstore.PoolStore), new(*store.PebblePoolStore)),
	wire.Bind(new(tstore.BlockIndexStore), new(*store.PebbleBlockIndexStore)),
	wire.Bind(
		new(consensus.BlockchainHeightOracle),
		new(*store.PebbleBlockIndexStore),
	),
	provideDiskErrorChannel,
	store.NewDiskMonitor,
)

var currencySet = wire.NewSet(
	wire.FieldsOf(new(*config.Config), "Currency"),
	currency.NewCurrency,
)

var validatorSet = wire.NewSet(
	wire.FieldsOf(new(*config.Config), "Pool"),
	clock.NewDefaultClock,
	validator.NewValidator,
	wire.Bind(
		new(consensus.TransactionInputsChecker),
		new(*validator.Validator),
	),
)

var poolSet = wire.NewSet(
	indexing.NewPaymentIDIndex,
	indexing.NewTimestampIndex,
	mempool.NewPool,
	wire.Bind(new(chain.TransactionPool), new(*mempool.Pool)),
)

var chainSet = wire.NewSet(
	chain.NewChain,
	builder.NewDecoySelector,
)

func NewNode(logger *zap.Logger, config *config.Config) (*Node, error) {
	panic(wire.Build(
		storeSet,
		currencySet,
		validatorSet,
		poolSet,
		chainSet,
		newNode,
	))
}
