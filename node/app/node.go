package app

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vigcoin/coin/node/builder"
	"github.com/vigcoin/coin/node/chain"
	"github.com/vigcoin/coin/node/mempool"
	"github.com/vigcoin/coin/node/store"
	"github.com/vigcoin/coin/node/validator"
	tstore "github.com/vigcoin/coin/types/store"
	"go.uber.org/zap"
)

type Node struct {
	logger      *zap.Logger
	pebble      tstore.KVDB
	validator   *validator.Validator
	pool        *mempool.Pool
	chain       *chain.Chain
	decoys      *builder.DecoySelector
	diskMonitor *store.DiskMonitor
	errCh       chan error
	cancel      context.CancelFunc
}

func newNode(
	logger *zap.Logger,
	pebble tstore.KVDB,
	validator *validator.Validator,
	pool *mempool.Pool,
	chain *chain.Chain,
	decoys *builder.DecoySelector,
	diskMonitor *store.DiskMonitor,
	errCh chan error,
) (*Node, error) {
	return &Node{
		logger:      logger.With(zap.String("process", "node")),
		pebble:      pebble,
		validator:   validator,
		pool:        pool,
		chain:       chain,
		decoys:      decoys,
		diskMonitor: diskMonitor,
		errCh:       errCh,
	}, nil
}

func provideDiskErrorChannel() chan error {
	return make(chan error, 1)
}

// Start loads the chain and the pool, then starts the background workers.
// It returns once everything is running.
func (n *Node) Start(ctx context.Context) error {
	if err := n.chain.Init(); err != nil {
		return errors.Wrap(err, "start")
	}
	if err := n.pool.Init(); err != nil {
		return errors.Wrap(err, "start")
	}

	ctx, n.cancel = context.WithCancel(ctx)
	n.diskMonitor.Start(ctx)
	if err := n.pool.Start(ctx); err != nil {
		n.cancel()
		return errors.Wrap(err, "start")
	}

	n.logger.Info(
		"node started",
		zap.Int("pool_transactions", n.pool.GetTransactionCount()),
	)
	return nil
}

func (n *Node) Stop() {
	n.logger.Info("stopping node")

	if err := n.pool.Stop(); err != nil {
		n.logger.Error("error stopping mempool", zap.Error(err))
	}
	if err := n.pool.Deinit(); err != nil {
		n.logger.Error("error saving mempool", zap.Error(err))
	}
	if n.cancel != nil {
		n.cancel()
	}

	if n.pebble != nil {
		if err := n.pebble.Close(); err != nil {
			n.logger.Error("database shut down with errors", zap.Error(err))
		} else {
			n.logger.Info("database stopped cleanly")
		}
	}
}

// Errors reports fatal conditions raised by background workers.
func (n *Node) Errors() <-chan error {
	return n.errCh
}

func (n *Node) GetLogger() *zap.Logger {
	return n.logger
}

func (n *Node) GetValidator() *validator.Validator {
	return n.validator
}

func (n *Node) GetPool() *mempool.Pool {
	return n.pool
}

func (n *Node) GetChain() *chain.Chain {
	return n.chain
}

func (n *Node) GetDecoySelector() *builder.DecoySelector {
	return n.decoys
}
