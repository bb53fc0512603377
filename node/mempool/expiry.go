package mempool

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RemoveExpiredTransactions drops entries older than their live time and
// remembers their ids so that they are not admitted again right away. It
// returns the number of entries dropped.
func (p *Pool) RemoveExpiredTransactions() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()

	forgetAfter := time.Duration(
		p.config.NumberOfPeriodsToForgetTransactionDeletedFromPool,
	) * p.config.TransactionLiveTime
	for id, deletedAt := range p.recentlyDeleted {
		if now.Sub(deletedAt) > forgetAfter {
			delete(p.recentlyDeleted, id)
		}
	}

	removed := 0
	for _, entry := range p.entries {
		liveTime := p.config.TransactionLiveTime
		if entry.KeptByBlock {
			liveTime = p.config.AltBlockTransactionLiveTime
		}
		age := now.Sub(entry.ReceiveTime)
		if age <= liveTime {
			continue
		}

		p.logger.Debug(
			"transaction expired",
			zap.String("tx_hash", entry.ID.String()),
			zap.Duration("age", age),
		)
		p.remove(entry)
		p.recentlyDeleted[entry.ID] = now
		evictionsTotal.WithLabelValues("expired").Inc()
		removed++
	}
	return removed
}

// Start runs the expiry sweep on every tick until Stop is called or ctx is
// done.
func (p *Pool) Start(ctx context.Context) error {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	if p.running {
		return nil
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.running = true
	p.ticker.Resume()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.ticker.Ticks():
				if removed := p.RemoveExpiredTransactions(); removed > 0 {
					p.logger.Info(
						"expired transactions removed",
						zap.Int("count", removed),
					)
				}
			}
		}
	}()

	p.logger.Info(
		"mempool started",
		zap.Duration("sweep_interval", p.config.ExpirySweepInterval),
	)
	return nil
}

func (p *Pool) Stop() error {
	p.runMu.Lock()
	if !p.running {
		p.runMu.Unlock()
		return nil
	}
	p.running = false
	p.runMu.Unlock()

	p.cancel()
	p.wg.Wait()
	p.ticker.Pause()

	p.logger.Info("mempool stopped")
	return nil
}
