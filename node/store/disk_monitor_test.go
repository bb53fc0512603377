package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/ticker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigcoin/coin/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewDiskMonitor(t *testing.T) {
	cfg := &config.DBConfig{
		Path:                "/tmp",
		NoticePercentage:    70,
		WarnPercentage:      90,
		TerminatePercentage: 95,
	}

	monitor := NewDiskMonitor(cfg, zaptest.NewLogger(t), make(chan error, 1))

	assert.Equal(t, "/tmp", monitor.path)
	assert.Equal(t, 70, monitor.noticePercentage)
	assert.Equal(t, 90, monitor.warnPercentage)
	assert.Equal(t, 95, monitor.terminatePercentage)
	assert.NotNil(t, monitor.ticker)
}

func TestGetDiskStats(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	monitor := NewDiskMonitor(
		&config.DBConfig{Path: cwd},
		zaptest.NewLogger(t),
		nil,
	)
	percentage, total, free, err := monitor.getDiskStats()

	require.NoError(t, err)
	assert.GreaterOrEqual(t, percentage, 0)
	assert.LessOrEqual(t, percentage, 100)
	assert.LessOrEqual(t, free, total)

	monitor = NewDiskMonitor(
		&config.DBConfig{Path: "/does/not/exist/anywhere"},
		zaptest.NewLogger(t),
		nil,
	)
	_, _, _, err = monitor.getDiskStats()
	assert.Error(t, err)
}

func TestCheckDiskUsage(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	errCh := make(chan error, 1)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	// Zero thresholds always trip the critical level.
	monitor := NewDiskMonitor(&config.DBConfig{Path: cwd}, zap.New(core), errCh)
	monitor.checkDiskUsage()
	// The second alert must not block on the full channel.
	monitor.checkDiskUsage()

	assert.Equal(t, 2, recorded.FilterMessage("disk usage critical").Len())

	select {
	case err := <-errCh:
		assert.Contains(t, err.Error(), "critical threshold")
	default:
		t.Fatal("expected an error on the channel")
	}
}

func TestMonitorStart(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	errCh := make(chan error, 1)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	mock := ticker.NewForce(time.Hour)
	monitor := NewDiskMonitor(
		&config.DBConfig{Path: cwd},
		zap.New(core),
		errCh,
	).WithTicker(mock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	monitor.Start(ctx)

	select {
	case err := <-errCh:
		assert.Contains(t, err.Error(), "critical threshold")
	case <-time.After(time.Second):
		t.Fatal("expected an error on the channel")
	}

	mock.Force <- time.Now()
	assert.Eventually(t, func() bool {
		return recorded.FilterMessage("disk usage critical").Len() >= 2
	}, time.Second, 10*time.Millisecond)
}
