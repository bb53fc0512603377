package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lightningnetwork/lnd/ticker"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vigcoin/coin/config"
	"go.uber.org/zap"
)

// DiskMonitor watches the partition holding the store and alerts when usage
// crosses the configured thresholds. Crossing the terminate threshold sends
// an error on errCh; the node shuts down on receipt.
const diskMonitorNamespace = "disk_monitor"

var (
	diskUsagePercentage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: diskMonitorNamespace,
			Name:      "usage_percentage",
			Help:      "Current disk usage percentage for the monitored path",
		},
		[]string{"path"},
	)

	diskTotalSpace = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: diskMonitorNamespace,
			Name:      "total_bytes",
			Help:      "Total disk space in bytes for the monitored path",
		},
		[]string{"path"},
	)

	diskFreeSpace = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: diskMonitorNamespace,
			Name:      "free_bytes",
			Help:      "Free disk space in bytes for the monitored path",
		},
		[]string{"path"},
	)
)

type DiskMonitor struct {
	path                string
	noticePercentage    int
	warnPercentage      int
	terminatePercentage int
	log                 *zap.Logger
	errCh               chan error
	ticker              ticker.Ticker
}

func NewDiskMonitor(
	cfg *config.DBConfig,
	log *zap.Logger,
	errCh chan error,
) *DiskMonitor {
	return &DiskMonitor{
		path:                cfg.Path,
		noticePercentage:    cfg.NoticePercentage,
		warnPercentage:      cfg.WarnPercentage,
		terminatePercentage: cfg.TerminatePercentage,
		log:                 log,
		errCh:               errCh,
		ticker:              ticker.New(time.Minute),
	}
}

// WithTicker replaces the default one minute ticker.
func (d *DiskMonitor) WithTicker(t ticker.Ticker) *DiskMonitor {
	d.ticker = t
	return d
}

// getDiskStats returns usage percentage, total and free bytes for the
// partition containing the path.
func (d *DiskMonitor) getDiskStats() (int, uint64, uint64, error) {
	absPath, err := filepath.Abs(d.path)
	if err != nil {
		return 0, 0, 0, errors.Wrap(err, "get disk stats")
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return 0, 0, 0, errors.Wrap(
			fmt.Errorf("path does not exist: %s", absPath),
			"get disk stats",
		)
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(absPath, &stat); err != nil {
		return 0, 0, 0, errors.Wrap(err, "get disk stats")
	}

	totalSpace := stat.Blocks * uint64(stat.Bsize)
	freeSpace := stat.Bfree * uint64(stat.Bsize)

	var usagePercentage int
	if totalSpace > 0 {
		usagePercentage = int(((totalSpace - freeSpace) * 100) / totalSpace)
	}

	return usagePercentage, totalSpace, freeSpace, nil
}

// Start checks once, then on every tick until ctx is done.
func (d *DiskMonitor) Start(ctx context.Context) {
	d.ticker.Resume()
	go func() {
		defer d.ticker.Stop()

		d.checkDiskUsage()

		for {
			select {
			case <-ctx.Done():
				return
			case <-d.ticker.Ticks():
				d.checkDiskUsage()
			}
		}
	}()
}

func (d *DiskMonitor) checkDiskUsage() {
	usagePercentage, totalSpace, freeSpace, err := d.getDiskStats()
	if err != nil {
		d.log.Error(
			"failed to check disk usage",
			zap.Error(err),
			zap.String("path", d.path),
		)
		return
	}

	diskUsagePercentage.WithLabelValues(d.path).Set(float64(usagePercentage))
	diskTotalSpace.WithLabelValues(d.path).Set(float64(totalSpace))
	diskFreeSpace.WithLabelValues(d.path).Set(float64(freeSpace))

	fields := []zap.Field{
		zap.String("path", d.path),
		zap.Int("usage_percentage", usagePercentage),
		zap.Uint64("free_bytes", freeSpace),
		zap.Uint64("total_bytes", totalSpace),
	}

	switch {
	case usagePercentage >= d.terminatePercentage:
		d.log.Error(
			"disk usage critical",
			append(fields, zap.Int("threshold", d.terminatePercentage))...,
		)

		if d.errCh == nil {
			return
		}
		// A pending alert already covers this one.
		select {
		case d.errCh <- errors.Wrap(
			fmt.Errorf(
				"disk usage for %s reached critical threshold: %d%%",
				d.path,
				usagePercentage,
			),
			"check disk usage",
		):
		default:
		}
	case usagePercentage >= d.warnPercentage:
		d.log.Warn(
			"disk usage high",
			append(fields, zap.Int("threshold", d.warnPercentage))...,
		)
	case usagePercentage >= d.noticePercentage:
		d.log.Info(
			"disk usage notice",
			append(fields, zap.Int("threshold", d.noticePercentage))...,
		)
	}
}
