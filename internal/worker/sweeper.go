package worker

import (
	"log/slog"
	"time"
)

const (
	defaultSweepInterval = 10 * time.Minute
	maxSweepBackoff      = 1 * time.Hour
)

// SweepFunc removes expired cache entries and reports how many were dropped.
type SweepFunc func(now time.Time) (int, error)

// CacheSweeper periodically evicts expired entries from the cache backend.
// Sweep failures back the interval off exponentially; a successful sweep
// restores the base cadence.
type CacheSweeper struct {
	sweep    SweepFunc
	interval time.Duration
	backoff  time.Duration
	logger   *slog.Logger
	stopChan chan struct{}
}

func NewCacheSweeper(sweep SweepFunc, interval time.Duration, logger *slog.Logger) *CacheSweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &CacheSweeper{
		sweep:    sweep,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

func (w *CacheSweeper) Start() {
	w.logger.Info("Starting CacheSweeper", slog.Duration("interval", w.interval))
	go w.run()
}

func (w *CacheSweeper) Stop() {
	w.logger.Info("Stopping CacheSweeper")
	close(w.stopChan)
}

func (w *CacheSweeper) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.sweepOnce()
			if w.backoff > 0 {
				ticker.Reset(w.backoff)
			} else {
				ticker.Reset(w.interval)
			}
		}
	}
}

func (w *CacheSweeper) sweepOnce() {
	removed, err := w.sweep(time.Now())
	if err != nil {
		if w.backoff == 0 {
			w.backoff = w.interval
		} else {
			w.backoff *= 2
		}
		if w.backoff > maxSweepBackoff {
			w.backoff = maxSweepBackoff
		}
		w.logger.Error("Cache sweep failed",
			slog.String("error", err.Error()),
			slog.Duration("backoff", w.backoff))
		return
	}
	w.backoff = 0
	if removed > 0 {
		w.logger.Info("Cache sweep complete", slog.Int("removed", removed))
	}
}
