package goSession

import (
	"context"
	"errors"
	"time"
)

// DeleteExpired runs one full deletion pass over the store: enumerate,
// load, evaluate, delete. Expiry is re-evaluated on the freshly loaded
// record immediately before each delete, so a session refreshed between
// enumeration and the delete check survives. Records that vanish mid-pass
// are skipped, and a single record's failure never aborts the pass.
//
// Backends implementing [ExpiredDeleter] (the file backend, with its mtime
// fast path) are delegated to; otherwise the generic walk below is used.
func (m *Manager) DeleteExpired(ctx context.Context) (SweepStats, error) {
	if err := m.ready(); err != nil {
		return SweepStats{}, err
	}

	if deleter, ok := m.store.(ExpiredDeleter); ok {
		stats, err := deleter.DeleteExpired(ctx, m.config.Expiry)
		m.recordSweep(stats)
		return stats, err
	}

	var stats SweepStats
	walkErr := m.store.ForEachID(ctx, func(sessionID string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++

		rec, err := m.store.Load(ctx, sessionID)
		if err != nil {
			stats.Errors++
			return nil
		}
		if rec == nil {
			// already removed by a request or an earlier pass
			stats.Skipped++
			return nil
		}
		if !m.config.Expiry.Expired(rec, time.Now()) {
			stats.Skipped++
			return nil
		}

		if err := m.store.Delete(ctx, sessionID); err != nil {
			stats.Errors++
			return nil
		}
		stats.Deleted++
		return nil
	})

	m.recordSweep(stats)

	if walkErr != nil && (errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded)) {
		return stats, nil
	}
	return stats, walkErr
}

// ContinuouslyDeleteExpired is the long-running sweep loop, expressed as a
// plain blocking call so the caller owns scheduling and shutdown:
//
//	go func() { _ = manager.ContinuouslyDeleteExpired(ctx, time.Minute) }()
//
// Every interval it runs [Manager.DeleteExpired]. Cancelling ctx is the
// normal termination path and returns nil, including mid-sleep. Pass
// failures are counted, forwarded to the sweep error hook, and never stop
// the loop. A non-positive interval falls back to Config.Sweep.Interval.
func (m *Manager) ContinuouslyDeleteExpired(ctx context.Context, interval time.Duration) error {
	if err := m.ready(); err != nil {
		return err
	}

	if interval <= 0 {
		interval = m.config.Sweep.Interval
	}
	if interval <= 0 {
		return errors.New("sweep interval must be > 0")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := m.DeleteExpired(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				m.metrics.Inc(MetricSweepError)
				if m.sweepErrHook != nil {
					m.sweepErrHook(err)
				}
			}
		}
	}
}

func (m *Manager) recordSweep(stats SweepStats) {
	m.metrics.Inc(MetricSweepRun)
	m.metrics.Add(MetricSweepDeleted, stats.Deleted)
	m.metrics.Add(MetricSweepSkipped, stats.Skipped)
	m.metrics.Add(MetricSweepError, stats.Errors)
}
