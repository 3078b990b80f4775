package goSession

import (
	"context"
	"errors"
	"time"
)

// Manager is the shared session engine handle built by [Builder.Build]. It
// binds one [Store] to one [Expiry] policy and owns the per-request surface
// (Create, Load, Save, Touch, Delete) plus the sweeper
// ([Manager.ContinuouslyDeleteExpired]).
//
// A Manager is a value to share, not a singleton: the request path and the
// sweeper goroutine operate on the same *Manager concurrently, and multiple
// Managers over distinct roots coexist (tests rely on this).
type Manager struct {
	config  Config
	store   Store
	metrics *Metrics

	sweepErrHook func(error)
}

func (m *Manager) ready() error {
	if m == nil || m.store == nil {
		return ErrManagerNotReady
	}
	return nil
}

// Create establishes a new session with the given payload. The store
// generates the id; CreatedAt and LastActiveAt are set to now, and under the
// absolute policy ExpiresAt is fixed here, once, from the creation time.
// The payload is copied; the caller keeps ownership of its slice.
func (m *Manager) Create(ctx context.Context, payload []byte) (*Record, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}

	now := time.Now()
	rec := &Record{
		Payload:      cloneBytes(payload),
		CreatedAt:    now.Unix(),
		LastActiveAt: now.Unix(),
	}
	if m.config.Expiry.Kind == ExpiryAfterDuration {
		rec.ExpiresAt = now.Add(m.config.Expiry.TTL).Unix()
	}

	if err := m.store.Create(ctx, rec); err != nil {
		return nil, err
	}

	m.metrics.Inc(MetricSessionCreated)
	return rec, nil
}

// Load returns the live record for the id, or (nil, nil) when there is
// none. A record the policy judges expired is deleted on the spot
// (delete-on-access) and reported as absent. Corrupt records follow the
// configured [CorruptPolicy].
//
//	Performance: 1 backend read (+1 delete when expiry is detected).
func (m *Manager) Load(ctx context.Context, sessionID string) (*Record, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}

	start := time.Now()
	rec, err := m.store.Load(ctx, sessionID)
	m.metrics.Observe(MetricLoadLatency, time.Since(start))
	if err != nil {
		if errors.Is(err, ErrCorruptRecord) {
			m.metrics.Inc(MetricSessionCorrupt)
			if m.config.Corrupt == CorruptAsMissing {
				return nil, nil
			}
		}
		return nil, err
	}
	if rec == nil {
		m.metrics.Inc(MetricSessionMissed)
		return nil, nil
	}

	if m.config.Expiry.Expired(rec, time.Now()) {
		m.metrics.Inc(MetricSessionExpiredOnAccess)
		if err := m.store.Delete(ctx, sessionID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	m.metrics.Inc(MetricSessionLoaded)
	return rec, nil
}

// Save atomically replaces the stored record. Under the inactivity policy
// the write counts as activity and LastActiveAt is refreshed; under other
// policies timestamps are left alone. Two concurrent saves on the same id
// race and the last replace wins — each request owns its session
// round-trip.
func (m *Manager) Save(ctx context.Context, rec *Record) error {
	if err := m.ready(); err != nil {
		return err
	}
	if rec == nil {
		return ErrNilRecord
	}

	if m.config.Expiry.Refreshes() {
		rec.LastActiveAt = time.Now().Unix()
	}

	if err := m.store.Save(ctx, rec); err != nil {
		return err
	}

	m.metrics.Inc(MetricSessionSaved)
	return nil
}

// Touch records read-only activity: it refreshes LastActiveAt without
// changing the payload. A no-op under policies where reads are not activity.
// Touching an absent or expired session is not an error.
func (m *Manager) Touch(ctx context.Context, sessionID string) error {
	if err := m.ready(); err != nil {
		return err
	}
	if !m.config.Expiry.Refreshes() {
		return nil
	}

	rec, err := m.Load(ctx, sessionID)
	if err != nil || rec == nil {
		return err
	}

	rec.LastActiveAt = time.Now().Unix()
	if err := m.store.Save(ctx, rec); err != nil {
		return err
	}

	m.metrics.Inc(MetricSessionTouched)
	return nil
}

// Delete removes the session. Idempotent: deleting an absent id succeeds.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	if err := m.ready(); err != nil {
		return err
	}

	if err := m.store.Delete(ctx, sessionID); err != nil {
		return err
	}

	m.metrics.Inc(MetricSessionDeleted)
	return nil
}

// Store exposes the underlying backend, mainly for tests and exporters.
func (m *Manager) Store() Store {
	return m.store
}

// ExpiryPolicy returns the policy the Manager evaluates.
func (m *Manager) ExpiryPolicy() Expiry {
	return m.config.Expiry
}

// MetricsSnapshot returns a point-in-time copy of all counters and
// histograms.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	return m.metrics.Snapshot()
}
