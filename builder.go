package goSession

import (
	"errors"
	"time"
)

// Builder defines a public type used by goSession APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	store  Store

	sweepErrHook func(error)

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore sets the backend the Manager operates on. Required; backends
// live in the filestore and redisstore subpackages, or implement [Store]
// yourself.
func (b *Builder) WithStore(store Store) *Builder {
	b.store = store
	return b
}

// WithExpiry sets the expiry policy evaluated on every access and sweep.
func (b *Builder) WithExpiry(policy Expiry) *Builder {
	b.config.Expiry = policy
	return b
}

// WithCorruptPolicy sets how undecodable records surface from Load.
func (b *Builder) WithCorruptPolicy(policy CorruptPolicy) *Builder {
	b.config.Corrupt = policy
	return b
}

// WithSweepInterval sets the default pause between deletion passes.
func (b *Builder) WithSweepInterval(interval time.Duration) *Builder {
	b.config.Sweep.Interval = interval
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithSweepErrorHook installs a callback invoked with per-pass sweep
// failures. The sweeper never aborts on them; the hook exists so callers can
// plug in their own logging. The hook must be safe for concurrent use.
func (b *Builder) WithSweepErrorHook(hook func(error)) *Builder {
	b.sweepErrHook = hook
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if b.store == nil {
		return nil, errors.New("session store required")
	}

	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	manager := &Manager{
		config:       b.config,
		store:        b.store,
		metrics:      NewMetrics(b.config.Metrics),
		sweepErrHook: b.sweepErrHook,
	}

	b.built = true

	return manager, nil
}
