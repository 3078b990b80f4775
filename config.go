package goSession

import (
	"errors"
	"time"
)

// CorruptPolicy defines a public type used by goSession APIs.
//
// CorruptPolicy decides how [Manager.Load] surfaces records whose stored
// bytes fail to decode. The choice is made once at configuration time and
// applied consistently; the two behaviors are never mixed.
type CorruptPolicy int

const (
	// CorruptAsMissing treats undecodable records like absent ones
	// (nil, nil). Robust against partial legacy writes from crashes.
	// This is the default.
	CorruptAsMissing CorruptPolicy = iota
	// CorruptAsError surfaces [ErrCorruptRecord] so callers can distinguish
	// "never existed" from "damaged".
	CorruptAsError
)

/*
====================================
SWEEP CONFIG
====================================
*/

// SweepConfig defines a public type used by goSession APIs.
//
// SweepConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SweepConfig struct {
	// Interval is the default pause between deletion passes, used when
	// [Manager.ContinuouslyDeleteExpired] is called with a non-positive
	// interval.
	Interval time.Duration
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goSession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Expiry  Expiry
	Corrupt CorruptPolicy
	Sweep   SweepConfig
	Metrics MetricsConfig
}

// DefaultConfig returns the recommended starting configuration: 24h
// inactivity expiry, one-minute sweep interval, corrupt records treated as
// missing, metrics enabled without latency histograms.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Expiry:  OnInactivity(24 * time.Hour),
		Corrupt: CorruptAsMissing,
		Sweep: SweepConfig{
			Interval: time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if !c.Expiry.valid() {
		return errors.New("Expiry TTL must be > 0 for duration-based policies")
	}
	if c.Expiry.Kind != ExpiryNever && c.Expiry.TTL < time.Second {
		return errors.New("Expiry TTL must be >= 1s (record timestamps are unix seconds)")
	}

	switch c.Corrupt {
	case CorruptAsMissing, CorruptAsError:
		// valid
	default:
		return errors.New("Corrupt policy is invalid")
	}

	if c.Sweep.Interval < 0 {
		return errors.New("Sweep Interval must be >= 0")
	}

	return nil
}
