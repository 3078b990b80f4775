package goSession

import "time"

// ExpiryKind defines a public type used by goSession APIs.
//
// ExpiryKind instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ExpiryKind uint8

const (
	// ExpiryNever keeps sessions alive until explicitly deleted.
	ExpiryNever ExpiryKind = iota
	// ExpiryAfterDuration expires a session a fixed duration after creation.
	ExpiryAfterDuration
	// ExpiryOnInactivity expires a session once it has seen no activity for
	// the configured timeout (sliding window).
	ExpiryOnInactivity
)

// Expiry is the pure expiry policy shared by the request path and the
// sweeper. It has no side effects: given a record and the current time it
// only answers Expired or Live.
//
// Granularity is one second (Record timestamps are unix seconds). The
// comparison is strictly greater: a record exactly at the boundary is Live.
type Expiry struct {
	Kind ExpiryKind
	TTL  time.Duration
}

// Never returns the policy that never expires sessions.
func Never() Expiry {
	return Expiry{Kind: ExpiryNever}
}

// AfterDuration returns the absolute policy: expired once d has passed since
// creation.
func AfterDuration(d time.Duration) Expiry {
	return Expiry{Kind: ExpiryAfterDuration, TTL: d}
}

// OnInactivity returns the sliding policy: expired once d has passed since
// the last activity.
func OnInactivity(d time.Duration) Expiry {
	return Expiry{Kind: ExpiryOnInactivity, TTL: d}
}

// Expired reports whether rec is logically dead at now under this policy.
func (e Expiry) Expired(rec *Record, now time.Time) bool {
	if rec == nil {
		return false
	}
	switch e.Kind {
	case ExpiryAfterDuration:
		if rec.ExpiresAt > 0 {
			return now.Unix() > rec.ExpiresAt
		}
		return now.Unix()-rec.CreatedAt > int64(e.TTL/time.Second)
	case ExpiryOnInactivity:
		return now.Unix()-rec.LastActiveAt > int64(e.TTL/time.Second)
	default:
		return false
	}
}

// Refreshes reports whether an access counts as activity under this policy,
// i.e. whether LastActiveAt should be refreshed on reads as well as writes.
// Only the inactivity policy depends on LastActiveAt.
func (e Expiry) Refreshes() bool {
	return e.Kind == ExpiryOnInactivity
}

// RemainingTTL returns how long rec stays live from now, for backends that
// map expiry onto a native TTL (the Redis backend). Zero means "no TTL";
// a negative value means the record is already expired.
func (e Expiry) RemainingTTL(rec *Record, now time.Time) time.Duration {
	switch e.Kind {
	case ExpiryAfterDuration:
		expiresAt := rec.ExpiresAt
		if expiresAt == 0 {
			expiresAt = rec.CreatedAt + int64(e.TTL/time.Second)
		}
		return time.Duration(expiresAt-now.Unix()) * time.Second
	case ExpiryOnInactivity:
		return time.Duration(rec.LastActiveAt+int64(e.TTL/time.Second)-now.Unix()) * time.Second
	default:
		return 0
	}
}

func (e Expiry) valid() bool {
	switch e.Kind {
	case ExpiryNever:
		return true
	case ExpiryAfterDuration, ExpiryOnInactivity:
		return e.TTL > 0
	default:
		return false
	}
}
