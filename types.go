package goSession

import "context"

// Record defines a public type used by goSession APIs.
//
// A Record is the unit of persistence: one opaque payload plus the
// timestamps the [Expiry] policy evaluates. Timestamps are unix seconds.
// SessionID and CreatedAt are immutable once the record is created;
// ExpiresAt is set at creation under the absolute policy and never
// recomputed afterwards.
type Record struct {
	SessionID string
	Payload   []byte

	CreatedAt    int64
	LastActiveAt int64
	ExpiresAt    int64 // zero unless the absolute policy set it at creation
}

// Clone returns a deep copy of the record, including the payload bytes.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Payload = cloneBytes(r.Payload)
	return &out
}

// Store is the backend contract every session storage medium implements.
//
// Absence is a normal outcome, not an error: Load returns (nil, nil) when no
// record exists for the id. Delete is idempotent. Save must be an atomic
// replace — a concurrent Load observes either the complete old record or the
// complete new one, never a mixture. Operations on different ids must not
// block each other.
type Store interface {
	// Create persists a brand-new record. The store generates a fresh
	// high-entropy session id, retries internally on collision (never
	// silently overwriting an existing record), and fills rec.SessionID.
	Create(ctx context.Context, rec *Record) error

	// Load reads and decodes the record for the id. Missing records yield
	// (nil, nil); undecodable bytes yield an error wrapping
	// [ErrCorruptRecord]; ids failing path-safety validation yield an error
	// wrapping [ErrInvalidSessionID] without touching storage.
	Load(ctx context.Context, sessionID string) (*Record, error)

	// Save atomically replaces the stored representation for rec.SessionID.
	// Two concurrent saves on the same id race; the last replace wins.
	Save(ctx context.Context, rec *Record) error

	// Delete removes the stored representation. Deleting an absent id is
	// not an error.
	Delete(ctx context.Context, sessionID string) error

	// ForEachID enumerates all currently stored session ids, one full pass
	// per invocation. It is consumed only by the sweeper. A non-nil error
	// from fn aborts the walk and is returned unchanged.
	ForEachID(ctx context.Context, fn func(sessionID string) error) error
}

// SweepStats summarizes one full deletion pass over a store.
type SweepStats struct {
	Scanned uint64
	Deleted uint64
	Skipped uint64
	Errors  uint64
}

// ExpiredDeleter is an optional backend fast path for the sweeper. Backends
// that can enumerate candidates cheaper than load-everything (the file
// backend skips young files by mtime) implement it; [Manager.DeleteExpired]
// delegates when available and falls back to the generic walk otherwise.
//
// Implementations must re-evaluate expiry on the freshly loaded record
// immediately before each delete, tolerate records vanishing mid-pass, and
// never let a single record's failure abort the pass.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context, policy Expiry) (SweepStats, error)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
