package goSession

import "errors"

var (
	// ErrInvalidSessionID is returned when a session id fails path-safety
	// validation before it ever reaches storage.
	ErrInvalidSessionID = errors.New("invalid session id")
	// ErrDuplicateSessionID is returned when id generation exhausts its
	// collision retries without reserving a fresh record.
	ErrDuplicateSessionID = errors.New("duplicate session id")
	// ErrCorruptRecord is returned when stored bytes fail to decode as a
	// session record. See [CorruptPolicy] for how [Manager.Load] maps it.
	ErrCorruptRecord = errors.New("corrupt session record")
	// ErrStorageUnavailable wraps backend read/write/rename/scan failures.
	ErrStorageUnavailable = errors.New("session storage unavailable")
	// ErrNilRecord is returned when a nil record is passed to a write path.
	ErrNilRecord = errors.New("nil session record")
	// ErrManagerNotReady is returned when a Manager method is called on an
	// unbuilt or misconfigured Manager.
	ErrManagerNotReady = errors.New("manager not initialized")
)
