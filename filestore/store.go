package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/internal"
	"github.com/google/uuid"
)

const (
	defaultDirMode       = os.FileMode(0o700)
	defaultFileMode      = os.FileMode(0o600)
	defaultMinRecordAge  = time.Minute
	defaultMaxRecordSize = 1 << 20

	createRetries = 5
	tmpPrefix     = ".tmp-"
)

// Config defines a public type used by the filestore backend.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// Root is the directory holding one file per session. Created (with
	// parents) if absent. Required.
	Root string

	// DirMode and FileMode default to 0700 / 0600.
	DirMode  os.FileMode
	FileMode os.FileMode

	// MinRecordAge is the sweep fast path: DeleteExpired skips files whose
	// modification time is younger than this, without opening them. Zero
	// means the one-minute default; negative disables the fast path.
	MinRecordAge time.Duration

	// FsyncOnSave forces an fsync before the atomic rename. Slower, but the
	// record content is durable once Save returns.
	FsyncOnSave bool

	// MaxRecordSize caps the encoded record size in bytes. Zero means the
	// 1 MiB default; negative means unlimited.
	MaxRecordSize int
}

// Store is the filesystem session backend. It implements
// [goSession.Store] and [goSession.ExpiredDeleter].
//
// All methods are safe for concurrent use; the atomic rename in save paths
// is the only synchronization point, so operations on different session ids
// never block each other.
type Store struct {
	root          string
	dirMode       os.FileMode
	fileMode      os.FileMode
	minRecordAge  time.Duration
	fsyncOnSave   bool
	maxRecordSize int
}

// New creates the root directory if needed and returns a ready Store.
func New(cfg Config) (*Store, error) {
	if cfg.Root == "" {
		return nil, errors.New("storage root required")
	}

	s := &Store{
		root:          cfg.Root,
		dirMode:       cfg.DirMode,
		fileMode:      cfg.FileMode,
		minRecordAge:  cfg.MinRecordAge,
		fsyncOnSave:   cfg.FsyncOnSave,
		maxRecordSize: cfg.MaxRecordSize,
	}
	if s.dirMode == 0 {
		s.dirMode = defaultDirMode
	}
	if s.fileMode == 0 {
		s.fileMode = defaultFileMode
	}
	if s.minRecordAge == 0 {
		s.minRecordAge = defaultMinRecordAge
	}
	if s.minRecordAge < 0 {
		s.minRecordAge = 0
	}
	if s.maxRecordSize == 0 {
		s.maxRecordSize = defaultMaxRecordSize
	}

	if err := os.MkdirAll(s.root, s.dirMode); err != nil {
		return nil, fmt.Errorf("%w: %v", goSession.ErrStorageUnavailable, err)
	}

	return s, nil
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// Create reserves a fresh session id with create-new semantics and lands
// the encoded record via atomic replace. On the (negligible) id collision
// the reservation fails with ErrExist and a new id is tried; an existing
// record is never overwritten.
func (s *Store) Create(ctx context.Context, rec *goSession.Record) error {
	if rec == nil {
		return goSession.ErrNilRecord
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.encode(rec)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < createRetries; attempt++ {
		sid, err := internal.NewSessionID()
		if err != nil {
			return err
		}
		id := sid.String()
		path := filepath.Join(s.root, id)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, s.fileMode)
		if err != nil {
			if errors.Is(err, os.ErrExist) {
				continue
			}
			return fmt.Errorf("%w: %v", goSession.ErrStorageUnavailable, err)
		}
		// Reservation only; the empty file is replaced below. A sweep pass
		// racing this window sees an undecodable young file and skips it.
		if err := f.Close(); err != nil {
			_ = os.Remove(path)
			return fmt.Errorf("%w: %v", goSession.ErrStorageUnavailable, err)
		}

		if err := s.writeAtomic(path, data); err != nil {
			_ = os.Remove(path)
			return err
		}

		rec.SessionID = id
		return nil
	}

	return goSession.ErrDuplicateSessionID
}

// Load reads and decodes one record. Missing files are (nil, nil);
// undecodable content wraps [goSession.ErrCorruptRecord].
func (s *Store) Load(ctx context.Context, sessionID string) (*goSession.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.pathFor(sessionID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", goSession.ErrStorageUnavailable, err)
	}

	rec, err := goSession.DecodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", goSession.ErrCorruptRecord, err)
	}
	rec.SessionID = sessionID

	return rec, nil
}

// Save atomically replaces the record file. Concurrent saves on the same id
// race; the last rename wins, and a concurrent Load observes one of the two
// complete records, never a mixture.
func (s *Store) Save(ctx context.Context, rec *goSession.Record) error {
	if rec == nil {
		return goSession.ErrNilRecord
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathFor(rec.SessionID)
	if err != nil {
		return err
	}

	data, err := s.encode(rec)
	if err != nil {
		return err
	}

	return s.writeAtomic(path, data)
}

// Delete removes the record file. Idempotent.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathFor(sessionID)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %v", goSession.ErrStorageUnavailable, err)
	}
	return nil
}

// ForEachID walks the root directory once, yielding every stored session
// id. Temporary files and foreign names are skipped.
func (s *Store) ForEachID(ctx context.Context, fn func(sessionID string) error) error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("%w: %v", goSession.ErrStorageUnavailable, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			continue
		}
		id := entry.Name()
		if validateSessionID(id) != nil {
			continue
		}
		if err := fn(id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteExpired is the sweep fast path: one directory pass that skips
// files younger than MinRecordAge by modification time before opening
// them, then re-evaluates expiry on the freshly decoded record immediately
// before each delete. Records that vanished since enumeration are skipped;
// a single record's failure never aborts the pass. Undecodable files past
// MinRecordAge are treated as crash debris and removed.
func (s *Store) DeleteExpired(ctx context.Context, policy goSession.Expiry) (goSession.SweepStats, error) {
	var stats goSession.SweepStats

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return stats, fmt.Errorf("%w: %v", goSession.ErrStorageUnavailable, err)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			// cancellation is the normal way to stop a pass early
			return stats, nil
		}
		if entry.IsDir() {
			continue
		}
		id := entry.Name()
		if validateSessionID(id) != nil {
			continue
		}
		stats.Scanned++

		info, err := entry.Info()
		if err != nil {
			// vanished between enumeration and stat
			stats.Skipped++
			continue
		}
		if s.minRecordAge > 0 && time.Since(info.ModTime()) < s.minRecordAge {
			stats.Skipped++
			continue
		}

		rec, err := s.Load(ctx, id)
		if err != nil {
			if errors.Is(err, goSession.ErrCorruptRecord) {
				// old enough to be past any in-flight create: crash debris
				if rmErr := s.Delete(ctx, id); rmErr != nil {
					stats.Errors++
				} else {
					stats.Deleted++
				}
				continue
			}
			stats.Errors++
			continue
		}
		if rec == nil {
			stats.Skipped++
			continue
		}

		if !policy.Expired(rec, time.Now()) {
			stats.Skipped++
			continue
		}

		if err := s.Delete(ctx, id); err != nil {
			stats.Errors++
			continue
		}
		stats.Deleted++
	}

	return stats, nil
}

func (s *Store) encode(rec *goSession.Record) ([]byte, error) {
	data, err := goSession.EncodeRecord(rec)
	if err != nil {
		return nil, err
	}
	if s.maxRecordSize > 0 && len(data) > s.maxRecordSize {
		return nil, errors.New("encoded record exceeds MaxRecordSize")
	}
	return data, nil
}

// writeAtomic lands data at path through a temp file and a single rename.
// The temp file is removed on every failure path.
func (s *Store) writeAtomic(path string, data []byte) error {
	tmp := filepath.Join(s.root, tmpPrefix+uuid.NewString())

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, s.fileMode)
	if err != nil {
		return fmt.Errorf("%w: %v", goSession.ErrStorageUnavailable, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", goSession.ErrStorageUnavailable, err)
	}
	if s.fsyncOnSave {
		if err := f.Sync(); err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return fmt.Errorf("%w: %v", goSession.ErrStorageUnavailable, err)
		}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", goSession.ErrStorageUnavailable, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", goSession.ErrStorageUnavailable, err)
	}
	return nil
}
