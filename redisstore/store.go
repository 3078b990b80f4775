package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/internal"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "gs"
	createRetries = 5
	scanBatchSize = 1000
)

// Store is the Redis session backend. It implements [goSession.Store].
//
//	Performance: 1 Redis command per operation.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	policy goSession.Expiry
}

// New creates a session [Store] backed by the given Redis client. prefix
// sets the key namespace ("gs" when empty); policy is used to derive native
// key TTLs on every write and must match the policy the Manager evaluates.
func New(client redis.UniversalClient, prefix string, policy goSession.Expiry) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{
		redis:  client,
		prefix: prefix,
		policy: policy,
	}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

// Create reserves a fresh id with SETNX; an existing key is never
// overwritten, and the (negligible) collision is retried with a new id.
func (s *Store) Create(ctx context.Context, rec *goSession.Record) error {
	if rec == nil {
		return goSession.ErrNilRecord
	}

	data, err := goSession.EncodeRecord(rec)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < createRetries; attempt++ {
		sid, err := internal.NewSessionID()
		if err != nil {
			return err
		}
		id := sid.String()

		ok, err := s.redis.SetNX(ctx, s.key(id), data, s.ttlFor(rec)).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", goSession.ErrStorageUnavailable, err)
		}
		if !ok {
			continue
		}

		rec.SessionID = id
		return nil
	}

	return goSession.ErrDuplicateSessionID
}

// Load retrieves and decodes one record. Missing keys are (nil, nil);
// undecodable blobs wrap [goSession.ErrCorruptRecord].
func (s *Store) Load(ctx context.Context, sessionID string) (*goSession.Record, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}

	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
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

// Save replaces the stored blob and re-derives the key TTL, which is what
// makes the inactivity policy sliding on this backend.
func (s *Store) Save(ctx context.Context, rec *goSession.Record) error {
	if rec == nil {
		return goSession.ErrNilRecord
	}
	if err := validateSessionID(rec.SessionID); err != nil {
		return err
	}

	data, err := goSession.EncodeRecord(rec)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(rec.SessionID), data, s.ttlFor(rec)).Err(); err != nil {
		return fmt.Errorf("%w: %v", goSession.ErrStorageUnavailable, err)
	}
	return nil
}

// Delete removes the key. Idempotent.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}

	if err := s.redis.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", goSession.ErrStorageUnavailable, err)
	}
	return nil
}

// ForEachID enumerates stored session ids with cursor SCAN, one full pass
// per invocation.
func (s *Store) ForEachID(ctx context.Context, fn func(sessionID string) error) error {
	pattern := s.prefix + ":*"
	var cursor uint64

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", goSession.ErrStorageUnavailable, err)
		}

		for _, key := range keys {
			id := strings.TrimPrefix(key, s.prefix+":")
			if validateSessionID(id) != nil {
				continue
			}
			if err := fn(id); err != nil {
				return err
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// ttlFor maps the policy's remaining lifetime onto a Redis TTL. Zero means
// no expiration; an already-expired record gets a one-second TTL so Redis
// reclaims it immediately instead of erroring on a negative value.
func (s *Store) ttlFor(rec *goSession.Record) time.Duration {
	if s.policy.Kind == goSession.ExpiryNever {
		return 0
	}
	ttl := s.policy.RemainingTTL(rec, time.Now())
	if ttl <= 0 {
		return time.Second
	}
	return ttl
}

func validateSessionID(sessionID string) error {
	if _, err := internal.ParseSessionID(sessionID); err != nil {
		return goSession.ErrInvalidSessionID
	}
	return nil
}
