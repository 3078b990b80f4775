package goSession

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/internal"
)

// memStore is a minimal in-memory Store used to exercise the Manager and
// the generic sweep walk without a filesystem. It stores encoded blobs so
// corrupt-record behavior can be tested by seeding garbage.
type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{blobs: make(map[string][]byte)}
}

func (s *memStore) Create(_ context.Context, rec *Record) error {
	if rec == nil {
		return ErrNilRecord
	}
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	sid, err := internal.NewSessionID()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[sid.String()] = data
	rec.SessionID = sid.String()
	return nil
}

func (s *memStore) Load(_ context.Context, sessionID string) (*Record, error) {
	s.mu.Lock()
	data, ok := s.blobs[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	rec, err := DecodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	rec.SessionID = sessionID
	return rec, nil
}

func (s *memStore) Save(_ context.Context, rec *Record) error {
	if rec == nil {
		return ErrNilRecord
	}
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[rec.SessionID] = data
	return nil
}

func (s *memStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, sessionID)
	return nil
}

func (s *memStore) ForEachID(ctx context.Context, fn func(string) error) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.blobs))
	for id := range s.blobs {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(id); err != nil {
			return err
		}
	}
	return nil
}

// seed inserts a record with explicit timestamps under a fresh id.
func (s *memStore) seed(t *testing.T, rec *Record) string {
	t.Helper()
	if err := s.Create(context.Background(), rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	return rec.SessionID
}

func (s *memStore) has(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[sessionID]
	return ok
}

func newTestManager(t *testing.T, store Store, policy Expiry) *Manager {
	t.Helper()
	m, err := New().
		WithStore(store).
		WithExpiry(policy).
		Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	return m
}

func TestCreateSetsTimestampsAndCopiesPayload(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, AfterDuration(time.Hour))
	ctx := context.Background()

	payload := []byte("mutable caller slice")
	before := time.Now().Unix()
	rec, err := m.Create(ctx, payload)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	after := time.Now().Unix()

	if rec.SessionID == "" {
		t.Fatal("expected session id to be assigned")
	}
	if rec.CreatedAt < before || rec.CreatedAt > after {
		t.Fatalf("CreatedAt out of range: %d", rec.CreatedAt)
	}
	if rec.LastActiveAt != rec.CreatedAt {
		t.Fatalf("expected LastActiveAt == CreatedAt at creation, got %d vs %d", rec.LastActiveAt, rec.CreatedAt)
	}
	wantExpiry := rec.CreatedAt + 3600
	if rec.ExpiresAt < wantExpiry-1 || rec.ExpiresAt > wantExpiry+1 {
		t.Fatalf("expected ExpiresAt near CreatedAt+1h, got %d", rec.ExpiresAt)
	}

	// caller mutation must not reach the stored record
	payload[0] = 'X'
	got, err := m.Load(ctx, rec.SessionID)
	if err != nil || got == nil {
		t.Fatalf("load: %+v %v", got, err)
	}
	if !bytes.Equal(got.Payload, []byte("mutable caller slice")) {
		t.Fatalf("stored payload was aliased to caller slice: %q", got.Payload)
	}
}

func TestCreateUnderInactivityLeavesExpiresAtZero(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, OnInactivity(time.Hour))

	rec, err := m.Create(context.Background(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ExpiresAt != 0 {
		t.Fatalf("inactivity policy must not fix an absolute deadline, got %d", rec.ExpiresAt)
	}
}

func TestLoadAbsentSession(t *testing.T) {
	m := newTestManager(t, newMemStore(), OnInactivity(time.Hour))

	got, err := m.Load(context.Background(), "AAAAAAAAAAAAAAAAAAAAAA")
	if err != nil {
		t.Fatalf("load absent: %v", err)
	}
	if got != nil {
		t.Fatalf("expected absent, got %+v", got)
	}
	if v := m.MetricsSnapshot().Counters[MetricSessionMissed]; v != 1 {
		t.Fatalf("expected 1 missed load, got %d", v)
	}
}

func TestLoadExpiredDeletesOnAccess(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, OnInactivity(time.Minute))
	ctx := context.Background()

	old := time.Now().Add(-time.Hour).Unix()
	id := store.seed(t, &Record{Payload: []byte("stale"), CreatedAt: old, LastActiveAt: old})

	got, err := m.Load(ctx, id)
	if err != nil {
		t.Fatalf("load expired: %v", err)
	}
	if got != nil {
		t.Fatalf("expected expired session to be reported absent, got %+v", got)
	}
	if store.has(id) {
		t.Fatal("expected expired session to be deleted on access")
	}
	if v := m.MetricsSnapshot().Counters[MetricSessionExpiredOnAccess]; v != 1 {
		t.Fatalf("expected 1 expired-on-access, got %d", v)
	}
}

func TestLoadCorruptAsMissing(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, OnInactivity(time.Hour))

	store.mu.Lock()
	store.blobs["AAAAAAAAAAAAAAAAAAAAAA"] = []byte("\xffnot a record")
	store.mu.Unlock()

	got, err := m.Load(context.Background(), "AAAAAAAAAAAAAAAAAAAAAA")
	if err != nil {
		t.Fatalf("expected corrupt record to surface as missing, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil record, got %+v", got)
	}
	if v := m.MetricsSnapshot().Counters[MetricSessionCorrupt]; v != 1 {
		t.Fatalf("expected 1 corrupt load, got %d", v)
	}
}

func TestLoadCorruptAsError(t *testing.T) {
	store := newMemStore()
	m, err := New().
		WithStore(store).
		WithExpiry(OnInactivity(time.Hour)).
		WithCorruptPolicy(CorruptAsError).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	store.mu.Lock()
	store.blobs["AAAAAAAAAAAAAAAAAAAAAA"] = []byte("\xffnot a record")
	store.mu.Unlock()

	if _, err := m.Load(context.Background(), "AAAAAAAAAAAAAAAAAAAAAA"); !errors.Is(err, ErrCorruptRecord) {
		t.Fatalf("expected ErrCorruptRecord, got %v", err)
	}
}

func TestSaveRefreshesActivityOnlyUnderInactivity(t *testing.T) {
	ctx := context.Background()

	store := newMemStore()
	m := newTestManager(t, store, OnInactivity(time.Hour))
	old := time.Now().Add(-30 * time.Minute).Unix()
	id := store.seed(t, &Record{Payload: []byte("p"), CreatedAt: old, LastActiveAt: old})

	rec, err := m.Load(ctx, id)
	if err != nil || rec == nil {
		t.Fatalf("load: %+v %v", rec, err)
	}
	if err := m.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.LastActiveAt <= old {
		t.Fatal("expected save to refresh LastActiveAt under inactivity policy")
	}

	absStore := newMemStore()
	abs := newTestManager(t, absStore, AfterDuration(time.Hour))
	absID := absStore.seed(t, &Record{Payload: []byte("p"), CreatedAt: old, LastActiveAt: old})
	absRec, err := abs.Load(ctx, absID)
	if err != nil || absRec == nil {
		t.Fatalf("load: %+v %v", absRec, err)
	}
	if err := abs.Save(ctx, absRec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if absRec.LastActiveAt != old {
		t.Fatal("absolute policy must not rewrite LastActiveAt on save")
	}
}

func TestTouchRefreshesWithoutPayloadChange(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, OnInactivity(time.Hour))
	ctx := context.Background()

	old := time.Now().Add(-30 * time.Minute).Unix()
	id := store.seed(t, &Record{Payload: []byte("untouched"), CreatedAt: old, LastActiveAt: old})

	if err := m.Touch(ctx, id); err != nil {
		t.Fatalf("touch: %v", err)
	}

	got, err := m.Load(ctx, id)
	if err != nil || got == nil {
		t.Fatalf("load: %+v %v", got, err)
	}
	if got.LastActiveAt <= old {
		t.Fatal("expected touch to refresh LastActiveAt")
	}
	if !bytes.Equal(got.Payload, []byte("untouched")) {
		t.Fatalf("touch must not change the payload, got %q", got.Payload)
	}
	if v := m.MetricsSnapshot().Counters[MetricSessionTouched]; v != 1 {
		t.Fatalf("expected 1 touch, got %d", v)
	}
}

func TestTouchIsNoopUnderAbsolutePolicy(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, AfterDuration(time.Hour))

	old := time.Now().Add(-30 * time.Minute).Unix()
	id := store.seed(t, &Record{Payload: []byte("p"), CreatedAt: old, LastActiveAt: old})

	if err := m.Touch(context.Background(), id); err != nil {
		t.Fatalf("touch: %v", err)
	}
	got, err := m.Load(context.Background(), id)
	if err != nil || got == nil {
		t.Fatalf("load: %+v %v", got, err)
	}
	if got.LastActiveAt != old {
		t.Fatal("touch must be a no-op when reads are not activity")
	}
}

func TestTouchAbsentSessionIsNotAnError(t *testing.T) {
	m := newTestManager(t, newMemStore(), OnInactivity(time.Hour))
	if err := m.Touch(context.Background(), "AAAAAAAAAAAAAAAAAAAAAA"); err != nil {
		t.Fatalf("touch absent: %v", err)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, OnInactivity(time.Hour))
	ctx := context.Background()

	rec, err := m.Create(ctx, []byte("x"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := m.Delete(ctx, rec.SessionID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := m.Delete(ctx, rec.SessionID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if got, err := m.Load(ctx, rec.SessionID); err != nil || got != nil {
		t.Fatalf("expected absent after delete, got %+v err %v", got, err)
	}
}

func TestBuilderRequiresStore(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected build without store to fail")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().WithStore(newMemStore())
	if _, err := b.Build(); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("expected second build to fail")
	}
}

func TestBuilderRejectsInvalidExpiry(t *testing.T) {
	if _, err := New().WithStore(newMemStore()).WithExpiry(OnInactivity(0)).Build(); err == nil {
		t.Fatal("expected zero-TTL inactivity policy to be rejected")
	}
	if _, err := New().WithStore(newMemStore()).WithExpiry(AfterDuration(500 * time.Millisecond)).Build(); err == nil {
		t.Fatal("expected sub-second TTL to be rejected")
	}
	if _, err := New().WithStore(newMemStore()).WithExpiry(Never()).Build(); err != nil {
		t.Fatalf("never policy must be valid: %v", err)
	}
}

func TestNilManagerNotReady(t *testing.T) {
	var m *Manager
	if _, err := m.Load(context.Background(), "x"); !errors.Is(err, ErrManagerNotReady) {
		t.Fatalf("expected ErrManagerNotReady, got %v", err)
	}
}
