package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
)

func seedExpired(t *testing.T, s *Store) string {
	t.Helper()
	old := time.Now().Add(-2 * time.Hour).Unix()
	rec := &goSession.Record{Payload: []byte("stale"), CreatedAt: old, LastActiveAt: old}
	if err := s.Create(context.Background(), rec); err != nil {
		t.Fatalf("seed expired: %v", err)
	}
	return rec.SessionID
}

func ageFile(t *testing.T, s *Store, name string, age time.Duration) {
	t.Helper()
	past := time.Now().Add(-age)
	if err := os.Chtimes(filepath.Join(s.Root(), name), past, past); err != nil {
		t.Fatalf("age file: %v", err)
	}
}

func TestDeleteExpiredWithFastPathDisabled(t *testing.T) {
	s := newStoreTest(t, Config{MinRecordAge: -1})
	ctx := context.Background()
	policy := goSession.OnInactivity(time.Minute)

	dead := seedExpired(t, s)
	live := newRecord([]byte("live"))
	if err := s.Create(ctx, live); err != nil {
		t.Fatalf("create live: %v", err)
	}

	stats, err := s.DeleteExpired(ctx, policy)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if stats.Scanned != 2 || stats.Deleted != 1 || stats.Skipped != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if got, _ := s.Load(ctx, dead); got != nil {
		t.Fatal("expected expired session to be deleted")
	}
	if got, err := s.Load(ctx, live.SessionID); err != nil || got == nil {
		t.Fatalf("expected live session to survive: %+v %v", got, err)
	}
}

func TestDeleteExpiredFastPathSkipsYoungFiles(t *testing.T) {
	s := newStoreTest(t, Config{MinRecordAge: time.Minute})
	ctx := context.Background()
	policy := goSession.OnInactivity(time.Minute)

	// logically expired, but the file was just written: the fast path must
	// skip it without opening
	dead := seedExpired(t, s)

	stats, err := s.DeleteExpired(ctx, policy)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if stats.Deleted != 0 || stats.Skipped != 1 {
		t.Fatalf("expected the young file to be skipped: %+v", stats)
	}

	// once the file is old enough the next pass reclaims it
	ageFile(t, s, dead, 2*time.Minute)
	stats, err = s.DeleteExpired(ctx, policy)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if stats.Deleted != 1 {
		t.Fatalf("expected aged expired file to be deleted: %+v", stats)
	}
}

func TestDeleteExpiredKeepsAgedLiveRecords(t *testing.T) {
	s := newStoreTest(t, Config{MinRecordAge: time.Minute})
	ctx := context.Background()
	policy := goSession.OnInactivity(24 * time.Hour)

	rec := newRecord([]byte("live"))
	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	ageFile(t, s, rec.SessionID, time.Hour)

	stats, err := s.DeleteExpired(ctx, policy)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if stats.Deleted != 0 || stats.Skipped != 1 {
		t.Fatalf("aged but live record must survive: %+v", stats)
	}
	if got, err := s.Load(ctx, rec.SessionID); err != nil || got == nil {
		t.Fatalf("expected record to remain loadable: %+v %v", got, err)
	}
}

func TestDeleteExpiredRemovesAgedCorruptDebris(t *testing.T) {
	s := newStoreTest(t, Config{MinRecordAge: time.Minute})
	ctx := context.Background()
	policy := goSession.OnInactivity(time.Minute)

	name := strings.Repeat("B", 22)
	if err := os.WriteFile(filepath.Join(s.Root(), name), []byte("\xffgarbage"), 0o600); err != nil {
		t.Fatalf("seed debris: %v", err)
	}
	ageFile(t, s, name, 2*time.Minute)

	stats, err := s.DeleteExpired(ctx, policy)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if stats.Deleted != 1 {
		t.Fatalf("expected aged corrupt file to be reclaimed: %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), name)); !os.IsNotExist(err) {
		t.Fatal("expected debris file to be gone")
	}
}

func TestDeleteExpiredIgnoresForeignFiles(t *testing.T) {
	s := newStoreTest(t, Config{MinRecordAge: -1})
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(s.Root(), "README"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write foreign file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.Root(), tmpPrefix+"leftover"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	stats, err := s.DeleteExpired(ctx, goSession.OnInactivity(time.Minute))
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if stats.Scanned != 0 {
		t.Fatalf("foreign files must not be scanned: %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "README")); err != nil {
		t.Fatal("foreign file must not be touched")
	}
}

func TestDeleteExpiredCancelledContextStopsEarly(t *testing.T) {
	s := newStoreTest(t, Config{MinRecordAge: -1})

	for i := 0; i < 5; i++ {
		seedExpired(t, s)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := s.DeleteExpired(ctx, goSession.OnInactivity(time.Minute))
	if err != nil {
		t.Fatalf("cancellation must be a normal exit, got %v", err)
	}
	if stats.Deleted != 0 {
		t.Fatalf("cancelled pass must not have deleted anything: %+v", stats)
	}
}
