package database

import (
	"io"
	"log"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) PreferenceStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewSQLiteStore error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTrackOffsetRoundTrip(t *testing.T) {
	store := newTestStore(t)

	if _, ok, err := store.TrackOffset("/music/a.mp3"); err != nil || ok {
		t.Fatalf("TrackOffset on empty store = (ok=%v, err=%v), want (false, nil)", ok, err)
	}

	if err := store.SetTrackOffset("/music/a.mp3", -350); err != nil {
		t.Fatalf("SetTrackOffset error: %v", err)
	}
	if got, ok, err := store.TrackOffset("/music/a.mp3"); err != nil || !ok || got != -350 {
		t.Errorf("TrackOffset = (%d, %v, %v), want (-350, true, nil)", got, ok, err)
	}

	// 覆盖已有记录
	if err := store.SetTrackOffset("/music/a.mp3", 120); err != nil {
		t.Fatalf("SetTrackOffset overwrite error: %v", err)
	}
	if got, _, _ := store.TrackOffset("/music/a.mp3"); got != 120 {
		t.Errorf("TrackOffset after overwrite = %d, want 120", got)
	}

	if err := store.DeleteTrackOffset("/music/a.mp3"); err != nil {
		t.Fatalf("DeleteTrackOffset error: %v", err)
	}
	if _, ok, _ := store.TrackOffset("/music/a.mp3"); ok {
		t.Errorf("offset still present after delete")
	}
	if err := store.DeleteTrackOffset("/music/missing.mp3"); err != nil {
		t.Errorf("DeleteTrackOffset on missing key error: %v", err)
	}
}

func TestTrackOffsetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	logger := log.New(io.Discard, "", 0)

	store, err := NewSQLiteStore(path, logger)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SetTrackOffset("k", 42); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(path, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if got, ok, err := reopened.TrackOffset("k"); err != nil || !ok || got != 42 {
		t.Errorf("TrackOffset after reopen = (%d, %v, %v), want (42, true, nil)", got, ok, err)
	}
}
