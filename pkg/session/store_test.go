package session

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenAt(filepath.Join(t.TempDir(), "console.db"))
	if err != nil {
		t.Fatalf("OpenAt() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestStoreSetGetDelete(t *testing.T) {
	store := openTestStore(t)

	if got, err := store.Get("missing"); err != nil || got != "" {
		t.Errorf("Get(missing) = %q, %v", got, err)
	}

	if err := store.Set("auth_token", "abc"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, _ := store.Get("auth_token"); got != "abc" {
		t.Errorf("Get() = %q, want abc", got)
	}

	// upsert
	if err := store.Set("auth_token", "def"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	if got, _ := store.Get("auth_token"); got != "def" {
		t.Errorf("Get() after overwrite = %q, want def", got)
	}

	if err := store.Delete("auth_token"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, _ := store.Get("auth_token"); got != "" {
		t.Errorf("Get() after delete = %q, want empty", got)
	}
}

func TestStoreRunningFlag(t *testing.T) {
	store := openTestStore(t)
	flag := ImportFlag("cve")

	if store.IsRunning(flag) {
		t.Fatalf("IsRunning() = true on a fresh store")
	}

	if err := store.MarkRunning(flag); err != nil {
		t.Fatalf("MarkRunning() error = %v", err)
	}
	if !store.IsRunning(flag) {
		t.Errorf("IsRunning() = false after MarkRunning")
	}

	// the literal stored value is what survives a crash, so pin it
	if got, _ := store.Get(flag); got != "running" {
		t.Errorf("stored flag value = %q, want running", got)
	}

	if err := store.ClearRunning(flag); err != nil {
		t.Fatalf("ClearRunning() error = %v", err)
	}
	if store.IsRunning(flag) {
		t.Errorf("IsRunning() = true after ClearRunning")
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "console.db")

	store, err := OpenAt(dbPath)
	if err != nil {
		t.Fatalf("OpenAt() error = %v", err)
	}
	if err := store.MarkRunning(ImportFlag("cpe")); err != nil {
		t.Fatalf("MarkRunning() error = %v", err)
	}
	store.Close()

	reopened, err := OpenAt(dbPath)
	if err != nil {
		t.Fatalf("OpenAt() reopen error = %v", err)
	}
	defer reopened.Close()

	if !reopened.IsRunning(ImportFlag("cpe")) {
		t.Errorf("running flag lost across reopen")
	}
}

func TestFlagKeys(t *testing.T) {
	if got := ImportFlag("cwe"); got != "cwe_import_status" {
		t.Errorf("ImportFlag(cwe) = %q", got)
	}
	if got := MatchingFlag("42"); got != "matching_status_42" {
		t.Errorf("MatchingFlag(42) = %q", got)
	}
}
