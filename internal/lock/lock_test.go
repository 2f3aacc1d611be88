package lock

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pgident.lock")

	if err := Acquire(path); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	held, pid, err := IsHeld(path)
	if err != nil {
		t.Fatalf("is held: %v", err)
	}
	if !held || pid != os.Getpid() {
		t.Errorf("held=%v pid=%d, want held by %d", held, pid, os.Getpid())
	}

	if err := Release(path); err != nil {
		t.Fatalf("release: %v", err)
	}

	held, _, err = IsHeld(path)
	if err != nil {
		t.Fatalf("is held after release: %v", err)
	}
	if held {
		t.Error("lock still held after release")
	}
}

func TestAcquireRejectsLiveLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pgident.lock")

	// Our own PID is always a running process.
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Acquire(path); err == nil {
		t.Error("expected error when lock is held by a live process")
	}
}

func TestAcquireOverwritesStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pgident.lock")

	// A garbage PID file counts as stale.
	if err := os.WriteFile(path, []byte("not-a-pid"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Acquire(path); err != nil {
		t.Errorf("stale lock should be overwritten: %v", err)
	}
}

func TestReleaseMissingFile(t *testing.T) {
	if err := Release(filepath.Join(t.TempDir(), "nope.lock")); err != nil {
		t.Errorf("releasing a missing lock should be a no-op: %v", err)
	}
}
