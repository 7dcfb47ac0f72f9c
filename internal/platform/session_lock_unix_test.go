//go:build unix

package platform

import (
	"errors"
	"testing"
)

func TestAcquireSessionLock_ContentionAndRelease(t *testing.T) {
	dir := t.TempDir()

	lock1, err := AcquireSessionLock(dir)
	if err != nil {
		t.Fatalf("acquire first lock: %v", err)
	}

	lock2, err := AcquireSessionLock(dir)
	if !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected %v, got %v", ErrSessionActive, err)
	}
	if lock2 != nil {
		t.Fatalf("expected second lock to be nil, got %#v", lock2)
	}

	if err := lock1.Release(); err != nil {
		t.Fatalf("release first lock: %v", err)
	}
	if err := lock1.Release(); err != nil {
		t.Fatalf("second release should be a no-op: %v", err)
	}

	lock3, err := AcquireSessionLock(dir)
	if err != nil {
		t.Fatalf("acquire lock after release: %v", err)
	}
	if err := lock3.Release(); err != nil {
		t.Fatalf("release third lock: %v", err)
	}
}

func TestAcquireSessionLockRequiresDir(t *testing.T) {
	if _, err := AcquireSessionLock(" "); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}
