package instance

import (
	"testing"

	"github.com/moguard/subctl/internal/errors"
)

func TestAcquireLockConflict(t *testing.T) {
	baseDir := t.TempDir()

	lock, err := AcquireLock(baseDir, "acme")
	if err != nil {
		t.Fatalf("AcquireLock() error = %v", err)
	}
	defer lock.Release()

	if _, err := AcquireLock(baseDir, "acme"); !errors.Is(err, errors.ErrInstanceLocked) {
		t.Errorf("second AcquireLock() error = %v, want ErrInstanceLocked", err)
	}

	// A different instance is unaffected.
	other, err := AcquireLock(baseDir, "other")
	if err != nil {
		t.Fatalf("AcquireLock(other) error = %v", err)
	}
	other.Release()
}

func TestAcquireLockReleasedCanBeRetaken(t *testing.T) {
	baseDir := t.TempDir()

	lock, err := AcquireLock(baseDir, "acme")
	if err != nil {
		t.Fatalf("AcquireLock() error = %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	again, err := AcquireLock(baseDir, "acme")
	if err != nil {
		t.Fatalf("AcquireLock() after release error = %v", err)
	}
	again.Release()
}
