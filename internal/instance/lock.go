package instance

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/moguard/subctl/internal/errors"
)

// lockDirName holds per-instance lock files under the base directory. The
// leading dot keeps the registry scan from treating it as an instance.
const lockDirName = ".locks"

// Lock is a held per-instance advisory lock. Two concurrent invocations
// against the same instance name cannot both hold it, so a remove cannot
// interleave with an update on the same instance.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes the advisory lock for name, failing immediately with
// ErrInstanceLocked if another process holds it.
func AcquireLock(baseDir, name string) (*Lock, error) {
	dir := filepath.Join(baseDir, lockDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create lock directory %s", dir)
	}

	fl := flock.New(filepath.Join(dir, name+".lock"))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to lock instance %s", name)
	}
	if !locked {
		return nil, errors.Wrapf(errors.ErrInstanceLocked,
			"instance %s is in use by another subctl invocation", name)
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock. The lock file itself is left in place.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}
