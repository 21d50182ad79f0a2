package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrRunInProgress is returned when another process holds the run lock.
var ErrRunInProgress = errors.New("another bandmatch run is in progress")

// RunLock is an exclusive file lock held for the duration of a match run.
type RunLock struct {
	lock *flock.Flock
}

// LockPath returns the lock file used for the database at dbPath.
func LockPath(dbPath string) string {
	return dbPath + ".lock"
}

// Lock acquires the run lock beside the database at dbPath without waiting.
func Lock(dbPath string) (*RunLock, error) {
	lockPath := LockPath(dbPath)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	return &RunLock{lock: lock}, nil
}

// Unlock releases the lock. It is safe to call on a nil lock.
func (l *RunLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
