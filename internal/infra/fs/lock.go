package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Lock is an advisory exclusive lock held on a lock file.
// It serializes themis processes sharing one home directory.
type Lock struct {
	f *os.File
}

// AcquireLock blocks until the exclusive lock on lockPath is held
func AcquireLock(lockPath string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", lockPath, err)
	}
	if err := flockExclusive(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to lock %s: %w", lockPath, err)
	}
	return &Lock{f: f}, nil
}

// Release unlocks and closes the lock file; the file itself stays
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	f := l.f
	l.f = nil
	if err := flockUnlock(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to unlock %s: %w", f.Name(), err)
	}
	return f.Close()
}
