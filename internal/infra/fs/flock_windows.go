//go:build windows
// +build windows

package fs

import (
	"math"
	"os"

	"golang.org/x/sys/windows"
)

// flockExclusive blocks until an exclusive lock on the whole file is held
func flockExclusive(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.LockFileEx(windows.Handle(f.Fd()), windows.LOCKFILE_EXCLUSIVE_LOCK, 0, math.MaxUint32, math.MaxUint32, ol)
}

// flockUnlock releases the lock taken by flockExclusive
func flockUnlock(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, math.MaxUint32, math.MaxUint32, ol)
}
