//go:build windows

package fs

import (
	"errors"

	"golang.org/x/sys/windows"
)

// lockSave blocks until it holds an exclusive lock on the first byte of the
// file behind fd.
func lockSave(fd int) error {
	return windows.LockFileEx(windows.Handle(fd), windows.LOCKFILE_EXCLUSIVE_LOCK, 0, 1, 0, new(windows.Overlapped))
}

func unlockSave(fd int) error {
	return windows.UnlockFileEx(windows.Handle(fd), 0, 1, 0, new(windows.Overlapped))
}

func lockUnsupported(err error) bool {
	return errors.Is(err, windows.ERROR_NOT_SUPPORTED) ||
		errors.Is(err, windows.ERROR_INVALID_FUNCTION)
}
