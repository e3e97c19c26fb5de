//go:build unix

package fs

import (
	"errors"

	"golang.org/x/sys/unix"
)

// lockSave blocks until it holds an exclusive advisory lock on fd. The game
// does not take the lock; it only serializes concurrent editor saves.
func lockSave(fd int) error {
	for {
		err := unix.Flock(fd, unix.LOCK_EX)
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}

func unlockSave(fd int) error {
	return unix.Flock(fd, unix.LOCK_UN)
}

// lockUnsupported reports errors from file systems without flock, such as
// some NFS and SMB mounts.
func lockUnsupported(err error) bool {
	return errors.Is(err, unix.ENOTSUP) ||
		errors.Is(err, unix.EOPNOTSUPP) ||
		errors.Is(err, unix.ENOLCK)
}
