package fs

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yacchi/clausewitz/source"
)

type lockFile interface {
	Stat() (os.FileInfo, error)
	ReadAt(p []byte, off int64) (n int, err error)
	Close() error
	Fd() uintptr
}

type tempFile interface {
	Write(p []byte) (n int, err error)
	Sync() error
	Close() error
	Name() string
}

var (
	osMkdirAll   = os.MkdirAll
	osChmod      = os.Chmod
	osRename     = os.Rename
	osRemove     = os.Remove
	osWriteFile  = os.WriteFile
	fileLockFunc = fileLock

	openFile = func(name string, flag int, perm os.FileMode) (lockFile, error) {
		return os.OpenFile(name, flag, perm)
	}
	createTemp = func(dir, pattern string) (tempFile, error) {
		return os.CreateTemp(dir, pattern)
	}
)

// fileLock takes an exclusive lock on fd and returns its release function.
// On file systems without lock support it returns a no-op release and no
// error.
func fileLock(fd int) (unlock func(), err error) {
	if err := lockSave(fd); err != nil {
		if lockUnsupported(err) {
			return func() {}, nil
		}
		return nil, err
	}
	return func() { _ = unlockSave(fd) }, nil
}

// Save replaces the file with the bytes returned by updateFunc.
//
// The file is locked for the whole operation. If Load was called before and
// the file no longer has the loaded content, source.ErrSourceModified is
// returned without writing. With WithBackup the current content is copied
// to the backup path first. The new content goes to a temporary file that
// is renamed over the target.
func (s *Source) Save(ctx context.Context, updateFunc source.UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	target := s.resolvedPath
	loaded, digest := s.loaded, s.digest
	s.mu.Unlock()
	if target == "" {
		var err error
		if target, _, err = s.resolvePath(); err != nil {
			return err
		}
	}

	dir := filepath.Dir(target)
	if err := osMkdirAll(dir, s.dirMode); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}

	lf, err := openFile(target, os.O_RDWR|os.O_CREATE, s.fileMode)
	if err != nil {
		return fmt.Errorf("failed to open file %q for locking: %w", target, err)
	}
	defer lf.Close()

	unlock, err := fileLockFunc(int(lf.Fd()))
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %q: %w", target, err)
	}
	defer unlock()

	current, err := readLocked(lf)
	if err != nil {
		return fmt.Errorf("failed to read current file %q: %w", target, err)
	}
	if loaded && sha256.Sum256(current) != digest {
		return fmt.Errorf("save %q: %w", target, source.ErrSourceModified)
	}

	data, err := updateFunc(current)
	if err != nil {
		return err
	}

	if s.backupSuffix != "" && len(current) > 0 {
		backup := target + s.backupSuffix
		if err := osWriteFile(backup, current, s.fileMode); err != nil {
			return fmt.Errorf("failed to write backup %q: %w", backup, err)
		}
		s.logger.Info("backup created", "path", backup, "bytes", len(current))
	}

	if err := s.writeAtomic(dir, target, data); err != nil {
		return err
	}

	s.mu.Lock()
	s.resolvedPath = target
	s.loaded = true
	s.digest = sha256.Sum256(data)
	s.mu.Unlock()
	s.logger.Info("save written", "path", target, "bytes", len(data))
	return nil
}

func readLocked(lf lockFile) ([]byte, error) {
	stat, err := lf.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() == 0 {
		return nil, nil
	}
	buf := make([]byte, stat.Size())
	if _, err := lf.ReadAt(buf, 0); err != nil {
		return nil, err
	}
	return buf, nil
}

// writeAtomic writes data to a temporary file in dir and renames it to
// target. The temporary file is removed on failure.
func (s *Source) writeAtomic(dir, target string, data []byte) (err error) {
	tmp, err := createTemp(dir, ".clausewitz-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			osRemove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := osChmod(tmpPath, s.fileMode); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}
	if err := osRename(tmpPath, target); err != nil {
		return fmt.Errorf("failed to rename temporary file to %q: %w", target, err)
	}
	return nil
}
