// Package fs provides a file source for save games. Saves are written
// atomically under an exclusive lock, the previous file can be kept as a
// backup, and external changes are detected both at save time and through
// fsnotify.
package fs

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/yacchi/clausewitz/source"
)

// Default permission modes.
const (
	DefaultFileMode = 0644
	DefaultDirMode  = 0755
)

// DefaultBackupSuffix is appended to the save path for the backup copy.
const DefaultBackupSuffix = ".backup"

var (
	userHomeDir = os.UserHomeDir
	osReadFile  = os.ReadFile
	osStat      = os.Stat
)

// Source reads and writes one save file.
type Source struct {
	path         string
	searchPaths  []string
	fileMode     os.FileMode
	dirMode      os.FileMode
	backupSuffix string
	logger       *slog.Logger

	mu           sync.Mutex
	resolvedPath string
	loaded       bool
	digest       [sha256.Size]byte
}

var (
	_ source.Source    = (*Source)(nil)
	_ source.Watchable = (*Source)(nil)
)

// Option configures a Source.
type Option func(*Source)

// WithFileMode sets the file permission mode used when saving.
func WithFileMode(mode os.FileMode) Option {
	return func(s *Source) {
		s.fileMode = mode
	}
}

// WithDirMode sets the permission mode for parent directories created by Save.
func WithDirMode(mode os.FileMode) Option {
	return func(s *Source) {
		s.dirMode = mode
	}
}

// WithSearchPaths adds fallback locations. Load uses the first path that
// exists, primary path first; Save writes to the path Load used.
func WithSearchPaths(paths ...string) Option {
	return func(s *Source) {
		s.searchPaths = append(s.searchPaths, paths...)
	}
}

// WithBackup makes Save copy the existing file to path+suffix before
// replacing it. An empty suffix uses DefaultBackupSuffix.
func WithBackup(suffix string) Option {
	return func(s *Source) {
		if suffix == "" {
			suffix = DefaultBackupSuffix
		}
		s.backupSuffix = suffix
	}
}

// WithLogger sets the logger for save and backup steps.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// New creates a file source. Tilde (~) expansion is supported.
//
// Example:
//
//	src := fs.New("~/saves/earth/autosave.sav", fs.WithBackup(""))
func New(path string, opts ...Option) *Source {
	s := &Source{
		path:     path,
		fileMode: DefaultFileMode,
		dirMode:  DefaultDirMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Load reads the file and remembers its digest, so a later Save can tell
// whether the file changed in between.
func (s *Source) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resolved, original, err := s.resolvePath()
	if err != nil {
		return nil, err
	}
	data, err := osReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", original, err)
	}

	s.mu.Lock()
	s.resolvedPath = resolved
	s.loaded = true
	s.digest = sha256.Sum256(data)
	s.mu.Unlock()
	return data, nil
}

// CanSave returns true.
func (s *Source) CanSave() bool {
	return true
}

// Path returns the primary path as given to New.
func (s *Source) Path() string {
	return s.path
}

// BackupPath returns where Save keeps the backup, or "" without WithBackup.
func (s *Source) BackupPath() string {
	if s.backupSuffix == "" {
		return ""
	}
	return s.ResolvedPath() + s.backupSuffix
}

// ResolvedPath returns the file in use: the path Load found, or the
// expanded primary path before the first Load.
func (s *Source) ResolvedPath() string {
	s.mu.Lock()
	resolved := s.resolvedPath
	s.mu.Unlock()
	if resolved != "" {
		return resolved
	}
	expanded, err := expandTilde(s.path)
	if err != nil {
		return s.path
	}
	return expanded
}

// resolvePath finds the first existing file, primary path first.
// Returns (expanded, original, error). If none exists, the expanded primary
// path is returned.
func (s *Source) resolvePath() (expanded string, original string, err error) {
	for _, p := range append([]string{s.path}, s.searchPaths...) {
		exp, err := expandTilde(p)
		if err != nil {
			continue
		}
		if _, statErr := osStat(exp); statErr == nil {
			return exp, p, nil
		}
	}

	expanded, err = expandTilde(s.path)
	if err != nil {
		return "", s.path, fmt.Errorf("failed to expand path %q: %w", s.path, err)
	}
	return expanded, s.path, nil
}

// expandTilde expands "~" and "~/path". Other paths, including "~user",
// are returned unchanged.
func expandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	homeDir, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand home directory: %w", err)
	}
	if len(path) == 1 {
		return homeDir, nil
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:]), nil
	}
	return path, nil
}
