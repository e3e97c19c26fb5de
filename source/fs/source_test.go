package fs

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/yacchi/clausewitz/cwtest"
	"github.com/yacchi/clausewitz/source"
	"github.com/yacchi/clausewitz/watcher"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	return string(b)
}

func TestSource_Compliance(t *testing.T) {
	factory := func(data []byte) source.Source {
		path := filepath.Join(t.TempDir(), "autosave.sav")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		return New(path)
	}
	notExist := func() source.Source {
		return New(filepath.Join(t.TempDir(), "missing.sav"))
	}
	cwtest.NewSourceTester(t, factory, cwtest.WithNotExistFactory(notExist)).TestAll()
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"save.sav", "save.sav"},
		{"~", home},
		{"~/saves/save.sav", filepath.Join(home, "saves", "save.sav")},
		{"~someone/save.sav", "~someone/save.sav"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := expandTilde(tt.in)
			if err != nil {
				t.Fatalf("expandTilde() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("expandTilde(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolvePathAndResolvedPath(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "primary.sav")
	alt := filepath.Join(dir, "alt.sav")
	writeFile(t, alt, "alt")

	s := New(primary, WithSearchPaths(alt))
	if got := s.Path(); got != primary {
		t.Fatalf("Path() = %q, want %q", got, primary)
	}
	if got := s.ResolvedPath(); got != primary {
		t.Fatalf("ResolvedPath() before Load = %q, want %q", got, primary)
	}

	data, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(data) != "alt" {
		t.Fatalf("Load() data = %q, want %q", data, "alt")
	}
	if got := s.ResolvedPath(); got != alt {
		t.Fatalf("ResolvedPath() after Load = %q, want %q", got, alt)
	}
}

func TestLoad_NotFound(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "missing.sav"), WithSearchPaths(filepath.Join(dir, "also-missing.sav")))

	_, err := s.Load(context.Background())
	if !errors.Is(err, iofs.ErrNotExist) {
		t.Fatalf("Load() error = %v, want fs.ErrNotExist", err)
	}
}

func TestSave_WritesAtomicallyAndSetsMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission semantics differ on Windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "save.sav")
	s := New(target, WithFileMode(0o600), WithDirMode(0o700))

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Save(canceled, func(_ []byte) ([]byte, error) { return nil, nil }); err == nil {
		t.Fatal("Save(canceled) expected error, got nil")
	}

	err := s.Save(context.Background(), func(current []byte) ([]byte, error) {
		if len(current) != 0 {
			t.Errorf("current = %q, want empty for a new file", current)
		}
		return []byte("content"), nil
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got := readFile(t, target); got != "content" {
		t.Fatalf("file content = %q, want %q", got, "content")
	}
	st, err := os.Stat(target)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if got := st.Mode().Perm(); got != 0o600 {
		t.Fatalf("file mode = %o, want %o", got, 0o600)
	}

	entries, err := os.ReadDir(filepath.Dir(target))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the save", len(entries))
	}
}

func TestSave_Backup(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "save.sav")
	writeFile(t, target, "old")

	s := New(target, WithBackup(""))
	if got, want := s.BackupPath(), target+DefaultBackupSuffix; got != want {
		t.Fatalf("BackupPath() = %q, want %q", got, want)
	}
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	err := s.Save(context.Background(), func(current []byte) ([]byte, error) {
		return append(current, " new"...), nil
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got := readFile(t, target); got != "old new" {
		t.Errorf("save content = %q, want %q", got, "old new")
	}
	if got := readFile(t, s.BackupPath()); got != "old" {
		t.Errorf("backup content = %q, want %q", got, "old")
	}

	if New(target).BackupPath() != "" {
		t.Error("BackupPath() without WithBackup should be empty")
	}
}

func TestSave_NoBackupForNewFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "save.sav")
	s := New(target, WithBackup(".bak"))
	if err := s.Save(context.Background(), func([]byte) ([]byte, error) { return []byte("x"), nil }); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(target + ".bak"); !errors.Is(err, iofs.ErrNotExist) {
		t.Errorf("Stat(backup) error = %v, want fs.ErrNotExist", err)
	}
}

func TestSave_DetectsExternalModification(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "save.sav")
	writeFile(t, target, "date=\"2200.01.01\"")

	s := New(target)
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	writeFile(t, target, "date=\"2200.04.01\"")

	called := false
	err := s.Save(context.Background(), func(current []byte) ([]byte, error) {
		called = true
		return current, nil
	})
	if !errors.Is(err, source.ErrSourceModified) {
		t.Fatalf("Save() error = %v, want ErrSourceModified", err)
	}
	if called {
		t.Error("updateFunc was called despite the modification")
	}
	if got := readFile(t, target); got != "date=\"2200.04.01\"" {
		t.Errorf("file content = %q, want the external write", got)
	}

	// Reloading accepts the external content.
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := s.Save(context.Background(), func(current []byte) ([]byte, error) { return current, nil }); err != nil {
		t.Fatalf("Save() after reload error = %v", err)
	}
}

func TestSave_ConsecutiveSaves(t *testing.T) {
	target := filepath.Join(t.TempDir(), "save.sav")
	s := New(target)
	for _, content := range []string{"a", "b"} {
		if err := s.Save(context.Background(), func([]byte) ([]byte, error) { return []byte(content), nil }); err != nil {
			t.Fatalf("Save(%q) error = %v", content, err)
		}
	}
	if got := readFile(t, target); got != "b" {
		t.Errorf("file content = %q, want %q", got, "b")
	}
}

func TestSave_UpdateFuncError(t *testing.T) {
	target := filepath.Join(t.TempDir(), "save.sav")
	s := New(target)
	wantErr := errors.New("update error")
	err := s.Save(context.Background(), func(_ []byte) ([]byte, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Save() error = %v, want %v", err, wantErr)
	}
}

func TestSave_MkdirAllFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	writeFile(t, blocker, "x")

	s := New(filepath.Join(blocker, "save.sav"))
	if err := s.Save(context.Background(), func(_ []byte) ([]byte, error) { return []byte("x"), nil }); err == nil {
		t.Fatal("Save() expected error, got nil")
	}
}

func TestWatch_FileChange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "save.sav")
	writeFile(t, target, "v1")

	s := New(target)
	w := s.Watch()
	if w.Type() != watcher.TypeSubscription {
		t.Fatalf("Type() = %v, want %v", w.Type(), watcher.TypeSubscription)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx, watcher.NewWatchConfig()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop(context.Background())

	want := []string{"v1", "v2"}
	for i, content := range want {
		if i > 0 {
			// Replace by rename so no truncated content is observed.
			tmp := filepath.Join(dir, "tmp.sav")
			writeFile(t, tmp, content)
			if err := os.Rename(tmp, target); err != nil {
				t.Fatalf("Rename() error = %v", err)
			}
		}
		select {
		case r := <-w.Results():
			if r.Error != nil {
				t.Fatalf("result error = %v", r.Error)
			}
			if string(r.Data) != content {
				t.Fatalf("result = %q, want %q", r.Data, content)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %q", content)
		}
	}
}

func TestWatchPolling(t *testing.T) {
	target := filepath.Join(t.TempDir(), "save.sav")
	writeFile(t, target, "v1")

	w := New(target).WatchPolling()
	if w.Type() != watcher.TypePolling {
		t.Fatalf("Type() = %v, want %v", w.Type(), watcher.TypePolling)
	}
	if err := w.Start(context.Background(), watcher.NewWatchConfig(watcher.WithPollInterval(10*time.Millisecond))); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop(context.Background())

	select {
	case r := <-w.Results():
		if string(r.Data) != "v1" {
			t.Fatalf("result = %q, want v1", r.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the first poll")
	}
}
