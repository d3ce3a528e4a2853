package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// Real FS Tests
//
// We're NOT testing os.ReadFile, os.MkdirAll etc (that's Go's job).
// We ARE testing:
//   - Exists() - our convenience method
//   - WriteFileAtomic() - our atomic write wrapper
//   - TryLock() - our locking implementation
// =============================================================================

// -----------------------------------------------------------------------------
// Exists() Tests
// -----------------------------------------------------------------------------

func TestReal_Exists_ReturnsFalseForNonExistent(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	dir := t.TempDir()

	exists, err := fs.Exists(filepath.Join(dir, "does-not-exist.txt"))

	if got, want := err, error(nil); !errors.Is(got, want) {
		t.Fatalf("err=%v, want=%v", got, want)
	}

	if got, want := exists, false; got != want {
		t.Fatalf("exists=%v, want=%v", got, want)
	}
}

func TestReal_Exists_ReturnsTrueForFile(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "exists.txt")

	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	exists, err := fs.Exists(path)
	if err != nil {
		t.Fatalf("err=%v, want=nil", err)
	}

	if !exists {
		t.Fatalf("exists=false, want=true")
	}
}

// -----------------------------------------------------------------------------
// WriteFileAtomic() Tests
// -----------------------------------------------------------------------------

func TestReal_WriteFileAtomic_CreatesFileWithPerm(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	path := filepath.Join(t.TempDir(), "data.txt")

	if err := fs.WriteFileAtomic(path, []byte("1,Dune,Herbert\n"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if string(got) != "1,Dune,Herbert\n" {
		t.Fatalf("content=%q, want=%q", got, "1,Dune,Herbert\n")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	if got, want := info.Mode().Perm(), os.FileMode(0o644); got != want {
		t.Fatalf("perm=%v, want=%v", got, want)
	}
}

func TestReal_WriteFileAtomic_ReplacesExistingContent(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	path := filepath.Join(t.TempDir(), "data.txt")

	if err := os.WriteFile(path, []byte("a much longer previous content\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := fs.WriteFileAtomic(path, []byte("short\n"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "short\n" {
		t.Fatalf("content=%q, want=%q", got, "short\n")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("dir has %d entries, want 1 (temp file left behind?)", len(entries))
	}
}

func TestReal_WriteFileAtomic_FailsForMissingDir(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	path := filepath.Join(t.TempDir(), "missing", "data.txt")

	if err := fs.WriteFileAtomic(path, []byte("x"), 0o644); err == nil {
		t.Fatal("expected error writing into missing directory")
	}
}

// -----------------------------------------------------------------------------
// TryLock() Tests
// -----------------------------------------------------------------------------

func TestReal_TryLock_SecondAttemptWouldBlock(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	path := filepath.Join(t.TempDir(), "data.txt.lock")

	first, err := fs.TryLock(path)
	if err != nil {
		t.Fatalf("first TryLock: %v", err)
	}

	_, err = fs.TryLock(path)
	if !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("second TryLock err=%v, want ErrWouldBlock", err)
	}

	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	again, err := fs.TryLock(path)
	if err != nil {
		t.Fatalf("TryLock after release: %v", err)
	}

	_ = again.Close()
}

func TestReal_TryLock_CreatesParentDirs(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	path := filepath.Join(t.TempDir(), "nested", "dir", "data.lock")

	lock, err := fs.TryLock(path)
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	defer lock.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("lock file not created: %v", err)
	}
}

func TestReal_LockClose_IsIdempotent(t *testing.T) {
	t.Parallel()

	fs := NewReal()

	lock, err := fs.TryLock(filepath.Join(t.TempDir(), "x.lock"))
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}

	if err := lock.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}

	if err := lock.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
