// Package fs provides the filesystem operations booklib needs, behind an
// interface so tests can inject failures.
//
// The main types are:
//   - [FS]: interface for filesystem operations
//   - [Real]: production implementation using [os], atomic writes and flock
//
// Example usage:
//
//	fsys := fs.NewReal()
//	lock, err := fsys.TryLock("library_data.txt.lock")
//	if err != nil {
//	    return err // another process holds it
//	}
//	defer lock.Close()
//
//	err = fsys.WriteFileAtomic("library_data.txt", data, 0o644)
package fs

import (
	"errors"
	"io"
	"os"
)

// ErrWouldBlock is returned by [FS.TryLock] when the lock is held by another
// open file description (usually another process).
var ErrWouldBlock = errors.New("lock would block")

// Locker represents a held file lock.
// Call [Locker.Close] to release the lock.
type Locker interface {
	io.Closer
}

// FS defines the filesystem operations used by the catalog and the CLI.
//
// All methods mirror their [os] package equivalents except
// [FS.WriteFileAtomic] and [FS.TryLock].
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic replaces the file at path with data.
	// Readers observe either the old or the new content, never a mix.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// TryLock acquires an exclusive advisory lock on path without blocking.
	// The lock file is created if missing. Returns an error wrapping
	// [ErrWouldBlock] when the lock is already held.
	TryLock(path string) (Locker, error)
}
