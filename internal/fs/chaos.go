package fs

import (
	iofs "io/fs"
	"math/rand/v2"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
)

// ChaosConfig controls fault injection probabilities.
// Each rate is a float64 from 0.0 (never) to 1.0 (always).
type ChaosConfig struct {
	ReadFailRate   float64 // Fail ReadFile
	WriteFailRate  float64 // Fail WriteFileAtomic; the old content stays
	ExistsFailRate float64 // Fail Exists
	MkdirFailRate  float64 // Fail MkdirAll
	LockFailRate   float64 // Fail TryLock
}

// PathState tracks the fault state of a path for consistent error injection.
type PathState int

const (
	// PathNormal means no persistent fault - errors are transient.
	// This is the zero value, so untracked paths are normal.
	PathNormal PathState = iota
	// PathIOError is sticky - the path has a "bad sector" and always returns EIO.
	PathIOError
	// PathReadOnly is sticky for writes - filesystem is read-only, returns EROFS.
	PathReadOnly
)

// ChaosMode controls how Chaos behaves.
type ChaosMode uint8

const (
	// ChaosModePassthrough behaves like the underlying FS.
	// Sticky path state is kept but not consulted.
	ChaosModePassthrough ChaosMode = iota

	// ChaosModeInject enables fault-rate injection and sticky path state.
	ChaosModeInject
)

// Chaos wraps an [FS] and injects random failures for testing.
//
// Errors are state-aware: once a path gets EIO (bad sector), it stays broken
// until [Chaos.ResetAllPathStates]. All injected errors are *os.PathError
// values carrying a syscall.Errno, so they look like real filesystem errors;
// use [IsInjected] to tell them apart.
//
// A failed WriteFileAtomic never touches the file, matching the guarantee of
// the real implementation.
type Chaos struct {
	fs     FS
	config ChaosConfig
	mode   atomic.Uint32

	mu         sync.Mutex
	rng        *rand.Rand
	pathStates map[string]PathState

	readFails   atomic.Int64
	writeFails  atomic.Int64
	existsFails atomic.Int64
	mkdirFails  atomic.Int64
	lockFails   atomic.Int64
}

// NewChaos creates a new Chaos filesystem wrapping the given [FS].
// The seed controls random fault injection for reproducibility.
func NewChaos(fs FS, seed uint64, config ChaosConfig) *Chaos {
	return &Chaos{
		fs:         fs,
		config:     config,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		pathStates: make(map[string]PathState),
	}
}

// SetMode updates Chaos behavior. Safe to call concurrently with filesystem
// operations. The zero value is [ChaosModePassthrough].
func (c *Chaos) SetMode(m ChaosMode) { c.mode.Store(uint32(m)) }

// ChaosStats reports how many faults were injected per operation kind.
type ChaosStats struct {
	ReadFails   int64
	WriteFails  int64
	ExistsFails int64
	MkdirFails  int64
	LockFails   int64
}

// Stats returns the injected fault counters.
func (c *Chaos) Stats() ChaosStats {
	return ChaosStats{
		ReadFails:   c.readFails.Load(),
		WriteFails:  c.writeFails.Load(),
		ExistsFails: c.existsFails.Load(),
		MkdirFails:  c.mkdirFails.Load(),
		LockFails:   c.lockFails.Load(),
	}
}

// TotalFaults returns the sum of all injected faults.
func (c *Chaos) TotalFaults() int64 {
	s := c.Stats()

	return s.ReadFails + s.WriteFails + s.ExistsFails + s.MkdirFails + s.LockFails
}

// PathState returns the sticky fault state of path.
func (c *Chaos) PathState(path string) PathState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pathStates[path]
}

// ResetAllPathStates clears every sticky fault.
func (c *Chaos) ResetAllPathStates() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pathStates = make(map[string]PathState)
}

func (c *Chaos) injecting() bool {
	return ChaosMode(c.mode.Load()) == ChaosModeInject
}

// should returns true with the given probability when chaos is injecting.
func (c *Chaos) should(rate float64) bool {
	if !c.injecting() || rate <= 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rng.Float64() < rate
}

func (c *Chaos) state(path string) PathState {
	if !c.injecting() {
		return PathNormal
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pathStates[path]
}

// pick returns one of errs at random. EIO and EROFS make the path sticky.
func (c *Chaos) pick(path string, errs ...syscall.Errno) syscall.Errno {
	c.mu.Lock()
	defer c.mu.Unlock()

	errno := errs[c.rng.IntN(len(errs))]

	switch errno {
	case syscall.EIO:
		c.pathStates[path] = PathIOError
	case syscall.EROFS:
		c.pathStates[path] = PathReadOnly
	}

	return errno
}

// pathError creates an *os.PathError with the given operation, path, and errno.
func pathError(op, path string, errno syscall.Errno) error {
	pe := &iofs.PathError{Op: op, Path: path, Err: errno}
	markInjectedPathError(pe)

	return pe
}

func (c *Chaos) ReadFile(path string) ([]byte, error) {
	if c.state(path) == PathIOError {
		c.readFails.Add(1)

		return nil, pathError("read", path, syscall.EIO)
	}

	if c.should(c.config.ReadFailRate) {
		c.readFails.Add(1)

		return nil, pathError("read", path, c.pick(path, syscall.EIO, syscall.EACCES, syscall.EINTR))
	}

	return c.fs.ReadFile(path)
}

func (c *Chaos) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	switch c.state(path) {
	case PathIOError:
		c.writeFails.Add(1)

		return pathError("write", path, syscall.EIO)
	case PathReadOnly:
		c.writeFails.Add(1)

		return pathError("write", path, syscall.EROFS)
	case PathNormal:
	}

	if c.should(c.config.WriteFailRate) {
		c.writeFails.Add(1)

		return pathError("write", path, c.pick(path, syscall.ENOSPC, syscall.EIO, syscall.EROFS, syscall.EDQUOT))
	}

	return c.fs.WriteFileAtomic(path, data, perm)
}

func (c *Chaos) MkdirAll(path string, perm os.FileMode) error {
	if c.should(c.config.MkdirFailRate) {
		c.mkdirFails.Add(1)

		return pathError("mkdir", path, c.pick(path, syscall.EACCES, syscall.ENOSPC))
	}

	return c.fs.MkdirAll(path, perm)
}

func (c *Chaos) Exists(path string) (bool, error) {
	if c.should(c.config.ExistsFailRate) {
		c.existsFails.Add(1)

		return false, pathError("stat", path, syscall.EACCES)
	}

	return c.fs.Exists(path)
}

func (c *Chaos) TryLock(path string) (Locker, error) {
	if c.should(c.config.LockFailRate) {
		c.lockFails.Add(1)

		return nil, pathError("flock", path, c.pick(path, syscall.ENOLCK, syscall.EINTR))
	}

	return c.fs.TryLock(path)
}

var _ FS = (*Chaos)(nil)
