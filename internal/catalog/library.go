// Package catalog implements the book catalog: a record store keyed by id,
// an ordered title index, an insertion-order ledger and the flat data file
// they are persisted to.
//
// A [Library] keeps the three in-memory structures consistent. Every
// successful Add or Remove touches all three and then rewrites the data file;
// if the rewrite fails the in-memory change is undone, so memory and disk
// never disagree.
//
// A Library is not safe for concurrent use. Two processes are kept apart by
// an advisory lock on the data file (see [Config.Lock]); goroutines within
// one process must serialize access themselves.
package catalog

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"slices"

	"github.com/zeebo/xxh3"

	"github.com/calvinalkan/booklib/internal/fs"
)

// Library is an open catalog backed by a data file.
type Library struct {
	cfg    Config
	fs     fs.FS
	file   *DataFile
	store  *Store
	index  *TitleIndex
	ledger *Ledger
	lock   fs.Locker
	issues []*ParseError
}

// Open validates cfg, locks the data file if cfg.Lock is set, and loads it.
//
// With [ParseSkip] malformed lines and repeated ids are dropped and reported
// through [Library.LoadIssues]. With [ParseAbort] the first one is returned
// as a *[ParseError] and no Library is opened.
func Open(cfg Config, fsys fs.FS) (*Library, error) {
	err := validateConfig(cfg)
	if err != nil {
		return nil, err
	}

	path := cfg.path()

	lib := &Library{
		cfg:    cfg,
		fs:     fsys,
		file:   NewDataFile(fsys, path, cfg.delim()),
		store:  NewStore(),
		index:  NewTitleIndex(),
		ledger: NewLedger(),
	}

	err = fsys.MkdirAll(filepath.Dir(path), dirPerms)
	if err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	if cfg.Lock {
		err = lib.acquireLock(path)
		if err != nil {
			return nil, err
		}
	}

	lines, issues, err := lib.file.Load()
	if err != nil {
		_ = lib.Close()

		return nil, err
	}

	for _, line := range lines {
		insertErr := lib.insert(line.book)
		if insertErr != nil {
			issues = append(issues, &ParseError{Line: line.num, Text: line.text, Err: insertErr})
		}
	}

	slices.SortFunc(issues, func(a, b *ParseError) int {
		return cmp.Compare(a.Line, b.Line)
	})

	if cfg.OnParseError == ParseAbort && len(issues) > 0 {
		_ = lib.Close()

		return nil, fmt.Errorf("loading %s: %w", path, issues[0])
	}

	lib.issues = issues

	return lib, nil
}

func (l *Library) acquireLock(path string) error {
	lock, err := l.fs.TryLock(path + ".lock")
	if err != nil {
		if errors.Is(err, fs.ErrWouldBlock) {
			return fmt.Errorf("%w: %s", ErrLocked, path)
		}

		return fmt.Errorf("acquiring lock: %w", err)
	}

	l.lock = lock

	return nil
}

// Close releases the data file lock. The Library must not be used afterwards.
func (l *Library) Close() error {
	if l.lock == nil {
		return nil
	}

	err := l.lock.Close()
	l.lock = nil

	return err
}

// Path returns the data file path.
func (l *Library) Path() string {
	return l.file.Path()
}

// LoadIssues returns the data file lines skipped by Open, in line order.
func (l *Library) LoadIssues() []*ParseError {
	return l.issues
}

// Add creates a book and persists the catalog.
//
// Returns [ErrInvalidField] if title or author cannot be stored in the data
// file and [ErrDuplicateID] if id is taken. Nothing changes on error.
func (l *Library) Add(id int, title, author string) (*Book, error) {
	delim := l.cfg.delim()

	err := validateField("title", title, delim)
	if err != nil {
		return nil, err
	}

	err = validateField("author", author, delim)
	if err != nil {
		return nil, err
	}

	b := &Book{ID: id, Title: title, Author: author}

	err = l.insert(b)
	if err != nil {
		return nil, err
	}

	err = l.file.Rewrite(l.ledger.All())
	if err != nil {
		l.detach(b)

		return nil, err
	}

	return b, nil
}

// Remove deletes the book with the given id and persists the catalog.
// Returns [ErrNotFound] if there is no such book. Nothing changes on error.
func (l *Library) Remove(id int) (*Book, error) {
	b, err := l.store.Get(id)
	if err != nil {
		return nil, err
	}

	// Undo restores the old tree shape, not just the same books.
	saved := l.index.Clone()
	pos := l.detach(b)

	err = l.file.Rewrite(l.ledger.All())
	if err != nil {
		_ = l.store.Add(b)
		l.index = saved
		l.ledger.InsertAt(pos, b)

		return nil, err
	}

	return b, nil
}

// Get returns the book with the given id.
func (l *Library) Get(id int) (*Book, error) {
	return l.store.Get(id)
}

// Search returns a book with exactly this title. If several books share it,
// which one is returned depends on the index shape; see [TitleIndex].
func (l *Library) Search(title string) (*Book, error) {
	return l.index.Search(title)
}

// SearchAll returns every book with exactly this title.
func (l *Library) SearchAll(title string) []*Book {
	return l.index.SearchAll(title)
}

// Books yields all books in ascending title order.
func (l *Library) Books() iter.Seq[*Book] {
	return l.index.All()
}

// Ledger yields all books in the order they were added.
func (l *Library) Ledger() iter.Seq[*Book] {
	return l.ledger.All()
}

// Len returns the number of books.
func (l *Library) Len() int {
	return l.store.Len()
}

// insert adds b to all three structures. The store's duplicate check runs
// first so a rejected book touches nothing.
func (l *Library) insert(b *Book) error {
	err := l.store.Add(b)
	if err != nil {
		return err
	}

	l.index.Insert(b)
	l.ledger.Append(b)

	return nil
}

// detach removes b from all three structures and returns its ledger position.
func (l *Library) detach(b *Book) int {
	_, _ = l.store.Remove(b.ID)
	l.index.DeleteBook(b)

	return l.ledger.Remove(b)
}

// Report describes how the data file compares with the in-memory catalog.
type Report struct {
	Path       string
	Books      int
	Height     int    // title index height
	Skipped    int    // lines dropped at load
	FileExists bool   // data file present on disk
	FileDigest uint64 // xxh3 of the data file bytes
	MemDigest  uint64 // xxh3 of the encoded catalog
}

// InSync reports whether the data file holds exactly the in-memory catalog.
func (r Report) InSync() bool {
	return r.FileDigest == r.MemDigest
}

// Check reads the data file and compares it with the in-memory catalog.
// A difference means the file was edited behind the library's back or lines
// were skipped at load; [Library.Repair] rewrites it.
func (l *Library) Check() (Report, error) {
	onDisk, err := l.file.ReadRaw()
	if err != nil {
		return Report{}, err
	}

	exists, err := l.fs.Exists(l.file.Path())
	if err != nil {
		return Report{}, fmt.Errorf("checking data file: %w", err)
	}

	return Report{
		Path:       l.file.Path(),
		Books:      l.store.Len(),
		Height:     l.index.Height(),
		Skipped:    len(l.issues),
		FileExists: exists,
		FileDigest: xxh3.Hash(onDisk),
		MemDigest:  xxh3.Hash(encode(l.ledger.All(), l.cfg.delim())),
	}, nil
}

// Repair rewrites the data file from the in-memory catalog, dropping any
// lines that were skipped at load.
func (l *Library) Repair() error {
	err := l.file.Rewrite(l.ledger.All())
	if err != nil {
		return err
	}

	l.issues = nil

	return nil
}
