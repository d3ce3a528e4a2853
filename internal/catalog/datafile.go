package catalog

import (
	"errors"
	"fmt"
	"iter"
	"os"

	"github.com/calvinalkan/booklib/internal/fs"
)

const (
	filePerms = 0o644
	dirPerms  = 0o755
)

// DataFile reads and rewrites the flat file backing a [Library].
//
// Every mutation rewrites the whole file. That keeps the format trivial and
// the file always consistent, at the cost of O(n) work per change.
type DataFile struct {
	fs    fs.FS
	path  string
	delim rune
}

// NewDataFile returns a DataFile for path using delim between fields.
func NewDataFile(fsys fs.FS, path string, delim rune) *DataFile {
	return &DataFile{fs: fsys, path: path, delim: delim}
}

// Path returns the file path.
func (d *DataFile) Path() string {
	return d.path
}

// Rewrite replaces the file with one line per book, in sequence order.
// The replacement is atomic: on failure the previous content is intact.
func (d *DataFile) Rewrite(books iter.Seq[*Book]) error {
	err := d.fs.WriteFileAtomic(d.path, encode(books, d.delim), filePerms)
	if err != nil {
		return fmt.Errorf("rewriting data file: %w", err)
	}

	return nil
}

// Load reads and parses the file. A missing file is an empty catalog.
// Malformed lines are returned as issues next to the lines that parsed.
func (d *DataFile) Load() ([]decodedLine, []*ParseError, error) {
	data, err := d.ReadRaw()
	if err != nil {
		return nil, nil, err
	}

	lines, issues := decode(data, d.delim)

	return lines, issues, nil
}

// ReadRaw returns the file content, or nil if the file does not exist.
func (d *DataFile) ReadRaw() ([]byte, error) {
	data, err := d.fs.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading data file: %w", err)
	}

	return data, nil
}
