package catalog

import (
	"errors"
	"fmt"
)

// Error variables for catalog operations.
var (
	ErrDuplicateID        = errors.New("book id already exists")
	ErrNotFound           = errors.New("book not found")
	ErrParse              = errors.New("malformed data line")
	ErrInvalidField       = errors.New("invalid field")
	ErrLocked             = errors.New("data file is in use by another process")
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrDataFileEmpty      = errors.New("data-file cannot be empty")
	ErrInvalidDelimiter   = errors.New("delimiter must be a single character other than a digit, sign or line break")
	ErrInvalidParsePolicy = errors.New("on_parse_error must be \"skip\" or \"abort\"")
)

// ParseError describes one data file line that could not be turned into a
// book. Err is [ErrParse] for format problems or [ErrDuplicateID] when the
// line repeats an id seen earlier in the file.
type ParseError struct {
	Line int    // 1-based line number
	Text string // raw line without the trailing newline
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
