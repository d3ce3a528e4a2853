package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errEmptyValue    = errors.New("flag value cannot be empty")
	errIDRequired    = errors.New("book id is required")
	errInvalidID     = errors.New("book id must be an integer")
	errTitleRequired = errors.New("title is required")
	errUsage         = errors.New("wrong number of arguments")
	errOutOfSync     = errors.New("data file does not match the catalog")
)

// parseID parses a book id argument. Surrounding spaces are ignored.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidID, s)
	}

	return id, nil
}
