package catalog

import (
	"fmt"
	"strings"
)

// Book is a single catalog record. A Book is never modified after it has been
// added; changing a record means removing it and adding a new one.
type Book struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// String formats the book the way listings print it.
func (b *Book) String() string {
	return fmt.Sprintf("Book ID: %d, Title: %s, Author: %s", b.ID, b.Title, b.Author)
}

// validateField rejects values the line format cannot represent: the field
// delimiter and line breaks.
func validateField(name, value string, delim rune) error {
	if strings.ContainsRune(value, delim) {
		return fmt.Errorf("%w: %s must not contain %q", ErrInvalidField, name, delim)
	}

	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: %s must not contain line breaks", ErrInvalidField, name)
	}

	return nil
}
