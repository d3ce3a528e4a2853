package catalog

import (
	"iter"
	"slices"
)

// Ledger keeps books in the order they were added. It decides the line order
// of the data file, so a reload reproduces the same sequence.
type Ledger struct {
	books []*Book
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append adds b at the end.
func (l *Ledger) Append(b *Book) {
	l.books = append(l.books, b)
}

// Remove deletes b, compared by identity, and returns the position it had.
// Returns -1 if b is not in the ledger.
func (l *Ledger) Remove(b *Book) int {
	pos := slices.Index(l.books, b)
	if pos < 0 {
		return -1
	}

	l.books = slices.Delete(l.books, pos, pos+1)

	return pos
}

// InsertAt puts b back at pos, clamped to the valid range. Used to undo a
// Remove.
func (l *Ledger) InsertAt(pos int, b *Book) {
	pos = min(max(pos, 0), len(l.books))
	l.books = slices.Insert(l.books, pos, b)
}

// All yields the books in insertion order. The ledger must not be modified
// while iterating.
func (l *Ledger) All() iter.Seq[*Book] {
	return slices.Values(l.books)
}

// Len returns the number of books.
func (l *Ledger) Len() int {
	return len(l.books)
}
