package catalog

import "fmt"

// Store is the owning table of books keyed by id.
type Store struct {
	books map[int]*Book
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{books: make(map[int]*Book)}
}

// Add inserts b. Returns [ErrDuplicateID] if a book with the same id exists;
// the existing entry is left untouched.
func (s *Store) Add(b *Book) error {
	if _, exists := s.books[b.ID]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateID, b.ID)
	}

	s.books[b.ID] = b

	return nil
}

// Remove deletes the book with the given id and returns it.
func (s *Store) Remove(id int) (*Book, error) {
	b, ok := s.books[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	delete(s.books, id)

	return b, nil
}

// Get returns the book with the given id.
func (s *Store) Get(id int) (*Book, error) {
	b, ok := s.books[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	return b, nil
}

// Len returns the number of books.
func (s *Store) Len() int {
	return len(s.books)
}
