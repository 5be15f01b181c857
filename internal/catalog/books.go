package catalog

import (
	"fmt"

	"github.com/mrlokans/librarian/internal/entities"
)

// BookUpdate carries the fields to change; nil fields are left alone.
// An empty AuthorID or GenreID clears the reference.
type BookUpdate struct {
	Title     *string
	Author    *string
	Available *bool
	AuthorID  *string
	GenreID   *string
}

func (s *Store) AddBook(title, author, isbn string) (*entities.Book, error) {
	title, err := cleanText("title", title)
	if err != nil {
		return nil, err
	}
	author, err = cleanText("author", author)
	if err != nil {
		return nil, err
	}
	isbn, err = CleanISBN(isbn)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.books[isbn]; exists {
		return nil, fmt.Errorf("book %s: %w", isbn, ErrDuplicateKey)
	}

	now := s.opts.Clock()
	book := &entities.Book{
		ISBN:      isbn,
		Title:     title,
		Author:    author,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.books[isbn] = book
	s.bookIndex.onCreate(isbn, bookFields(book))

	out := *book
	return &out, nil
}

// ModifyBook applies the supplied fields. It reports false, with no error,
// when nothing actually changed.
func (s *Store) ModifyBook(isbn string, upd BookUpdate) (bool, error) {
	key := NormalizeDigits(isbn)

	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[key]
	if !ok {
		return false, fmt.Errorf("book %s: %w", isbn, ErrNotFound)
	}

	next := *book
	if upd.Title != nil {
		title, err := cleanText("title", *upd.Title)
		if err != nil {
			return false, err
		}
		next.Title = title
	}
	if upd.Author != nil {
		author, err := cleanText("author", *upd.Author)
		if err != nil {
			return false, err
		}
		next.Author = author
	}
	if upd.Available != nil {
		if *upd.Available && s.activeLoanFor(key) != nil {
			return false, fmt.Errorf("book %s is on loan: %w", key, ErrConflict)
		}
		next.Available = *upd.Available
	}
	if upd.AuthorID != nil {
		if *upd.AuthorID != "" {
			if _, ok := s.authors[*upd.AuthorID]; !ok {
				return false, fmt.Errorf("author %s: %w", *upd.AuthorID, ErrNotFound)
			}
		}
		next.AuthorID = *upd.AuthorID
	}
	if upd.GenreID != nil {
		if *upd.GenreID != "" {
			if _, ok := s.genres[*upd.GenreID]; !ok {
				return false, fmt.Errorf("genre %s: %w", *upd.GenreID, ErrNotFound)
			}
		}
		next.GenreID = *upd.GenreID
	}

	if next == *book {
		return false, nil
	}

	next.UpdatedAt = s.opts.Clock()
	s.bookIndex.onUpdate(key, bookFields(book), bookFields(&next))
	*book = next
	return true, nil
}

// RemoveBook deletes a book that is not on loan. Past loans of the book stay
// in the loan history.
func (s *Store) RemoveBook(isbn string) (bool, error) {
	key := NormalizeDigits(isbn)

	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[key]
	if !ok {
		return false, fmt.Errorf("book %s: %w", isbn, ErrNotFound)
	}
	if s.activeLoanFor(key) != nil {
		return false, fmt.Errorf("book %s is on loan: %w", key, ErrConflict)
	}

	delete(s.books, key)
	s.bookIndex.onDelete(key, bookFields(book))
	return true, nil
}

func (s *Store) GetBook(isbn string) (*entities.Book, error) {
	key := NormalizeDigits(isbn)

	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[key]
	if !ok {
		return nil, fmt.Errorf("book %s: %w", isbn, ErrNotFound)
	}
	out := *book
	return &out, nil
}

// SearchBooks finds books by isbn (exact), or by title or author prefix.
// Results are ordered by ISBN; no match yields an empty slice.
func (s *Store) SearchBooks(criterion, value string) ([]entities.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	switch criterion {
	case AttrISBN:
		key := NormalizeDigits(value)
		if _, ok := s.books[key]; ok {
			ids = []string{key}
		}
	case AttrTitle, AttrAuthor:
		attr, _ := s.bookIndex.attribute(criterion)
		ids = attr.lookupPrefix(value)
	default:
		return nil, invalid("criterion", "unknown book search criterion %q", criterion)
	}

	out := make([]entities.Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := s.books[id]; ok {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *Store) ListBooks() []entities.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedBooks(nil)
}

func (s *Store) AvailableBooks() []entities.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedBooks(func(b *entities.Book) bool { return b.Available })
}

// activeLoanFor returns the active loan of a book, if any.
func (s *Store) activeLoanFor(isbn string) *entities.Loan {
	for _, l := range s.loans {
		if l.IsActive() && l.ISBN == isbn {
			return l
		}
	}
	return nil
}
