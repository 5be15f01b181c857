package catalog

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mrlokans/librarian/internal/entities"
)

// AddAuthor stores an author. An empty id is replaced with a new UUID.
func (s *Store) AddAuthor(id, name string) (*entities.Author, error) {
	name, err := cleanName("name", name)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.authors[id]; exists {
		return nil, fmt.Errorf("author %s: %w", id, ErrDuplicateKey)
	}
	author := &entities.Author{ID: id, Name: name}
	s.authors[id] = author
	s.authorIndex.onCreate(id, nameFields(name))

	out := *author
	return &out, nil
}

// RemoveAuthor deletes an author no book refers to.
func (s *Store) RemoveAuthor(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	author, ok := s.authors[id]
	if !ok {
		return false, fmt.Errorf("author %s: %w", id, ErrNotFound)
	}
	for _, b := range s.books {
		if b.AuthorID == id {
			return false, fmt.Errorf("author %s is referenced by book %s: %w", id, b.ISBN, ErrConflict)
		}
	}

	delete(s.authors, id)
	s.authorIndex.onDelete(id, nameFields(author.Name))
	return true, nil
}

func (s *Store) SearchAuthors(prefix string) []entities.Author {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attr, _ := s.authorIndex.attribute(AttrName)
	ids := attr.lookupPrefix(prefix)
	out := make([]entities.Author, 0, len(ids))
	for _, id := range ids {
		if a, ok := s.authors[id]; ok {
			out = append(out, *a)
		}
	}
	return out
}

func (s *Store) ListAuthors() []entities.Author {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedAuthors()
}

// AddGenre stores a genre. An empty id is replaced with a new UUID.
func (s *Store) AddGenre(id, name string) (*entities.Genre, error) {
	name, err := cleanName("name", name)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.genres[id]; exists {
		return nil, fmt.Errorf("genre %s: %w", id, ErrDuplicateKey)
	}
	genre := &entities.Genre{ID: id, Name: name}
	s.genres[id] = genre
	s.genreIndex.onCreate(id, nameFields(name))

	out := *genre
	return &out, nil
}

func (s *Store) RemoveGenre(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	genre, ok := s.genres[id]
	if !ok {
		return false, fmt.Errorf("genre %s: %w", id, ErrNotFound)
	}
	for _, b := range s.books {
		if b.GenreID == id {
			return false, fmt.Errorf("genre %s is referenced by book %s: %w", id, b.ISBN, ErrConflict)
		}
	}

	delete(s.genres, id)
	s.genreIndex.onDelete(id, nameFields(genre.Name))
	return true, nil
}

func (s *Store) SearchGenres(prefix string) []entities.Genre {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attr, _ := s.genreIndex.attribute(AttrName)
	ids := attr.lookupPrefix(prefix)
	out := make([]entities.Genre, 0, len(ids))
	for _, id := range ids {
		if g, ok := s.genres[id]; ok {
			out = append(out, *g)
		}
	}
	return out
}

func (s *Store) ListGenres() []entities.Genre {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedGenres()
}
