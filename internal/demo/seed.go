package demo

import (
	"errors"
	"fmt"
	"log"

	"github.com/mrlokans/librarian/internal/catalog"
)

type bookSeed struct {
	Title    string
	Author   string
	ISBN     string
	AuthorID string
	GenreID  string
}

type memberSeed struct {
	Name  string
	Email string
	Phone string
}

type loanSeed struct {
	Email string
	ISBN  string
}

var genres = map[string]string{
	"novela":          "Novela",
	"realismo-magico": "Realismo mágico",
	"ciencia-ficcion": "Ciencia ficción",
	"fantasia":        "Fantasía",
}

var authors = map[string]string{
	"cervantes": "Miguel de Cervantes",
	"garcia":    "Gabriel García Márquez",
	"orwell":    "George Orwell",
	"tolkien":   "J.R.R. Tolkien",
	"rowling":   "J.K. Rowling",
}

var books = []bookSeed{
	{"El Quijote", "Miguel de Cervantes", "9788497593538", "cervantes", "novela"},
	{"Cien años de soledad", "Gabriel García Márquez", "9788497592203", "garcia", "realismo-magico"},
	{"1984", "George Orwell", "9788497591879", "orwell", "ciencia-ficcion"},
	{"El señor de los anillos", "J.R.R. Tolkien", "9788497591886", "tolkien", "fantasia"},
	{"Harry Potter y la piedra filosofal", "J.K. Rowling", "9788497591893", "rowling", "fantasia"},
}

var members = []memberSeed{
	{"Juan Pérez", "juan@email.com", "123456789"},
	{"María García", "maria@email.com", "987654321"},
	{"Carlos López", "carlos@email.com", "456789123"},
	{"Ana Martínez", "ana@email.com", "789123456"},
	{"Pedro Sánchez", "pedro@email.com", "321654987"},
}

var loans = []loanSeed{
	{"juan@email.com", "9788497593538"},
	{"carlos@email.com", "9788497592203"},
	{"maria@email.com", "9788497591879"},
}

// Result counts what Seed added; entries already present are skipped.
type Result struct {
	Authors int `json:"authors"`
	Genres  int `json:"genres"`
	Books   int `json:"books"`
	Members int `json:"members"`
	Loans   int `json:"loans"`
}

func (r Result) String() string {
	return fmt.Sprintf("%d authors, %d genres, %d books, %d members, %d loans",
		r.Authors, r.Genres, r.Books, r.Members, r.Loans)
}

// Seed fills store with the sample library. Running it twice adds nothing
// the second time.
func Seed(store *catalog.Store) (Result, error) {
	var res Result

	for id, name := range genres {
		added, err := skipExisting(store.AddGenre(id, name))
		if err != nil {
			return res, fmt.Errorf("genre %s: %w", id, err)
		}
		res.Genres += added
	}
	for id, name := range authors {
		added, err := skipExisting(store.AddAuthor(id, name))
		if err != nil {
			return res, fmt.Errorf("author %s: %w", id, err)
		}
		res.Authors += added
	}

	for _, b := range books {
		added, err := skipExisting(store.AddBook(b.Title, b.Author, b.ISBN))
		if err != nil {
			return res, fmt.Errorf("book %s: %w", b.ISBN, err)
		}
		res.Books += added
		if added == 0 {
			continue
		}
		authorID, genreID := b.AuthorID, b.GenreID
		if _, err := store.ModifyBook(b.ISBN, catalog.BookUpdate{AuthorID: &authorID, GenreID: &genreID}); err != nil {
			return res, fmt.Errorf("book %s: %w", b.ISBN, err)
		}
	}

	for _, m := range members {
		added, err := skipExisting(store.RegisterMember(m.Name, m.Phone, m.Email))
		if err != nil {
			return res, fmt.Errorf("member %s: %w", m.Email, err)
		}
		res.Members += added
	}

	for _, l := range loans {
		if _, err := store.LendBook(l.Email, l.ISBN); err != nil {
			if errors.Is(err, catalog.ErrConflict) {
				log.Printf("Skipping sample loan of %s to %s: %v", l.ISBN, l.Email, err)
				continue
			}
			return res, fmt.Errorf("loan of %s to %s: %w", l.ISBN, l.Email, err)
		}
		res.Loans++
	}

	return res, nil
}

func skipExisting[T any](_ T, err error) (int, error) {
	switch {
	case err == nil:
		return 1, nil
	case errors.Is(err, catalog.ErrDuplicateKey):
		return 0, nil
	default:
		return 0, err
	}
}
