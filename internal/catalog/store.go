package catalog

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/librarian/internal/entities"
)

const DefaultMaxActiveLoans = 3

// Index names accepted by RenderIndex and the search criteria.
const (
	AttrISBN   = "isbn"
	AttrTitle  = "title"
	AttrAuthor = "author"
	AttrEmail  = "email"
	AttrName   = "name"
	AttrPhone  = "phone"
)

type Options struct {
	// MaxActiveLoans caps how many books one member may hold at once.
	MaxActiveLoans int
	// Clock stamps loans and records; defaults to time.Now.
	Clock func() time.Time
}

func DefaultOptions() Options {
	return Options{
		MaxActiveLoans: DefaultMaxActiveLoans,
		Clock:          time.Now,
	}
}

// Store is the catalog: primary tables plus the secondary indexes derived
// from them. All public methods are safe for concurrent use and return
// copies, never pointers into the tables.
type Store struct {
	mu   sync.RWMutex
	opts Options

	books   map[string]*entities.Book
	members map[string]*entities.Member
	loans   map[uint]*entities.Loan
	authors map[string]*entities.Author
	genres  map[string]*entities.Genre

	loanSequence uint

	bookIndex   *maintainer
	memberIndex *maintainer
	authorIndex *maintainer
	genreIndex  *maintainer
}

func NewStore(opts Options) *Store {
	if opts.MaxActiveLoans <= 0 {
		opts.MaxActiveLoans = DefaultMaxActiveLoans
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Store{
		opts: opts,
		bookIndex: newMaintainer("book",
			attributeSpec{name: AttrISBN, unique: true, normalize: NormalizeDigits},
			attributeSpec{name: AttrTitle, normalize: NormalizeText},
			attributeSpec{name: AttrAuthor, normalize: NormalizeText},
		),
		memberIndex: newMaintainer("member",
			attributeSpec{name: AttrEmail, unique: true, normalize: NormalizeEmail},
			attributeSpec{name: AttrName, normalize: NormalizeText},
			attributeSpec{name: AttrPhone, normalize: NormalizeDigits},
		),
		authorIndex: newMaintainer("author", attributeSpec{name: AttrName, normalize: NormalizeText}),
		genreIndex:  newMaintainer("genre", attributeSpec{name: AttrName, normalize: NormalizeText}),
	}
	s.resetTables()
	return s
}

func (s *Store) MaxActiveLoans() int {
	return s.opts.MaxActiveLoans
}

func (s *Store) resetTables() {
	s.books = make(map[string]*entities.Book)
	s.members = make(map[string]*entities.Member)
	s.loans = make(map[uint]*entities.Loan)
	s.authors = make(map[string]*entities.Author)
	s.genres = make(map[string]*entities.Genre)
	s.loanSequence = 0
}

func bookFields(b *entities.Book) fields {
	return fields{AttrISBN: b.ISBN, AttrTitle: b.Title, AttrAuthor: b.Author}
}

func memberFields(m *entities.Member) fields {
	return fields{AttrEmail: m.Email, AttrName: m.Name, AttrPhone: m.Phone}
}

func nameFields(name string) fields {
	return fields{AttrName: name}
}

// Snapshot is a deep copy of the primary tables, sorted by id.
type Snapshot struct {
	Books        []entities.Book
	Members      []entities.Member
	Loans        []entities.Loan
	Authors      []entities.Author
	Genres       []entities.Genre
	LoanSequence uint
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Books:        s.sortedBooks(nil),
		Members:      s.sortedMembers(),
		Loans:        s.sortedLoans(nil),
		Authors:      s.sortedAuthors(),
		Genres:       s.sortedGenres(),
		LoanSequence: s.loanSequence,
	}
}

// Restore replaces the whole catalog with snap. The snapshot is checked
// before anything is touched; on error the store is unchanged.
//
// Member active loan lists are derived from active loans, and books with an
// active loan are marked unavailable. Returned loans may reference books or
// members that no longer exist.
func (s *Store) Restore(snap Snapshot) error {
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetTables()
	for _, b := range snap.Books {
		book := b
		s.books[book.ISBN] = &book
	}
	for _, m := range snap.Members {
		member := m.Clone()
		member.ActiveLoanIDs = []uint{}
		s.members[member.Email] = &member
	}
	for _, a := range snap.Authors {
		author := a
		s.authors[author.ID] = &author
	}
	for _, g := range snap.Genres {
		genre := g
		s.genres[genre.ID] = &genre
	}

	s.loanSequence = snap.LoanSequence
	loans := slices.Clone(snap.Loans)
	slices.SortFunc(loans, func(a, b entities.Loan) int { return cmp.Compare(a.ID, b.ID) })
	for _, l := range loans {
		loan := l.Clone()
		s.loans[loan.ID] = &loan
		s.loanSequence = max(s.loanSequence, loan.ID)
		if loan.IsActive() {
			s.members[loan.MemberEmail].ActiveLoanIDs = append(s.members[loan.MemberEmail].ActiveLoanIDs, loan.ID)
			s.books[loan.ISBN].Available = false
		}
	}

	s.rebuildIndexes()
	return nil
}

func validateSnapshot(snap Snapshot) error {
	books := make(map[string]bool, len(snap.Books))
	for _, b := range snap.Books {
		if b.ISBN == "" {
			return invalid("isbn", "snapshot book without isbn")
		}
		if books[b.ISBN] {
			return fmt.Errorf("book %s: %w", b.ISBN, ErrDuplicateKey)
		}
		books[b.ISBN] = true
	}

	members := make(map[string]bool, len(snap.Members))
	for _, m := range snap.Members {
		if m.Email == "" {
			return invalid("email", "snapshot member without email")
		}
		if members[m.Email] {
			return fmt.Errorf("member %s: %w", m.Email, ErrDuplicateKey)
		}
		members[m.Email] = true
	}

	for _, ids := range [][]string{authorIDs(snap.Authors), genreIDs(snap.Genres)} {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if id == "" {
				return invalid("id", "snapshot record without id")
			}
			if seen[id] {
				return fmt.Errorf("id %s: %w", id, ErrDuplicateKey)
			}
			seen[id] = true
		}
	}

	loans := make(map[uint]bool, len(snap.Loans))
	onLoan := make(map[string]uint)
	for _, l := range snap.Loans {
		if loans[l.ID] {
			return fmt.Errorf("loan %d: %w", l.ID, ErrDuplicateKey)
		}
		loans[l.ID] = true

		switch l.Status {
		case entities.LoanStatusReturned:
			continue
		case entities.LoanStatusActive:
		default:
			return invalid("status", "loan %d has unknown status %q", l.ID, l.Status)
		}
		if !members[l.MemberEmail] {
			return fmt.Errorf("active loan %d references member %s: %w", l.ID, l.MemberEmail, ErrNotFound)
		}
		if !books[l.ISBN] {
			return fmt.Errorf("active loan %d references book %s: %w", l.ID, l.ISBN, ErrNotFound)
		}
		if other, ok := onLoan[l.ISBN]; ok {
			return fmt.Errorf("book %s has active loans %d and %d: %w", l.ISBN, other, l.ID, ErrConflict)
		}
		onLoan[l.ISBN] = l.ID
	}
	return nil
}

func authorIDs(authors []entities.Author) []string {
	ids := make([]string, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	return ids
}

func genreIDs(genres []entities.Genre) []string {
	ids := make([]string, len(genres))
	for i, g := range genres {
		ids[i] = g.ID
	}
	return ids
}

// RebuildIndexes discards every secondary index and rebuilds it from the
// primary tables.
func (s *Store) RebuildIndexes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuildIndexes()
}

func (s *Store) rebuildIndexes() {
	s.bookIndex.reset()
	for isbn, b := range s.books {
		s.bookIndex.onCreate(isbn, bookFields(b))
	}
	s.memberIndex.reset()
	for email, m := range s.members {
		s.memberIndex.onCreate(email, memberFields(m))
	}
	s.authorIndex.reset()
	for id, a := range s.authors {
		s.authorIndex.onCreate(id, nameFields(a.Name))
	}
	s.genreIndex.reset()
	for id, g := range s.genres {
		s.genreIndex.onCreate(id, nameFields(g.Name))
	}
}

// IndexNames lists the indexes RenderIndex accepts, as "entity.attribute".
func (s *Store) IndexNames() []string {
	var names []string
	for _, m := range s.maintainers() {
		for _, a := range m.attrs {
			names = append(names, m.entity+"."+a.name)
		}
	}
	return names
}

// RenderIndex draws the tree behind one index, e.g. "book.title".
func (s *Store) RenderIndex(name string) (string, error) {
	entity, attr, _ := strings.Cut(name, ".")

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.maintainers() {
		if m.entity != entity {
			continue
		}
		if a, ok := m.attribute(attr); ok {
			return a.tree.Render(name), nil
		}
	}
	return "", fmt.Errorf("index %q: %w", name, ErrNotFound)
}

func (s *Store) maintainers() []*maintainer {
	return []*maintainer{s.bookIndex, s.memberIndex, s.authorIndex, s.genreIndex}
}

// Stats reports table sizes.
type Stats struct {
	Books       int `json:"books"`
	Members     int `json:"members"`
	Loans       int `json:"loans"`
	ActiveLoans int `json:"active_loans"`
	Authors     int `json:"authors"`
	Genres      int `json:"genres"`
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Books:   len(s.books),
		Members: len(s.members),
		Loans:   len(s.loans),
		Authors: len(s.authors),
		Genres:  len(s.genres),
	}
	for _, l := range s.loans {
		if l.IsActive() {
			st.ActiveLoans++
		}
	}
	return st
}

func (s *Store) sortedBooks(keep func(*entities.Book) bool) []entities.Book {
	out := make([]entities.Book, 0, len(s.books))
	for _, isbn := range slices.Sorted(maps.Keys(s.books)) {
		b := s.books[isbn]
		if keep == nil || keep(b) {
			out = append(out, *b)
		}
	}
	return out
}

func (s *Store) sortedMembers() []entities.Member {
	out := make([]entities.Member, 0, len(s.members))
	for _, email := range slices.Sorted(maps.Keys(s.members)) {
		out = append(out, s.members[email].Clone())
	}
	return out
}

func (s *Store) sortedLoans(keep func(*entities.Loan) bool) []entities.Loan {
	out := make([]entities.Loan, 0, len(s.loans))
	for _, id := range slices.Sorted(maps.Keys(s.loans)) {
		l := s.loans[id]
		if keep == nil || keep(l) {
			out = append(out, l.Clone())
		}
	}
	return out
}

func (s *Store) sortedAuthors() []entities.Author {
	out := make([]entities.Author, 0, len(s.authors))
	for _, id := range slices.Sorted(maps.Keys(s.authors)) {
		out = append(out, *s.authors[id])
	}
	return out
}

func (s *Store) sortedGenres() []entities.Genre {
	out := make([]entities.Genre, 0, len(s.genres))
	for _, id := range slices.Sorted(maps.Keys(s.genres)) {
		out = append(out, *s.genres[id])
	}
	return out
}
