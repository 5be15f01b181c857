package recommend

import (
	"cmp"
	"slices"

	"github.com/mrlokans/librarian/internal/entities"
)

// Catalog is the read-only view of the catalog the engine needs.
type Catalog interface {
	FindMember(email string) (*entities.Member, error)
	ListBooks() []entities.Book
	LoansByStatus(status entities.LoanStatus) ([]entities.Loan, error)
}

type Recommendation struct {
	Book  entities.Book `json:"book"`
	Score int           `json:"score"`
}

type SimilarMember struct {
	Email      string  `json:"email"`
	Similarity float64 `json:"similarity"`
}

type Engine struct {
	catalog Catalog
}

func NewEngine(catalog Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// RecommendBooks returns up to limit available books the member has never
// borrowed, scored by the summed link weight to the books they have. Ties are
// broken by ISBN. A limit of zero or less returns every candidate.
func (e *Engine) RecommendBooks(email string, limit int) ([]Recommendation, error) {
	member, err := e.catalog.FindMember(email)
	if err != nil {
		return nil, err
	}
	loans, err := e.catalog.LoansByStatus("")
	if err != nil {
		return nil, err
	}

	mine := make(map[string]bool)
	for _, l := range loans {
		if l.MemberEmail == member.Email {
			mine[l.ISBN] = true
		}
	}
	if len(mine) == 0 {
		return []Recommendation{}, nil
	}

	graph := BuildCoBorrowGraph(loans)
	scores := make(map[string]int)
	for isbn := range mine {
		for _, other := range graph.Neighbors(isbn) {
			if !mine[other] {
				scores[other] += graph.Weight(isbn, other)
			}
		}
	}

	out := []Recommendation{}
	for _, b := range e.catalog.ListBooks() {
		if score, ok := scores[b.ISBN]; ok && b.Available {
			out = append(out, Recommendation{Book: b, Score: score})
		}
	}
	slices.SortFunc(out, func(x, y Recommendation) int {
		if c := cmp.Compare(y.Score, x.Score); c != 0 {
			return c
		}
		return cmp.Compare(x.Book.ISBN, y.Book.ISBN)
	})
	return truncate(out, limit), nil
}

// SimilarMembers ranks other members by the Jaccard similarity of every book
// they ever borrowed. Members with nothing in common are left out.
func (e *Engine) SimilarMembers(email string, limit int) ([]SimilarMember, error) {
	member, err := e.catalog.FindMember(email)
	if err != nil {
		return nil, err
	}
	loans, err := e.catalog.LoansByStatus("")
	if err != nil {
		return nil, err
	}

	borrowed := make(map[string]map[string]bool)
	for _, l := range loans {
		if borrowed[l.MemberEmail] == nil {
			borrowed[l.MemberEmail] = make(map[string]bool)
		}
		borrowed[l.MemberEmail][l.ISBN] = true
	}

	mine := borrowed[member.Email]
	out := []SimilarMember{}
	for other, theirs := range borrowed {
		if other == member.Email {
			continue
		}
		if sim := jaccard(mine, theirs); sim > 0 {
			out = append(out, SimilarMember{Email: other, Similarity: sim})
		}
	}
	slices.SortFunc(out, func(x, y SimilarMember) int {
		if c := cmp.Compare(y.Similarity, x.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(x.Email, y.Email)
	})
	return truncate(out, limit), nil
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for k := range a {
		if b[k] {
			shared++
		}
	}
	return float64(shared) / float64(len(a)+len(b)-shared)
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
