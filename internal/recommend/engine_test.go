package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/entities"
)

const (
	isbnA = "9780000000001"
	isbnB = "9780000000002"
	isbnC = "9780000000003"
	isbnD = "9780000000004"
)

// borrowAndReturn records a finished loan for each isbn.
func borrowAndReturn(t *testing.T, s *catalog.Store, email string, isbns ...string) {
	t.Helper()
	for _, isbn := range isbns {
		loan, err := s.LendBook(email, isbn)
		require.NoError(t, err)
		_, err = s.ReturnBook(loan.ID)
		require.NoError(t, err)
	}
}

func newLibrary(t *testing.T) *catalog.Store {
	t.Helper()
	s := catalog.NewStore(catalog.DefaultOptions())
	for title, isbn := range map[string]string{"Alpha": isbnA, "Bravo": isbnB, "Charlie": isbnC, "Delta": isbnD} {
		_, err := s.AddBook(title, "Some Author", isbn)
		require.NoError(t, err)
	}
	for name, email := range map[string]string{
		"Ana": "ana@email.com", "Bea": "bea@email.com", "Cai": "cai@email.com",
		"Dan": "dan@email.com", "Eve": "eve@email.com",
	} {
		_, err := s.RegisterMember(name, "5551234567", email)
		require.NoError(t, err)
	}

	borrowAndReturn(t, s, "ana@email.com", isbnA, isbnB)
	borrowAndReturn(t, s, "bea@email.com", isbnA, isbnC)
	borrowAndReturn(t, s, "cai@email.com", isbnA, isbnC)
	borrowAndReturn(t, s, "eve@email.com", isbnD)
	return s
}

func TestBuildCoBorrowGraph(t *testing.T) {
	loans := []entities.Loan{
		{ID: 1, MemberEmail: "a", ISBN: "x", Status: entities.LoanStatusActive},
		{ID: 2, MemberEmail: "a", ISBN: "y", Status: entities.LoanStatusReturned},
		{ID: 3, MemberEmail: "a", ISBN: "y", Status: entities.LoanStatusReturned},
		{ID: 4, MemberEmail: "b", ISBN: "x", Status: entities.LoanStatusActive},
		{ID: 5, MemberEmail: "b", ISBN: "y", Status: entities.LoanStatusActive},
		{ID: 6, MemberEmail: "b", ISBN: "z", Status: entities.LoanStatusActive},
	}

	g := BuildCoBorrowGraph(loans)

	assert.Equal(t, 2, g.Weight("x", "y"))
	assert.Equal(t, 2, g.Weight("y", "x"))
	assert.Equal(t, 1, g.Weight("x", "z"))
	assert.Equal(t, 0, g.Weight("x", "missing"))
	assert.Equal(t, []string{"y", "z"}, g.Neighbors("x"))
	assert.Equal(t, []Edge{
		{A: "x", B: "y", Weight: 2},
		{A: "x", B: "z", Weight: 1},
		{A: "y", B: "z", Weight: 1},
	}, g.Edges())
}

func TestEngine_RecommendBooks(t *testing.T) {
	t.Run("scores by summed link weight", func(t *testing.T) {
		s := newLibrary(t)
		_, err := s.LendBook("dan@email.com", isbnA)
		require.NoError(t, err)

		recs, err := NewEngine(s).RecommendBooks("dan@email.com", 0)

		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, isbnC, recs[0].Book.ISBN)
		assert.Equal(t, 2, recs[0].Score)
		assert.Equal(t, isbnB, recs[1].Book.ISBN)
		assert.Equal(t, 1, recs[1].Score)
	})

	t.Run("skips unavailable books and honours limit", func(t *testing.T) {
		s := newLibrary(t)
		_, err := s.LendBook("dan@email.com", isbnA)
		require.NoError(t, err)
		_, err = s.LendBook("eve@email.com", isbnC)
		require.NoError(t, err)

		recs, err := NewEngine(s).RecommendBooks("dan@email.com", 5)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, isbnB, recs[0].Book.ISBN)
	})

	t.Run("member without loans gets nothing", func(t *testing.T) {
		recs, err := NewEngine(newLibrary(t)).RecommendBooks("dan@email.com", 5)
		require.NoError(t, err)
		assert.NotNil(t, recs)
		assert.Empty(t, recs)
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := NewEngine(newLibrary(t)).RecommendBooks("ghost@email.com", 5)
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})
}

func TestEngine_SimilarMembers(t *testing.T) {
	s := newLibrary(t)
	_, err := s.LendBook("dan@email.com", isbnA)
	require.NoError(t, err)
	_, err = s.LendBook("dan@email.com", isbnC)
	require.NoError(t, err)

	similar, err := NewEngine(s).SimilarMembers("dan@email.com", 0)

	require.NoError(t, err)
	require.Len(t, similar, 3)
	assert.Equal(t, SimilarMember{Email: "bea@email.com", Similarity: 1}, similar[0])
	assert.Equal(t, SimilarMember{Email: "cai@email.com", Similarity: 1}, similar[1])
	assert.Equal(t, "ana@email.com", similar[2].Email)
	assert.InDelta(t, 1.0/3.0, similar[2].Similarity, 1e-9)

	top, err := NewEngine(s).SimilarMembers("dan@email.com", 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}
