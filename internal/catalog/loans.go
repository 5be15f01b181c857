package catalog

import (
	"fmt"
	"slices"

	"github.com/mrlokans/librarian/internal/entities"
)

// LendBook opens a loan. Preconditions are checked in order and the first
// failure is returned: member exists, book exists, book available, member
// below the active loan limit, member not already holding this book.
func (s *Store) LendBook(email, isbn string) (*entities.Loan, error) {
	memberKey, bookKey := NormalizeEmail(email), NormalizeDigits(isbn)

	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.members[memberKey]
	if !ok {
		return nil, fmt.Errorf("member %s: %w", email, ErrNotFound)
	}
	book, ok := s.books[bookKey]
	if !ok {
		return nil, fmt.Errorf("book %s: %w", isbn, ErrNotFound)
	}
	if !book.Available {
		return nil, fmt.Errorf("book %s is not available: %w", bookKey, ErrConflict)
	}
	if len(member.ActiveLoanIDs) >= s.opts.MaxActiveLoans {
		return nil, fmt.Errorf("member %s already holds %d books: %w", memberKey, len(member.ActiveLoanIDs), ErrConflict)
	}
	for _, id := range member.ActiveLoanIDs {
		if s.loans[id].ISBN == bookKey {
			return nil, fmt.Errorf("member %s already borrowed %s: %w", memberKey, bookKey, ErrConflict)
		}
	}

	s.loanSequence++
	loan := &entities.Loan{
		ID:          s.loanSequence,
		MemberEmail: memberKey,
		ISBN:        bookKey,
		BorrowedAt:  s.opts.Clock(),
		Status:      entities.LoanStatusActive,
	}
	s.loans[loan.ID] = loan
	book.Available = false
	member.ActiveLoanIDs = append(member.ActiveLoanIDs, loan.ID)

	out := loan.Clone()
	return &out, nil
}

// ReturnBook closes an active loan. Returning a loan twice fails with
// ErrAlreadyReturned.
func (s *Store) ReturnBook(loanID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.loans[loanID]
	if !ok {
		return false, fmt.Errorf("loan %d: %w", loanID, ErrNotFound)
	}
	if !loan.IsActive() {
		return false, fmt.Errorf("loan %d: %w", loanID, ErrAlreadyReturned)
	}

	now := s.opts.Clock()
	loan.ReturnedAt = &now
	loan.Status = entities.LoanStatusReturned
	if book, ok := s.books[loan.ISBN]; ok {
		book.Available = true
	}
	if member, ok := s.members[loan.MemberEmail]; ok {
		member.ActiveLoanIDs = slices.DeleteFunc(member.ActiveLoanIDs, func(id uint) bool { return id == loanID })
	}
	return true, nil
}

func (s *Store) FindLoan(loanID uint) (*entities.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loan, ok := s.loans[loanID]
	if !ok {
		return nil, fmt.Errorf("loan %d: %w", loanID, ErrNotFound)
	}
	out := loan.Clone()
	return &out, nil
}

// LoansByStatus lists loans with the given status, or every loan when status
// is empty, ordered by id.
func (s *Store) LoansByStatus(status entities.LoanStatus) ([]entities.Loan, error) {
	switch status {
	case "", entities.LoanStatusActive, entities.LoanStatusReturned:
	default:
		return nil, invalid("status", "unknown loan status %q", status)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedLoans(func(l *entities.Loan) bool {
		return status == "" || l.Status == status
	}), nil
}

// LoansForMember lists every loan of a member, active and returned.
func (s *Store) LoansForMember(email string) ([]entities.Loan, error) {
	key := NormalizeEmail(email)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.members[key]; !ok {
		return nil, fmt.Errorf("member %s: %w", email, ErrNotFound)
	}
	return s.sortedLoans(func(l *entities.Loan) bool { return l.MemberEmail == key }), nil
}
