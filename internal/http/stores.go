package http

import (
	"context"
	"log"
	"time"

	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/recommend"
)

// This file consolidates the interfaces used by HTTP controllers.
// Each controller takes the narrowest one it needs; *catalog.Store
// satisfies all the catalog-facing ones.

// BookStore covers the book operations of the catalog.
type BookStore interface {
	AddBook(title, author, isbn string) (*entities.Book, error)
	ModifyBook(isbn string, upd catalog.BookUpdate) (bool, error)
	RemoveBook(isbn string) (bool, error)
	GetBook(isbn string) (*entities.Book, error)
	SearchBooks(criterion, value string) ([]entities.Book, error)
	ListBooks() []entities.Book
	AvailableBooks() []entities.Book
}

// MemberStore covers member registration and lookup.
type MemberStore interface {
	RegisterMember(name, phone, email string) (*entities.Member, error)
	ModifyMember(email string, upd catalog.MemberUpdate) (bool, error)
	RemoveMember(email string) (bool, error)
	FindMember(email string) (*entities.Member, error)
	SearchMembers(criterion, value string) ([]entities.Member, error)
	ListMembers() []entities.Member
	LoansForMember(email string) ([]entities.Loan, error)
}

// LoanStore covers lending and returning.
type LoanStore interface {
	LendBook(email, isbn string) (*entities.Loan, error)
	ReturnBook(loanID uint) (bool, error)
	FindLoan(loanID uint) (*entities.Loan, error)
	LoansByStatus(status entities.LoanStatus) ([]entities.Loan, error)
}

// TaxonomyStore covers authors and genres.
type TaxonomyStore interface {
	AddAuthor(id, name string) (*entities.Author, error)
	RemoveAuthor(id string) (bool, error)
	SearchAuthors(prefix string) []entities.Author
	ListAuthors() []entities.Author
	AddGenre(id, name string) (*entities.Genre, error)
	RemoveGenre(id string) (bool, error)
	SearchGenres(prefix string) []entities.Genre
	ListGenres() []entities.Genre
}

// IndexInspector exposes the secondary indexes for debugging.
type IndexInspector interface {
	IndexNames() []string
	RenderIndex(name string) (string, error)
}

// CatalogStore combines every catalog capability. *catalog.Store implements it.
type CatalogStore interface {
	BookStore
	MemberStore
	LoanStore
	TaxonomyStore
	IndexInspector
	Snapshot() catalog.Snapshot
	Stats() catalog.Stats
}

// Recommender produces suggestions for a member.
type Recommender interface {
	RecommendBooks(email string, limit int) ([]recommend.Recommendation, error)
	SimilarMembers(email string, limit int) ([]recommend.SimilarMember, error)
}

// SnapshotStore persists catalog snapshots.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap catalog.Snapshot) error
	LastSavedAt(ctx context.Context) (time.Time, error)
}

// SnapshotQueue schedules a background save of the catalog.
type SnapshotQueue interface {
	EnqueueSnapshot(reason string) error
}

// notifyChange queues a background save after a successful write.
// A nil queue means saving on write is disabled.
func notifyChange(queue SnapshotQueue, reason string) {
	if queue == nil {
		return
	}
	if err := queue.EnqueueSnapshot(reason); err != nil {
		log.Printf("[SNAPSHOT] Failed to queue save after %s: %v", reason, err)
	}
}
