package entities

import (
	"slices"
	"time"
)

type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "active"
	LoanStatusReturned LoanStatus = "returned"
)

type Book struct {
	ISBN      string    `gorm:"primaryKey;size:13" json:"isbn"`
	Title     string    `gorm:"size:512;not null" json:"title"`
	Author    string    `gorm:"size:256;not null" json:"author"`
	Available bool      `gorm:"not null" json:"available"`
	AuthorID  string    `gorm:"index;size:64" json:"author_id,omitempty"`
	GenreID   string    `gorm:"index;size:64" json:"genre_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member is a library patron identified by a lowercased email address.
type Member struct {
	Email string `gorm:"primaryKey;size:255" json:"email"`
	Name  string `gorm:"size:255;not null" json:"name"`
	Phone string `gorm:"size:32" json:"phone"`

	// ActiveLoanIDs lists the member's active loans in borrowing order.
	// It is derived from the loans table and never stored.
	ActiveLoanIDs []uint `gorm:"-" json:"active_loan_ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Loan records one borrowing of a book. Members and books are referenced by
// their ids; returned loans stay in the table as history.
type Loan struct {
	ID          uint       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	MemberEmail string     `gorm:"index;size:255;not null" json:"member_email"`
	ISBN        string     `gorm:"index;size:13;not null" json:"isbn"`
	BorrowedAt  time.Time  `gorm:"not null" json:"borrowed_at"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty"`
	Status      LoanStatus `gorm:"index;size:20;not null" json:"status"`
}

func (l Loan) IsActive() bool {
	return l.Status == LoanStatusActive
}

type Author struct {
	ID   string `gorm:"primaryKey;size:64" json:"id"`
	Name string `gorm:"index;size:256;not null" json:"name"`
}

type Genre struct {
	ID   string `gorm:"primaryKey;size:64" json:"id"`
	Name string `gorm:"index;size:128;not null" json:"name"`
}

func (Book) TableName() string {
	return "books"
}

func (Member) TableName() string {
	return "members"
}

func (Loan) TableName() string {
	return "loans"
}

func (Author) TableName() string {
	return "authors"
}

func (Genre) TableName() string {
	return "genres"
}

// Clone returns a copy that does not share the active loan slice.
func (m Member) Clone() Member {
	m.ActiveLoanIDs = slices.Clone(m.ActiveLoanIDs)
	if m.ActiveLoanIDs == nil {
		m.ActiveLoanIDs = []uint{}
	}
	return m
}

// Clone returns a copy that does not share the return timestamp.
func (l Loan) Clone() Loan {
	if l.ReturnedAt != nil {
		returned := *l.ReturnedAt
		l.ReturnedAt = &returned
	}
	return l
}
