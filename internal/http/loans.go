package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/entities"
)

type LoansController struct {
	store LoanStore
	queue SnapshotQueue
}

func NewLoansController(store LoanStore, queue SnapshotQueue) *LoansController {
	return &LoansController{store: store, queue: queue}
}

type lendRequest struct {
	Email string `json:"email" binding:"required"`
	ISBN  string `json:"isbn" binding:"required"`
}

// ListLoans returns loans, optionally filtered with ?status=active|returned
// GET /api/loans
func (lc *LoansController) ListLoans(c *gin.Context) {
	loans, err := lc.store.LoansByStatus(entities.LoanStatus(c.Query("status")))
	if err != nil {
		respondCatalogError(c, err, "list loans")
		return
	}
	respondList(c, loans)
}

// LendBook lends a book to a member
// POST /api/loans
func (lc *LoansController) LendBook(c *gin.Context) {
	var req lendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and isbn are required")
		return
	}

	loan, err := lc.store.LendBook(req.Email, req.ISBN)
	if err != nil {
		respondCatalogError(c, err, "lend book")
		return
	}

	notifyChange(lc.queue, fmt.Sprintf("loan %d", loan.ID))
	respondCreated(c, loan)
}

// GetLoan returns a loan by id
// GET /api/loans/:id
func (lc *LoansController) GetLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	loan, err := lc.store.FindLoan(id)
	if err != nil {
		respondCatalogError(c, err, "get loan")
		return
	}
	c.JSON(http.StatusOK, loan)
}

// ReturnBook closes an active loan
// POST /api/loans/:id/return
func (lc *LoansController) ReturnBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := lc.store.ReturnBook(id); err != nil {
		respondCatalogError(c, err, "return book")
		return
	}

	notifyChange(lc.queue, fmt.Sprintf("return of loan %d", id))

	loan, err := lc.store.FindLoan(id)
	if err != nil {
		respondCatalogError(c, err, "get loan")
		return
	}
	c.JSON(http.StatusOK, loan)
}
