package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/catalog"
)

type BooksController struct {
	store BookStore
	queue SnapshotQueue
}

func NewBooksController(store BookStore, queue SnapshotQueue) *BooksController {
	return &BooksController{
		store: store,
		queue: queue,
	}
}

type createBookRequest struct {
	Title  string `json:"title" binding:"required"`
	Author string `json:"author" binding:"required"`
	ISBN   string `json:"isbn" binding:"required"`
}

type updateBookRequest struct {
	Title     *string `json:"title"`
	Author    *string `json:"author"`
	Available *bool   `json:"available"`
	AuthorID  *string `json:"author_id"`
	GenreID   *string `json:"genre_id"`
}

// ListBooks returns every book, or only available ones with ?available=true
// GET /api/books
func (controller *BooksController) ListBooks(c *gin.Context) {
	if c.Query("available") == "true" {
		respondList(c, controller.store.AvailableBooks())
		return
	}
	respondList(c, controller.store.ListBooks())
}

// CreateBook adds a book to the catalog
// POST /api/books
func (controller *BooksController) CreateBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title, author and isbn are required")
		return
	}

	book, err := controller.store.AddBook(req.Title, req.Author, req.ISBN)
	if err != nil {
		respondCatalogError(c, err, "create book")
		return
	}

	notifyChange(controller.queue, "book added")
	respondCreated(c, book)
}

// GetBook returns a single book
// GET /api/books/:isbn
func (controller *BooksController) GetBook(c *gin.Context) {
	book, err := controller.store.GetBook(c.Param("isbn"))
	if err != nil {
		respondCatalogError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// UpdateBook applies a partial update
// PATCH /api/books/:isbn
func (controller *BooksController) UpdateBook(c *gin.Context) {
	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	isbn := c.Param("isbn")
	changed, err := controller.store.ModifyBook(isbn, catalog.BookUpdate{
		Title:     req.Title,
		Author:    req.Author,
		Available: req.Available,
		AuthorID:  req.AuthorID,
		GenreID:   req.GenreID,
	})
	if err != nil {
		respondCatalogError(c, err, "update book")
		return
	}
	if changed {
		notifyChange(controller.queue, "book modified")
	}

	book, err := controller.store.GetBook(isbn)
	if err != nil {
		respondCatalogError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": book, "changed": changed})
}

// DeleteBook removes a book that is not on loan
// DELETE /api/books/:isbn
func (controller *BooksController) DeleteBook(c *gin.Context) {
	if _, err := controller.store.RemoveBook(c.Param("isbn")); err != nil {
		respondCatalogError(c, err, "delete book")
		return
	}

	notifyChange(controller.queue, "book removed")
	respondSuccess(c, "book deleted")
}

// SearchBooks looks books up by isbn, title or author
// GET /api/books/search?by=title&q=...
func (controller *BooksController) SearchBooks(c *gin.Context) {
	by := c.DefaultQuery("by", catalog.AttrTitle)
	books, err := controller.store.SearchBooks(by, c.Query("q"))
	if err != nil {
		respondCatalogError(c, err, "search books")
		return
	}
	respondList(c, books)
}
