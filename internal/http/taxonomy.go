package http

import (
	"github.com/gin-gonic/gin"
)

// TaxonomyController serves authors and genres, which share one shape.
type TaxonomyController struct {
	store TaxonomyStore
	queue SnapshotQueue
}

func NewTaxonomyController(store TaxonomyStore, queue SnapshotQueue) *TaxonomyController {
	return &TaxonomyController{store: store, queue: queue}
}

type taxonomyRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" binding:"required"`
}

// ListAuthors returns all authors ordered by id
// GET /api/authors
func (tc *TaxonomyController) ListAuthors(c *gin.Context) {
	respondList(c, tc.store.ListAuthors())
}

// CreateAuthor adds an author; the id is generated when omitted
// POST /api/authors
func (tc *TaxonomyController) CreateAuthor(c *gin.Context) {
	var req taxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}
	author, err := tc.store.AddAuthor(req.ID, req.Name)
	if err != nil {
		respondCatalogError(c, err, "create author")
		return
	}
	notifyChange(tc.queue, "author added")
	respondCreated(c, author)
}

// DeleteAuthor removes an author no book refers to
// DELETE /api/authors/:id
func (tc *TaxonomyController) DeleteAuthor(c *gin.Context) {
	if _, err := tc.store.RemoveAuthor(c.Param("id")); err != nil {
		respondCatalogError(c, err, "delete author")
		return
	}
	notifyChange(tc.queue, "author removed")
	respondSuccess(c, "author deleted")
}

// SearchAuthors matches authors by name prefix
// GET /api/authors/search?q=...
func (tc *TaxonomyController) SearchAuthors(c *gin.Context) {
	respondList(c, tc.store.SearchAuthors(c.Query("q")))
}

// ListGenres returns all genres ordered by id
// GET /api/genres
func (tc *TaxonomyController) ListGenres(c *gin.Context) {
	respondList(c, tc.store.ListGenres())
}

// CreateGenre adds a genre; the id is generated when omitted
// POST /api/genres
func (tc *TaxonomyController) CreateGenre(c *gin.Context) {
	var req taxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}
	genre, err := tc.store.AddGenre(req.ID, req.Name)
	if err != nil {
		respondCatalogError(c, err, "create genre")
		return
	}
	notifyChange(tc.queue, "genre added")
	respondCreated(c, genre)
}

// DeleteGenre removes a genre no book refers to
// DELETE /api/genres/:id
func (tc *TaxonomyController) DeleteGenre(c *gin.Context) {
	if _, err := tc.store.RemoveGenre(c.Param("id")); err != nil {
		respondCatalogError(c, err, "delete genre")
		return
	}
	notifyChange(tc.queue, "genre removed")
	respondSuccess(c, "genre deleted")
}

// SearchGenres matches genres by name prefix
// GET /api/genres/search?q=...
func (tc *TaxonomyController) SearchGenres(c *gin.Context) {
	respondList(c, tc.store.SearchGenres(c.Query("q")))
}
