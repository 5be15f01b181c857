package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/catalog"
)

type MembersController struct {
	store        MemberStore
	recommender  Recommender
	defaultLimit int
	queue        SnapshotQueue
}

func NewMembersController(store MemberStore, recommender Recommender, defaultLimit int, queue SnapshotQueue) *MembersController {
	return &MembersController{
		store:        store,
		recommender:  recommender,
		defaultLimit: defaultLimit,
		queue:        queue,
	}
}

type registerMemberRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
	Email string `json:"email" binding:"required"`
}

type updateMemberRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// ListMembers returns all members ordered by email
// GET /api/members
func (mc *MembersController) ListMembers(c *gin.Context) {
	respondList(c, mc.store.ListMembers())
}

// RegisterMember creates a member
// POST /api/members
func (mc *MembersController) RegisterMember(c *gin.Context) {
	var req registerMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name, phone and email are required")
		return
	}

	member, err := mc.store.RegisterMember(req.Name, req.Phone, req.Email)
	if err != nil {
		respondCatalogError(c, err, "register member")
		return
	}

	notifyChange(mc.queue, "member registered")
	respondCreated(c, member)
}

// GetMember returns a member by email
// GET /api/members/:email
func (mc *MembersController) GetMember(c *gin.Context) {
	member, err := mc.store.FindMember(c.Param("email"))
	if err != nil {
		respondCatalogError(c, err, "get member")
		return
	}
	c.JSON(http.StatusOK, member)
}

// UpdateMember changes name and/or phone
// PATCH /api/members/:email
func (mc *MembersController) UpdateMember(c *gin.Context) {
	var req updateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	email := c.Param("email")
	changed, err := mc.store.ModifyMember(email, catalog.MemberUpdate{Name: req.Name, Phone: req.Phone})
	if err != nil {
		respondCatalogError(c, err, "update member")
		return
	}
	if changed {
		notifyChange(mc.queue, "member modified")
	}

	member, err := mc.store.FindMember(email)
	if err != nil {
		respondCatalogError(c, err, "get member")
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": member, "changed": changed})
}

// DeleteMember removes a member without active loans
// DELETE /api/members/:email
func (mc *MembersController) DeleteMember(c *gin.Context) {
	if _, err := mc.store.RemoveMember(c.Param("email")); err != nil {
		respondCatalogError(c, err, "delete member")
		return
	}

	notifyChange(mc.queue, "member removed")
	respondSuccess(c, "member deleted")
}

// SearchMembers looks members up by email, name or phone prefix
// GET /api/members/search?by=name&q=...
func (mc *MembersController) SearchMembers(c *gin.Context) {
	by := c.DefaultQuery("by", catalog.AttrName)
	members, err := mc.store.SearchMembers(by, c.Query("q"))
	if err != nil {
		respondCatalogError(c, err, "search members")
		return
	}
	respondList(c, members)
}

// MemberLoans returns the full loan history of a member
// GET /api/members/:email/loans
func (mc *MembersController) MemberLoans(c *gin.Context) {
	loans, err := mc.store.LoansForMember(c.Param("email"))
	if err != nil {
		respondCatalogError(c, err, "member loans")
		return
	}
	respondList(c, loans)
}

// Recommendations suggests books borrowed alongside the member's own
// GET /api/members/:email/recommendations?limit=5
func (mc *MembersController) Recommendations(c *gin.Context) {
	limit, ok := parseLimit(c, mc.defaultLimit)
	if !ok {
		return
	}
	recs, err := mc.recommender.RecommendBooks(c.Param("email"), limit)
	if err != nil {
		respondCatalogError(c, err, "recommend books")
		return
	}
	respondList(c, recs)
}

// SimilarMembers lists members with overlapping borrowing history
// GET /api/members/:email/similar?limit=5
func (mc *MembersController) SimilarMembers(c *gin.Context) {
	limit, ok := parseLimit(c, mc.defaultLimit)
	if !ok {
		return
	}
	similar, err := mc.recommender.SimilarMembers(c.Param("email"), limit)
	if err != nil {
		respondCatalogError(c, err, "similar members")
		return
	}
	respondList(c, similar)
}
