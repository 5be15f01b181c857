package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/catalog"
)

// SnapshotSource yields the current catalog state.
type SnapshotSource interface {
	Snapshot() catalog.Snapshot
}

type SnapshotController struct {
	source SnapshotSource
	store  SnapshotStore
	queue  SnapshotQueue
}

func NewSnapshotController(source SnapshotSource, store SnapshotStore, queue SnapshotQueue) *SnapshotController {
	return &SnapshotController{source: source, store: store, queue: queue}
}

// SaveNow writes the catalog to the database. With ?async=true and a task
// queue configured the save is queued instead.
// POST /api/snapshot
func (sc *SnapshotController) SaveNow(c *gin.Context) {
	if c.Query("async") == "true" && sc.queue != nil {
		if err := sc.queue.EnqueueSnapshot("manual"); err != nil {
			respondInternalError(c, err, "queue snapshot")
			return
		}
		respondAccepted(c, "snapshot queued", nil)
		return
	}

	snap := sc.source.Snapshot()
	if err := sc.store.SaveSnapshot(c.Request.Context(), snap); err != nil {
		respondInternalError(c, err, "save snapshot")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "snapshot saved",
		Data: gin.H{
			"books":   len(snap.Books),
			"members": len(snap.Members),
			"loans":   len(snap.Loans),
		},
	})
}

// Status reports when the last snapshot was written.
// GET /api/snapshot
func (sc *SnapshotController) Status(c *gin.Context) {
	savedAt, err := sc.store.LastSavedAt(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "snapshot status")
		return
	}

	resp := gin.H{"saved": !savedAt.IsZero()}
	if !savedAt.IsZero() {
		resp["saved_at"] = savedAt.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}
