package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type IndexesController struct {
	inspector IndexInspector
}

func NewIndexesController(inspector IndexInspector) *IndexesController {
	return &IndexesController{inspector: inspector}
}

// ListIndexes returns the names of all secondary indexes
// GET /api/indexes
func (ic *IndexesController) ListIndexes(c *gin.Context) {
	respondList(c, ic.inspector.IndexNames())
}

// RenderIndex prints the tree of one index as plain text
// GET /api/indexes/:name
func (ic *IndexesController) RenderIndex(c *gin.Context) {
	out, err := ic.inspector.RenderIndex(c.Param("name"))
	if err != nil {
		respondCatalogError(c, err, "render index")
		return
	}
	c.String(http.StatusOK, out)
}
