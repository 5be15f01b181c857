package demo

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(enabled bool) *gin.Engine {
	m := NewMiddleware(enabled)
	router := gin.New()
	router.Use(m.InjectContext())
	router.Use(m.Handler())
	handler := func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPost, http.MethodPatch, http.MethodDelete} {
		router.Handle(method, "/api/books", handler)
	}
	return router
}

func TestNewMiddleware(t *testing.T) {
	assert.True(t, NewMiddleware(true).IsEnabled())
	assert.False(t, NewMiddleware(false).IsEnabled())
}

func TestMiddleware_AllowsReads(t *testing.T) {
	router := newRouter(true)
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, "/api/books", nil))
		assert.Equal(t, http.StatusOK, w.Code, method)
	}
}

func TestMiddleware_BlocksWrites(t *testing.T) {
	router := newRouter(true)
	for _, method := range []string{http.MethodPost, http.MethodPatch, http.MethodDelete} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, "/api/books", nil))
		require.Equal(t, http.StatusForbidden, w.Code, method)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, true, response["demo_mode"])
		assert.Equal(t, "DEMO_MODE", response["code"])
	}
}

func TestMiddleware_DisabledAllowsAllRequests(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(false).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/books", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInjectContext(t *testing.T) {
	m := NewMiddleware(true)
	router := gin.New()
	router.Use(m.InjectContext())
	router.GET("/flag", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"demo": c.GetBool(ContextKeyDemoMode)})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flag", nil))
	assert.JSONEq(t, `{"demo":true}`, w.Body.String())
}
