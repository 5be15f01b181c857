package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/librarian/internal/config"
)

const testToken = "library-admin-token"

func setupRouter(t *testing.T, cfg config.Auth, limiter *RateLimiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.Use(TokenMiddleware(cfg, limiter))
	handler := func(c *gin.Context) {
		c.String(http.StatusOK, string(GetAuthType(c)))
	}
	router.GET("/api/books", handler)
	router.POST("/api/books", handler)
	return router
}

func tokenConfig(t *testing.T) config.Auth {
	t.Helper()
	hash, err := HashToken(testToken, bcrypt.MinCost)
	require.NoError(t, err)
	return config.Auth{Mode: config.AuthModeToken, TokenHash: hash}
}

func do(router *gin.Engine, method, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/books", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTokenMiddleware_NoneMode(t *testing.T) {
	router := setupRouter(t, config.Auth{Mode: config.AuthModeNone}, nil)

	w := do(router, http.MethodPost, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(AuthTypeNone), w.Body.String())
}

func TestTokenMiddleware_TokenMode(t *testing.T) {
	router := setupRouter(t, tokenConfig(t), nil)

	t.Run("reads are public", func(t *testing.T) {
		w := do(router, http.MethodGet, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, string(AuthTypePublic), w.Body.String())
	})

	t.Run("write without token", func(t *testing.T) {
		w := do(router, http.MethodPost, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
	})

	t.Run("wrong scheme", func(t *testing.T) {
		w := do(router, http.MethodPost, "Basic "+testToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong token", func(t *testing.T) {
		w := do(router, http.MethodPost, "Bearer not-the-right-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := do(router, http.MethodPost, "Bearer "+testToken)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, string(AuthTypeBearer), w.Body.String())
	})
}

func TestTokenMiddleware_LocksOutRepeatedFailures(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{MaxAttempts: 2, LockoutDuration: time.Minute})
	defer limiter.Stop()
	router := setupRouter(t, tokenConfig(t), limiter)

	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodPost, "Bearer bad-token-one").Code)
	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodPost, "Bearer bad-token-two").Code)

	w := do(router, http.MethodPost, "Bearer "+testToken)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	router := setupRouter(t, config.Auth{Mode: config.AuthModeNone}, nil)

	w := do(router, http.MethodGet, "")

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}
