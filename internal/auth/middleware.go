package auth

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/config"
)

// ContextKeyAuthType records how a request was let through: "none",
// "public" or "bearer".
const ContextKeyAuthType = "auth_type"

type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypePublic AuthType = "public"
	AuthTypeBearer AuthType = "bearer"
)

// GetAuthType reports how the current request was authenticated.
func GetAuthType(c *gin.Context) AuthType {
	if v, ok := c.Get(ContextKeyAuthType); ok {
		if t, ok := v.(AuthType); ok {
			return t
		}
	}
	return AuthTypeNone
}

var readMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// TokenMiddleware enforces cfg.Mode. In token mode, write requests must carry
// "Authorization: Bearer <token>" matching cfg.TokenHash. limiter may be nil.
func TokenMiddleware(cfg config.Auth, limiter *RateLimiter) gin.HandlerFunc {
	if cfg.Mode != config.AuthModeToken {
		return func(c *gin.Context) {
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if readMethods[c.Request.Method] {
			c.Set(ContextKeyAuthType, AuthTypePublic)
			c.Next()
			return
		}

		ip := c.ClientIP()
		if limiter != nil {
			if allowed, retryAfter := limiter.Allow(ip); !allowed {
				c.Header("Retry-After", fmt.Sprintf("%d", int(math.Ceil(retryAfter.Seconds()))))
				abort(c, http.StatusTooManyRequests, "Too many failed attempts", "TOO_MANY_ATTEMPTS")
				return
			}
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abort(c, http.StatusUnauthorized, "Bearer token required", "UNAUTHORIZED")
			return
		}

		if err := CheckToken(token, cfg.TokenHash); err != nil {
			if limiter != nil {
				if locked, _ := limiter.RecordFailure(ip); locked {
					log.Printf("[AUTH] Locked out %s after repeated bad tokens", ip)
				}
			}
			abort(c, http.StatusUnauthorized, "Invalid token", "UNAUTHORIZED")
			return
		}

		if limiter != nil {
			limiter.RecordSuccess(ip)
		}
		c.Set(ContextKeyAuthType, AuthTypeBearer)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// abort writes the same error envelope the API handlers use.
func abort(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": message,
		"code":  code,
	})
}
