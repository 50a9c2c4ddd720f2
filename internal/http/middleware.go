package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tazhibayda/postpilot-backend/internal/domain"
	"github.com/tazhibayda/postpilot-backend/internal/security"
)

const (
	authUserKey  = "authUser"
	requestIDKey = "X-Request-ID"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDKey)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDKey, id)
		c.Next()
	}
}

// Authenticate reads the session cookie, verifies it, and attaches the claims
// to the request context. Claims are trusted as signed; the store is never
// consulted here, so a role change takes effect only after token expiry.
func Authenticate(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := c.Cookie(sessionCookie)
		if err != nil || tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "No token provided"})
			return
		}
		claims, err := security.ParseToken(secret, tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}
		c.Set(authUserKey, claims)
		c.Next()
	}
}

// RequireAdmin runs after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		au, ok := c.Get(authUserKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
			return
		}
		claims := au.(*security.Claims)
		if claims.Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Admin access required"})
			return
		}
		c.Next()
	}
}

// Counter is the window-counter surface the rate limiter needs; *repo.Redis
// provides it, tests use a fake.
type Counter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit is a fixed-window per-IP limiter backed by Redis so it holds
// across replicas. The window lives in the key (minute bucket), not in the
// TTL, so the count never survives its window. A Redis outage fails open:
// credential endpoints stay up.
func RateLimit(counter Counter, perMin int) gin.HandlerFunc {
	const window = time.Minute
	return func(c *gin.Context) {
		if counter == nil || perMin <= 0 {
			c.Next()
			return
		}
		bucket := time.Now().Unix() / int64(window.Seconds())
		key := fmt.Sprintf("rl:%s:%s:%d", c.FullPath(), c.ClientIP(), bucket)
		n, err := counter.IncrWindow(c.Request.Context(), key, 2*window)
		if err != nil {
			c.Next()
			return
		}
		if n > int64(perMin) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "Too many requests"})
			return
		}
		c.Next()
	}
}
