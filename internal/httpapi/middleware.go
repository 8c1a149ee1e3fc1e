package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	headerUserID = "X-User-ID"
	headerRole   = "X-User-Role"

	RoleAdmin = "ADMIN"
	RoleUser  = "USER"

	ctxUserID = "userID"
	ctxRole   = "role"
)

// identity copies the authenticated principal set by the fronting auth
// proxy into the request context. Absent headers mean an anonymous caller.
func identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(headerUserID); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				c.Set(ctxUserID, id)
				role := strings.ToUpper(strings.TrimSpace(c.GetHeader(headerRole)))
				if role == "" {
					role = RoleUser
				}
				c.Set(ctxRole, role)
			}
		}
		c.Next()
	}
}

func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ctxUserID); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authentication required"})
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ctxUserID); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authentication required"})
			return
		}
		if c.GetString(ctxRole) != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "admin access required"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) (int64, bool) {
	return c.GetInt64(ctxUserID), c.GetString(ctxRole) == RoleAdmin
}

// observe is the access log plus prometheus counters.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		s.metrics.Observe(handler, c.Writer.Status(), start)
	}
}
