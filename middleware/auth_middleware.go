package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/princinho/knowledgebase/auth"
	"github.com/princinho/knowledgebase/metrics"
)

const sessionKey = "session"

// Session decodes the caller's bearer access token, if any, and attaches the
// session to the context. It never aborts: an absent or invalid token
// leaves the request anonymous and the guard decides what that means.
func Session(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr := bearerToken(c); tokenStr != "" {
			if s := issuer.Verify(tokenStr); s != nil {
				c.Set(sessionKey, s)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// SessionFrom returns the session attached by Session, or nil.
func SessionFrom(c *gin.Context) *auth.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*auth.Session)
	return s
}

// Require fences a route group before any payload is bound. Services apply
// the same policy again.
func Require(req auth.Requirement, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := auth.Authorize(SessionFrom(c), req)
		if d.Allowed {
			c.Next()
			return
		}
		m.Denied(d.Reason.String())
		status := http.StatusForbidden
		if d.Reason == auth.ReasonUnauthenticated {
			status = http.StatusUnauthorized
		}
		c.AbortWithStatusJSON(status, gin.H{"error": d.Reason.String()})
	}
}
