package jwtmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"course_backend/internal/platform/identity"
)

const (
	// ContextExternalID is the gin context key holding the caller's external id.
	ContextExternalID = "externalID"

	// SessionCookie is the cookie browsers carry the session token in.
	SessionCookie = "__session"
)

// SessionRequired returns a Gin middleware function that verifies the session
// token and stores the caller's session on the request context.
// The token is read from the Authorization header, then from SessionCookie.
func SessionRequired(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if len(key) == 0 {
			// Server misconfiguration (SESSION_SECRET not set)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}

		tokenStr, ok := sessionToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			return
		}

		session, err := ParseSessionToken(tokenStr, key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextExternalID, session.ExternalID)
		c.Request = c.Request.WithContext(identity.WithSession(c.Request.Context(), session))
		c.Next()
	}
}

func sessionToken(c *gin.Context) (string, bool) {
	if auth := c.GetHeader("Authorization"); auth != "" {
		tok, ok := strings.CutPrefix(auth, "Bearer ")
		return tok, ok && tok != ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}
