package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const sessionIDKey = "sessionId"

// sessionMiddleware resolves the bearer token to a session id. The token comes
// from the Authorization header, or from ?token= when no header is sent.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		return
	}

	sessionID, err := h.services.ParseToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(sessionIDKey, sessionID)
	c.Next()
}

// bearerToken extracts the token or aborts the request with 401.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if q := c.Query("token"); q != "" {
			return q, true
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return "", false
	}
	return parts[1], true
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
