package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/port"
)

const sessionContextKey = "auth.session"

// TokenFromRequest extracts the session token from the session_token cookie
// or, failing that, an Authorization: Bearer header.
func TokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie("session_token"); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// RequireSession resolves the caller's token and aborts with 401 when it is
// missing or invalid. The resolved session is stored on the gin context.
func RequireSession(store port.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		sess, err := store.Resolve(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}
		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// CurrentSession returns the session placed by RequireSession.
func CurrentSession(c *gin.Context) (port.Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return port.Session{}, false
	}
	sess, ok := v.(port.Session)
	return sess, ok
}
