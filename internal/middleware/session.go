package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/NazarKuzyk/TodoList/internal/session"
)

const userIDKey = "user_id"

// RequireSession resolves the session cookie and stores the user id on the
// request context. Anonymous requests are redirected to the login page with
// the original URL carried in the next parameter.
func RequireSession(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessions.Resolve(c)
		if !ok {
			query := url.Values{"next": {c.Request.URL.RequestURI()}}
			c.Redirect(http.StatusFound, "/login/?"+query.Encode())
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// CurrentUserID returns the user id stored by RequireSession.
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}

	userID, ok := v.(int64)
	return userID, ok
}
