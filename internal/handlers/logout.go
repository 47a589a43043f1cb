package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NazarKuzyk/TodoList/internal/session"
)

type LogoutHandler struct {
	sessions *session.Manager
}

func NewLogoutHandler(sessions *session.Manager) *LogoutHandler {
	return &LogoutHandler{sessions: sessions}
}

// Logout revokes the session and sends the browser back to the login page.
// It is safe to call without a session.
func (h *LogoutHandler) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	c.Redirect(http.StatusFound, "/login/")
}
