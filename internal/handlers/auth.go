package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/NazarKuzyk/TodoList/internal/services"
	"github.com/NazarKuzyk/TodoList/internal/session"
)

type AuthHandler struct {
	db          *gorm.DB
	authService services.AuthService
	sessions    *session.Manager
}

type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Next     string `form:"next" json:"next"`
}

func NewAuthHandler(db *gorm.DB, authService services.AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{db: db, authService: authService, sessions: sessions}
}

// ShowLogin serves the login page context. The next parameter is echoed back
// so the form can carry it through the POST.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"next": c.Query("next")})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request data",
			"details": err.Error(),
		})
		return
	}

	user, err := h.authService.Authenticate(c.Request.Context(), h.db, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid username or password",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to process login request",
		})
		return
	}

	if err := h.sessions.Issue(c, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to start session",
		})
		return
	}

	next := req.Next
	if next == "" {
		next = c.Query("next")
	}
	c.Redirect(http.StatusFound, safeNext(next))
}

// safeNext keeps post-login redirects on this site. Absolute and
// scheme-relative URLs fall back to the home page.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return "/"
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
