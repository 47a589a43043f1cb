package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/NazarKuzyk/TodoList/internal/services"
	"github.com/NazarKuzyk/TodoList/internal/session"
)

type RegisterHandler struct {
	db              *gorm.DB
	registerService services.RegisterService
	sessions        *session.Manager
}

type RegistrationForm struct {
	Username  string `form:"username" json:"username"`
	Password1 string `form:"password1" json:"password1"`
	Password2 string `form:"password2" json:"password2"`
}

func NewRegisterHandler(db *gorm.DB, registerService services.RegisterService, sessions *session.Manager) *RegisterHandler {
	return &RegisterHandler{db: db, registerService: registerService, sessions: sessions}
}

// ShowRegister serves the signup page context. Signed-in users are sent to
// the home page instead.
func (h *RegisterHandler) ShowRegister(c *gin.Context) {
	if _, ok := h.sessions.Resolve(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"min_password_length": services.MinPasswordLength,
	})
}

func (h *RegisterHandler) Register(c *gin.Context) {
	var form RegistrationForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request data",
			"details": err.Error(),
		})
		return
	}

	user, err := h.registerService.RegisterUser(c.Request.Context(), h.db, services.RegistrationRequest{
		Username: form.Username,
		Password: form.Password1,
		Confirm:  form.Password2,
	})
	if err != nil {
		if field, ok := registrationField(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "validation failed",
				"fields": gin.H{field: err.Error()},
			})
			return
		}
		log.Printf("registration failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to process registration request",
		})
		return
	}

	// The account exists either way; a failed auto-login just means the
	// user signs in by hand.
	if err := h.sessions.Issue(c, user.ID); err != nil {
		log.Printf("auto-login after registration failed: %v", err)
		c.Redirect(http.StatusFound, "/login/")
		return
	}

	c.Redirect(http.StatusFound, "/register/")
}

func registrationField(err error) (string, bool) {
	switch {
	case errors.Is(err, services.ErrUsernameRequired),
		errors.Is(err, services.ErrUsernameTooLong),
		errors.Is(err, services.ErrUsernameInvalid),
		errors.Is(err, services.ErrUsernameTaken):
		return "username", true
	case errors.Is(err, services.ErrPasswordTooShort):
		return "password1", true
	case errors.Is(err, services.ErrPasswordMismatch):
		return "password2", true
	}
	return "", false
}
