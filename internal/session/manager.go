package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Manager binds the store and codec to the session cookie.
type Manager struct {
	store  *Store
	codec  *Codec
	cookie string
	secure bool
}

func NewManager(store *Store, codec *Codec, cookieName string, secure bool) *Manager {
	if cookieName == "" {
		cookieName = "sessionid"
	}
	return &Manager{store: store, codec: codec, cookie: cookieName, secure: secure}
}

func (m *Manager) CookieName() string {
	return m.cookie
}

// Issue creates a session for the user and sets the signed cookie.
func (m *Manager) Issue(c *gin.Context, userID int64) error {
	sid, err := m.store.Create(c.Request.Context(), userID)
	if err != nil {
		return err
	}

	token, err := m.codec.Encode(sid)
	if err != nil {
		m.store.Destroy(c.Request.Context(), sid)
		return err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie, token, int(m.store.TTL()/time.Second), "/", "", m.secure, true)
	return nil
}

// Resolve returns the user behind the request's session cookie, if any.
// Missing, tampered, and revoked sessions all come back as not logged in.
func (m *Manager) Resolve(c *gin.Context) (int64, bool) {
	value, err := c.Cookie(m.cookie)
	if err != nil {
		return 0, false
	}

	sid, err := m.codec.Decode(value)
	if err != nil {
		return 0, false
	}

	userID, err := m.store.UserID(c.Request.Context(), sid)
	if err != nil {
		return 0, false
	}

	return userID, true
}

// Clear revokes the session behind the cookie and expires the cookie itself.
func (m *Manager) Clear(c *gin.Context) {
	if value, err := c.Cookie(m.cookie); err == nil {
		if sid, err := m.codec.Decode(value); err == nil {
			m.store.Destroy(c.Request.Context(), sid)
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie, "", -1, "/", "", m.secure, true)
}
