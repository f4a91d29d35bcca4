package guests

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// creates a guest cookie manager; secure marks the cookie HTTPS-only
func NewManager(secret string, secure bool) (*Manager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(CookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{store: store}, nil
}

// returns the guest id carried by the request without issuing a new one
func (m *Manager) Lookup(r *http.Request) (string, bool) {
	// a tampered or foreign cookie decodes to an error and an empty session
	session, err := m.store.Get(r, CookieName)
	if err != nil {
		return "", false
	}

	id, ok := session.Values[guestIDKey].(string)
	if !ok {
		return "", false
	}

	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}

	return id, true
}

// returns the request's guest id, issuing a fresh cookie when it is missing or invalid
func (m *Manager) Resolve(c *gin.Context) (string, error) {
	if id, ok := m.Lookup(c.Request); ok {
		return id, nil
	}

	session := sessions.NewSession(m.store, CookieName)
	session.Options = m.store.Options
	session.IsNew = true

	id := uuid.NewString()
	session.Values[guestIDKey] = id

	if err := m.store.Save(c.Request, c.Writer, session); err != nil {
		return "", fmt.Errorf("failed to issue guest cookie: %w", err)
	}

	return id, nil
}
