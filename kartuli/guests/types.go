package guests

import (
	"errors"
	"time"

	"github.com/gorilla/sessions"
)

const (
	CookieName = "kartuli_guest"
	CookieTTL  = 365 * 24 * time.Hour

	guestIDKey = "guest_id"
)

var ErrMissingSecret = errors.New("guest cookie secret must be set")

// issues and reads the signed guest cookie
type Manager struct {
	store *sessions.CookieStore
}
