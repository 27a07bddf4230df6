// Package session constructs the cookie-backed session manager.
// Session state lives in the sessions table (sqlite3store); the cookie
// carries only the signed session token.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session keys. Logout destroys the whole session, so the user id and the
// CSRF token are always invalidated together.
const (
	KeyUserID    = "user_id"
	KeyCSRFToken = "csrf_token"
)

// New creates a session manager backed by the SQLite sessions table.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only

	return sm
}
