// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"minisite/internal/auth"
	"minisite/internal/middleware"
	"minisite/internal/model"
	"minisite/internal/session"
	"minisite/internal/store"
)

// AuthHandler handles admin login and logout.
type AuthHandler struct {
	queries *store.Queries
	sm      *scs.SessionManager
	csrf    *middleware.CSRFGuard
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, sm *scs.SessionManager, csrf *middleware.CSRFGuard) *AuthHandler {
	return &AuthHandler{
		queries: store.New(db),
		sm:      sm,
		csrf:    csrf,
	}
}

// LoginForm handles GET /admin/login. It issues the session's CSRF token
// for the login form. An already-authenticated admin is sent to the
// dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.sm.GetInt64(r.Context(), session.KeyUserID) != 0 {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	token, err := h.csrf.Token(r.Context())
	if err != nil {
		slog.Error("issuing CSRF token", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSONSuccess(w, map[string]any{
		"csrf_token": token,
	})
}

// Login handles POST /login. Unknown usernames and wrong passwords get
// the same response so accounts cannot be enumerated.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		writeJSONError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.queries.GetUserByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// Burn a hash comparison so the timing matches a real user.
			_, _ = auth.CheckPassword(password, auth.DummyHash)
			slog.Warn("login failed", "username", username, "ip", middleware.ClientIP(r))
			writeJSONError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		writeJSONError(w, http.StatusServiceUnavailable, "Service unavailable")
		return
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("checking password", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !ok {
		slog.Warn("login failed", "username", username, "ip", middleware.ClientIP(r))
		writeJSONError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), user.ID, newHash); err != nil {
				slog.Error("rotating password hash", "error", err, "user_id", user.ID)
			}
		}
	}

	// New session identity, new token.
	if err := h.sm.RenewToken(r.Context()); err != nil {
		slog.Error("renewing session token", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.sm.Put(r.Context(), session.KeyUserID, user.ID)

	slog.Info("login succeeded", "username", username, "user_id", user.ID)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout handles POST /logout. Destroying the session drops the user
// identity and the CSRF token together.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sm.Destroy(r.Context()); err != nil {
		slog.Error("destroying session", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
