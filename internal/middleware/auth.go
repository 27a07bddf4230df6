// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"minisite/internal/model"
	"minisite/internal/session"
	"minisite/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser is the context key for the authenticated user.
const ContextKeyUser ContextKey = "user"

// writeAPIError writes the JSON error envelope used by middleware rejections.
func writeAPIError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}

// RequireAdmin returns middleware that resolves the current user from the
// session and requires the is_admin flag. A missing session or a stale user
// id yields 401 (the session is destroyed on a stale id); a non-admin user
// yields 403. On success the user is placed in the request context.
func RequireAdmin(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), session.KeyUserID)
			if userID == 0 {
				writeAPIError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, model.ErrNotFound) {
					// Session points at a user that no longer exists
					_ = sm.Destroy(r.Context())
					writeAPIError(w, http.StatusUnauthorized, "Authentication required")
					return
				}
				slog.Error("loading session user", "error", err, "user_id", userID)
				writeAPIError(w, http.StatusServiceUnavailable, "Service unavailable")
				return
			}

			if !user.IsAdmin {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", user.ID,
					"remote_addr", r.RemoteAddr,
				)
				writeAPIError(w, http.StatusForbidden, "Forbidden: admin access required")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}
