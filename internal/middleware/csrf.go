// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"minisite/internal/session"
)

// csrfRandomBytes is the random part of the token (256 bits of entropy).
const csrfRandomBytes = 32

// CSRFFormField is the form field carrying the anti-forgery token.
const CSRFFormField = "_csrf"

// CSRFHeader is the request header alternative to the form field.
const CSRFHeader = "X-CSRF-Token"

// CSRFGuard issues and validates per-session anti-forgery tokens.
// Tokens are random values authenticated with an HMAC keyed by the
// session secret, stored in the session and compared in constant time.
type CSRFGuard struct {
	sm  *scs.SessionManager
	key []byte
}

// NewCSRFGuard creates a CSRF guard keyed with the session secret.
func NewCSRFGuard(sm *scs.SessionManager, key []byte) *CSRFGuard {
	return &CSRFGuard{sm: sm, key: key}
}

// Token returns the session's anti-forgery token, generating and storing
// a new one if the session does not have one yet.
func (g *CSRFGuard) Token(ctx context.Context) (string, error) {
	if token := g.sm.GetString(ctx, session.KeyCSRFToken); token != "" {
		return token, nil
	}

	buf := make([]byte, csrfRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating CSRF token: %w", err)
	}

	mac := hmac.New(sha256.New, g.key)
	mac.Write(buf)
	token := base64.RawURLEncoding.EncodeToString(append(buf, mac.Sum(nil)...))

	g.sm.Put(ctx, session.KeyCSRFToken, token)
	return token, nil
}

// Verify returns middleware that rejects state-mutating requests whose
// submitted token does not match the session token. Verification happens
// before any other work, so a forged request never consumes a rate-limit
// bucket or touches the store.
func (g *CSRFGuard) Verify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stored := g.sm.GetString(r.Context(), session.KeyCSRFToken)

		submitted := r.Header.Get(CSRFHeader)
		if submitted == "" {
			if err := r.ParseForm(); err == nil {
				submitted = r.PostFormValue(CSRFFormField)
			}
		}

		if stored == "" || submitted == "" ||
			subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
			slog.Warn("CSRF validation failed",
				"method", r.Method,
				"path", r.URL.Path,
				"has_session_token", stored != "",
			)
			writeAPIError(w, http.StatusForbidden, "Forbidden - CSRF validation failed")
			return
		}

		next.ServeHTTP(w, r)
	})
}
