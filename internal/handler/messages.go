// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"minisite/internal/store"
)

// MessagesHandler handles the public contact-message route.
type MessagesHandler struct {
	queries *store.Queries
}

// NewMessagesHandler creates a new MessagesHandler.
func NewMessagesHandler(db *sql.DB) *MessagesHandler {
	return &MessagesHandler{queries: store.New(db)}
}

// Create handles POST /messages. CSRF and rate limiting are enforced by
// middleware; the message is stored with status new.
func (h *MessagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	msg, err := h.queries.CreateMessage(r.Context(),
		r.PostFormValue("name"), r.PostFormValue("email"), r.PostFormValue("message"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("message submitted", "id", msg.ID)
	http.Redirect(w, r, "/?sent=1", http.StatusSeeOther)
}
