// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"minisite/internal/middleware"
	"minisite/internal/model"
	"minisite/internal/store"
)

// AdminHandler handles the moderation dashboard routes. All of them sit
// behind middleware.RequireAdmin.
type AdminHandler struct {
	queries *store.Queries
	csrf    *middleware.CSRFGuard
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *sql.DB, csrf *middleware.CSRFGuard) *AdminHandler {
	return &AdminHandler{
		queries: store.New(db),
		csrf:    csrf,
	}
}

// Dashboard handles GET /admin. It returns pending reviews and all
// contact messages. Unlike the public review listing, a store failure
// here is a hard 503: moderation must not act on partial data.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	status := model.ReviewStatusPending
	reviews, err := h.queries.ListReviews(r.Context(), &status)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	messages, err := h.queries.ListMessages(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if reviews == nil {
		reviews = []model.Review{}
	}
	if messages == nil {
		messages = []model.Message{}
	}

	token, err := h.csrf.Token(r.Context())
	if err != nil {
		slog.Error("issuing CSRF token", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSONSuccess(w, map[string]any{
		"pending_reviews": reviews,
		"messages":        messages,
		"csrf_token":      token,
		"user":            middleware.GetUser(r),
	})
}

// UpdateReviewStatus handles POST /admin/reviews/{id}/status. The target
// status comes from the form and must be one of the closed set.
func (h *AdminHandler) UpdateReviewStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	status := model.ReviewStatus(r.PostFormValue("status"))
	if err := h.queries.UpdateReviewStatus(r.Context(), id, status); err != nil {
		writeStoreError(w, err)
		return
	}

	user := middleware.GetUser(r)
	slog.Info("review status updated", "id", id, "status", status, "admin", user.Username)
	writeJSONSuccess(w, map[string]any{
		"id":     id,
		"status": status,
	})
}

// MarkMessageRead handles POST /admin/messages/{id}/read. Marking an
// already-read message succeeds again; only a missing id is a 404.
func (h *AdminHandler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.queries.MarkMessageRead(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSONSuccess(w, map[string]any{
		"id":     id,
		"status": model.MessageStatusRead,
	})
}
