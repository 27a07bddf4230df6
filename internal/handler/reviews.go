// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the HTTP request handlers composing the
// session, CSRF, rate-limit and persistence layers.
package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"minisite/internal/middleware"
	"minisite/internal/model"
	"minisite/internal/store"
)

// ReviewsHandler handles the public review routes.
type ReviewsHandler struct {
	queries *store.Queries
	csrf    *middleware.CSRFGuard
}

// NewReviewsHandler creates a new ReviewsHandler.
func NewReviewsHandler(db *sql.DB, csrf *middleware.CSRFGuard) *ReviewsHandler {
	return &ReviewsHandler{
		queries: store.New(db),
		csrf:    csrf,
	}
}

// List handles GET /reviews. It returns approved reviews newest first,
// degrading to an empty list when the store is unavailable so the public
// page still renders. The response carries the session's CSRF token for
// the submission form.
func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := model.ReviewStatusApproved
	reviews, err := h.queries.ListReviews(r.Context(), &status)
	if err != nil {
		slog.Error("listing approved reviews", "error", err)
		reviews = nil
	}
	if reviews == nil {
		reviews = []model.Review{}
	}

	token, err := h.csrf.Token(r.Context())
	if err != nil {
		slog.Error("issuing CSRF token", "error", err)
	}

	writeJSONSuccess(w, map[string]any{
		"reviews":    reviews,
		"csrf_token": token,
	})
}

// Create handles POST /reviews. CSRF and rate limiting are enforced by
// middleware before this handler runs; here we validate input and insert
// the review with status pending.
func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	rating, err := strconv.Atoi(r.PostFormValue("rating"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Rating must be a number")
		return
	}

	review, err := h.queries.CreateReview(r.Context(),
		r.PostFormValue("author_name"), r.PostFormValue("text"), rating)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("review submitted", "id", review.ID, "rating", review.Rating)
	http.Redirect(w, r, "/reviews?submitted=1", http.StatusSeeOther)
}
