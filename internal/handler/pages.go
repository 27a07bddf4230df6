// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"minisite/internal/store"
	"minisite/internal/util"
)

// PagesHandler handles content pages: public reads by slug and the
// admin create/update routes.
type PagesHandler struct {
	queries  *store.Queries
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(db *sql.DB) *PagesHandler {
	return &PagesHandler{
		queries: store.New(db),
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Get handles GET /pages/{slug}. Page content is stored as markdown and
// rendered to sanitized HTML on read.
func (h *PagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !util.IsValidSlug(slug) {
		writeJSONError(w, http.StatusNotFound, "Page not found")
		return
	}

	page, err := h.queries.GetPageBySlug(r.Context(), slug)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(page.Content), &buf); err != nil {
		slog.Error("rendering page", "slug", slug, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSONSuccess(w, map[string]any{
		"page": map[string]any{
			"slug":       page.Slug,
			"title":      page.Title,
			"content":    page.Content,
			"html":       h.policy.Sanitize(buf.String()),
			"created_at": page.CreatedAt,
			"updated_at": page.UpdatedAt,
		},
	})
}

// Create handles POST /admin/pages. A missing slug is derived from the
// title; a duplicate slug is a 409 and leaves the existing page intact.
func (h *PagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	title := r.PostFormValue("title")
	slug := r.PostFormValue("slug")
	if slug == "" {
		slug = util.Slugify(title)
	}
	if !util.IsValidSlug(slug) {
		writeJSONError(w, http.StatusBadRequest, "Invalid slug")
		return
	}

	page, err := h.queries.CreatePage(r.Context(), slug, title, r.PostFormValue("content"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("page created", "slug", page.Slug)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSONSuccess(w, map[string]any{
		"slug": page.Slug,
	})
}

// Update handles POST /admin/pages/{slug}. It replaces title and content
// for an existing page.
func (h *PagesHandler) Update(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	if err := h.queries.UpdatePage(r.Context(), slug, r.PostFormValue("title"), r.PostFormValue("content")); err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("page updated", "slug", slug)
	writeJSONSuccess(w, map[string]any{
		"slug": slug,
	})
}
