// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"minisite/internal/model"
)

// parseIDParam parses the {id} route parameter. On failure it writes a
// 400 response and returns false.
func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// writeStoreError maps a store error to its HTTP response. Unexpected
// errors are treated as the store being unavailable.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrConflict):
		writeJSONError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("store error", "error", err)
		writeJSONError(w, http.StatusServiceUnavailable, "Service unavailable")
	}
}
