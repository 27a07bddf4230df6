// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"minisite/internal/model"
	"minisite/internal/store"
)

func TestListReviewsShowsOnlyApproved(t *testing.T) {
	app := newTestApp(t)
	queries := store.New(app.db)
	ctx := context.Background()

	approved, err := queries.CreateReview(ctx, "Alice", "visible", 5)
	if err != nil {
		t.Fatalf("creating review: %v", err)
	}
	if err := queries.UpdateReviewStatus(ctx, approved.ID, model.ReviewStatusApproved); err != nil {
		t.Fatalf("approving review: %v", err)
	}
	if _, err := queries.CreateReview(ctx, "Bob", "still pending", 3); err != nil {
		t.Fatalf("creating review: %v", err)
	}

	resp := app.get("/reviews")
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Success bool           `json:"success"`
		Reviews []model.Review `json:"reviews"`
	}
	decodeBody(t, resp, &body)

	if !body.Success {
		t.Error("success = false")
	}
	if len(body.Reviews) != 1 {
		t.Fatalf("got %d reviews, want 1", len(body.Reviews))
	}
	if body.Reviews[0].ID != approved.ID {
		t.Errorf("review id = %d, want %d", body.Reviews[0].ID, approved.ID)
	}
}

func TestListReviewsDegradesWhenStoreDown(t *testing.T) {
	app := newTestApp(t)
	_ = app.db.Close()

	resp := app.get("/reviews")
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Success bool           `json:"success"`
		Reviews []model.Review `json:"reviews"`
	}
	decodeBody(t, resp, &body)

	if !body.Success {
		t.Error("success = false")
	}
	if len(body.Reviews) != 0 {
		t.Errorf("got %d reviews, want empty list", len(body.Reviews))
	}
}

func TestCreateReview(t *testing.T) {
	app := newTestApp(t)
	token := app.csrfToken()

	resp := app.postForm("/reviews", url.Values{
		"author_name": {"Alice"},
		"text":        {"Lovely site"},
		"rating":      {"5"},
		"_csrf":       {token},
	})
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/reviews?submitted=1" {
		t.Errorf("Location = %q", loc)
	}

	reviews, err := store.New(app.db).ListReviews(context.Background(), nil)
	if err != nil {
		t.Fatalf("listing reviews: %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("got %d reviews, want 1", len(reviews))
	}
	if reviews[0].Status != model.ReviewStatusPending {
		t.Errorf("status = %q, want pending", reviews[0].Status)
	}
}

func TestCreateReviewWithoutCSRF(t *testing.T) {
	app := newTestApp(t)
	app.csrfToken() // establish a session, but do not submit the token

	resp := app.postForm("/reviews", url.Values{
		"author_name": {"Mallory"},
		"text":        {"forged"},
		"rating":      {"1"},
	})
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}

	reviews, err := store.New(app.db).ListReviews(context.Background(), nil)
	if err != nil {
		t.Fatalf("listing reviews: %v", err)
	}
	if len(reviews) != 0 {
		t.Error("forged request persisted a review")
	}
}

func TestCreateReviewInvalidRating(t *testing.T) {
	app := newTestApp(t)
	token := app.csrfToken()

	for _, rating := range []string{"0", "6", "banana"} {
		resp := app.postForm("/reviews", url.Values{
			"author_name": {"Alice"},
			"text":        {"text"},
			"rating":      {rating},
			"_csrf":       {token},
		})
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("rating %q: status = %d, want 400", rating, resp.StatusCode)
		}
	}

	reviews, err := store.New(app.db).ListReviews(context.Background(), nil)
	if err != nil {
		t.Fatalf("listing reviews: %v", err)
	}
	if len(reviews) != 0 {
		t.Error("invalid submission persisted a review")
	}
}

func TestCreateReviewRateLimited(t *testing.T) {
	app := newTestApp(t)
	token := app.csrfToken()

	form := url.Values{
		"author_name": {"Alice"},
		"text":        {"text"},
		"rating":      {"4"},
		"_csrf":       {token},
	}

	for i := 0; i < testSubmitLimit; i++ {
		resp := app.postForm("/reviews", form)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("request %d: status = %d, want 303", i+1, resp.StatusCode)
		}
	}

	resp := app.postForm("/reviews", form)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestCreateMessage(t *testing.T) {
	app := newTestApp(t)
	token := app.csrfToken()

	resp := app.postForm("/messages", url.Values{
		"name":    {"Bob"},
		"email":   {"bob@example.com"},
		"message": {"Hello"},
		"_csrf":   {token},
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}

	messages, err := store.New(app.db).ListMessages(context.Background())
	if err != nil {
		t.Fatalf("listing messages: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}
	if messages[0].Status != model.MessageStatusNew {
		t.Errorf("status = %q, want new", messages[0].Status)
	}
}

func TestCreateMessageInvalidEmail(t *testing.T) {
	app := newTestApp(t)
	token := app.csrfToken()

	resp := app.postForm("/messages", url.Values{
		"name":    {"Bob"},
		"email":   {"not-an-email"},
		"message": {"Hello"},
		"_csrf":   {token},
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
