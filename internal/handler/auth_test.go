// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"

	"minisite/internal/model"
	"minisite/internal/store"
)

func TestLoginAndDashboard(t *testing.T) {
	app := newTestApp(t)
	app.seedAdmin()

	queries := store.New(app.db)
	if _, err := queries.CreateReview(context.Background(), "Alice", "pending text", 4); err != nil {
		t.Fatalf("creating review: %v", err)
	}

	app.login()

	resp := app.get("/admin")
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Success        bool            `json:"success"`
		PendingReviews []model.Review  `json:"pending_reviews"`
		Messages       []model.Message `json:"messages"`
		CSRFToken      string          `json:"csrf_token"`
	}
	decodeBody(t, resp, &body)

	if !body.Success {
		t.Error("success = false")
	}
	if len(body.PendingReviews) != 1 {
		t.Errorf("got %d pending reviews, want 1", len(body.PendingReviews))
	}
	if body.CSRFToken == "" {
		t.Error("dashboard missing CSRF token")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.seedAdmin()
	token := app.csrfToken()

	resp := app.postForm("/login", url.Values{
		"username": {testAdminUsername},
		"password": {"wrong"},
		"_csrf":    {token},
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestLoginUnknownUserSameResponse(t *testing.T) {
	app := newTestApp(t)
	app.seedAdmin()
	token := app.csrfToken()

	wrongPass := app.postForm("/login", url.Values{
		"username": {testAdminUsername},
		"password": {"wrong"},
		"_csrf":    {token},
	})
	wrongPassBody, _ := io.ReadAll(wrongPass.Body)
	_ = wrongPass.Body.Close()

	unknown := app.postForm("/login", url.Values{
		"username": {"nobody"},
		"password": {"wrong"},
		"_csrf":    {token},
	})
	unknownBody, _ := io.ReadAll(unknown.Body)
	_ = unknown.Body.Close()

	if wrongPass.StatusCode != http.StatusUnauthorized || unknown.StatusCode != http.StatusUnauthorized {
		t.Fatalf("statuses = %d/%d, want 401/401", wrongPass.StatusCode, unknown.StatusCode)
	}
	// Identical body keeps usernames unguessable
	if string(wrongPassBody) != string(unknownBody) {
		t.Errorf("bodies differ: %q vs %q", wrongPassBody, unknownBody)
	}
}

func TestLoginRateLimited(t *testing.T) {
	app := newTestApp(t)
	app.seedAdmin()
	token := app.csrfToken()

	form := url.Values{
		"username": {testAdminUsername},
		"password": {"wrong"},
		"_csrf":    {token},
	}

	for i := 0; i < testSubmitLimit; i++ {
		resp := app.postForm("/login", form)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, resp.StatusCode)
		}
	}

	resp := app.postForm("/login", form)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	app := newTestApp(t)
	app.seedAdmin()
	token := app.login()

	resp := app.postForm("/logout", url.Values{"_csrf": {token}})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("logout: status = %d, want 303", resp.StatusCode)
	}

	after := app.get("/admin")
	_ = after.Body.Close()
	if after.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /admin after logout: status = %d, want 401", after.StatusCode)
	}
}

func TestAdminRequiresAuth(t *testing.T) {
	app := newTestApp(t)

	resp := app.get("/admin")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestApproveReviewFlow(t *testing.T) {
	app := newTestApp(t)
	app.seedAdmin()
	queries := store.New(app.db)

	review, err := queries.CreateReview(context.Background(), "Alice", "great", 5)
	if err != nil {
		t.Fatalf("creating review: %v", err)
	}

	token := app.login()

	resp := app.postForm("/admin/reviews/"+itoa(review.ID)+"/status", url.Values{
		"status": {"approved"},
		"_csrf":  {token},
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	// The review is now publicly visible
	public := app.get("/reviews")
	defer func() { _ = public.Body.Close() }()

	var body struct {
		Reviews []model.Review `json:"reviews"`
	}
	decodeBody(t, public, &body)
	if len(body.Reviews) != 1 || body.Reviews[0].ID != review.ID {
		t.Errorf("approved review not listed publicly: %+v", body.Reviews)
	}
}

func TestUpdateReviewStatusUnknownValue(t *testing.T) {
	app := newTestApp(t)
	app.seedAdmin()
	queries := store.New(app.db)

	review, err := queries.CreateReview(context.Background(), "Alice", "text", 5)
	if err != nil {
		t.Fatalf("creating review: %v", err)
	}

	token := app.login()

	resp := app.postForm("/admin/reviews/"+itoa(review.ID)+"/status", url.Values{
		"status": {"archived"},
		"_csrf":  {token},
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestMarkMessageReadEndpoint(t *testing.T) {
	app := newTestApp(t)
	app.seedAdmin()
	queries := store.New(app.db)

	msg, err := queries.CreateMessage(context.Background(), "Bob", "bob@example.com", "hi")
	if err != nil {
		t.Fatalf("creating message: %v", err)
	}

	token := app.login()
	path := "/admin/messages/" + itoa(msg.ID) + "/read"

	for i := 0; i < 2; i++ {
		resp := app.postForm(path, url.Values{"_csrf": {token}})
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("mark read %d: status = %d, want 200", i+1, resp.StatusCode)
		}
	}

	missing := app.postForm("/admin/messages/9999/read", url.Values{"_csrf": {token}})
	_ = missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("missing id: status = %d, want 404", missing.StatusCode)
	}
}
