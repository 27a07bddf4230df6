// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"minisite/internal/auth"
	"minisite/internal/handler"
	"minisite/internal/middleware"
	"minisite/internal/store"
	"minisite/internal/testutil"
)

const (
	testAdminUsername = "admin"
	testAdminPassword = "open sesame"
	testSubmitLimit   = 5
)

// testApp wires the full route tree the way the server binary does,
// backed by a temp database and an in-memory session store.
type testApp struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	db     *sql.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	testutil.SilenceLogs(t)

	db := testutil.TestDB(t)

	sm := scs.New()
	csrfGuard := middleware.NewCSRFGuard(sm, []byte("0123456789abcdefghijklmnopqrstuv"))
	limiter := middleware.NewLimiter()

	reviewsHandler := handler.NewReviewsHandler(db, csrfGuard)
	messagesHandler := handler.NewMessagesHandler(db)
	authHandler := handler.NewAuthHandler(db, sm, csrfGuard)
	adminHandler := handler.NewAdminHandler(db, csrfGuard)
	pagesHandler := handler.NewPagesHandler(db)
	healthHandler := handler.NewHealthHandler(db)

	r := chi.NewRouter()
	r.Get("/healthz", healthHandler.Healthz)
	r.Group(func(r chi.Router) {
		r.Use(sm.LoadAndSave)

		r.Get("/reviews", reviewsHandler.List)
		r.Get("/pages/{slug}", pagesHandler.Get)
		r.Get("/admin/login", authHandler.LoginForm)

		r.Group(func(r chi.Router) {
			r.Use(csrfGuard.Verify)

			r.With(limiter.Middleware("review", testSubmitLimit, time.Minute)).
				Post("/reviews", reviewsHandler.Create)
			r.With(limiter.Middleware("message", testSubmitLimit, time.Minute)).
				Post("/messages", messagesHandler.Create)
			r.With(limiter.Middleware("login", testSubmitLimit, time.Minute)).
				Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(sm, db))

			r.Get("/admin", adminHandler.Dashboard)

			r.Group(func(r chi.Router) {
				r.Use(csrfGuard.Verify)

				r.Post("/admin/reviews/{id}/status", adminHandler.UpdateReviewStatus)
				r.Post("/admin/messages/{id}/read", adminHandler.MarkMessageRead)
				r.Post("/admin/pages", pagesHandler.Create)
				r.Post("/admin/pages/{slug}", pagesHandler.Update)
			})
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("creating cookie jar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testApp{t: t, srv: srv, client: client, db: db}
}

// seedAdmin creates the admin account used by login tests.
func (a *testApp) seedAdmin() {
	a.t.Helper()

	hash, err := auth.HashPassword(testAdminPassword)
	if err != nil {
		a.t.Fatalf("hashing password: %v", err)
	}
	if _, err := store.New(a.db).CreateUser(context.Background(), testAdminUsername, hash, true); err != nil {
		a.t.Fatalf("creating admin: %v", err)
	}
}

func (a *testApp) get(path string) *http.Response {
	a.t.Helper()

	resp, err := a.client.Get(a.srv.URL + path)
	if err != nil {
		a.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func (a *testApp) postForm(path string, form url.Values) *http.Response {
	a.t.Helper()

	resp, err := a.client.Post(a.srv.URL+path,
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		a.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// csrfToken fetches the public reviews page and returns the session's
// anti-forgery token.
func (a *testApp) csrfToken() string {
	a.t.Helper()

	resp := a.get("/reviews")
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		a.t.Fatalf("GET /reviews: status %d", resp.StatusCode)
	}

	var body struct {
		CSRFToken string `json:"csrf_token"`
	}
	decodeBody(a.t, resp, &body)
	if body.CSRFToken == "" {
		a.t.Fatal("no CSRF token in response")
	}
	return body.CSRFToken
}

// login authenticates the client's session as the seeded admin and
// returns the dashboard CSRF token.
func (a *testApp) login() string {
	a.t.Helper()

	token := a.csrfToken()
	resp := a.postForm("/login", url.Values{
		"username": {testAdminUsername},
		"password": {testAdminPassword},
		"_csrf":    {token},
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		a.t.Fatalf("login: status %d, want 303", resp.StatusCode)
	}

	dash := a.get("/admin")
	defer func() { _ = dash.Body.Close() }()
	if dash.StatusCode != http.StatusOK {
		a.t.Fatalf("GET /admin after login: status %d", dash.StatusCode)
	}

	var body struct {
		CSRFToken string `json:"csrf_token"`
	}
	decodeBody(a.t, dash, &body)
	return body.CSRFToken
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}
