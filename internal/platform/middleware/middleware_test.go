// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/askly/internal/platform/ctxutil"
	"github.com/taibuivan/askly/internal/platform/middleware"
	"github.com/taibuivan/askly/internal/platform/sec"
	"github.com/taibuivan/askly/internal/users/auth"
)

type fixedIdentity struct{ identity *auth.Identity }

func (f fixedIdentity) Current() *auth.Identity { return f.identity }

type stubConfig struct {
	dev     bool
	origins []string
}

func (s stubConfig) IsDevelopment() bool      { return s.dev }
func (s stubConfig) AllowedOrigins() []string { return s.origins }

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

/*
TestRequestID reuses an incoming ID and mints one otherwise.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxutil.GetRequestID(r.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "abc")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", recorder.Header().Get("X-Request-ID"))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "abc", seen)
}

/*
TestRequireView redirects according to the access decision.
*/
func TestRequireView(t *testing.T) {
	user := &auth.Identity{ID: "u-1", Role: sec.RoleUser}

	tests := []struct {
		name     string
		access   auth.Access
		identity *auth.Identity
		status   int
		location string
	}{
		{"dashboard_anonymous", auth.Authenticated, nil, http.StatusSeeOther, "/login"},
		{"dashboard_user", auth.Authenticated, user, http.StatusOK, ""},
		{"login_user", auth.GuestOnly, user, http.StatusSeeOther, "/dashboard"},
		{"admin_user", auth.Admin, user, http.StatusSeeOther, "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.RequireView(fixedIdentity{tt.identity}, tt.access)(ok)
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/view", nil))

			assert.Equal(t, tt.status, recorder.Code)
			assert.Equal(t, tt.location, recorder.Header().Get("Location"))
		})
	}
}

/*
TestActor tags the context with the identity ID.
*/
func TestActor(t *testing.T) {
	var actor string
	handler := middleware.Actor(fixedIdentity{&auth.Identity{ID: "u-7"}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = ctxutil.GetActor(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "u-7", actor)
}

/*
TestCORS only echoes allowed origins outside development.
*/
func TestCORS(t *testing.T) {
	handler := middleware.CORS(stubConfig{origins: []string{"http://localhost:5173"}})(ok)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Origin", "http://localhost:5173")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "http://localhost:5173", recorder.Header().Get("Access-Control-Allow-Origin"))

	request = httptest.NewRequest(http.MethodOptions, "/", nil)
	request.Header.Set("Origin", "https://evil.example")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

/*
TestRateLimit rejects requests beyond the burst.
*/
func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, 0.001, 2)(ok)

	codes := make([]int, 0, 3)
	for range 3 {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

/*
TestPanicRecovery turns a panic into a 500.
*/
func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}
