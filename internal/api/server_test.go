// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/askly/internal/api"
	"github.com/taibuivan/askly/internal/platform/apiclient"
	"github.com/taibuivan/askly/internal/platform/config"
	"github.com/taibuivan/askly/internal/platform/notify"
	"github.com/taibuivan/askly/internal/questions"
	"github.com/taibuivan/askly/internal/session"
	"github.com/taibuivan/askly/internal/users/auth"
)

// fakeBackend accepts two accounts: a@b.com (user) and root@b.com (admin).
func fakeBackend() http.Handler {
	router := chi.NewRouter()

	router.Post("/users/login", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Email string }
		_ = json.NewDecoder(r.Body).Decode(&in)

		role := "user"
		if in.Email == "root@b.com" {
			role = "admin"
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-" + role,
			"user": map[string]any{
				"_id": "u-" + role, "name": "Ada", "email": in.Email,
				"role": role, "subscription": "premium", "questionCount": 99,
			},
		})
	})

	return router
}

type console struct {
	url      string
	http     *http.Client
	sessions *auth.Manager
	hub      *api.Hub
}

func newConsole(t *testing.T) *console {
	t.Helper()

	backend := httptest.NewServer(fakeBackend())
	t.Cleanup(backend.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	records := session.NewRecords(session.NewMemoryStore())

	client, err := apiclient.New(apiclient.Options{BaseURL: backend.URL}, records, notify.Discard, logger)
	require.NoError(t, err)

	sessions := auth.NewManager(auth.NewRemoteAccounts(client), records, logger)
	client.OnUnauthorized(sessions.Expire)
	require.NoError(t, sessions.Initialize(context.Background()))

	questionManager := questions.NewManager(sessions, questions.NewSelector(questions.NewNetworked(client), sessions), logger)

	cfg := &config.Config{Environment: "test", ConsolePort: "5173"}
	hub := api.NewHub(sessions, cfg.AllowedOrigins(), false, logger)
	sessions.Subscribe(hub.Publish)

	liveness, readiness := api.NewHealthHandlers(logger, api.Check{Name: "session", Ping: records.Ping})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := api.NewServer(ctx, cfg, logger, sessions, questionManager, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Session:   auth.NewHandler(sessions),
		Questions: questions.NewHandler(questionManager),
		Events:    hub,
	})

	frontend := httptest.NewServer(server.Handler())
	t.Cleanup(frontend.Close)

	return &console{
		url:      frontend.URL,
		sessions: sessions,
		hub:      hub,
		http: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
	}
}

func (c *console) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := c.http.Get(c.url + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (c *console) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := c.http.Post(c.url+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	envelope := struct{ Data any }{Data: out}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
}

/*
TestHealth checks the liveness and readiness probes.
*/
func TestHealth(t *testing.T) {
	c := newConsole(t)

	assert.Equal(t, http.StatusOK, c.get(t, "/health").StatusCode)

	ready := c.get(t, "/ready")
	assert.Equal(t, http.StatusOK, ready.StatusCode)

	var body struct {
		Status string `json:"status"`
	}
	decode(t, ready, &body)
	assert.Equal(t, "ready", body.Status)
}

/*
TestReadiness_Degraded reports 503 when a dependency fails.
*/
func TestReadiness_Degraded(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, readiness := api.NewHealthHandlers(logger, api.Check{
		Name: "session",
		Ping: func(context.Context) error { return errors.New("unreachable") },
	})

	recorder := httptest.NewRecorder()
	readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "degraded")
}

/*
TestViews_Anonymous verifies that protected views send an anonymous visitor to login.
*/
func TestViews_Anonymous(t *testing.T) {
	c := newConsole(t)

	tests := []struct {
		path     string
		status   int
		location string
	}{
		{"/", http.StatusSeeOther, "/login"},
		{"/dashboard", http.StatusSeeOther, "/login"},
		{"/admin", http.StatusSeeOther, "/login"},
		{"/login", http.StatusOK, ""},
		{"/register", http.StatusOK, ""},
		{"/reset-password?token=abc", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := c.get(t, tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.location, resp.Header.Get("Location"))
		})
	}
}

/*
TestViews_Guest walks the console through a guest session.
*/
func TestViews_Guest(t *testing.T) {
	c := newConsole(t)

	resp := c.post(t, "/api/session/guest", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var transition struct {
		View    string `json:"view"`
		Message string `json:"message"`
	}
	decode(t, resp, &transition)
	assert.Equal(t, "/dashboard", transition.View)

	assert.Equal(t, "/dashboard", c.get(t, "/").Header.Get("Location"))
	assert.Equal(t, "/dashboard", c.get(t, "/login").Header.Get("Location"))
	assert.Equal(t, "/dashboard", c.get(t, "/admin").Header.Get("Location"))

	asked := c.post(t, "/api/questions", `{"question":"Is this local?"}`)
	require.Equal(t, http.StatusCreated, asked.StatusCode)

	dashboard := c.get(t, "/dashboard")
	require.Equal(t, http.StatusOK, dashboard.StatusCode)

	var view struct {
		View string `json:"view"`
		Data struct {
			Status struct {
				QuestionsRemaining int  `json:"questionsRemaining"`
				QuestionLimit      int  `json:"questionLimit"`
				IsGuest            bool `json:"isGuest"`
			} `json:"status"`
			Current *questions.Exchange   `json:"current"`
			History questions.HistoryPage `json:"history"`
		} `json:"data"`
	}
	decode(t, dashboard, &view)
	assert.True(t, view.Data.Status.IsGuest)
	assert.Equal(t, 2, view.Data.Status.QuestionsRemaining)
	assert.Equal(t, 3, view.Data.Status.QuestionLimit)
	require.NotNil(t, view.Data.Current)
	assert.Equal(t, "Is this local?", view.Data.Current.Question)
	assert.Len(t, view.Data.History.Questions, 1)

	require.Equal(t, http.StatusOK, c.post(t, "/api/session/logout", "").StatusCode)
	assert.Equal(t, "/login", c.get(t, "/dashboard").Header.Get("Location"))
}

/*
TestViews_Admin opens the admin view only for the admin role.
*/
func TestViews_Admin(t *testing.T) {
	t.Run("user", func(t *testing.T) {
		c := newConsole(t)
		require.Equal(t, http.StatusOK, c.post(t, "/api/session/login", `{"email":"a@b.com","password":"whatever1"}`).StatusCode)
		assert.Equal(t, "/dashboard", c.get(t, "/admin").Header.Get("Location"))
	})

	t.Run("admin", func(t *testing.T) {
		c := newConsole(t)
		require.Equal(t, http.StatusOK, c.post(t, "/api/session/login", `{"email":"root@b.com","password":"whatever1"}`).StatusCode)

		resp := c.get(t, "/admin")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var view struct {
			Data struct {
				Stats []struct {
					Title string `json:"title"`
					Value int    `json:"value"`
				} `json:"stats"`
			} `json:"data"`
		}
		decode(t, resp, &view)
		require.Len(t, view.Data.Stats, 3)
		assert.Equal(t, "Total Users", view.Data.Stats[0].Title)
		assert.Equal(t, 256, view.Data.Stats[0].Value)
	})
}

/*
TestSessionAPI_Validation surfaces local validation failures as 400.
*/
func TestSessionAPI_Validation(t *testing.T) {
	c := newConsole(t)

	resp := c.post(t, "/api/session/login", `{"email":"nope","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
}
