// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package questions_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/askly/internal/platform/apiclient"
	"github.com/taibuivan/askly/internal/platform/notify"
	"github.com/taibuivan/askly/internal/questions"
	"github.com/taibuivan/askly/internal/session"
	"github.com/taibuivan/askly/internal/users/auth"
)

// fakeQuestionService is a minimal Remote Account and Question Service.
type fakeQuestionService struct {
	mu             sync.Mutex
	calls          map[string]int
	questionCount  int
	historyMissing bool
	lastQuery      string

	// When set, POST /questions signals entered and waits for release.
	entered chan struct{}
	release chan struct{}
}

func (f *fakeQuestionService) hit(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[path]++
}

func (f *fakeQuestionService) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeQuestionService) router() http.Handler {
	router := chi.NewRouter()

	router.Post("/users/login", func(w http.ResponseWriter, r *http.Request) {
		f.hit("/users/login")
		f.mu.Lock()
		count := f.questionCount
		f.mu.Unlock()
		reply(w, http.StatusOK, map[string]any{
			"token": "tok-u-1",
			"user": map[string]any{
				"_id": "u-1", "name": "Ada", "email": "a@b.com",
				"role": "user", "subscription": "free", "questionCount": count,
			},
		})
	})

	router.Post("/questions", func(w http.ResponseWriter, r *http.Request) {
		f.hit("/questions")
		if r.Header.Get("Authorization") != "Bearer tok-u-1" {
			reply(w, http.StatusUnauthorized, nil)
			return
		}
		if f.entered != nil {
			f.entered <- struct{}{}
			<-f.release
		}

		var in struct{ Question string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		reply(w, http.StatusCreated, map[string]any{
			"id":        "q-" + strconv.Itoa(f.count("/questions")),
			"question":  in.Question,
			"answer":    "42",
			"createdAt": time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	})

	router.Get("/questions/history", func(w http.ResponseWriter, r *http.Request) {
		f.hit("/questions/history")
		f.mu.Lock()
		f.lastQuery = r.URL.RawQuery
		missing := f.historyMissing
		f.mu.Unlock()

		if missing {
			reply(w, http.StatusNotFound, map[string]string{"message": "No questions found"})
			return
		}
		reply(w, http.StatusOK, map[string]any{
			"questions": []map[string]any{
				{"id": "q-9", "question": "Remote?", "answer": "Yes", "createdAt": "2026-01-01T00:00:00Z"},
			},
			"total":      11,
			"page":       2,
			"totalPages": 6,
		})
	})

	return router
}

type harness struct {
	remote    *fakeQuestionService
	store     *session.MemoryStore
	notes     *notify.Recorder
	sessions  *auth.Manager
	questions *questions.Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	remote := &fakeQuestionService{calls: make(map[string]int), questionCount: 5}
	server := httptest.NewServer(remote.router())
	t.Cleanup(server.Close)

	store := session.NewMemoryStore()
	records := session.NewRecords(store)
	notes := &notify.Recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := apiclient.New(apiclient.Options{BaseURL: server.URL}, records, notes, logger)
	require.NoError(t, err)

	sessions := auth.NewManager(auth.NewRemoteAccounts(client), records, logger)
	client.OnUnauthorized(sessions.Expire)
	require.NoError(t, sessions.Initialize(context.Background()))

	selector := questions.NewSelector(questions.NewNetworked(client), sessions)
	manager := questions.NewManager(sessions, selector, logger)

	return &harness{remote: remote, store: store, notes: notes, sessions: sessions, questions: manager}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	_, err := h.sessions.Login(context.Background(), auth.LoginInput{Email: "a@b.com", Password: "whatever1"})
	require.NoError(t, err)
}

func (h *harness) guest(t *testing.T) *auth.Identity {
	t.Helper()
	identity, err := h.sessions.ContinueAsGuest(context.Background())
	require.NoError(t, err)
	return identity
}
