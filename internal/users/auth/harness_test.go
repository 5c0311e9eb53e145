// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/askly/internal/platform/apiclient"
	"github.com/taibuivan/askly/internal/platform/constants"
	"github.com/taibuivan/askly/internal/platform/notify"
	"github.com/taibuivan/askly/internal/session"
	"github.com/taibuivan/askly/internal/users/auth"
)

// # Fake Remote Account Service

type fakeAccount struct {
	id       string
	name     string
	password string
	role     string
	plan     string
	count    any
}

type fakeBackend struct {
	mu                   sync.Mutex
	accounts             map[string]*fakeAccount
	calls                map[string]int
	registerWithoutToken bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		accounts: map[string]*fakeAccount{
			"a@b.com": {id: "u-1", name: "Ada", password: "correctpass", role: "user", plan: "free", count: 7.0},
		},
		calls: make(map[string]int),
	}
}

func (b *fakeBackend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

func (b *fakeBackend) hit(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[path]++
}

func reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (b *fakeBackend) profile(email string, acc *fakeAccount) map[string]any {
	body := map[string]any{
		"_id":          acc.id,
		"name":         acc.name,
		"email":        email,
		"role":         acc.role,
		"subscription": acc.plan,
	}
	if acc.count != nil {
		body["questionCount"] = acc.count
	}
	return body
}

func (b *fakeBackend) router() http.Handler {
	router := chi.NewRouter()

	router.Post("/users/login", func(w http.ResponseWriter, r *http.Request) {
		b.hit("/users/login")
		var in struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)

		b.mu.Lock()
		acc, ok := b.accounts[in.Email]
		b.mu.Unlock()
		if !ok || acc.password != in.Password {
			reply(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		reply(w, http.StatusOK, map[string]any{"token": "tok-" + acc.id, "user": b.profile(in.Email, acc)})
	})

	router.Post("/users/register", func(w http.ResponseWriter, r *http.Request) {
		b.hit("/users/register")
		var in struct{ Name, Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)

		b.mu.Lock()
		if _, exists := b.accounts[in.Email]; exists {
			b.mu.Unlock()
			reply(w, http.StatusConflict, map[string]string{"message": "Email already registered"})
			return
		}
		acc := &fakeAccount{id: "u-new", name: in.Name, password: in.Password, role: "user", plan: "free"}
		b.accounts[in.Email] = acc
		withoutToken := b.registerWithoutToken
		b.mu.Unlock()

		body := map[string]any{"user": b.profile(in.Email, acc)}
		if !withoutToken {
			body["token"] = "tok-" + acc.id
		}
		reply(w, http.StatusCreated, body)
	})

	router.Get("/users/profile", func(w http.ResponseWriter, r *http.Request) {
		b.hit("/users/profile")
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		b.mu.Lock()
		defer b.mu.Unlock()
		for email, acc := range b.accounts {
			if token == "tok-"+acc.id {
				reply(w, http.StatusOK, b.profile(email, acc))
				return
			}
		}
		reply(w, http.StatusUnauthorized, map[string]string{"message": "jwt malformed"})
	})

	router.Post("/auth/password-reset", func(w http.ResponseWriter, r *http.Request) {
		b.hit("/auth/password-reset")
		var in struct{ Email string }
		_ = json.NewDecoder(r.Body).Decode(&in)

		b.mu.Lock()
		_, ok := b.accounts[in.Email]
		b.mu.Unlock()
		if !ok {
			reply(w, http.StatusNotFound, map[string]string{"message": "User not found"})
			return
		}
		reply(w, http.StatusOK, map[string]string{"message": "sent"})
	})

	router.Post("/auth/password-reset/{token}", func(w http.ResponseWriter, r *http.Request) {
		b.hit("/auth/password-reset/{token}")
		if chi.URLParam(r, "token") != "valid-token" {
			reply(w, http.StatusBadRequest, map[string]string{"message": "Invalid or expired token"})
			return
		}
		reply(w, http.StatusOK, map[string]string{"message": "updated"})
	})

	return router
}

// # Exclusive Store

// exclusiveStore fails the test whenever both record slots are present.
type exclusiveStore struct {
	*session.MemoryStore
	t *testing.T
}

func (s *exclusiveStore) check() {
	keys := s.Keys()
	var token, guest bool
	for _, key := range keys {
		token = token || key == constants.KeyAuthToken
		guest = guest || key == constants.KeyGuestUser
	}
	if token && guest {
		s.t.Errorf("token and guest record persisted together")
	}
}

func (s *exclusiveStore) Set(ctx context.Context, key, value string) error {
	err := s.MemoryStore.Set(ctx, key, value)
	s.check()
	return err
}

func (s *exclusiveStore) Delete(ctx context.Context, keys ...string) error {
	err := s.MemoryStore.Delete(ctx, keys...)
	s.check()
	return err
}

// # Harness

type harness struct {
	backend *fakeBackend
	store   *exclusiveStore
	records *session.Records
	notes   *notify.Recorder
	manager *auth.Manager

	mu     sync.Mutex
	events []auth.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	backend := newFakeBackend()
	server := httptest.NewServer(backend.router())
	t.Cleanup(server.Close)

	store := &exclusiveStore{MemoryStore: session.NewMemoryStore(), t: t}
	records := session.NewRecords(store)
	notes := &notify.Recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := apiclient.New(apiclient.Options{BaseURL: server.URL}, records, notes, logger)
	require.NoError(t, err)

	manager := auth.NewManager(auth.NewRemoteAccounts(client), records, logger)
	client.OnUnauthorized(manager.Expire)

	h := &harness{backend: backend, store: store, records: records, notes: notes, manager: manager}
	manager.Subscribe(func(event auth.Event) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.events = append(h.events, event)
	})
	return h
}

// managerOver wires a manager to backend through an arbitrary record store.
func managerOver(t *testing.T, backend *fakeBackend, store session.Store) *auth.Manager {
	t.Helper()

	server := httptest.NewServer(backend.router())
	t.Cleanup(server.Close)

	records := session.NewRecords(store)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := apiclient.New(apiclient.Options{BaseURL: server.URL}, records, notify.Discard, logger)
	require.NoError(t, err)

	manager := auth.NewManager(auth.NewRemoteAccounts(client), records, logger)
	client.OnUnauthorized(manager.Expire)
	return manager
}

func (h *harness) kinds() []auth.EventKind {
	h.mu.Lock()
	defer h.mu.Unlock()

	kinds := make([]auth.EventKind, 0, len(h.events))
	for _, event := range h.events {
		kinds = append(kinds, event.Kind)
	}
	return kinds
}

func (h *harness) slot(t *testing.T, key string) (string, bool) {
	t.Helper()
	value, found, err := h.store.Get(context.Background(), key)
	require.NoError(t, err)
	return value, found
}
