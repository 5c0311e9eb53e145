// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package questions

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/taibuivan/askly/internal/platform/apperr"
	"github.com/taibuivan/askly/internal/platform/validate"
	"github.com/taibuivan/askly/internal/users/auth"
	"github.com/taibuivan/askly/pkg/pagination"
)

// # Local Rejections

const (
	msgEmptyQuestion = "Question cannot be empty"
	msgNoIdentity    = "Please login or continue as guest"
)

// IdentitySource yields the identity questions are asked for.
type IdentitySource interface {
	Current() *auth.Identity
}

// Selector picks the backend variant for an identity.
type Selector func(identity *auth.Identity) Backend

// NewSelector returns the standard [Selector]: guests get a fresh
// [Simulated] backend, everyone else shares networked.
func NewSelector(networked Backend, quota GuestQuota) Selector {
	return func(identity *auth.Identity) Backend {
		if identity.IsGuest() {
			return NewSimulated(quota)
		}
		return networked
	}
}

// Manager owns the current exchange and the history cache.
//
// # Concurrency
//
// Ask and FetchHistory each admit one call at a time; an overlapping call
// is rejected with a BUSY error. The mutex is never held across a backend call.
type Manager struct {
	identities IdentitySource
	selectFor  Selector
	logger     *slog.Logger

	asking   atomic.Bool
	fetching atomic.Bool

	mu      sync.Mutex
	ownerID string
	backend Backend
	current *Exchange
	history HistoryPage
}

// NewManager constructs a [Manager].
func NewManager(identities IdentitySource, selectFor Selector, logger *slog.Logger) *Manager {
	return &Manager{
		identities: identities,
		selectFor:  selectFor,
		logger:     logger,
		history:    emptyPage(),
	}
}

// # Snapshots

// Current returns the most recent exchange of the current identity, or nil.
func (m *Manager) Current() *Exchange {
	identity := m.identities.Current()

	m.mu.Lock()
	defer m.mu.Unlock()

	if identity == nil || identity.ID != m.ownerID || m.current == nil {
		return nil
	}
	exchange := *m.current
	return &exchange
}

// History returns the cached history page of the current identity.
func (m *Manager) History() HistoryPage {
	identity := m.identities.Current()

	m.mu.Lock()
	defer m.mu.Unlock()

	if identity == nil || identity.ID != m.ownerID {
		return emptyPage()
	}
	return m.history.clone()
}

// IsLoading reports whether a backend call is in flight.
func (m *Manager) IsLoading() bool {
	return m.asking.Load() || m.fetching.Load()
}

// # Operations

/*
Ask submits a question for the current identity.

Description: Blank questions, a missing identity and an exhausted allowance
are rejected locally; nothing is mutated and no backend is called. On success
the exchange becomes current and is prepended to the cached history.
*/
func (m *Manager) Ask(ctx context.Context, question string) (*Exchange, error) {
	validator := &validate.Validator{}
	validator.Custom(FieldQuestion, strings.TrimSpace(question) == "", msgEmptyQuestion).
		MaxLen(FieldQuestion, question, validate.MaxQuestionLength)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	identity := m.identities.Current()
	if identity == nil {
		return nil, apperr.Unauthorized(msgNoIdentity)
	}
	if identity.Subscription.QuestionsRemaining <= 0 {
		return nil, apperr.QuotaExceeded(auth.MsgQuotaExceeded)
	}

	if !m.asking.CompareAndSwap(false, true) {
		return nil, apperr.Busy("Ask")
	}
	defer m.asking.Store(false)

	backend := m.backendFor(identity)

	exchange, err := backend.Ask(ctx, question)
	if err != nil {
		m.logger.InfoContext(ctx, "question_failed", slog.String("identity_id", identity.ID), slog.Any("error", err))
		return nil, err
	}

	m.mu.Lock()
	if m.ownerID == identity.ID {
		stored := *exchange
		m.current = &stored
		m.history.Questions = append([]Exchange{stored}, m.history.Questions...)
		m.history.Total++
	}
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "question_answered", slog.String("identity_id", identity.ID), slog.String("exchange_id", exchange.ID))
	return exchange, nil
}

/*
FetchHistory loads one history page for the current identity.

Description: page and limit default to 1 and 10; a positive limit reaches the
backend unchanged. Guests always get page 1 of
1 over the exchanges accumulated in this process. The fetched page replaces
the cache.
*/
func (m *Manager) FetchHistory(ctx context.Context, page, limit int) (*HistoryPage, error) {
	params := pagination.Defaults(page, limit)

	identity := m.identities.Current()
	if identity == nil {
		return nil, apperr.Unauthorized(msgNoIdentity)
	}

	if !m.fetching.CompareAndSwap(false, true) {
		return nil, apperr.Busy("Fetching history")
	}
	defer m.fetching.Store(false)

	backend := m.backendFor(identity)

	result, err := backend.History(ctx, params)
	if err != nil {
		m.logger.InfoContext(ctx, "history_fetch_failed", slog.String("identity_id", identity.ID), slog.Any("error", err))
		return nil, err
	}

	fetched := result.clone()

	m.mu.Lock()
	if m.ownerID == identity.ID {
		m.history = fetched.clone()
	}
	m.mu.Unlock()

	return &fetched, nil
}

// backendFor returns the backend of identity, selecting a new one and
// resetting the cache when the identity changed.
func (m *Manager) backendFor(identity *auth.Identity) Backend {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend == nil || m.ownerID != identity.ID {
		m.ownerID = identity.ID
		m.backend = m.selectFor(identity)
		m.current = nil
		m.history = emptyPage()
	}
	return m.backend
}
