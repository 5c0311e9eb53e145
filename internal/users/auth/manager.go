// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/askly/internal/platform/apperr"
	"github.com/taibuivan/askly/internal/platform/sec"
	"github.com/taibuivan/askly/internal/platform/validate"
	"github.com/taibuivan/askly/internal/session"
)

// State is a snapshot of the session.
type State struct {
	Identity  *Identity `json:"identity"`
	IsLoading bool      `json:"isLoading"`
}

// IsAuthenticated reports whether any identity, guest included, is installed.
func (s State) IsAuthenticated() bool {
	return s.Identity != nil
}

// Manager owns the current identity and the Persisted Session Record.
//
// # Concurrency
//
// All methods are safe for concurrent use. The mutex guards the identity and
// record writes; it is never held across a call to the [AccountService].
type Manager struct {
	accounts AccountService
	records  *session.Records
	logger   *slog.Logger
	now      func() time.Time

	mu           sync.Mutex
	identity     *Identity
	initializing bool
	inflight     int

	initOnce  sync.Once
	initErr   error
	observers observers
}

// NewManager constructs a [Manager]. The session starts loading until
// [Manager.Initialize] completes.
func NewManager(accounts AccountService, records *session.Records, logger *slog.Logger) *Manager {
	return &Manager{
		accounts:     accounts,
		records:      records,
		logger:       logger,
		now:          time.Now,
		initializing: true,
	}
}

// # Snapshots

// Current returns a copy of the installed identity, or nil.
func (m *Manager) Current() *Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity.Clone()
}

// State returns a snapshot of the session.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		Identity:  m.identity.Clone(),
		IsLoading: m.initializing || m.inflight > 0,
	}
}

// Subscribe registers fn for every transition. The returned function removes it.
func (m *Manager) Subscribe(fn func(Event)) (unsubscribe func()) {
	return m.observers.add(fn)
}

// # Initialization

/*
Initialize restores the session from the Persisted Session Record.

Description: A stored token is exchanged for the profile behind it. When that
fails (or the token is a JWT that has already expired) the token is removed
and a stored guest record, if any, is installed instead. Only the first call
does any work; IsLoading ends false on every path.

Returns:
  - err: the record could not be read
*/
func (m *Manager) Initialize(ctx context.Context) error {
	m.initOnce.Do(func() {
		m.initErr = m.initialize(ctx)
	})
	return m.initErr
}

func (m *Manager) initialize(ctx context.Context) error {
	defer func() {
		m.mu.Lock()
		m.initializing = false
		m.mu.Unlock()
	}()

	token, err := m.records.Token(ctx)
	if errors.Is(err, session.ErrUnsealable) {
		m.discardUnreadable(ctx, "token", m.records.DeleteToken, err)
		token, err = "", nil
	}
	if err != nil {
		return fmt.Errorf("auth_initialize_failed: %w", err)
	}

	if token != "" {
		if identity := m.restoreFromToken(ctx, token); identity != nil {
			m.mu.Lock()
			m.identity = identity
			m.mu.Unlock()

			m.logger.InfoContext(ctx, "session_initialized", slog.String("identity_id", identity.ID), slog.String("role", string(identity.Role)))
			return nil
		}

		if err := m.records.DeleteToken(ctx); err != nil {
			m.logger.WarnContext(ctx, "session_token_delete_failed", slog.Any("error", err))
		}
	}

	guest, err := m.loadGuest(ctx)
	if err != nil {
		return fmt.Errorf("auth_initialize_failed: %w", err)
	}

	if guest != nil {
		m.mu.Lock()
		m.identity = guest
		m.mu.Unlock()

		m.logger.InfoContext(ctx, "session_initialized", slog.String("identity_id", guest.ID), slog.String("role", string(guest.Role)))
		return nil
	}

	m.logger.InfoContext(ctx, "session_initialized", slog.Bool("anonymous", true))
	return nil
}

// restoreFromToken returns the profile behind token, or nil when it cannot be used.
func (m *Manager) restoreFromToken(ctx context.Context, token string) *Identity {
	if sec.TokenExpired(token, m.now()) {
		m.logger.InfoContext(ctx, "session_token_expired")
		return nil
	}

	identity, err := m.accounts.Profile(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "profile_fetch_failed", slog.Any("error", err))
		return nil
	}
	return identity
}

// loadGuest reads the guest slot. A record that does not decode is removed.
func (m *Manager) loadGuest(ctx context.Context) (*Identity, error) {
	raw, found, err := m.records.Guest(ctx)
	if errors.Is(err, session.ErrUnsealable) {
		m.discardUnreadable(ctx, "guest", m.records.DeleteGuest, err)
		return nil, nil
	}
	if err != nil || !found {
		return nil, err
	}

	guest, err := decodeGuest(raw)
	if err != nil {
		m.logger.WarnContext(ctx, "guest_record_discarded", slog.Any("error", err))
		if err := m.records.DeleteGuest(ctx); err != nil {
			m.logger.WarnContext(ctx, "guest_record_delete_failed", slog.Any("error", err))
		}
		return nil, nil
	}
	return guest, nil
}

// discardUnreadable removes a slot sealed under another secret so that later
// runs start from an empty record instead of failing the same way.
func (m *Manager) discardUnreadable(ctx context.Context, slot string, remove func(context.Context) error, cause error) {
	m.logger.WarnContext(ctx, "session_record_unreadable", slog.String("slot", slot), slog.Any("error", cause))
	if err := remove(ctx); err != nil {
		m.logger.WarnContext(ctx, "session_record_delete_failed", slog.String("slot", slot), slog.Any("error", err))
	}
}

// # Authentication Flow

// LoginInput holds credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
Login authenticates against the backend and installs the returned identity.

Description: On success the token is persisted (removing any guest record)
before [EventLoggedIn] is published. On failure nothing changes; the shared
interceptor has already notified the user.
*/
func (m *Manager) Login(ctx context.Context, input LoginInput) (*Identity, error) {
	email := validate.EmailAddress(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		Email(FieldEmail, email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	m.beginLoading()
	defer m.endLoading()

	result, err := m.accounts.Login(ctx, email, input.Password)
	if err != nil {
		m.logger.InfoContext(ctx, "login_failed", slog.Any("error", err))
		return nil, err
	}

	return m.establish(ctx, result, EventLoggedIn)
}

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

/*
Register enrolls a new account and signs it in.

Description: Follows the same contract as [Manager.Login]. When the backend
accepts the account without issuing a token, the same credentials are used
to log in.
*/
func (m *Manager) Register(ctx context.Context, input RegisterInput) (*Identity, error) {
	name := validate.Name(input.Name)
	email := validate.EmailAddress(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldName, name).
		Required(FieldEmail, email).
		Email(FieldEmail, email).
		Match(FieldPasswordConfirm, input.Password, input.PasswordConfirm).
		Password(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	m.beginLoading()
	defer m.endLoading()

	result, err := m.accounts.Register(ctx, name, email, input.Password)
	if err != nil {
		m.logger.InfoContext(ctx, "register_failed", slog.Any("error", err))
		return nil, err
	}

	if result.Token == "" {
		result, err = m.accounts.Login(ctx, email, input.Password)
		if err != nil {
			m.logger.InfoContext(ctx, "register_login_failed", slog.Any("error", err))
			return nil, err
		}
	}

	return m.establish(ctx, result, EventRegistered)
}

// establish persists the token, installs the identity and publishes kind.
func (m *Manager) establish(ctx context.Context, result *AuthResult, kind EventKind) (*Identity, error) {
	if result.Token == "" || result.Identity == nil {
		return nil, apperr.Internal(errors.New("auth: backend issued no session"))
	}

	m.mu.Lock()
	if err := m.records.SaveToken(ctx, result.Token); err != nil {
		m.mu.Unlock()
		return nil, apperr.Internal(err)
	}
	m.identity = result.Identity.Clone()
	snapshot := m.identity.Clone()
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "session_established",
		slog.String("event", string(kind)),
		slog.String("identity_id", snapshot.ID),
		slog.String("role", string(snapshot.Role)),
	)

	m.observers.publish(Event{Kind: kind, Identity: snapshot.Clone()})
	return snapshot, nil
}

// Logout clears the record and the identity. It cannot fail; store errors are logged.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	if err := m.records.Clear(ctx); err != nil {
		m.logger.ErrorContext(ctx, "session_clear_failed", slog.Any("error", err))
	}
	m.identity = nil
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "session_logged_out")
	m.observers.publish(Event{Kind: EventLoggedOut})
}

// # Guest Mode

/*
ContinueAsGuest installs a freshly synthesized guest identity.

Description: The guest record is overwritten and the token slot is left
alone. A signed-in backend identity is never replaced by a guest.
*/
func (m *Manager) ContinueAsGuest(ctx context.Context) (*Identity, error) {
	m.mu.Lock()
	if m.identity != nil && !m.identity.IsGuest() {
		m.mu.Unlock()
		return nil, apperr.Conflict(msgAlreadySignedIn)
	}

	guest := NewGuest()
	if err := m.saveGuest(ctx, guest); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.identity = guest
	snapshot := guest.Clone()
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "guest_session_started", slog.String("identity_id", snapshot.ID))
	m.observers.publish(Event{Kind: EventGuestStarted, Identity: snapshot.Clone()})
	return snapshot, nil
}

// ConsumeGuestQuestion takes one question from the guest allowance and
// persists the updated guest record.
func (m *Manager) ConsumeGuestQuestion(ctx context.Context) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.identity.IsGuest() {
		return nil, apperr.Conflict(msgGuestEnded)
	}
	if m.identity.Subscription.QuestionsRemaining <= 0 {
		return nil, apperr.QuotaExceeded(MsgQuotaExceeded)
	}

	updated := m.identity.Clone()
	updated.Subscription.QuestionsRemaining--

	if err := m.saveGuest(ctx, updated); err != nil {
		return nil, err
	}
	m.identity = updated
	return updated.Clone(), nil
}

// saveGuest writes the guest slot. Callers hold m.mu.
func (m *Manager) saveGuest(ctx context.Context, guest *Identity) error {
	raw, err := json.Marshal(guest)
	if err != nil {
		return apperr.Internal(fmt.Errorf("auth: encode guest record: %w", err))
	}
	if err := m.records.SaveGuest(ctx, string(raw)); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// # Password Recovery

// RequestPasswordReset asks the backend to send a reset email.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) error {
	email = validate.EmailAddress(email)

	validator := &validate.Validator{}
	if err := validator.Required(FieldEmail, email).Email(FieldEmail, email).Err(); err != nil {
		return err
	}

	if err := m.accounts.RequestPasswordReset(ctx, email); err != nil {
		m.logger.InfoContext(ctx, "password_reset_request_failed", slog.Any("error", err))
		return err
	}

	m.observers.publish(Event{Kind: EventPasswordResetRequested, Identity: m.Current()})
	return nil
}

// ResetPasswordInput holds the emailed token and the new password.
type ResetPasswordInput struct {
	Token           string
	Password        string
	PasswordConfirm string
}

// ResetPassword completes the forgot-password flow.
func (m *Manager) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token).
		Match(FieldPasswordConfirm, input.Password, input.PasswordConfirm).
		Password(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		return err
	}

	if err := m.accounts.ResetPassword(ctx, input.Token, input.Password); err != nil {
		m.logger.InfoContext(ctx, "password_reset_failed", slog.Any("error", err))
		return err
	}

	m.observers.publish(Event{Kind: EventPasswordReset, Identity: m.Current()})
	return nil
}

// # Expiry

// Expire handles a 401 from the backend. The token is removed and a
// backend-issued identity is cleared; a guest identity survives.
func (m *Manager) Expire(ctx context.Context) {
	m.mu.Lock()
	if err := m.records.DeleteToken(ctx); err != nil {
		m.logger.ErrorContext(ctx, "session_token_delete_failed", slog.Any("error", err))
	}
	if m.identity != nil && !m.identity.IsGuest() {
		m.identity = nil
	}
	snapshot := m.identity.Clone()
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "session_expired")
	m.observers.publish(Event{Kind: EventSessionExpired, Identity: snapshot})
}

// # Loading

func (m *Manager) beginLoading() {
	m.mu.Lock()
	m.inflight++
	m.mu.Unlock()
}

func (m *Manager) endLoading() {
	m.mu.Lock()
	m.inflight--
	m.mu.Unlock()
}
