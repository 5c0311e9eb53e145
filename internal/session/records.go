// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"fmt"

	"github.com/taibuivan/askly/internal/platform/constants"
)

// Records is the typed view over the Persisted Session Record.
//
// # Invariant
//
// The token slot and the guest slot are mutually exclusive. Writing a token
// removes the guest slot first, so an interrupted write can leave neither
// slot set but never both.
type Records struct {
	store Store
}

// NewRecords wraps store.
func NewRecords(store Store) *Records {
	return &Records{store: store}
}

// Token returns the bearer token, or "" when none is stored.
func (r *Records) Token(ctx context.Context) (string, error) {
	token, _, err := r.store.Get(ctx, constants.KeyAuthToken)
	if err != nil {
		return "", fmt.Errorf("session: read token: %w", err)
	}
	return token, nil
}

// Guest returns the serialized guest identity and whether it exists.
func (r *Records) Guest(ctx context.Context) (string, bool, error) {
	raw, found, err := r.store.Get(ctx, constants.KeyGuestUser)
	if err != nil {
		return "", false, fmt.Errorf("session: read guest record: %w", err)
	}
	return raw, found, nil
}

// SaveToken persists token and removes any guest record.
func (r *Records) SaveToken(ctx context.Context, token string) error {
	if err := r.store.Delete(ctx, constants.KeyGuestUser); err != nil {
		return fmt.Errorf("session: remove guest record: %w", err)
	}
	if err := r.store.Set(ctx, constants.KeyAuthToken, token); err != nil {
		return fmt.Errorf("session: save token: %w", err)
	}
	return nil
}

// SaveGuest persists the serialized guest identity, overwriting a stale one.
// The token slot is left untouched.
func (r *Records) SaveGuest(ctx context.Context, raw string) error {
	if err := r.store.Set(ctx, constants.KeyGuestUser, raw); err != nil {
		return fmt.Errorf("session: save guest record: %w", err)
	}
	return nil
}

// DeleteToken removes the token slot.
func (r *Records) DeleteToken(ctx context.Context) error {
	if err := r.store.Delete(ctx, constants.KeyAuthToken); err != nil {
		return fmt.Errorf("session: remove token: %w", err)
	}
	return nil
}

// DeleteGuest removes the guest slot.
func (r *Records) DeleteGuest(ctx context.Context) error {
	if err := r.store.Delete(ctx, constants.KeyGuestUser); err != nil {
		return fmt.Errorf("session: remove guest record: %w", err)
	}
	return nil
}

// Clear removes both slots in a single store operation.
func (r *Records) Clear(ctx context.Context) error {
	if err := r.store.Delete(ctx, constants.KeyAuthToken, constants.KeyGuestUser); err != nil {
		return fmt.Errorf("session: clear record: %w", err)
	}
	return nil
}

// Ping verifies the backing store.
func (r *Records) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}
