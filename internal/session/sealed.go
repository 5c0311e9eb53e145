// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"fmt"

	"github.com/taibuivan/askly/internal/platform/sec"
)

// SealedStore encrypts every value before it reaches the wrapped [Store].
// Keys stay in clear text so that deletes and lookups still work.
type SealedStore struct {
	Store
	sealer *sec.Sealer
}

// Sealed wraps store with value encryption under sealer.
func Sealed(store Store, sealer *sec.Sealer) *SealedStore {
	return &SealedStore{Store: store, sealer: sealer}
}

// Get implements [Store]. A value that cannot be unsealed is reported as
// [ErrUnsealable], never returned as plaintext.
func (s *SealedStore) Get(ctx context.Context, key string) (string, bool, error) {
	sealed, found, err := s.Store.Get(ctx, key)
	if err != nil || !found {
		return "", found, err
	}

	value, err := s.sealer.Open(sealed)
	if err != nil {
		return "", false, fmt.Errorf("%w: %q: %w", ErrUnsealable, key, err)
	}
	return value, true, nil
}

// Set implements [Store].
func (s *SealedStore) Set(ctx context.Context, key, value string) error {
	sealed, err := s.sealer.Seal(value)
	if err != nil {
		return err
	}
	return s.Store.Set(ctx, key, sealed)
}
