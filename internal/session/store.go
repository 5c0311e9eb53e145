// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session implements the durable client-side key-value persistence that
holds the Persisted Session Record.

Architecture:

  - Store: A minimal string key-value contract implemented by several drivers.
  - Drivers: memory (tests, ephemeral runs), sqlite (default, a file on disk),
    redis and postgres (shared records across hosts).
  - Sealed: An optional decorator that encrypts values at rest.
  - Records: The typed view over the two record slots (token, guest identity)
    that keeps them mutually exclusive.
*/
package session

import (
	"context"
	"errors"
)

// Common errors for session store operations.
var (
	ErrInvalidConfig = errors.New("session: invalid configuration")
	ErrUnknownDriver = errors.New("session: unknown driver")
	ErrClosed        = errors.New("session: store is closed")

	// ErrUnsealable marks a stored value that the configured secret cannot open,
	// typically after SESSION_SECRET was rotated or set on an existing record.
	ErrUnsealable = errors.New("session: record cannot be unsealed")
)

// Store defines the durable key-value contract behind the Persisted Session Record.
type Store interface {
	// Get returns the value stored under key. found is false when the key is absent;
	// absence is not an error.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes every given key in a single operation. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Ping verifies that the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
