// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers for the client.

It wraps the google/uuid library to generate Version 7 values. Identifiers
minted locally (guest identities, simulated exchanges) carry a prefix so they
can never be confused with identifiers issued by the backend.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() string {
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// Prefixed generates a UUIDv7 string with prefix prepended.
func Prefixed(prefix string) string {
	return prefix + New()
}
