// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer provides generic pointer helpers.
package pointer

// To returns a pointer to a copy of v.
//
// Optional timestamps (e.g. a subscription's expiry) are stored as pointers;
// To lets them be filled from a value without a temporary variable.
func To[T any](v T) *T {
	return &v
}
