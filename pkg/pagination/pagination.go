// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared helpers for page-based history listings.
//
// # Overview
//
// It standardizes how a page is requested, both from the CLI flags and from
// the console's query string, before the request reaches the backend.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 10
	// MaxLimit is the upper bound for items per page.
	MaxLimit = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// Params holds a normalized page and limit.
type Params struct {
	Page  int
	Limit int
}

// Defaults fills zero or negative values with [DefaultPage] and [DefaultLimit].
// Any positive limit is kept as given.
func Defaults(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return Params{Page: page, Limit: limit}
}

// Clamp normalizes page and limit like [Defaults] and also caps the limit at
// [MaxLimit]. It guards input arriving over HTTP.
func Clamp(page, limit int) Params {
	params := Defaults(page, limit)
	params.Limit = min(params.Limit, MaxLimit)
	return params
}

// FromRequest parses "page" and "limit" query parameters from an HTTP request.
func FromRequest(r *http.Request) Params {
	return Clamp(
		parseIntParam(r, "page", DefaultPage),
		parseIntParam(r, "limit", DefaultLimit),
	)
}

// parseIntParam parses a single integer query parameter with a fallback default.
func parseIntParam(r *http.Request, key string, defaultVal int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}

	return n
}
