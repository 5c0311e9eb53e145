// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apiclient

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/taibuivan/askly/internal/platform/apperr"
)

// # User-Facing Messages

const (
	msgSessionExpired = "Session expired. Please login again."
	msgForbidden      = "You do not have permission to perform this action"
	msgRateLimited    = "Rate limit exceeded. Please try again later."
	msgNetwork        = "Network error. Please check your connection."
	msgGeneric        = "An error occurred"
)

// errorPayload accepts both {"message": ...} and {"error": ...} error bodies.
type errorPayload struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// classify maps a backend error status onto the client error taxonomy.
//
// # Mapping
//   - 401: session expired (the caller's hook clears the session)
//   - 403: permission denied
//   - 429: rate limited, never retried automatically
//   - 404 and everything else: server message when present, else a generic one
func classify(status int, body []byte) *apperr.AppError {
	switch status {
	case http.StatusUnauthorized:
		return apperr.Unauthorized(msgSessionExpired)
	case http.StatusForbidden:
		return apperr.Forbidden(msgForbidden)
	case http.StatusTooManyRequests:
		return apperr.RateLimited(msgRateLimited)
	}

	message := serverMessage(body)
	if status == http.StatusNotFound {
		failure := apperr.NotFound("Resource")
		failure.Message = message
		return failure
	}

	return apperr.Remote(status, message)
}

// serverMessage extracts a message from an error body, falling back to a generic one.
func serverMessage(body []byte) string {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return msgGeneric
	}

	for _, candidate := range []string{payload.Message, payload.Error} {
		if message := strings.TrimSpace(candidate); message != "" {
			return message
		}
	}
	return msgGeneric
}
