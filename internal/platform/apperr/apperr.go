// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Askly.

It provides a rich error type that bridges local validation failures, backend
HTTP failures and transport failures with the messages shown to the user.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Origin: Local errors (validation, quota, busy) never touch the network.
  - Mapping: Backend status codes map onto the same codes the console replies with.

Every error that leaves a manager should be an [AppError] so that callers can
branch on Code without string matching.
*/
package apperr

import (
	"errors"
	"net/http"
)

// # Error Codes

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeRateLimited   = "RATE_LIMITED"
	CodeQuotaExceeded = "QUOTA_EXCEEDED"
	CodeBusy          = "BUSY"
	CodeNetwork       = "NETWORK_ERROR"
	CodeRemote        = "REMOTE_ERROR"
	CodeInternal      = "INTERNAL_ERROR"
)

// AppError is the canonical error type for the Askly client.
//
// It carries an HTTP status code, a machine-readable code, a user-facing
// message, and an optional slice of field-level validation errors.
//
// The Cause field is for logging only and is never shown to the user.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to show to the user.
	Message string `json:"error"`
	// HTTPStatus is the status received from the backend, or the one the console replies with.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface. It returns the user-facing message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError].
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(msg string) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    msg,
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// QuotaExceeded creates a 403 [AppError] for an exhausted question allowance.
func QuotaExceeded(msg string) *AppError {
	return &AppError{
		Code:       CodeQuotaExceeded,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Busy creates a 409 [AppError] for an operation that is already in flight.
func Busy(operation string) *AppError {
	return &AppError{
		Code:       CodeBusy,
		Message:    operation + " is already in progress",
		HTTPStatus: http.StatusConflict,
	}
}

// # Remote & Transport Errors

// Remote creates an [AppError] for a backend reply with an unclassified status.
func Remote(status int, msg string) *AppError {
	return &AppError{
		Code:       CodeRemote,
		Message:    msg,
		HTTPStatus: status,
	}
}

// Network creates a 502 [AppError] for a request that received no response.
func Network(msg string, cause error) *AppError {
	return &AppError{
		Code:       CodeNetwork,
		Message:    msg,
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected local error.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}

// HasStatus reports whether err carries an [*AppError] with the given HTTP status.
func HasStatus(err error, status int) bool {
	ae := As(err)
	return ae != nil && ae.HTTPStatus == status
}
