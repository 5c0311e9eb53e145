// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// Validation runs inside the managers, before any backend call. A failed
// form therefore never reaches the network layer and never triggers a
// transport notification.
package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/askly/internal/platform/apperr"
)

// # Rule Constants

const (
	// MinPasswordLength mirrors the backend password policy.
	MinPasswordLength = 8

	// MaxQuestionLength bounds a single question.
	MaxQuestionLength = 4000
)

var (
	// ErrInvalidJSON is returned when a console request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Email fails if the value is not a valid RFC 5322 email address.
func (v *Validator) Email(field, value string) *Validator {
	if _, err := mail.ParseAddress(value); err != nil {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// Password fails if the value is shorter than [MinPasswordLength].
func (v *Validator) Password(field, value string) *Validator {
	if utf8.RuneCountInString(value) < MinPasswordLength {
		v.add(field, fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	return v
}

// Match fails if confirmation differs from value.
//
// An empty confirmation is accepted so that callers without a confirm field
// (the CLI, scripted clients) are not forced to send one.
func (v *Validator) Match(field, value, confirmation string) *Validator {
	if confirmation != "" && value != confirmation {
		v.add(field, "Passwords don't match")
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}

// # Normalization

// Name trims and NFC-normalizes a display name so that visually identical
// names typed on different keyboards compare equal.
func Name(value string) string {
	return norm.NFC.String(strings.TrimSpace(value))
}

// EmailAddress trims, NFC-normalizes and lower-cases an email address.
func EmailAddress(value string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(value)))
}
