// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "errors"

// # Success Messages

const (
	MsgLoginSuccessful         = "Login successful"
	MsgRegistrationSuccessful  = "Registration successful"
	MsgLoggedOut               = "Logged out successfully"
	MsgPasswordResetRequested  = "Password reset email sent"
	MsgPasswordResetSuccessful = "Password reset successful. Please login with your new password."
)

// # Field Identifiers

const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldPasswordConfirm = "passwordConfirm"
	FieldToken           = "token"
)

var (
	errNotGuestRecord = errors.New("auth: record does not describe a guest")
)

// # Local Rejections

const (
	// MsgQuotaExceeded is returned when an identity has no questions left.
	MsgQuotaExceeded = "You have reached your question limit. Please upgrade your plan or sign in."

	msgAlreadySignedIn = "You are already signed in"
	msgGuestEnded      = "Guest session has ended"
)
