// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the Askly client.

It defines default timeouts, storage keys, guest quotas and view paths that are
shared between the session core, the transport and the presentation surfaces.

Categories:

  - Transport: Timeouts and client-side rate limits for backend calls.
  - Session: Persisted record keys and guest defaults.
  - Views: Client-side route paths used by navigation and guards.
  - Console: Timing for the local web console server.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the session and question logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "askly"
	AppVersion = "0.1.0-dev"
)

// # Transport

const (
	// DefaultAPIURL is used when API_URL is not configured.
	DefaultAPIURL = "http://localhost:3000"

	// DefaultAPITimeout bounds every backend call.
	DefaultAPITimeout = 10 * time.Second

	// DefaultAPIRateLimitRPS is the steady outgoing request rate.
	DefaultAPIRateLimitRPS = 10.0

	// DefaultAPIRateLimitBurst is the outgoing burst capacity.
	DefaultAPIRateLimitBurst = 20
)

// # Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"

	ContentTypeJSON = "application/json"
)

// # Persisted Session Record

const (
	// KeyAuthToken is the slot holding the bearer token of an authenticated user.
	KeyAuthToken = "auth-token"

	// KeyGuestUser is the slot holding the serialized guest identity.
	KeyGuestUser = "guest-user"

	// RedisPrefixSession namespaces record slots in a shared Redis database.
	RedisPrefixSession = "askly:session:"
)

// # Guest Mode

const (
	// GuestIDPrefix marks identifiers generated locally rather than by the backend.
	GuestIDPrefix = "guest-"

	GuestName  = "Guest User"
	GuestEmail = "guest@example.com"

	// GuestQuestionQuota is the number of questions granted to a fresh guest.
	GuestQuestionQuota = 3
)

// # Plan Quotas

const (
	// PremiumQuestionQuota applies when the backend omits a numeric question count.
	PremiumQuestionQuota = 100

	// FreeQuestionQuota applies when the backend omits a numeric question count.
	FreeQuestionQuota = 3
)

// # History

const (
	DefaultHistoryPage  = 1
	DefaultHistoryLimit = 10
)

// # Views

const (
	ViewHome          = "/"
	ViewLogin         = "/login"
	ViewRegister      = "/register"
	ViewDashboard     = "/dashboard"
	ViewAdmin         = "/admin"
	ViewResetPassword = "/reset-password"
)

// # Console Timing

const (
	DefaultReadTimeout       = 5 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for a console request, backend call included.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight console requests.
	ShutdownTimeout = 10 * time.Second

	// StartupTimeout bounds session store connection and initialization.
	StartupTimeout = 30 * time.Second
)

// # Console Rate Limiting

const (
	DefaultRateLimitRPS      = 20.0
	DefaultRateLimitBurst    = 40
	RateLimitCleanupInterval = 1 * time.Minute
	RateLimitClientTTL       = 3 * time.Minute
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldView    = "view"
)
