// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the client-side session and authorization layer.

It owns the current Identity, the Persisted Session Record and the
transitions between the unauthenticated, guest and authenticated states.

# Architecture

  - Manager: the single writer of the identity and the record.
  - AccountService: the Remote Account Service contract and its HTTP client.
  - Guard: read-only route decisions derived from the current identity.

Navigation is not performed here. Every transition is published as an
[Event] once its persistence writes have completed.
*/
package auth

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/taibuivan/askly/internal/platform/constants"
	"github.com/taibuivan/askly/internal/platform/sec"
	"github.com/taibuivan/askly/pkg/pointer"
	"github.com/taibuivan/askly/pkg/uuid"
)

// # Domain Entities

// Plan is a subscription tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
	PlanGuest   Plan = "guest"
)

// Subscription describes the question allowance of an identity.
type Subscription struct {
	Plan               Plan       `json:"plan"`
	QuestionsRemaining int        `json:"questionsRemaining"`
	ExpiresAt          *time.Time `json:"expiresAt"`
}

// Identity is the currently recognized actor.
//
// # Invariant
//
// Role is guest exactly when the ID was minted locally, and then Plan is
// guest too. Such an identity never has a bearer token.
type Identity struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Role         sec.UserRole `json:"role"`
	Subscription Subscription `json:"subscription"`
}

// IsGuest reports whether the identity was synthesized locally.
func (i *Identity) IsGuest() bool {
	return i != nil && i.Role == sec.RoleGuest
}

// IsAdmin reports whether the identity may open the admin view.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role.AtLeast(sec.RoleAdmin)
}

// Clone returns a deep copy so callers can never mutate manager state.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	clone := *i
	if i.Subscription.ExpiresAt != nil {
		clone.Subscription.ExpiresAt = pointer.To(*i.Subscription.ExpiresAt)
	}
	return &clone
}

// QuestionLimit is the allowance shown next to the remaining count.
func (s Subscription) QuestionLimit() int {
	switch s.Plan {
	case PlanPremium:
		return 1000
	case PlanGuest:
		return constants.GuestQuestionQuota
	default:
		return 10
	}
}

// NewGuest synthesizes a fresh guest identity.
func NewGuest() *Identity {
	return &Identity{
		ID:    uuid.Prefixed(constants.GuestIDPrefix),
		Name:  constants.GuestName,
		Email: constants.GuestEmail,
		Role:  sec.RoleGuest,
		Subscription: Subscription{
			Plan:               PlanGuest,
			QuestionsRemaining: constants.GuestQuestionQuota,
		},
	}
}

// decodeGuest parses a guest record. Records that do not describe a guest
// are rejected so a tampered slot cannot grant a backend role.
func decodeGuest(raw string) (*Identity, error) {
	var identity Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, err
	}
	if !identity.IsGuest() || !strings.HasPrefix(identity.ID, constants.GuestIDPrefix) {
		return nil, errNotGuestRecord
	}
	if identity.Subscription.QuestionsRemaining < 0 {
		identity.Subscription.QuestionsRemaining = 0
	}
	identity.Subscription.Plan = PlanGuest
	return &identity, nil
}

// # Backend Profile Mapping

// remoteUser is the profile shape returned by the Remote Account Service.
type remoteUser struct {
	MongoID               string          `json:"_id"`
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	Email                 string          `json:"email"`
	Role                  string          `json:"role"`
	Subscription          json.RawMessage `json:"subscription"`
	QuestionCount         any             `json:"questionCount"`
	SubscriptionExpiresAt string          `json:"subscriptionExpiresAt"`
}

// identity maps a backend profile into an [Identity].
//
// # Defaults
//   - id: "_id", falling back to "id"
//   - role: user unless the backend says admin
//   - plan: free unless the backend says premium
//   - questionsRemaining: "questionCount" when numeric, else 100 for premium, else 3
//   - expiresAt: "subscriptionExpiresAt" when it parses, else nil
func (u *remoteUser) identity() *Identity {
	identity := &Identity{
		ID:    u.MongoID,
		Name:  u.Name,
		Email: u.Email,
		Role:  sec.RoleUser,
	}
	if identity.ID == "" {
		identity.ID = u.ID
	}
	if sec.UserRole(u.Role) == sec.RoleAdmin {
		identity.Role = sec.RoleAdmin
	}

	sub, planName := u.subscription()
	identity.Subscription.Plan = PlanFree
	if Plan(planName) == PlanPremium {
		identity.Subscription.Plan = PlanPremium
	}

	switch count := u.QuestionCount.(type) {
	case float64:
		identity.Subscription.QuestionsRemaining = max(int(count), 0)
	default:
		if sub != nil {
			identity.Subscription.QuestionsRemaining = max(sub.QuestionsRemaining, 0)
		} else if identity.Subscription.Plan == PlanPremium {
			identity.Subscription.QuestionsRemaining = constants.PremiumQuestionQuota
		} else {
			identity.Subscription.QuestionsRemaining = constants.FreeQuestionQuota
		}
	}

	if expiresAt, err := time.Parse(time.RFC3339, u.SubscriptionExpiresAt); err == nil {
		identity.Subscription.ExpiresAt = pointer.To(expiresAt)
	} else if sub != nil && sub.ExpiresAt != nil {
		identity.Subscription.ExpiresAt = pointer.To(*sub.ExpiresAt)
	}

	return identity
}

// subscription accepts both a bare plan name and an already nested object.
func (u *remoteUser) subscription() (*Subscription, string) {
	if len(u.Subscription) == 0 {
		return nil, ""
	}

	var plan string
	if err := json.Unmarshal(u.Subscription, &plan); err == nil {
		return nil, plan
	}

	var nested struct {
		Plan               string     `json:"plan"`
		QuestionsRemaining *int       `json:"questionsRemaining"`
		ExpiresAt          *time.Time `json:"expiresAt"`
	}
	if err := json.Unmarshal(u.Subscription, &nested); err != nil || nested.QuestionsRemaining == nil {
		return nil, nested.Plan
	}

	return &Subscription{
		Plan:               Plan(nested.Plan),
		QuestionsRemaining: *nested.QuestionsRemaining,
		ExpiresAt:          nested.ExpiresAt,
	}, nested.Plan
}
