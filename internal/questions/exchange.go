// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package questions implements the question and answer state of the client.

# Architecture

  - Manager: the current exchange, the cached history page and the
    in-flight guard for the current identity.
  - Backend: the question capability, in two variants. [Networked] talks to
    the Remote Question Service; [Simulated] answers guests locally and
    spends their allowance.

The backend variant is selected once per identity, so no call site needs to
check whether the actor is a guest.
*/
package questions

import "time"

// # Domain Entities

// Exchange is one question and its answer. It is never modified once created.
type Exchange struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryPage is one page of exchanges, newest first.
type HistoryPage struct {
	Questions  []Exchange `json:"questions"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
}

// emptyPage is the history of an identity that has not asked anything.
func emptyPage() HistoryPage {
	return HistoryPage{Questions: []Exchange{}, Page: 1, TotalPages: 1}
}

// clone copies the page so the caller cannot reach the manager's slice.
func (p HistoryPage) clone() HistoryPage {
	questions := make([]Exchange, len(p.Questions))
	copy(questions, p.Questions)
	p.Questions = questions
	return p
}

// # Field Identifiers

const (
	FieldQuestion = "question"
	FieldPage     = "page"
	FieldLimit    = "limit"
)
