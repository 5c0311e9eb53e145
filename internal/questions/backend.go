// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package questions

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/taibuivan/askly/internal/platform/apiclient"
	"github.com/taibuivan/askly/internal/platform/constants"
	"github.com/taibuivan/askly/internal/users/auth"
	"github.com/taibuivan/askly/pkg/pagination"
	"github.com/taibuivan/askly/pkg/uuid"
)

// Backend answers questions and lists past exchanges for one identity.
type Backend interface {
	Ask(ctx context.Context, question string) (*Exchange, error)
	History(ctx context.Context, params pagination.Params) (*HistoryPage, error)
}

// # Networked

const (
	pathQuestions = "/questions"
	pathHistory   = "/questions/history"
)

// Networked is the Remote Question Service.
type Networked struct {
	client *apiclient.Client
}

// NewNetworked constructs a [Networked] backend on top of the shared transport.
func NewNetworked(client *apiclient.Client) *Networked {
	return &Networked{client: client}
}

// Ask posts the question and returns the backend's exchange.
func (n *Networked) Ask(ctx context.Context, question string) (*Exchange, error) {
	var exchange Exchange
	if err := n.client.Post(ctx, pathQuestions, map[string]string{FieldQuestion: question}, &exchange); err != nil {
		return nil, err
	}
	return &exchange, nil
}

// History fetches one page. A 404 means the user has no history yet and is
// neither reported nor returned as an error.
func (n *Networked) History(ctx context.Context, params pagination.Params) (*HistoryPage, error) {
	query := url.Values{
		FieldPage:  {strconv.Itoa(params.Page)},
		FieldLimit: {strconv.Itoa(params.Limit)},
	}

	var page HistoryPage
	err := n.client.Get(ctx, pathHistory, query, &page, apiclient.Quiet(http.StatusNotFound))
	if apiclient.IsNotFound(err) {
		empty := emptyPage()
		return &empty, nil
	}
	if err != nil {
		return nil, err
	}

	if page.Questions == nil {
		page.Questions = []Exchange{}
	}
	return &page, nil
}

// # Simulated

// GuestQuota spends one question from the guest allowance.
type GuestQuota interface {
	ConsumeGuestQuestion(ctx context.Context) (*auth.Identity, error)
}

// sampleAnswer is the canned reply given to guests.
const sampleAnswer = `This is a sample response to your question: "%s". Sign up for a free account to get real answers!`

// Simulated answers a guest locally. Its exchanges live only as long as the
// process does.
type Simulated struct {
	quota GuestQuota
	now   func() time.Time

	mu        sync.Mutex
	exchanges []Exchange
}

// NewSimulated constructs an empty [Simulated] backend.
func NewSimulated(quota GuestQuota) *Simulated {
	return &Simulated{quota: quota, now: time.Now}
}

// Ask spends one question and synthesizes a sample answer.
func (s *Simulated) Ask(ctx context.Context, question string) (*Exchange, error) {
	if _, err := s.quota.ConsumeGuestQuestion(ctx); err != nil {
		return nil, err
	}

	exchange := Exchange{
		ID:        uuid.Prefixed(constants.GuestIDPrefix),
		Question:  question,
		Answer:    fmt.Sprintf(sampleAnswer, question),
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.exchanges = append([]Exchange{exchange}, s.exchanges...)
	s.mu.Unlock()

	return &exchange, nil
}

// History returns every accumulated exchange as page 1 of 1.
func (s *Simulated) History(context.Context, pagination.Params) (*HistoryPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := HistoryPage{
		Questions:  append([]Exchange{}, s.exchanges...),
		Total:      len(s.exchanges),
		Page:       1,
		TotalPages: 1,
	}
	return &page, nil
}
