// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/askly/internal/platform/apiclient"
	"github.com/taibuivan/askly/internal/platform/notify"
	"github.com/taibuivan/askly/internal/platform/sec"
	"github.com/taibuivan/askly/internal/users/auth"
)

func profileFrom(t *testing.T, body string) *auth.Identity {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	defer server.Close()

	client, err := apiclient.New(apiclient.Options{BaseURL: server.URL}, nil, &notify.Recorder{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	identity, err := auth.NewRemoteAccounts(client).Profile(context.Background())
	require.NoError(t, err)
	return identity
}

/*
TestProfileMapping checks how backend profiles become identities.
*/
func TestProfileMapping(t *testing.T) {
	t.Run("mongo_id_and_numeric_count", func(t *testing.T) {
		identity := profileFrom(t, `{"_id":"abc","id":"ignored","name":"Ada","email":"a@b.com","role":"admin","subscription":"premium","questionCount":42}`)
		assert.Equal(t, "abc", identity.ID)
		assert.Equal(t, sec.RoleAdmin, identity.Role)
		assert.Equal(t, auth.PlanPremium, identity.Subscription.Plan)
		assert.Equal(t, 42, identity.Subscription.QuestionsRemaining)
		assert.Nil(t, identity.Subscription.ExpiresAt)
	})

	t.Run("plain_id_and_defaults", func(t *testing.T) {
		identity := profileFrom(t, `{"id":"u-9","name":"Bo","email":"bo@b.com"}`)
		assert.Equal(t, "u-9", identity.ID)
		assert.Equal(t, sec.RoleUser, identity.Role)
		assert.Equal(t, auth.PlanFree, identity.Subscription.Plan)
		assert.Equal(t, 3, identity.Subscription.QuestionsRemaining)
	})

	t.Run("premium_without_count", func(t *testing.T) {
		identity := profileFrom(t, `{"id":"u-9","subscription":"premium","questionCount":"lots"}`)
		assert.Equal(t, 100, identity.Subscription.QuestionsRemaining)
	})

	t.Run("expiry", func(t *testing.T) {
		identity := profileFrom(t, `{"id":"u-9","subscription":"premium","subscriptionExpiresAt":"2027-01-02T03:04:05Z"}`)
		require.NotNil(t, identity.Subscription.ExpiresAt)
		assert.True(t, identity.Subscription.ExpiresAt.Equal(time.Date(2027, 1, 2, 3, 4, 5, 0, time.UTC)))
	})

	t.Run("backend_cannot_mint_guests", func(t *testing.T) {
		identity := profileFrom(t, `{"id":"u-9","role":"guest","subscription":"guest"}`)
		assert.Equal(t, sec.RoleUser, identity.Role)
		assert.Equal(t, auth.PlanFree, identity.Subscription.Plan)
		assert.False(t, identity.IsGuest())
	})

	t.Run("nested_subscription", func(t *testing.T) {
		identity := profileFrom(t, `{"id":"u-9","subscription":{"plan":"premium","questionsRemaining":12,"expiresAt":null}}`)
		assert.Equal(t, auth.PlanPremium, identity.Subscription.Plan)
		assert.Equal(t, 12, identity.Subscription.QuestionsRemaining)
	})
}

/*
TestSubscription_QuestionLimit covers the per-plan allowance display.
*/
func TestSubscription_QuestionLimit(t *testing.T) {
	assert.Equal(t, 1000, auth.Subscription{Plan: auth.PlanPremium}.QuestionLimit())
	assert.Equal(t, 3, auth.Subscription{Plan: auth.PlanGuest}.QuestionLimit())
	assert.Equal(t, 10, auth.Subscription{Plan: auth.PlanFree}.QuestionLimit())
}

/*
TestIdentity_Clone detaches the expiry pointer.
*/
func TestIdentity_Clone(t *testing.T) {
	expiresAt := time.Now()
	original := &auth.Identity{ID: "u-1", Subscription: auth.Subscription{ExpiresAt: &expiresAt}}

	clone := original.Clone()
	*clone.Subscription.ExpiresAt = expiresAt.Add(time.Hour)

	assert.True(t, original.Subscription.ExpiresAt.Equal(expiresAt))
	assert.Nil(t, (*auth.Identity)(nil).Clone())
}
