// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/askly/internal/platform/constants"
	"github.com/taibuivan/askly/internal/session"
)

/*
TestRecords_TokenRemovesGuest verifies the mutual exclusion of the two slots.
*/
func TestRecords_TokenRemovesGuest(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	records := session.NewRecords(store)

	require.NoError(t, records.SaveGuest(ctx, `{"id":"guest-1"}`))
	require.NoError(t, records.SaveToken(ctx, "tok"))

	token, err := records.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	_, found, err := records.Guest(ctx)
	require.NoError(t, err)
	assert.False(t, found)
	assert.ElementsMatch(t, []string{constants.KeyAuthToken}, store.Keys())
}

/*
TestRecords_Clear removes both slots at once.
*/
func TestRecords_Clear(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	records := session.NewRecords(store)

	require.NoError(t, store.Set(ctx, constants.KeyAuthToken, "tok"))
	require.NoError(t, store.Set(ctx, constants.KeyGuestUser, "{}"))

	require.NoError(t, records.Clear(ctx))
	assert.Empty(t, store.Keys())

	token, err := records.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}
