// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/askly/internal/platform/sec"
	"github.com/taibuivan/askly/internal/users/auth"
)

/*
TestDecide covers the route decision for every access level.
*/
func TestDecide(t *testing.T) {
	user := &auth.Identity{ID: "u-1", Role: sec.RoleUser}
	admin := &auth.Identity{ID: "u-2", Role: sec.RoleAdmin}
	guest := auth.NewGuest()

	tests := []struct {
		name     string
		access   auth.Access
		identity *auth.Identity
		redirect string
		ok       bool
	}{
		{"public_anonymous", auth.Public, nil, "", true},
		{"guest_only_anonymous", auth.GuestOnly, nil, "", true},
		{"guest_only_user", auth.GuestOnly, user, "/dashboard", false},
		{"guest_only_guest", auth.GuestOnly, guest, "/dashboard", false},
		{"authenticated_anonymous", auth.Authenticated, nil, "/login", false},
		{"authenticated_guest", auth.Authenticated, guest, "", true},
		{"admin_anonymous", auth.Admin, nil, "/login", false},
		{"admin_user", auth.Admin, user, "/dashboard", false},
		{"admin_guest", auth.Admin, guest, "/dashboard", false},
		{"admin_admin", auth.Admin, admin, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redirect, ok := auth.Decide(tt.access, tt.identity)
			assert.Equal(t, tt.redirect, redirect)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

/*
TestLanding resolves the root view.
*/
func TestLanding(t *testing.T) {
	assert.Equal(t, "/login", auth.Landing(nil))
	assert.Equal(t, "/dashboard", auth.Landing(auth.NewGuest()))
}
