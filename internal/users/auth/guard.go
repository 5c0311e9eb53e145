// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"github.com/taibuivan/askly/internal/platform/constants"
	"github.com/taibuivan/askly/internal/platform/sec"
)

// Access is the requirement a view places on the current identity.
type Access int

const (
	// Public views are always reachable.
	Public Access = iota
	// GuestOnly views (login, register) send any installed identity to the dashboard.
	GuestOnly
	// Authenticated views need an identity, guest included.
	Authenticated
	// Admin views need an identity with the admin role.
	Admin
)

// Decide derives the route decision for a view. It has no side effects.
//
// ok is true when the view may be rendered; otherwise redirect names the
// view to go to instead.
func Decide(access Access, identity *Identity) (redirect string, ok bool) {
	switch access {
	case GuestOnly:
		if identity != nil {
			return constants.ViewDashboard, false
		}
	case Authenticated:
		if identity == nil {
			return constants.ViewLogin, false
		}
	case Admin:
		if identity == nil {
			return constants.ViewLogin, false
		}
		if !identity.Role.AtLeast(sec.RoleAdmin) {
			return constants.ViewDashboard, false
		}
	}
	return "", true
}

// Landing is the view the root path resolves to.
func Landing(identity *Identity) string {
	if identity != nil {
		return constants.ViewDashboard
	}
	return constants.ViewLogin
}

// ViewAccess maps the console's view paths to their access level.
var ViewAccess = map[string]Access{
	constants.ViewLogin:         GuestOnly,
	constants.ViewRegister:      GuestOnly,
	constants.ViewResetPassword: GuestOnly,
	constants.ViewDashboard:     Authenticated,
	constants.ViewAdmin:         Admin,
}
