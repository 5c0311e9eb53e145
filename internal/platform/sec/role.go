// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level of the current identity.
type UserRole string

const (
	// Unrestricted access, including the admin panel
	RoleAdmin UserRole = "admin"

	// Default role for backend-registered users
	RoleUser UserRole = "user"

	// Locally synthesized identity with a fixed question allowance
	RoleGuest UserRole = "guest"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	return r.level() > 0
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-30) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 30
	case RoleUser:
		return 20
	case RoleGuest:
		return 10
	default:
		return 0
	}
}
