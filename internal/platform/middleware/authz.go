// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"

	"github.com/taibuivan/askly/internal/platform/ctxutil"
	"github.com/taibuivan/askly/internal/users/auth"
)

// IdentitySource yields the identity of the console's single actor.
type IdentitySource interface {
	Current() *auth.Identity
}

// Actor records the current identity's ID in the request context so that
// request logs name who acted.
func Actor(source IdentitySource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity := source.Current()
			if identity == nil {
				next.ServeHTTP(writer, request)
				return
			}

			ctx := ctxutil.WithActor(request.Context(), identity.ID)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireView redirects away from a view the current identity may not open.
//
// # Flow
//  1. Derive the decision with [auth.Decide].
//  2. If refused, answer 303 See Other with the redirect target.
func RequireView(source IdentitySource, access auth.Access) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if redirect, ok := auth.Decide(access, source.Current()); !ok {
				http.Redirect(writer, request, redirect, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}
