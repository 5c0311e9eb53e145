// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/taibuivan/askly/internal/platform/apiclient"
)

// # Contracts & Types

// AccountService is the Remote Account Service.
//
// Implementations report transport failures through the shared interceptor;
// callers only branch on the returned error.
type AccountService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)

	// Profile fetches the identity behind the stored bearer token.
	Profile(ctx context.Context) (*Identity, error)

	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// AuthResult is a successful login or registration.
//
// Token may be empty when the backend registers an account without
// opening a session.
type AuthResult struct {
	Token    string
	Identity *Identity
}

// # Remote Paths

const (
	pathLogin         = "/users/login"
	pathRegister      = "/users/register"
	pathProfile       = "/users/profile"
	pathPasswordReset = "/auth/password-reset"
)

// RemoteAccounts implements [AccountService] over HTTP.
type RemoteAccounts struct {
	client *apiclient.Client
}

// NewRemoteAccounts constructs a [RemoteAccounts] on top of the shared transport.
func NewRemoteAccounts(client *apiclient.Client) *RemoteAccounts {
	return &RemoteAccounts{client: client}
}

type credentialsPayload struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authPayload struct {
	Token string      `json:"token"`
	User  *remoteUser `json:"user"`
}

func (p *authPayload) result() (*AuthResult, error) {
	if p.User == nil {
		return nil, fmt.Errorf("auth: backend reply carries no user")
	}
	return &AuthResult{Token: p.Token, Identity: p.User.identity()}, nil
}

// Login authenticates credentials.
func (r *RemoteAccounts) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var reply authPayload
	if err := r.client.Post(ctx, pathLogin, credentialsPayload{Email: email, Password: password}, &reply); err != nil {
		return nil, err
	}
	return reply.result()
}

// Register enrolls a new account.
func (r *RemoteAccounts) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var reply authPayload
	if err := r.client.Post(ctx, pathRegister, credentialsPayload{Name: name, Email: email, Password: password}, &reply); err != nil {
		return nil, err
	}
	return reply.result()
}

// Profile fetches the current user's profile.
func (r *RemoteAccounts) Profile(ctx context.Context) (*Identity, error) {
	var reply remoteUser
	if err := r.client.Get(ctx, pathProfile, nil, &reply); err != nil {
		return nil, err
	}
	return reply.identity(), nil
}

// RequestPasswordReset asks the backend to email a reset link.
func (r *RemoteAccounts) RequestPasswordReset(ctx context.Context, email string) error {
	return r.client.Post(ctx, pathPasswordReset, map[string]string{FieldEmail: email}, nil)
}

// ResetPassword sets a new password using the emailed token.
func (r *RemoteAccounts) ResetPassword(ctx context.Context, token, password string) error {
	path := pathPasswordReset + "/" + url.PathEscape(token)
	return r.client.Post(ctx, path, map[string]string{FieldPassword: password}, nil)
}
