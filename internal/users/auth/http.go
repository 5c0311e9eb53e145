// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/askly/internal/platform/request"
	"github.com/taibuivan/askly/internal/platform/respond"
)

// # Definitions & Constructors

// Handler exposes the [Manager] to the local web console.
//
// Transport concerns only: decoding, status codes and the view the browser
// should navigate to after a transition.
type Handler struct {
	manager *Manager
}

// NewHandler constructs a new [Handler].
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Routes returns the session routes.
//
// # Endpoints
//   - GET  /          : Current session state.
//   - POST /login     : Authenticates and installs the identity.
//   - POST /register  : Enrolls and installs the identity.
//   - POST /guest     : Starts a guest session.
//   - POST /logout    : Clears the session.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.state)
	router.Post("/login", handler.login)
	router.Post("/register", handler.register)
	router.Post("/guest", handler.guest)
	router.Post("/logout", handler.logout)

	return router
}

// ResetRoutes returns the password recovery routes.
//
// # Endpoints
//   - POST /         : Requests a reset email.
//   - POST /{token}  : Sets a new password.
func (handler *Handler) ResetRoutes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.requestPasswordReset)
	router.Post("/{token}", handler.resetPassword)

	return router
}

// # Payloads

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// transitionResponse tells the browser where to go after a transition.
type transitionResponse struct {
	Identity *Identity `json:"identity"`
	View     string    `json:"view"`
	Message  string    `json:"message,omitempty"`
}

func transition(kind EventKind, identity *Identity) transitionResponse {
	return transitionResponse{Identity: identity, View: kind.Destination(), Message: kind.Message()}
}

// # Handlers

/*
State reports the current session.

GET /api/session
*/
func (handler *Handler) state(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.manager.State())
}

/*
Login authenticates against the backend.

POST /api/session/login

Response:
  - 200: transitionResponse
  - 400: Validation failure
  - 401: Rejected credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := handler.manager.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, transition(EventLoggedIn, identity))
}

/*
Register enrolls a new account.

POST /api/session/register

Response:
  - 201: transitionResponse
  - 400: Validation failure
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := handler.manager.Register(request.Context(), RegisterInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, transition(EventRegistered, identity))
}

// POST /api/session/guest
func (handler *Handler) guest(writer http.ResponseWriter, request *http.Request) {
	identity, err := handler.manager.ContinueAsGuest(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, transition(EventGuestStarted, identity))
}

// POST /api/session/logout
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	handler.manager.Logout(request.Context())
	respond.OK(writer, transition(EventLoggedOut, nil))
}

// POST /api/password-reset
func (handler *Handler) requestPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.manager.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, transition(EventPasswordResetRequested, handler.manager.Current()))
}

// POST /api/password-reset/{token}
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.manager.ResetPassword(request.Context(), ResetPasswordInput{
		Token:           requestutil.Param(request, FieldToken),
		Password:        input.Password,
		PasswordConfirm: input.PasswordConfirm,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, transition(EventPasswordReset, handler.manager.Current()))
}
