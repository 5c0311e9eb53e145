// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/askly/internal/platform/constants"
	"github.com/taibuivan/askly/internal/platform/middleware"
	"github.com/taibuivan/askly/internal/platform/respond"
	"github.com/taibuivan/askly/internal/questions"
	"github.com/taibuivan/askly/internal/users/auth"
)

// QuestionSnapshot yields the dashboard's question state.
type QuestionSnapshot interface {
	Current() *questions.Exchange
	History() questions.HistoryPage
}

// views renders the console's view models. Guards run before these handlers,
// so every handler may assume the identity requirement of its view holds.
type views struct {
	sessions  middleware.IdentitySource
	questions QuestionSnapshot
}

// viewResponse is the payload every view route answers with.
type viewResponse struct {
	View     string         `json:"view"`
	Identity *auth.Identity `json:"identity"`
	Data     any            `json:"data,omitempty"`
}

// statusDisplay summarizes the identity's plan and allowance.
type statusDisplay struct {
	Plan               auth.Plan  `json:"plan"`
	QuestionsRemaining int        `json:"questionsRemaining"`
	QuestionLimit      int        `json:"questionLimit"`
	ExpiresAt          *time.Time `json:"expiresAt,omitempty"`
	IsGuest            bool       `json:"isGuest"`
}

type dashboardData struct {
	Status  statusDisplay         `json:"status"`
	Current *questions.Exchange   `json:"current"`
	History questions.HistoryPage `json:"history"`
}

type adminStat struct {
	Title string `json:"title"`
	Value int    `json:"value"`
}

type adminPanel struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type adminDashboard struct {
	Stats  []adminStat  `json:"stats"`
	Panels []adminPanel `json:"panels"`
}

// placeholderAdmin is static until the backend exposes administration endpoints.
var placeholderAdmin = adminDashboard{
	Stats: []adminStat{
		{Title: "Total Users", Value: 256},
		{Title: "Questions Today", Value: 128},
		{Title: "Active Subscriptions", Value: 64},
	},
	Panels: []adminPanel{
		{Title: "Users", Body: "User management table will be displayed here"},
		{Title: "Security Logs", Body: "Security logs will be displayed here"},
	},
}

// mount registers every view under its guard.
func (v *views) mount(router chi.Router) {
	router.Get(constants.ViewHome, v.home)

	handlers := map[string]http.HandlerFunc{
		constants.ViewLogin:         v.form(constants.ViewLogin),
		constants.ViewRegister:      v.form(constants.ViewRegister),
		constants.ViewResetPassword: v.resetPassword,
		constants.ViewDashboard:     v.dashboard,
		constants.ViewAdmin:         v.admin,
	}

	for path, handler := range handlers {
		router.With(middleware.RequireView(v.sessions, auth.ViewAccess[path])).Get(path, handler)
	}
}

// GET /
func (v *views) home(writer http.ResponseWriter, request *http.Request) {
	http.Redirect(writer, request, auth.Landing(v.sessions.Current()), http.StatusSeeOther)
}

// form serves the login and register views, which carry no data.
func (v *views) form(view string) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		respond.OK(writer, viewResponse{View: view})
	}
}

// GET /reset-password?token=
func (v *views) resetPassword(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, viewResponse{
		View: constants.ViewResetPassword,
		Data: map[string]string{"token": request.URL.Query().Get("token")},
	})
}

// GET /dashboard
func (v *views) dashboard(writer http.ResponseWriter, request *http.Request) {
	identity := v.sessions.Current()
	if identity == nil {
		http.Redirect(writer, request, constants.ViewLogin, http.StatusSeeOther)
		return
	}

	respond.OK(writer, viewResponse{
		View:     constants.ViewDashboard,
		Identity: identity,
		Data: dashboardData{
			Status: statusDisplay{
				Plan:               identity.Subscription.Plan,
				QuestionsRemaining: identity.Subscription.QuestionsRemaining,
				QuestionLimit:      identity.Subscription.QuestionLimit(),
				ExpiresAt:          identity.Subscription.ExpiresAt,
				IsGuest:            identity.IsGuest(),
			},
			Current: v.questions.Current(),
			History: v.questions.History(),
		},
	})
}

// GET /admin
func (v *views) admin(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, viewResponse{
		View:     constants.ViewAdmin,
		Identity: v.sessions.Current(),
		Data:     placeholderAdmin,
	})
}
