// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package questions

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/askly/internal/platform/request"
	"github.com/taibuivan/askly/internal/platform/respond"
	"github.com/taibuivan/askly/pkg/pagination"
)

// Handler exposes the [Manager] to the local web console.
type Handler struct {
	manager *Manager
}

// NewHandler constructs a new [Handler].
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Routes returns the question routes.
//
// # Endpoints
//   - GET  /         : Current exchange, cached history and loading flag.
//   - POST /         : Asks a question.
//   - GET  /history  : Fetches a history page.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.snapshot)
	router.Post("/", handler.ask)
	router.Get("/history", handler.history)

	return router
}

type askRequest struct {
	Question string `json:"question"`
}

type snapshotResponse struct {
	Current   *Exchange   `json:"current"`
	History   HistoryPage `json:"history"`
	IsLoading bool        `json:"isLoading"`
}

// GET /api/questions
func (handler *Handler) snapshot(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, snapshotResponse{
		Current:   handler.manager.Current(),
		History:   handler.manager.History(),
		IsLoading: handler.manager.IsLoading(),
	})
}

/*
Ask submits a question.

POST /api/questions

Response:
  - 201: Exchange
  - 400: Blank or oversized question
  - 401: No identity installed
  - 403: Allowance exhausted
  - 409: Another question is in flight
*/
func (handler *Handler) ask(writer http.ResponseWriter, request *http.Request) {
	var input askRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	exchange, err := handler.manager.Ask(request.Context(), input.Question)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, exchange)
}

// GET /api/questions/history?page&limit
func (handler *Handler) history(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	page, err := handler.manager.FetchHistory(request.Context(), params.Page, params.Limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, page)
}
