// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/geopost/internal/platform/request"
	"github.com/taibuivan/geopost/internal/platform/respond"
)

// Handler implements the raw user CRUD endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the /user router.
//
// # Endpoints
//   - POST   /     : Creates a user.
//   - GET    /{id} : Fetches a user.
//   - PATCH  /{id} : Updates a user.
//   - DELETE /{id} : Deletes a user.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.create)
	router.Get("/{id}", handler.get)
	router.Patch("/{id}", handler.update)
	router.Delete("/{id}", handler.delete)

	return router
}

/*
POST /api/v1/user.

Request:
  - body: NewUser (JSON)

Response:
  - 201: User
  - 400: Validation failures
  - 409: Email already registered
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input NewUser
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
GET /api/v1/user/{id}.

Response:
  - 200: User
  - 400: Malformed id
  - 404: Unknown user
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.service.Get(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// updateRequest wraps the patch the same way post updates are wrapped.
type updateRequest struct {
	Update Patch `json:"update"`
}

/*
PATCH /api/v1/user/{id}.

Request:
  - body: {"update": Patch}

Response:
  - 200: User (after the update)
  - 400: Validation failures
  - 404: Unknown user
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input updateRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Update(request.Context(), requestutil.ID(request, "id"), input.Update)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
DELETE /api/v1/user/{id}.

Response:
  - 200: User (the removed document)
  - 404: Unknown user
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.service.Delete(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}
