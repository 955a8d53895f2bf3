// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/geopost/internal/asset"
	"github.com/taibuivan/geopost/internal/platform/apperr"
	requestutil "github.com/taibuivan/geopost/internal/platform/request"
	"github.com/taibuivan/geopost/internal/platform/respond"
	"github.com/taibuivan/geopost/internal/user"
	"github.com/taibuivan/geopost/pkg/query"
)

// Multipart field names accepted by POST /post.
const (
	FormImages      = "images"
	FormAuthorName  = "author_name"
	FormAuthorEmail = "author_email"
)

// formOverhead is the body allowance for the non-file fields of a creation form.
const formOverhead = 1 << 20

// Handler implements the post HTTP endpoints.
type Handler struct {
	service       *Service
	orchestrator  *Orchestrator
	maxImageBytes int64
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, orchestrator *Orchestrator, maxImageBytes int64) *Handler {
	return &Handler{service: service, orchestrator: orchestrator, maxImageBytes: maxImageBytes}
}

// Routes returns the /post router.
//
// # Endpoints
//   - POST   /            : Creates a post with its two images.
//   - DELETE /{accessKey} : Deletes a post and its images.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.create)
	router.Delete("/{accessKey}", handler.delete)

	return router
}

// RecordRoutes returns the /userpost router.
//
// # Endpoints
//   - GET    /{id} : Fetches a post.
//   - POST   /     : Stores a post document without images (dev only).
//   - PATCH  /{id} : Updates a post (dev only).
//   - DELETE /{id} : Removes only the post document, addressed by access key (dev only).
func (handler *Handler) RecordRoutes(devRoutes bool) chi.Router {
	router := chi.NewRouter()

	router.Get("/{id}", handler.get)

	if devRoutes {
		router.Post("/", handler.createRecord)
		router.Patch("/{id}", handler.update)
		router.Delete("/{id}", handler.deleteRecord)
	}

	return router
}

// ListRoutes returns the /userposts router.
//
// # Endpoints
//   - POST / : Lists posts matching a filter.
func (handler *Handler) ListRoutes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", handler.list)
	return router
}

// # Creation

/*
POST /api/v1/post.

Request (multipart/form-data):
  - images: exactly two files, avatar first and picture second
  - title, body, location, true_location: text fields
  - tags: repeated field, or one comma separated value
  - author_id: an existing author, or
  - author_name, author_email: a new author created with the avatar

Response:
  - 201: Post
  - 400: Missing images or validation failures
  - 413: Upload too large
  - 500: ASSET_UPLOAD_FAILED, PERSIST_FAILED, or an upload that could not be read back
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	limit := RequiredImages*handler.maxImageBytes + formOverhead
	if err := requestutil.ParseMultipart(writer, request, limit); err != nil {
		respond.Error(writer, request, err)
		return
	}

	files := requestutil.Files(request, FormImages)
	if len(files) != RequiredImages {
		respond.Error(writer, request, ErrMissingImages)
		return
	}

	images, err := readImages(files, handler.maxImageBytes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.orchestrator.Create(request.Context(), images, createInputFromForm(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, post)
}

// readImages loads and validates each uploaded file, in submission order.
func readImages(files []*multipart.FileHeader, maxBytes int64) ([]asset.Upload, error) {
	images := make([]asset.Upload, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("post_handler_open_upload_failed: %w", err))
		}
		upload, err := asset.ReadUpload(FormImages, file, maxBytes)
		_ = file.Close()
		if err != nil {
			return nil, err
		}
		images = append(images, upload)
	}
	return images, nil
}

func createInputFromForm(request *http.Request) CreateInput {
	input := CreateInput{
		Post: NewPost{
			AuthorID:     requestutil.FormValue(request, FieldAuthorID),
			Body:         requestutil.FormValue(request, FieldBody),
			Title:        requestutil.FormValue(request, FieldTitle),
			Location:     requestutil.FormValue(request, FieldLocation),
			TrueLocation: requestutil.FormValue(request, FieldTrueLocation),
			Tags:         formTags(request),
		},
	}

	if input.Post.AuthorID == "" {
		name := requestutil.FormValue(request, FormAuthorName)
		email := requestutil.FormValue(request, FormAuthorEmail)
		if name != "" || email != "" {
			input.Author = &user.NewUser{Name: name, Email: email}
		}
	}
	return input
}

// formTags accepts tags as repeated fields and as comma separated values.
func formTags(request *http.Request) []string {
	return query.StringSlice(request.MultipartForm.Value[FieldTags]...)
}

/*
DELETE /api/v1/post/{accessKey}.

Response:
  - 200: Post (the removed document)
  - 404: Unknown access key
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	post, err := handler.service.DeleteByAccessKey(request.Context(), requestutil.ID(request, "accessKey"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, post)
}

// # Records

/*
GET /api/v1/userpost/{id}.

Response:
  - 200: Post
  - 400: Malformed id
  - 404: Unknown post
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	post, err := handler.service.Get(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, post)
}

// updateRequest carries the update document as raw JSON so immutable keys can be detected.
type updateRequest struct {
	Update json.RawMessage `json:"update"`
}

/*
PATCH /api/v1/userpost/{id} (development only).

Request:
  - body: {"update": {...}} (id, access_key and created_at may not appear)

Response:
  - 200: Post (after the update)
  - 400: Validation failures
  - 404: Unknown post
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input updateRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	patch, err := ParsePatch(input.Update)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.service.Update(request.Context(), requestutil.ID(request, "id"), patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, post)
}

// listRequest carries the filter as raw JSON; its shape is checked by ParseFilter.
type listRequest struct {
	Filter json.RawMessage `json:"filter"`
}

/*
POST /api/v1/userposts.

Request:
  - body: {"filter": {...}} (optional; {} lists everything)

Response:
  - 200: []Post (newest first, at most 100)
  - 400: Invalid search filters
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	var input listRequest
	if request.ContentLength != 0 {
		if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	filter, err := ParseFilter(input.Filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	posts, err := handler.service.List(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, posts)
}

/*
POST /api/v1/userpost (development only).

Request:
  - body: NewPost (JSON)

Response:
  - 201: Post
  - 400: Validation failures
*/
func (handler *Handler) createRecord(writer http.ResponseWriter, request *http.Request) {
	var input NewPost
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.service.CreateRecord(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, post)
}

/*
DELETE /api/v1/userpost/{accessKey} (development only).

Response:
  - 200: Post (the removed document; images are kept)
  - 404: Unknown access key
*/
func (handler *Handler) deleteRecord(writer http.ResponseWriter, request *http.Request) {
	post, err := handler.service.DeleteRecord(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, post)
}
