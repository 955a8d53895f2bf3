// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/geopost/internal/platform/apperr"
	"github.com/taibuivan/geopost/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/geopost/internal/platform/request"
	"github.com/taibuivan/geopost/internal/platform/respond"
)

// multipartOverhead is the allowance for part headers on top of the image itself.
const multipartOverhead = 64 << 10

// Handler exposes raw image operations. These routes are mounted only when
// development routes are enabled.
type Handler struct {
	store    Store
	maxBytes int64
}

// NewHandler constructs a new [Handler].
func NewHandler(store Store, maxBytes int64) *Handler {
	return &Handler{store: store, maxBytes: maxBytes}
}

// Routes returns the /image router.
//
// # Endpoints
//   - POST   /     : Uploads one image (multipart field "image").
//   - GET    /{id} : Streams the image.
//   - DELETE /{id} : Deletes the image.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.upload)
	router.Get("/{id}", handler.download)
	router.Delete("/{id}", handler.delete)

	return router
}

// URLRoutes returns the /imageurl router.
//
// # Endpoints
//   - GET /{id} : Returns the public URL of the image.
func (handler *Handler) URLRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/{id}", handler.url)
	return router
}

// uploadResponse is returned by POST /image.
type uploadResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

/*
POST /api/v1/image.

Request:
  - image: file (multipart)

Response:
  - 201: uploadResponse
  - 400: Missing, empty or non-image file
  - 413: File over the size limit
*/
func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseMultipart(writer, request, handler.maxBytes+multipartOverhead); err != nil {
		respond.Error(writer, request, err)
		return
	}

	files := requestutil.Files(request, "image")
	if len(files) != 1 {
		respond.Error(writer, request, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   "image",
			Message: "Exactly one image is required",
		}))
		return
	}

	file, err := files[0].Open()
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("Unreadable upload"))
		return
	}
	defer file.Close()

	upload, err := ReadUpload("image", file, handler.maxBytes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	key, err := handler.store.Upload(request.Context(), upload)
	if err != nil {
		respond.Error(writer, request, apperr.AssetUploadFailed(err))
		return
	}

	respond.Created(writer, uploadResponse{ID: key, URL: handler.store.URLFor(key)})
}

/*
GET /api/v1/image/{id}.

Response:
  - 200: Raw image bytes with a sniffed Content-Type
  - 404: Unknown key
*/
func (handler *Handler) download(writer http.ResponseWriter, request *http.Request) {
	key, ok := handler.existingKey(writer, request)
	if !ok {
		return
	}

	body, err := handler.store.Download(request.Context(), key)
	if errors.Is(err, ErrNotFound) {
		respond.Error(writer, request, apperr.NotFound("Image"))
		return
	}
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}
	defer body.Close()

	reader := bufio.NewReaderSize(body, 512)
	head, _ := reader.Peek(512)

	writer.Header().Set("Content-Type", http.DetectContentType(head))
	writer.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(365*24*3600)+", immutable")
	writer.WriteHeader(http.StatusOK)

	if _, err := io.Copy(writer, reader); err != nil {
		ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "image_stream_interrupted",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

/*
GET /api/v1/imageurl/{id}.

Response:
  - 200: {"url": "..."}
  - 404: Unknown key
*/
func (handler *Handler) url(writer http.ResponseWriter, request *http.Request) {
	key, ok := handler.existingKey(writer, request)
	if !ok {
		return
	}
	respond.OK(writer, map[string]string{"url": handler.store.URLFor(key)})
}

/*
DELETE /api/v1/image/{id}.

Response:
  - 204: Deleted
  - 404: Unknown key
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	key, ok := handler.existingKey(writer, request)
	if !ok {
		return
	}

	if err := handler.store.Delete(request.Context(), key); err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	respond.NoContent(writer)
}

// key extracts and validates the {id} parameter, writing a 400 when malformed.
func (handler *Handler) key(writer http.ResponseWriter, request *http.Request) (string, bool) {
	key := requestutil.ID(request, "id")
	if !ValidKey(key) {
		respond.Error(writer, request, apperr.ValidationError("Invalid image id"))
		return "", false
	}
	return key, true
}

// existingKey is [Handler.key] plus an existence check, writing a 404 for unknown keys.
func (handler *Handler) existingKey(writer http.ResponseWriter, request *http.Request) (string, bool) {
	key, ok := handler.key(writer, request)
	if !ok {
		return "", false
	}

	exists, err := handler.store.Exists(request.Context(), key)
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return "", false
	}
	if !exists {
		respond.Error(writer, request, apperr.NotFound("Image"))
		return "", false
	}
	return key, true
}
