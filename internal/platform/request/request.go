// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/geopost/internal/platform/apperr"
	"github.com/taibuivan/geopost/internal/platform/validate"
)

// maxJSONBody bounds every JSON request body.
const maxJSONBody = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - writer: http.ResponseWriter (needed to cap the body size)
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrEmptyBody, validate.ErrInvalidJSON or nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target interface{}) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxJSONBody)

	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return validate.ErrEmptyBody
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.PayloadTooLarge("Request body too large")
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID retrieves a named URL parameter (UUID/ULID/access key) from the request.
*/
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
ParseMultipart caps the request body and parses a multipart form.

Parameters:
  - writer: http.ResponseWriter
  - request: *http.Request
  - maxBytes: int64 (Limit for the whole body, all parts included)

Returns:
  - error: apperr.PayloadTooLarge if over the limit, a validation error if malformed
*/
func ParseMultipart(writer http.ResponseWriter, request *http.Request, maxBytes int64) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBytes)

	if err := request.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.PayloadTooLarge(fmt.Sprintf("Upload exceeds %d bytes", maxBytes))
		}
		return apperr.ValidationError("Invalid multipart form")
	}
	return nil
}

/*
Files returns the uploaded files for a multipart field, in submission order.
It returns nil when the field is absent. ParseMultipart must be called first.
*/
func Files(request *http.Request, field string) []*multipart.FileHeader {
	if request.MultipartForm == nil {
		return nil
	}
	return request.MultipartForm.File[field]
}

/*
FormValue returns the first value of a multipart or urlencoded form field.
*/
func FormValue(request *http.Request, field string) string {
	return request.FormValue(field)
}
