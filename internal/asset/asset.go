// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package asset stores post pictures and avatars in an object store.

Objects are addressed by opaque keys minted on upload. Keys are ULIDs, so they
are safe to place in URLs and sort by upload time.

Implementations:

  - MinioStore: any S3-compatible endpoint.
  - MemoryStore: process-local map, for development and tests.
  - CachedStore: decorator caching positive existence checks.

Deletions that fail after the owning document is gone are written to an
[OrphanLedger] and retried later by the [Reaper].
*/
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/taibuivan/geopost/internal/platform/apperr"
	"github.com/taibuivan/geopost/pkg/ids"
)

// ErrNotFound is returned by Download when the key does not exist.
var ErrNotFound = errors.New("asset: object not found")

// Accepted image content types, as detected from the payload itself.
var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// Upload is one payload to be stored.
type Upload struct {
	Data        []byte
	ContentType string
}

// Store is the object store contract shared by every backend.
type Store interface {
	// Exists reports whether key is present.
	Exists(context context.Context, key string) (bool, error)

	// Upload stores the payload under a freshly minted key and returns it.
	Upload(context context.Context, upload Upload) (string, error)

	// Download opens the object for reading. The caller closes it.
	// It returns [ErrNotFound] for unknown keys.
	Download(context context.Context, key string) (io.ReadCloser, error)

	// Delete removes key. Deleting a missing key succeeds.
	Delete(context context.Context, key string) error

	// URLFor returns the public URL of key. It performs no I/O.
	URLFor(key string) string
}

// NewUpload validates a raw image payload and detects its content type.
//
// # Returns
//   - apperr.ValidationError for empty payloads or non-image content.
//   - apperr.PayloadTooLarge when data exceeds maxBytes.
func NewUpload(field string, data []byte, maxBytes int64) (Upload, error) {
	if len(data) == 0 {
		return Upload{}, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   field,
			Message: "Image is empty",
		})
	}

	if int64(len(data)) > maxBytes {
		return Upload{}, apperr.PayloadTooLarge(fmt.Sprintf("Image exceeds %d bytes", maxBytes))
	}

	contentType := http.DetectContentType(data)
	if _, allowed := allowedContentTypes[contentType]; !allowed {
		return Upload{}, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   field,
			Message: "Only JPEG, PNG, GIF and WebP images are accepted",
		})
	}

	return Upload{Data: data, ContentType: contentType}, nil
}

// ReadUpload reads at most maxBytes+1 bytes from reader and validates them with [NewUpload].
func ReadUpload(field string, reader io.Reader, maxBytes int64) (Upload, error) {
	data, err := io.ReadAll(io.LimitReader(reader, maxBytes+1))
	if err != nil {
		return Upload{}, apperr.ValidationError("Unreadable upload")
	}
	return NewUpload(field, data, maxBytes)
}

// ValidKey reports whether key has the shape of a minted asset key.
func ValidKey(key string) bool {
	return ids.Valid(key)
}
