// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/taibuivan/geopost/pkg/ids"
)

// MinioStore keeps assets in a single bucket of an S3-compatible service.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStore creates a store over bucket. publicURL, when set, is the base
// for [MinioStore.URLFor]; otherwise the client endpoint and bucket are used.
func NewMinioStore(client *minio.Client, bucket, publicURL string) *MinioStore {
	if publicURL == "" {
		publicURL = client.EndpointURL().String() + "/" + bucket
	}
	return &MinioStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// Exists stats the object.
func (store *MinioStore) Exists(context context.Context, key string) (bool, error) {
	_, err := store.client.StatObject(context, store.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNoSuchKey(err) {
		return false, nil
	}
	return false, fmt.Errorf("asset: stat %s: %w", key, err)
}

// Upload puts the payload under a new ULID key.
func (store *MinioStore) Upload(context context.Context, upload Upload) (string, error) {
	key := ids.New()

	_, err := store.client.PutObject(context, store.bucket, key,
		bytes.NewReader(upload.Data), int64(len(upload.Data)),
		minio.PutObjectOptions{ContentType: upload.ContentType},
	)
	if err != nil {
		return "", fmt.Errorf("asset: put %s: %w", key, err)
	}

	return key, nil
}

// Download opens the object. The stat round-trip surfaces a missing key
// before any bytes are streamed to the client.
func (store *MinioStore) Download(context context.Context, key string) (io.ReadCloser, error) {
	object, err := store.client.GetObject(context, store.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("asset: get %s: %w", key, err)
	}

	if _, err := object.Stat(); err != nil {
		_ = object.Close()
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("asset: get %s: %w", key, err)
	}

	return object, nil
}

// Delete removes the object. S3 treats deleting a missing key as success.
func (store *MinioStore) Delete(context context.Context, key string) error {
	if err := store.client.RemoveObject(context, store.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("asset: remove %s: %w", key, err)
	}
	return nil
}

// URLFor joins the public base URL and key.
func (store *MinioStore) URLFor(key string) string {
	return store.publicURL + "/" + key
}

func isNoSuchKey(err error) bool {
	response := minio.ToErrorResponse(err)
	return response.Code == "NoSuchKey" || response.StatusCode == http.StatusNotFound
}
