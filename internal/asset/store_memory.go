// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/taibuivan/geopost/pkg/ids"
)

// MemoryStore keeps assets in process memory. Contents are lost on restart.
type MemoryStore struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string]Upload
}

// NewMemoryStore creates an empty store. baseURL prefixes keys in [MemoryStore.URLFor].
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string]Upload),
	}
}

// Exists reports whether key is held.
func (store *MemoryStore) Exists(context context.Context, key string) (bool, error) {
	if err := context.Err(); err != nil {
		return false, err
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	_, found := store.objects[key]
	return found, nil
}

// Upload copies the payload under a fresh key.
func (store *MemoryStore) Upload(context context.Context, upload Upload) (string, error) {
	if err := context.Err(); err != nil {
		return "", err
	}

	key := ids.New()
	stored := Upload{Data: bytes.Clone(upload.Data), ContentType: upload.ContentType}

	store.mu.Lock()
	store.objects[key] = stored
	store.mu.Unlock()

	return key, nil
}

// Download returns a reader over the stored payload.
func (store *MemoryStore) Download(context context.Context, key string) (io.ReadCloser, error) {
	if err := context.Err(); err != nil {
		return nil, err
	}

	store.mu.RLock()
	object, found := store.objects[key]
	store.mu.RUnlock()

	if !found {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(object.Data)), nil
}

// Delete drops key. Missing keys succeed.
func (store *MemoryStore) Delete(context context.Context, key string) error {
	if err := context.Err(); err != nil {
		return err
	}

	store.mu.Lock()
	delete(store.objects, key)
	store.mu.Unlock()

	return nil
}

// URLFor joins the base URL and key.
func (store *MemoryStore) URLFor(key string) string {
	return store.baseURL + "/" + key
}

// Len returns the number of stored objects.
func (store *MemoryStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.objects)
}
