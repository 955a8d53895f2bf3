// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStore remembers keys known to exist so repeated image reads skip the
// stat round-trip. Only positive answers are cached; Delete evicts the key.
type CachedStore struct {
	Store
	known *lru.Cache[string, struct{}]
}

// NewCachedStore wraps store with an LRU of size entries.
func NewCachedStore(store Store, size int) (*CachedStore, error) {
	known, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, fmt.Errorf("asset: create existence cache: %w", err)
	}
	return &CachedStore{Store: store, known: known}, nil
}

// Exists answers from the cache when the key is known to exist, and asks the backend otherwise.
func (store *CachedStore) Exists(context context.Context, key string) (bool, error) {
	if store.known.Contains(key) {
		return true, nil
	}

	exists, err := store.Store.Exists(context, key)
	if err != nil {
		return false, err
	}
	if exists {
		store.known.Add(key, struct{}{})
	}
	return exists, nil
}

// Upload stores the payload and remembers the new key as existing.
func (store *CachedStore) Upload(context context.Context, upload Upload) (string, error) {
	key, err := store.Store.Upload(context, upload)
	if err != nil {
		return "", err
	}
	store.known.Add(key, struct{}{})
	return key, nil
}

// Delete evicts before and after the backend call so a concurrent Exists
// cannot leave a stale positive entry behind.
func (store *CachedStore) Delete(context context.Context, key string) error {
	store.known.Remove(key)
	err := store.Store.Delete(context, key)
	store.known.Remove(key)
	return err
}
