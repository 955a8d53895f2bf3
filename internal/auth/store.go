// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth owns the opaque session tokens that gate the API.

Tokens live only in process memory. They are not persisted, not shared between
nodes, and are lost on restart. Each token has an absolute lifetime: verifying
it does not extend it.

Lifecycle:

  - Issue: a random UUIDv4 identifier is minted and stamped with the issue time.
  - Verify: absent tokens fail with [ErrTokenMissing]; tokens older than the TTL
    are evicted and fail with [ErrTokenStale].
  - Revoke: unconditional, idempotent removal.
  - Sweep: optional periodic eviction of every stale entry.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrTokenMissing is returned when the identifier is not in the store.
	ErrTokenMissing = errors.New("auth: token not found")

	// ErrTokenStale is returned when the token outlived its TTL. The entry is gone afterwards.
	ErrTokenStale = errors.New("auth: token expired")
)

// Token is an opaque credential and the instant it was issued.
type Token struct {
	ID       string
	IssuedAt time.Time
}

// TokenStore is a concurrency-safe, time-bounded set of live tokens.
//
// # Concurrency
//
// A single mutex guards the map. Verify performs lookup and eviction inside one
// critical section, so a Verify racing a Revoke never observes a half-removed entry.
type TokenStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu     sync.Mutex
	tokens map[string]time.Time
}

// NewTokenStore creates an empty store. clock may be nil, in which case [time.Now] is used.
func NewTokenStore(ttl time.Duration, clock func() time.Time) *TokenStore {
	if clock == nil {
		clock = time.Now
	}
	return &TokenStore{
		ttl:    ttl,
		clock:  clock,
		tokens: make(map[string]time.Time),
	}
}

// TTL returns the configured token lifetime.
func (store *TokenStore) TTL() time.Duration {
	return store.ttl
}

// Issue mints a new token stamped with the current time.
func (store *TokenStore) Issue() (Token, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return Token{}, fmt.Errorf("auth: generate token: %w", err)
	}

	token := Token{ID: id.String(), IssuedAt: store.clock()}

	store.mu.Lock()
	store.tokens[token.ID] = token.IssuedAt
	store.mu.Unlock()

	return token, nil
}

// Verify checks that identifier is live at instant now.
//
// A token is live while now - issuedAt <= TTL. A stale entry is removed before
// returning, so every later Verify of the same identifier reports [ErrTokenMissing].
func (store *TokenStore) Verify(identifier string, now time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	issuedAt, found := store.tokens[identifier]
	if !found {
		return ErrTokenMissing
	}

	if now.Sub(issuedAt) > store.ttl {
		delete(store.tokens, identifier)
		return ErrTokenStale
	}

	return nil
}

// Revoke removes identifier. Revoking an unknown token is a no-op.
func (store *TokenStore) Revoke(identifier string) {
	store.mu.Lock()
	delete(store.tokens, identifier)
	store.mu.Unlock()
}

// Sweep evicts every token that is stale at instant now and returns how many were removed.
func (store *TokenStore) Sweep(now time.Time) int {
	store.mu.Lock()
	defer store.mu.Unlock()

	removed := 0
	for identifier, issuedAt := range store.tokens {
		if now.Sub(issuedAt) > store.ttl {
			delete(store.tokens, identifier)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently held, stale or not.
func (store *TokenStore) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.tokens)
}

// Run sweeps the store every interval until ctx is cancelled.
// onSweep, if non-nil, receives the number of evicted tokens after each pass.
func (store *TokenStore) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := store.Sweep(store.clock())
			if onSweep != nil {
				onSweep(removed)
			}
		case <-ctx.Done():
			return
		}
	}
}
