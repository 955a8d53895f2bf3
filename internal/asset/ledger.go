// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/geopost/internal/platform/constants"
	"github.com/taibuivan/geopost/pkg/slice"
)

// OrphanLedger remembers asset keys that should have been deleted but were not.
type OrphanLedger interface {
	Record(context context.Context, keys ...string) error
	List(context context.Context) ([]string, error)
	Forget(context context.Context, keys ...string) error
}

// # Redis

// RedisLedger keeps orphaned keys in a Redis set shared by every API node and the reaper.
type RedisLedger struct {
	client *redis.Client
	key    string
}

// NewRedisLedger creates a ledger over the default set key.
func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client, key: constants.RedisKeyOrphanedAssets}
}

// Record adds keys to the set. Keys already present are left as they are.
func (ledger *RedisLedger) Record(context context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := ledger.client.SAdd(context, ledger.key, toAny(keys)...).Err(); err != nil {
		return fmt.Errorf("asset: record orphans: %w", err)
	}
	return nil
}

// List returns every recorded key in sorted order.
func (ledger *RedisLedger) List(context context.Context) ([]string, error) {
	keys, err := ledger.client.SMembers(context, ledger.key).Result()
	if err != nil {
		return nil, fmt.Errorf("asset: list orphans: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Forget removes keys from the set. Unknown keys are ignored.
func (ledger *RedisLedger) Forget(context context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := ledger.client.SRem(context, ledger.key, toAny(keys)...).Err(); err != nil {
		return fmt.Errorf("asset: forget orphans: %w", err)
	}
	return nil
}

func toAny(keys []string) []any {
	return slice.Map(keys, func(key string) any { return key })
}

// # In-process

// MemoryLedger is the fallback when Redis is not configured. Entries do not
// survive a restart, so every recorded key is also logged at ERROR.
type MemoryLedger struct {
	logger *slog.Logger

	mu   sync.Mutex
	keys map[string]struct{}
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger(logger *slog.Logger) *MemoryLedger {
	return &MemoryLedger{logger: logger, keys: make(map[string]struct{})}
}

// Record adds keys to the ledger and logs each one, since they are lost on restart.
func (ledger *MemoryLedger) Record(context context.Context, keys ...string) error {
	ledger.mu.Lock()
	for _, key := range keys {
		ledger.keys[key] = struct{}{}
	}
	ledger.mu.Unlock()

	for _, key := range keys {
		ledger.logger.ErrorContext(context, "asset_orphaned_unpersisted", slog.String("key", key))
	}
	return nil
}

// List returns every recorded key in sorted order.
func (ledger *MemoryLedger) List(context context.Context) ([]string, error) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()

	keys := make([]string, 0, len(ledger.keys))
	for key := range ledger.keys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Forget removes keys. Unknown keys are ignored.
func (ledger *MemoryLedger) Forget(context context.Context, keys ...string) error {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()

	for _, key := range keys {
		delete(ledger.keys, key)
	}
	return nil
}

// OrphanRecorder counts keys written to the ledger.
type OrphanRecorder interface {
	OrphanRecorded()
}

// ReportOrphans logs every key at ERROR and records it in ledger.
// A ledger failure is logged as well; the keys then exist only in the logs.
func ReportOrphans(context context.Context, ledger OrphanLedger, recorder OrphanRecorder, logger *slog.Logger, reason string, keys ...string) {
	if len(keys) == 0 {
		return
	}

	for _, key := range keys {
		logger.ErrorContext(context, "asset_orphaned", slog.String("key", key), slog.String("reason", reason))
		if recorder != nil {
			recorder.OrphanRecorded()
		}
	}

	if ledger == nil {
		return
	}
	if err := ledger.Record(context, keys...); err != nil {
		logger.ErrorContext(context, "orphan_ledger_write_failed",
			slog.Any("keys", keys),
			slog.Any("error", err),
		)
	}
}
