// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset

import (
	"context"
	"log/slog"
	"time"
)

// ReapRecorder counts reaped keys.
type ReapRecorder interface {
	OrphanReaped()
}

// Reaper retries deletion of every key in an [OrphanLedger].
type Reaper struct {
	store    Store
	ledger   OrphanLedger
	logger   *slog.Logger
	recorder ReapRecorder
	timeout  time.Duration
}

// NewReaper builds a reaper. recorder may be nil. timeout bounds each delete.
func NewReaper(store Store, ledger OrphanLedger, logger *slog.Logger, recorder ReapRecorder, timeout time.Duration) *Reaper {
	return &Reaper{store: store, ledger: ledger, logger: logger, recorder: recorder, timeout: timeout}
}

// Once makes a single pass over the ledger and returns how many keys were cleaned up.
//
// A key leaves the ledger only once the store confirms the delete. Failed keys
// stay for the next pass.
func (reaper *Reaper) Once(ctx context.Context) (int, error) {
	keys, err := reaper.ledger.List(ctx)
	if err != nil {
		return 0, err
	}

	reaped := 0
	for _, key := range keys {
		if ctx.Err() != nil {
			return reaped, ctx.Err()
		}

		deleteCtx, cancel := context.WithTimeout(ctx, reaper.timeout)
		err := reaper.store.Delete(deleteCtx, key)
		cancel()

		if err != nil {
			reaper.logger.WarnContext(ctx, "orphan_reap_failed", slog.String("key", key), slog.Any("error", err))
			continue
		}

		if err := reaper.ledger.Forget(ctx, key); err != nil {
			reaper.logger.WarnContext(ctx, "orphan_forget_failed", slog.String("key", key), slog.Any("error", err))
			continue
		}

		reaped++
		if reaper.recorder != nil {
			reaper.recorder.OrphanReaped()
		}
	}

	if len(keys) > 0 {
		reaper.logger.InfoContext(ctx, "orphan_reap_finished",
			slog.Int("pending", len(keys)),
			slog.Int("reaped", reaped),
		)
	}

	return reaped, nil
}

// Run calls [Reaper.Once] every interval until ctx is cancelled.
func (reaper *Reaper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := reaper.Once(ctx); err != nil && ctx.Err() == nil {
				reaper.logger.ErrorContext(ctx, "orphan_reap_pass_failed", slog.Any("error", err))
			}
		case <-ctx.Done():
			return
		}
	}
}
