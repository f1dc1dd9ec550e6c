package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"toybudget/internal/amqp"
	"toybudget/internal/source"
)

// SnapshotStore persists the fetched sheet snapshot for the dashboard to
// read from without hitting the Sheets API.
type SnapshotStore interface {
	ReplaceSnapshot(ctx context.Context, snap source.Snapshot) error
	LastSyncedAt(ctx context.Context) (time.Time, error)
}

// RefreshConsumer receives refresh requests, typically over AMQP.
type RefreshConsumer interface {
	ConsumeRefresh(ctx context.Context, handler func(*amqp.RefreshMessage) error) error
}

// SnapshotWorker pulls the purchase sheet and replaces the local snapshot.
// It reacts to refresh messages and also syncs on a fixed interval so the
// snapshot never goes stale even when no one presses refresh.
type SnapshotWorker struct {
	sheet    source.TransactionSource
	store    SnapshotStore
	consumer RefreshConsumer
	interval time.Duration
}

func NewSnapshotWorker(sheet source.TransactionSource, store SnapshotStore, consumer RefreshConsumer, interval time.Duration) *SnapshotWorker {
	return &SnapshotWorker{
		sheet:    sheet,
		store:    store,
		consumer: consumer,
		interval: interval,
	}
}

// SyncOnce fetches the sheet and replaces the stored snapshot.
func (w *SnapshotWorker) SyncOnce(ctx context.Context, reason string) error {
	started := time.Now()

	snap, err := w.sheet.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("fetch sheet snapshot: %w", err)
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}

	if err := w.store.ReplaceSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot sync completed",
		"reason", reason,
		"rows", len(snap.Rows),
		"issues", len(snap.Issues),
		"duration_ms", time.Since(started).Milliseconds())

	return nil
}

// Run blocks until the context is cancelled, serving refresh messages and
// the periodic sync in parallel. An initial sync runs before either loop
// starts so a fresh worker comes up with data.
func (w *SnapshotWorker) Run(ctx context.Context) error {
	if err := w.SyncOnce(ctx, amqp.ReasonStartup); err != nil {
		slog.ErrorContext(ctx, "Startup sync failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if w.consumer != nil {
		g.Go(func() error {
			return w.consumer.ConsumeRefresh(ctx, func(msg *amqp.RefreshMessage) error {
				return w.SyncOnce(ctx, msg.Reason)
			})
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.SyncOnce(ctx, amqp.ReasonScheduled); err != nil {
					slog.ErrorContext(ctx, "Scheduled sync failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}
