package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"boutique/internal/amqp"
	"boutique/internal/backup"
	"boutique/internal/core"
	"boutique/internal/mirror"
	"boutique/internal/storage"
)

// BackupWorker takes database snapshots on request and on an interval,
// and mirrors ledger rows to the configured mirror backend.
type BackupWorker struct {
	storage   *storage.Repository
	snapshots *backup.Manager
	mirror    mirror.LedgerMirror
	interval  time.Duration
	keep      int

	mu           sync.Mutex
	lastSnapshot time.Time
}

// minSnapshotGap coalesces bursts of snapshot requests: a rapid series of
// ledger writes produces one snapshot, not one per write.
const minSnapshotGap = time.Minute

func NewBackupWorker(repo *storage.Repository, snapshots *backup.Manager, m mirror.LedgerMirror, interval time.Duration, keep int) *BackupWorker {
	return &BackupWorker{
		storage:   repo,
		snapshots: snapshots,
		mirror:    m,
		interval:  interval,
		keep:      keep,
	}
}

// HandleSnapshotRequest processes one snapshot request from AMQP.
func (w *BackupWorker) HandleSnapshotRequest(ctx context.Context, msg *amqp.SnapshotRequestMessage) error {
	w.mu.Lock()
	if time.Since(w.lastSnapshot) < minSnapshotGap {
		w.mu.Unlock()
		slog.DebugContext(ctx, "Snapshot request coalesced",
			"reason", msg.Reason,
			"record_id", msg.RecordID)
		return nil
	}
	w.lastSnapshot = time.Now()
	w.mu.Unlock()

	snap, err := w.snapshots.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot for %s: %w", msg.Reason, err)
	}

	slog.InfoContext(ctx, "Snapshot taken on request",
		"reason", msg.Reason,
		"record_id", msg.RecordID,
		"snapshot_id", snap.ID)

	w.prune(ctx)
	return nil
}

// HandleSyncMessage mirrors one purchase row. The worker reads the
// current row by id, so out-of-order deliveries are harmless.
func (w *BackupWorker) HandleSyncMessage(ctx context.Context, msg *amqp.LedgerSyncMessage) error {
	if w.mirror == nil {
		slog.WarnContext(ctx, "No mirror configured, skipping sync", "id", msg.ID)
		return nil
	}

	rec, err := w.storage.GetPurchase(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get purchase %d: %w", msg.ID, err)
	}

	ref, err := w.mirror.Append(ctx, rec)
	if err != nil {
		return fmt.Errorf("mirror purchase %d: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Purchase mirrored", "id", msg.ID, "row_ref", ref)
	return nil
}

// PushMonth rewrites one whole month on the mirror from the ledger, so
// the mirror converges even when individual sync messages were lost.
// No-op without a configured mirror.
func (w *BackupWorker) PushMonth(ctx context.Context, year int, month time.Month) error {
	if w.mirror == nil {
		return nil
	}

	start := core.NewDate(year, int(month), 1)
	end := core.Date{Time: start.AddDate(0, 1, -1)}
	records, err := w.storage.ListPurchases(ctx, storage.Filter{Start: start, End: end, Ascending: true})
	if err != nil {
		return fmt.Errorf("list purchases for month push: %w", err)
	}

	key := start.MonthKey()
	if err := w.mirror.ReplaceMonth(ctx, key, records); err != nil {
		return fmt.Errorf("push month %s: %w", key, err)
	}

	slog.InfoContext(ctx, "Month pushed to mirror", "month", key, "rows", len(records))
	return nil
}

// RunScheduler takes a snapshot every interval regardless of traffic, so
// quiet days still end up in the snapshot history. Blocks until the
// context is cancelled.
func (w *BackupWorker) RunScheduler(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Snapshot scheduler started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Snapshot scheduler stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			snap, err := w.snapshots.Snapshot(ctx)
			if err != nil {
				// Backups must never take the worker down; log and wait
				// for the next tick.
				slog.ErrorContext(ctx, "Scheduled snapshot failed", "error", err)
				continue
			}
			w.mu.Lock()
			w.lastSnapshot = time.Now()
			w.mu.Unlock()

			slog.InfoContext(ctx, "Scheduled snapshot taken", "snapshot_id", snap.ID)
			w.prune(ctx)

			now := time.Now()
			if err := w.PushMonth(ctx, now.Year(), now.Month()); err != nil {
				slog.ErrorContext(ctx, "Scheduled month push failed", "error", err)
			}
		}
	}
}

func (w *BackupWorker) prune(ctx context.Context) {
	if w.keep < 1 {
		return
	}
	if removed, err := w.snapshots.Prune(w.keep); err != nil {
		slog.ErrorContext(ctx, "Snapshot prune failed", "error", err)
	} else if removed > 0 {
		slog.InfoContext(ctx, "Old snapshots pruned", "removed", removed)
	}
}
