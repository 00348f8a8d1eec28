package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"boutique/internal/backup"
	"boutique/internal/core"
	"boutique/internal/log"
	"boutique/internal/storage"
)

// Publisher is the slice of the AMQP client the service needs. Nil means
// messaging is disabled and mutations stay local.
type Publisher interface {
	PublishSnapshotRequest(ctx context.Context, reason string, recordID int64) error
	PublishLedgerSync(ctx context.Context, id int64) error
}

// LedgerService orchestrates ledger mutations across SQLite and AMQP.
// Writes land locally first; messaging failures are logged and never
// fail the request.
type LedgerService struct {
	storage   *storage.Repository
	publisher Publisher
}

func NewLedgerService(repo *storage.Repository, publisher Publisher) *LedgerService {
	return &LedgerService{
		storage:   repo,
		publisher: publisher,
	}
}

// OpenWithRecovery opens the database, and on an unavailable store makes
// one attempt to restore the latest snapshot before reopening. A second
// failure is terminal.
func OpenWithRecovery(dbPath, snapshotDir string, logger *log.Logger) (*storage.Repository, error) {
	repo, err := storage.Open(dbPath)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, storage.ErrStoreUnavailable) {
		return nil, err
	}

	logger.Warn("Store unavailable, attempting restore from latest snapshot",
		log.FieldError, err.Error())

	mgr, mgrErr := backup.NewManager(nil, dbPath, snapshotDir, logger)
	if mgrErr != nil {
		return nil, fmt.Errorf("open snapshot manager for recovery: %w", mgrErr)
	}
	snap, restoreErr := mgr.RestoreLatest()
	if restoreErr != nil {
		return nil, fmt.Errorf("restore after open failure: %w (open error: %v)", restoreErr, err)
	}

	logger.Info("Restored snapshot, reopening store", log.FieldSnapshotID, snap.ID)
	return storage.Open(dbPath)
}

// CreatePurchase saves a purchase locally, then asks the worker to
// snapshot and mirror it.
func (s *LedgerService) CreatePurchase(ctx context.Context, rec core.PurchaseRecord) (int64, error) {
	id, err := s.storage.InsertPurchase(ctx, rec)
	if err != nil {
		return 0, fmt.Errorf("save purchase: %w", err)
	}

	s.publishSnapshotRequest(ctx, "purchase_created", id)
	s.publishLedgerSync(ctx, id)

	return id, nil
}

func (s *LedgerService) UpdatePurchase(ctx context.Context, id int64, rec core.PurchaseRecord) error {
	if err := s.storage.UpdatePurchase(ctx, id, rec); err != nil {
		return err
	}

	s.publishSnapshotRequest(ctx, "purchase_updated", id)
	s.publishLedgerSync(ctx, id)

	return nil
}

func (s *LedgerService) DeletePurchase(ctx context.Context, id int64) error {
	if err := s.storage.DeletePurchase(ctx, id); err != nil {
		return err
	}

	s.publishSnapshotRequest(ctx, "purchase_deleted", id)

	return nil
}

func (s *LedgerService) GetPurchase(ctx context.Context, id int64) (core.PurchaseRecord, error) {
	return s.storage.GetPurchase(ctx, id)
}

func (s *LedgerService) ListPurchases(ctx context.Context, f storage.Filter) ([]core.PurchaseRecord, error) {
	return s.storage.ListPurchases(ctx, f)
}

func (s *LedgerService) AddCashEntry(ctx context.Context, e core.CashEntry) (int64, error) {
	id, err := s.storage.InsertCashEntry(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save cash entry: %w", err)
	}
	s.publishSnapshotRequest(ctx, "cash_entry_created", id)
	return id, nil
}

func (s *LedgerService) AddCredit(ctx context.Context, c core.Credit) (int64, error) {
	id, err := s.storage.InsertCredit(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("save credit: %w", err)
	}
	s.publishSnapshotRequest(ctx, "credit_created", id)
	return id, nil
}

func (s *LedgerService) AddExpense(ctx context.Context, e core.OverheadExpense) (int64, error) {
	id, err := s.storage.InsertExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}
	s.publishSnapshotRequest(ctx, "expense_created", id)
	return id, nil
}

func (s *LedgerService) AddMovement(ctx context.Context, m core.InventoryMovement) (int64, error) {
	id, err := s.storage.InsertMovement(ctx, m)
	if err != nil {
		return 0, fmt.Errorf("save movement: %w", err)
	}
	s.publishSnapshotRequest(ctx, "movement_created", id)
	return id, nil
}

func (s *LedgerService) publishSnapshotRequest(ctx context.Context, reason string, id int64) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Messaging disabled, skipping snapshot request", "reason", reason)
		return
	}
	if err := s.publisher.PublishSnapshotRequest(ctx, reason, id); err != nil {
		// Local write already succeeded; the interval scheduler will
		// cover the missed snapshot.
		slog.ErrorContext(ctx, "Failed to publish snapshot request",
			"reason", reason, "id", id, "error", err)
	}
}

func (s *LedgerService) publishLedgerSync(ctx context.Context, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger sync message",
			"id", id, "error", err)
	}
}

// Close closes the storage handle. The AMQP client is owned by main and
// closed there.
func (s *LedgerService) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
