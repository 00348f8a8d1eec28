package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"boutique/internal/amqp"
	"boutique/internal/backup"
	"boutique/internal/core"
	"boutique/internal/log"
	"boutique/internal/mirror/memory"
	"boutique/internal/storage"
)

func setup(t *testing.T) (*storage.Repository, *backup.Manager, *memory.Store) {
	t.Helper()
	dir := t.TempDir()
	repo, err := storage.Open(filepath.Join(dir, "live.db"))
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	mgr, err := backup.NewManager(repo, repo.Path(), filepath.Join(dir, "snapshots"), log.New(log.DefaultConfig()))
	if err != nil {
		t.Fatalf("backup.NewManager() error = %v", err)
	}
	return repo, mgr, memory.New()
}

func insertPurchase(t *testing.T, repo *storage.Repository) int64 {
	t.Helper()
	d, _ := core.ParseDate("2024-03-10")
	id, err := repo.InsertPurchase(context.Background(), core.PurchaseRecord{
		Product:       "Milk",
		Quantity:      10,
		PurchasePrice: core.Money{Cents: 100},
		SalePrice:     core.Money{Cents: 150},
		Date:          d,
	})
	if err != nil {
		t.Fatalf("InsertPurchase() error = %v", err)
	}
	return id
}

func TestHandleSnapshotRequest(t *testing.T) {
	repo, mgr, _ := setup(t)
	insertPurchase(t, repo)

	w := NewBackupWorker(repo, mgr, nil, time.Hour, 10)
	msg := amqp.NewSnapshotRequestMessage("purchase_created", 1)
	if err := w.HandleSnapshotRequest(context.Background(), msg); err != nil {
		t.Fatalf("HandleSnapshotRequest() error = %v", err)
	}

	list, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("snapshots = %d, want 1", len(list))
	}
}

func TestSnapshotRequestsCoalesce(t *testing.T) {
	repo, mgr, _ := setup(t)
	insertPurchase(t, repo)

	w := NewBackupWorker(repo, mgr, nil, time.Hour, 10)
	for i := 0; i < 5; i++ {
		msg := amqp.NewSnapshotRequestMessage("purchase_created", int64(i))
		if err := w.HandleSnapshotRequest(context.Background(), msg); err != nil {
			t.Fatalf("HandleSnapshotRequest() error = %v", err)
		}
	}

	list, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("snapshots = %d after burst, want 1", len(list))
	}
}

func TestHandleSyncMessage(t *testing.T) {
	repo, mgr, store := setup(t)
	id := insertPurchase(t, repo)

	w := NewBackupWorker(repo, mgr, store, time.Hour, 10)
	if err := w.HandleSyncMessage(context.Background(), amqp.NewLedgerSyncMessage(id)); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	items := store.Items()
	if len(items) != 1 || items[0].Product != "Milk" {
		t.Errorf("mirrored items = %+v", items)
	}
}

func TestHandleSyncMessageMissingRecord(t *testing.T) {
	repo, mgr, store := setup(t)
	w := NewBackupWorker(repo, mgr, store, time.Hour, 10)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewLedgerSyncMessage(999)); err == nil {
		t.Error("HandleSyncMessage() = nil for absent record, want error")
	}
}

func TestPushMonth(t *testing.T) {
	repo, mgr, store := setup(t)
	insertPurchase(t, repo)

	w := NewBackupWorker(repo, mgr, store, time.Hour, 10)
	if err := w.PushMonth(context.Background(), 2024, time.March); err != nil {
		t.Fatalf("PushMonth() error = %v", err)
	}

	month := store.Month("2024-03")
	if len(month) != 1 || month[0].Product != "Milk" {
		t.Errorf("pushed month = %+v", month)
	}

	if got := store.Month("2024-04"); len(got) != 0 {
		t.Errorf("adjacent month = %+v, want empty", got)
	}
}

func TestPushMonthNoMirror(t *testing.T) {
	repo, mgr, _ := setup(t)
	w := NewBackupWorker(repo, mgr, nil, time.Hour, 10)
	if err := w.PushMonth(context.Background(), 2024, time.March); err != nil {
		t.Errorf("PushMonth() with nil mirror error = %v, want nil", err)
	}
}

func TestHandleSyncMessageNoMirror(t *testing.T) {
	repo, mgr, _ := setup(t)
	id := insertPurchase(t, repo)

	w := NewBackupWorker(repo, mgr, nil, time.Hour, 10)
	if err := w.HandleSyncMessage(context.Background(), amqp.NewLedgerSyncMessage(id)); err != nil {
		t.Errorf("HandleSyncMessage() with nil mirror error = %v, want nil", err)
	}
}
