package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"boutique/internal/core"
	"boutique/internal/storage"
)

type fakePublisher struct {
	snapshotReasons []string
	syncIDs         []int64
	fail            bool
}

func (f *fakePublisher) PublishSnapshotRequest(_ context.Context, reason string, _ int64) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.snapshotReasons = append(f.snapshotReasons, reason)
	return nil
}

func (f *fakePublisher) PublishLedgerSync(_ context.Context, id int64) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.syncIDs = append(f.syncIDs, id)
	return nil
}

func newService(t *testing.T, pub Publisher) *LedgerService {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	svc := NewLedgerService(repo, pub)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func purchase(t *testing.T) core.PurchaseRecord {
	t.Helper()
	d, _ := core.ParseDate("2024-03-10")
	return core.PurchaseRecord{
		Product:       "Milk",
		Category:      "Produits Laitiers",
		Quantity:      10,
		PurchasePrice: core.Money{Cents: 100},
		SalePrice:     core.Money{Cents: 150},
		Date:          d,
	}
}

func TestCreatePurchasePublishes(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(t, pub)

	id, err := svc.CreatePurchase(context.Background(), purchase(t))
	if err != nil {
		t.Fatalf("CreatePurchase() error = %v", err)
	}
	if len(pub.snapshotReasons) != 1 || pub.snapshotReasons[0] != "purchase_created" {
		t.Errorf("snapshot reasons = %v", pub.snapshotReasons)
	}
	if len(pub.syncIDs) != 1 || pub.syncIDs[0] != id {
		t.Errorf("sync ids = %v, want [%d]", pub.syncIDs, id)
	}
}

func TestCreatePurchaseSurvivesBrokerFailure(t *testing.T) {
	pub := &fakePublisher{fail: true}
	svc := newService(t, pub)

	id, err := svc.CreatePurchase(context.Background(), purchase(t))
	if err != nil {
		t.Fatalf("CreatePurchase() error = %v, want local save to win", err)
	}

	got, err := svc.GetPurchase(context.Background(), id)
	if err != nil {
		t.Fatalf("GetPurchase() error = %v", err)
	}
	if got.Product != "Milk" {
		t.Errorf("stored record = %+v", got)
	}
}

func TestCreatePurchaseNilPublisher(t *testing.T) {
	svc := newService(t, nil)
	if _, err := svc.CreatePurchase(context.Background(), purchase(t)); err != nil {
		t.Fatalf("CreatePurchase() error = %v", err)
	}
}

func TestDeletePurchaseNotFoundDoesNotPublish(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(t, pub)

	if err := svc.DeletePurchase(context.Background(), 999); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("DeletePurchase() error = %v, want ErrNotFound", err)
	}
	if len(pub.snapshotReasons) != 0 {
		t.Errorf("published %v for failed delete", pub.snapshotReasons)
	}
}

func TestUpdatePurchasePublishes(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(t, pub)

	id, err := svc.CreatePurchase(context.Background(), purchase(t))
	if err != nil {
		t.Fatalf("CreatePurchase() error = %v", err)
	}

	rec := purchase(t)
	rec.Quantity = 3
	if err := svc.UpdatePurchase(context.Background(), id, rec); err != nil {
		t.Fatalf("UpdatePurchase() error = %v", err)
	}
	if len(pub.snapshotReasons) != 2 || pub.snapshotReasons[1] != "purchase_updated" {
		t.Errorf("snapshot reasons = %v", pub.snapshotReasons)
	}
}
