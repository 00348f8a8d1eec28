package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"boutique/internal/core"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q) error = %v", s, err)
	}
	return d
}

func testPurchase(t *testing.T, date string) core.PurchaseRecord {
	t.Helper()
	return core.PurchaseRecord{
		Product:       "Milk",
		Category:      "Produits Laitiers",
		Subcategory:   "Frais",
		Supplier:      "Central",
		Quantity:      10,
		PurchasePrice: core.Money{Cents: 100},
		SalePrice:     core.Money{Cents: 150},
		Date:          mustDate(t, date),
	}
}

func TestInsertAndGetPurchase(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	id, err := repo.InsertPurchase(ctx, testPurchase(t, "2024-03-10"))
	if err != nil {
		t.Fatalf("InsertPurchase() error = %v", err)
	}
	if id == 0 {
		t.Fatal("InsertPurchase() returned id 0")
	}

	got, err := repo.GetPurchase(ctx, id)
	if err != nil {
		t.Fatalf("GetPurchase() error = %v", err)
	}
	if got.Product != "Milk" || got.Quantity != 10 {
		t.Errorf("GetPurchase() = %+v", got)
	}
	if got.PurchasePrice.Cents != 100 || got.SalePrice.Cents != 150 {
		t.Errorf("prices = %d/%d, want 100/150", got.PurchasePrice.Cents, got.SalePrice.Cents)
	}
	if got.Date.String() != "2024-03-10" {
		t.Errorf("date = %s, want 2024-03-10", got.Date)
	}
}

func TestInsertPurchaseRejectsInvalid(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	rec := testPurchase(t, "2024-03-10")
	rec.Product = "   "
	if _, err := repo.InsertPurchase(ctx, rec); !errors.Is(err, core.ErrEmptyProduct) {
		t.Errorf("blank product error = %v, want ErrEmptyProduct", err)
	}

	rec = testPurchase(t, "2024-03-10")
	rec.Quantity = 0
	if _, err := repo.InsertPurchase(ctx, rec); !errors.Is(err, core.ErrInvalidQuantity) {
		t.Errorf("zero quantity error = %v, want ErrInvalidQuantity", err)
	}

	n, err := repo.CountPurchases(ctx)
	if err != nil {
		t.Fatalf("CountPurchases() error = %v", err)
	}
	if n != 0 {
		t.Errorf("CountPurchases() = %d after rejected inserts, want 0", n)
	}
}

func TestUpdatePurchase(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	id, err := repo.InsertPurchase(ctx, testPurchase(t, "2024-03-10"))
	if err != nil {
		t.Fatalf("InsertPurchase() error = %v", err)
	}

	updated := testPurchase(t, "2024-03-11")
	updated.Quantity = 25
	updated.SalePrice = core.Money{Cents: 200}
	if err := repo.UpdatePurchase(ctx, id, updated); err != nil {
		t.Fatalf("UpdatePurchase() error = %v", err)
	}

	got, err := repo.GetPurchase(ctx, id)
	if err != nil {
		t.Fatalf("GetPurchase() error = %v", err)
	}
	if got.Quantity != 25 || got.SalePrice.Cents != 200 || got.Date.String() != "2024-03-11" {
		t.Errorf("after update got %+v", got)
	}

	if err := repo.UpdatePurchase(ctx, id+999, updated); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("update of absent id error = %v, want ErrNotFound", err)
	}
}

func TestDeletePurchase(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	id, err := repo.InsertPurchase(ctx, testPurchase(t, "2024-03-10"))
	if err != nil {
		t.Fatalf("InsertPurchase() error = %v", err)
	}

	if err := repo.DeletePurchase(ctx, id+1); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("delete of absent id error = %v, want ErrNotFound", err)
	}
	if n, _ := repo.CountPurchases(ctx); n != 1 {
		t.Errorf("count = %d after failed delete, want 1", n)
	}

	if err := repo.DeletePurchase(ctx, id); err != nil {
		t.Fatalf("DeletePurchase() error = %v", err)
	}
	if _, err := repo.GetPurchase(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get after delete error = %v, want ErrNotFound", err)
	}
}

func TestListPurchasesFilters(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	seed := []struct {
		product, category, date string
	}{
		{"Milk", "Produits Laitiers", "2024-03-01"},
		{"Butter", "Produits Laitiers", "2024-03-05"},
		{"Chicken", "Volaille", "2024-03-05"},
		{"Chocolate Milk", "Liquides", "2024-04-01"},
	}
	for _, s := range seed {
		rec := testPurchase(t, s.date)
		rec.Product = s.product
		rec.Category = s.category
		if _, err := repo.InsertPurchase(ctx, rec); err != nil {
			t.Fatalf("seed %q: %v", s.product, err)
		}
	}

	t.Run("date range inclusive", func(t *testing.T) {
		got, err := repo.ListPurchases(ctx, Filter{
			Start: mustDate(t, "2024-03-01"),
			End:   mustDate(t, "2024-03-05"),
		})
		if err != nil {
			t.Fatalf("ListPurchases() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3", len(got))
		}
		// default order is date descending
		if got[0].Date.String() != "2024-03-05" || got[2].Date.String() != "2024-03-01" {
			t.Errorf("order = %s .. %s, want descending", got[0].Date, got[2].Date)
		}
	})

	t.Run("category equality", func(t *testing.T) {
		got, err := repo.ListPurchases(ctx, Filter{Category: "Volaille"})
		if err != nil {
			t.Fatalf("ListPurchases() error = %v", err)
		}
		if len(got) != 1 || got[0].Product != "Chicken" {
			t.Errorf("got %+v, want only Chicken", got)
		}
	})

	t.Run("case-insensitive substring search", func(t *testing.T) {
		got, err := repo.ListPurchases(ctx, Filter{Search: "milk"})
		if err != nil {
			t.Fatalf("ListPurchases() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2 (Milk and Chocolate Milk)", len(got))
		}
	})

	t.Run("ascending order", func(t *testing.T) {
		got, err := repo.ListPurchases(ctx, Filter{Ascending: true})
		if err != nil {
			t.Fatalf("ListPurchases() error = %v", err)
		}
		if got[0].Date.String() != "2024-03-01" || got[len(got)-1].Date.String() != "2024-04-01" {
			t.Errorf("order = %s .. %s, want ascending", got[0].Date, got[len(got)-1].Date)
		}
	})
}

func TestFinanceTables(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	if _, err := repo.InsertCashEntry(ctx, core.CashEntry{
		Amount: core.Money{Cents: 30000},
		Date:   mustDate(t, "2024-03-10"),
		Period: core.PeriodMorning,
	}); err != nil {
		t.Fatalf("InsertCashEntry() error = %v", err)
	}
	if _, err := repo.InsertCashEntry(ctx, core.CashEntry{
		Amount: core.Money{Cents: 20000},
		Date:   mustDate(t, "2024-03-10"),
		Period: core.PeriodNight,
	}); err != nil {
		t.Fatalf("InsertCashEntry() error = %v", err)
	}
	if _, err := repo.InsertCredit(ctx, core.Credit{
		Amount: core.Money{Cents: 5000},
		Date:   mustDate(t, "2024-03-11"),
		Note:   "regular customer",
	}); err != nil {
		t.Fatalf("InsertCredit() error = %v", err)
	}
	if _, err := repo.InsertExpense(ctx, core.OverheadExpense{
		Type:   "Loyer",
		Amount: core.Money{Cents: 40000},
		Date:   mustDate(t, "2024-03-10"),
	}); err != nil {
		t.Fatalf("InsertExpense() error = %v", err)
	}

	days, err := repo.FinanceByDay(ctx, mustDate(t, "2024-03-01"), mustDate(t, "2024-03-31"))
	if err != nil {
		t.Fatalf("FinanceByDay() error = %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("len(days) = %d, want 2", len(days))
	}
	if days[0].Date.String() != "2024-03-10" || days[0].Cash.Cents != 50000 || days[0].Expense.Cents != 40000 {
		t.Errorf("day[0] = %+v", days[0])
	}
	if days[1].Date.String() != "2024-03-11" || days[1].Credit.Cents != 5000 {
		t.Errorf("day[1] = %+v", days[1])
	}
}

func TestMovementsRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	entries := []core.InventoryMovement{
		{Product: "Flour", Depot: "Main", Direction: core.EntryMovement, Quantity: 50, Price: core.Money{Cents: 90}, Date: mustDate(t, "2024-03-01")},
		{Product: "Flour", Depot: "Main", Direction: core.ExitMovement, Quantity: 20, Price: core.Money{Cents: 90}, Date: mustDate(t, "2024-03-04")},
	}
	for _, m := range entries {
		if _, err := repo.InsertMovement(ctx, m); err != nil {
			t.Fatalf("InsertMovement(%+v) error = %v", m, err)
		}
	}

	got, err := repo.ListMovements(ctx)
	if err != nil {
		t.Fatalf("ListMovements() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Direction != core.EntryMovement || got[1].Direction != core.ExitMovement {
		t.Errorf("order = %s, %s; want entry first", got[0].Direction, got[1].Direction)
	}
}
