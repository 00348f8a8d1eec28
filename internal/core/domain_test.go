package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2024, 1, 1), true},
		{NewDate(2024, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("round trip got %q", d.String())
	}
	if d.MonthKey() != "2024-02" {
		t.Fatalf("month key got %q", d.MonthKey())
	}
	if _, err := ParseDate("29/02/2024"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestPurchaseRecordValidate(t *testing.T) {
	good := PurchaseRecord{
		Product:       "Lait",
		Category:      "Produits Laitiers",
		Subcategory:   "Lait",
		Supplier:      "Delice",
		Quantity:      10,
		PurchasePrice: Money{Cents: 100},
		SalePrice:     Money{Cents: 150},
		Date:          NewDate(2024, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*PurchaseRecord)
		want   error
	}{
		{"blank product", func(r *PurchaseRecord) { r.Product = "  " }, ErrEmptyProduct},
		{"zero quantity", func(r *PurchaseRecord) { r.Quantity = 0 }, ErrInvalidQuantity},
		{"negative price", func(r *PurchaseRecord) { r.SalePrice.Cents = -1 }, ErrNegativePrice},
		{"zero date", func(r *PurchaseRecord) { r.Date = Date{} }, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := good
			tc.mutate(&r)
			if err := r.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	// Zero prices are legal: free items exist.
	free := good
	free.PurchasePrice = Money{}
	free.SalePrice = Money{}
	if err := free.Validate(); err != nil {
		t.Fatalf("zero prices should validate, got %v", err)
	}
}

func TestPurchaseRecordDerived(t *testing.T) {
	r := PurchaseRecord{
		Quantity:      10,
		PurchasePrice: Money{Cents: 100},
		SalePrice:     Money{Cents: 150},
	}
	if got := r.TotalPurchase().Cents; got != 1000 {
		t.Fatalf("total purchase got %d", got)
	}
	if got := r.TotalSale().Cents; got != 1500 {
		t.Fatalf("total sale got %d", got)
	}
	if got := r.Gain().Cents; got != r.TotalSale().Cents-r.TotalPurchase().Cents {
		t.Fatalf("gain got %d", got)
	}
}

func TestMarginWarning(t *testing.T) {
	r := PurchaseRecord{PurchasePrice: Money{Cents: 200}, SalePrice: Money{Cents: 150}}
	if !r.MarginWarning() {
		t.Fatal("expected margin warning when selling under cost")
	}
	r.SalePrice.Cents = 200
	if r.MarginWarning() {
		t.Fatal("no warning expected when sale >= purchase")
	}
}

func TestCashEntryValidate(t *testing.T) {
	good := CashEntry{Amount: Money{Cents: 12345}, Date: NewDate(2024, 3, 1), Period: PeriodMorning}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.Period = "09-12"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	bad = good
	bad.Amount.Cents = 0
	if err := bad.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestOverheadExpenseValidate(t *testing.T) {
	good := OverheadExpense{Type: "Loyer", Amount: Money{Cents: 50000}, Date: NewDate(2024, 3, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.Type = ""
	if err := bad.Validate(); !errors.Is(err, ErrEmptyType) {
		t.Fatalf("expected ErrEmptyType, got %v", err)
	}
}

func TestInventoryMovementValidate(t *testing.T) {
	good := InventoryMovement{
		Product: "Farine", Depot: "Depot 1", Direction: EntryMovement,
		Quantity: 5, Price: Money{Cents: 300}, Date: NewDate(2024, 1, 10),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.Direction = "transfer"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidMovement) {
		t.Fatalf("expected ErrInvalidMovement, got %v", err)
	}
}
