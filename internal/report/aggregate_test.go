package report

import (
	"testing"

	"boutique/internal/core"
)

func rec(date core.Date, product, category, supplier string, qty, purchase, sale int64) core.PurchaseRecord {
	return core.PurchaseRecord{
		Product:       product,
		Category:      category,
		Supplier:      supplier,
		Quantity:      qty,
		PurchasePrice: core.Money{Cents: purchase},
		SalePrice:     core.Money{Cents: sale},
		Date:          date,
	}
}

func TestComputeTotals(t *testing.T) {
	records := []core.PurchaseRecord{
		rec(core.NewDate(2024, 1, 1), "Milk", "Dairy", "Delice", 10, 100, 150),
		rec(core.NewDate(2024, 1, 2), "Milk", "Dairy", "Delice", 5, 100, 150),
	}
	got := ComputeTotals(records)
	if got.TotalPurchase.Cents != 1500 {
		t.Fatalf("total purchase expected 1500, got %d", got.TotalPurchase.Cents)
	}
	if got.TotalSale.Cents != 2250 {
		t.Fatalf("total sale expected 2250, got %d", got.TotalSale.Cents)
	}
	if got.TotalGain.Cents != 750 {
		t.Fatalf("total gain expected 750, got %d", got.TotalGain.Cents)
	}
	if got.TotalQuantity != 15 {
		t.Fatalf("total quantity expected 15, got %d", got.TotalQuantity)
	}
	if got.MarginPercent != 50.0 {
		t.Fatalf("margin expected 50.0, got %f", got.MarginPercent)
	}
}

func TestComputeTotalsEmpty(t *testing.T) {
	got := ComputeTotals(nil)
	if got.TotalPurchase.Cents != 0 || got.TotalSale.Cents != 0 || got.TotalGain.Cents != 0 {
		t.Fatalf("expected zeroed totals, got %+v", got)
	}
	if got.MarginPercent != 0 {
		t.Fatalf("margin on empty input must be 0, got %f", got.MarginPercent)
	}
}

func TestGroupByOrdering(t *testing.T) {
	records := []core.PurchaseRecord{
		rec(core.NewDate(2024, 1, 1), "a", "Cake", "", 1, 100, 300),
		rec(core.NewDate(2024, 1, 1), "b", "Dairy", "", 1, 100, 300),
		rec(core.NewDate(2024, 1, 2), "c", "Bread", "", 1, 100, 500),
	}
	got := GroupBy(records, ByCategory, MetricGain)
	if len(got) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(got))
	}
	// Bread gains 400; Cake and Dairy tie at 200, lexical order breaks it.
	if got[0].Key != "Bread" || got[1].Key != "Cake" || got[2].Key != "Dairy" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestGroupByEmpty(t *testing.T) {
	if got := GroupBy(nil, ByCategory, MetricSale); len(got) != 0 {
		t.Fatalf("expected empty grouping, got %v", got)
	}
}

func TestGroupByMonth(t *testing.T) {
	records := []core.PurchaseRecord{
		rec(core.NewDate(2024, 1, 15), "a", "", "", 1, 0, 100),
		rec(core.NewDate(2024, 2, 1), "b", "", "", 1, 0, 200),
		rec(core.NewDate(2024, 1, 31), "c", "", "", 1, 0, 50),
	}
	got := GroupBy(records, ByMonth, MetricSale)
	if len(got) != 2 {
		t.Fatalf("expected 2 month buckets, got %d", len(got))
	}
	if got[0].Key != "2024-02" || got[0].Total.Cents != 200 {
		t.Fatalf("unexpected first bucket: %+v", got[0])
	}
	if got[1].Key != "2024-01" || got[1].Total.Cents != 150 {
		t.Fatalf("unexpected second bucket: %+v", got[1])
	}
}

func TestDailySeriesZeroFill(t *testing.T) {
	records := []core.PurchaseRecord{
		rec(core.NewDate(2024, 1, 1), "a", "", "", 1, 0, 100),
		rec(core.NewDate(2024, 1, 3), "b", "", "", 1, 0, 300),
	}
	start, end := core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 5)
	got := DailySeries(records, start, end, MetricSale)
	if len(got) != 5 {
		t.Fatalf("expected 5 days inclusive, got %d", len(got))
	}
	wantCents := []int64{100, 0, 300, 0, 0}
	for i, w := range wantCents {
		if got[i].Total.Cents != w {
			t.Fatalf("day %d expected %d, got %d", i, w, got[i].Total.Cents)
		}
	}
	if got[0].Date.String() != "2024-01-01" || got[4].Date.String() != "2024-01-05" {
		t.Fatalf("series bounds wrong: %v .. %v", got[0].Date, got[4].Date)
	}
}

func TestDailySeriesAcrossMonthBoundary(t *testing.T) {
	got := DailySeries(nil, core.NewDate(2024, 2, 27), core.NewDate(2024, 3, 2), MetricSale)
	if len(got) != 5 { // leap year: 27, 28, 29 Feb, 1, 2 Mar
		t.Fatalf("expected 5 days, got %d", len(got))
	}
}

func TestDailySeriesInvertedRange(t *testing.T) {
	if got := DailySeries(nil, core.NewDate(2024, 1, 5), core.NewDate(2024, 1, 1), MetricSale); got != nil {
		t.Fatalf("expected empty series, got %v", got)
	}
}

func TestWeekOverWeek(t *testing.T) {
	c := WeekOverWeek(core.Money{Cents: 15000}, core.Money{Cents: 10000})
	if c.Delta.Cents != 5000 || !c.Applicable || c.Percent != 50.0 {
		t.Fatalf("unexpected change: %+v", c)
	}

	// Zero previous: delta carries, percent is the not-applicable sentinel.
	c = WeekOverWeek(core.Money{Cents: 10000}, core.Money{})
	if c.Delta.Cents != 10000 {
		t.Fatalf("delta expected 10000, got %d", c.Delta.Cents)
	}
	if c.Applicable {
		t.Fatal("percent must be not applicable when previous is zero")
	}

	c = WeekOverWeek(core.Money{Cents: 5000}, core.Money{Cents: 10000})
	if c.Delta.Cents != -5000 || c.Percent != -50.0 {
		t.Fatalf("unexpected negative change: %+v", c)
	}
}
