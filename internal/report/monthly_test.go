package report

import (
	"testing"

	"boutique/internal/core"
)

func TestMonthlySummaries(t *testing.T) {
	records := []core.PurchaseRecord{
		rec(core.NewDate(2024, 1, 5), "a", "", "", 10, 100, 150),  // gross +500
		rec(core.NewDate(2024, 2, 5), "b", "", "", 10, 100, 200),  // gross +1000
	}
	finance := []FinanceDay{
		{Date: core.NewDate(2024, 1, 5), Cash: core.Money{Cents: 2000}, Expense: core.Money{Cents: 500}},
		{Date: core.NewDate(2024, 2, 5), Cash: core.Money{Cents: 1000}, Credit: core.Money{Cents: 500}},
	}

	got := MonthlySummaries(records, finance)
	if len(got) != 2 {
		t.Fatalf("expected 2 months, got %d", len(got))
	}

	jan := got[0]
	if jan.Month != "2024-01" {
		t.Fatalf("expected ascending month order, got %q first", jan.Month)
	}
	if jan.GrossGain.Cents != 500 {
		t.Fatalf("jan gross gain expected 500, got %d", jan.GrossGain.Cents)
	}
	if jan.NetGain.Cents != 1500 { // 2000 cash - 500 expenses
		t.Fatalf("jan net gain expected 1500, got %d", jan.NetGain.Cents)
	}
	if jan.GrossEvolution.Applicable {
		t.Fatal("first month has no applicable evolution")
	}

	feb := got[1]
	if feb.GrossGain.Cents != 1000 {
		t.Fatalf("feb gross gain expected 1000, got %d", feb.GrossGain.Cents)
	}
	if feb.NetGain.Cents != 1500 { // 1000 cash + 500 credit
		t.Fatalf("feb net gain expected 1500, got %d", feb.NetGain.Cents)
	}
	if !feb.GrossEvolution.Applicable || feb.GrossEvolution.Percent != 100.0 {
		t.Fatalf("feb gross evolution expected +100%%, got %+v", feb.GrossEvolution)
	}
	if !feb.NetEvolution.Applicable || feb.NetEvolution.Percent != 0.0 {
		t.Fatalf("feb net evolution expected 0%%, got %+v", feb.NetEvolution)
	}
}

func TestMonthlySummariesEmpty(t *testing.T) {
	if got := MonthlySummaries(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty summary, got %v", got)
	}
}

func TestMonthlySummariesFinanceOnlyMonth(t *testing.T) {
	finance := []FinanceDay{
		{Date: core.NewDate(2024, 3, 1), Cash: core.Money{Cents: 700}},
	}
	got := MonthlySummaries(nil, finance)
	if len(got) != 1 {
		t.Fatalf("expected 1 month, got %d", len(got))
	}
	if got[0].GrossGain.Cents != 0 || got[0].NetGain.Cents != 700 {
		t.Fatalf("unexpected summary: %+v", got[0])
	}
}
