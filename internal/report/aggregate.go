// Package report turns ledger records into reporting views. Every function
// is pure: aggregation over an empty input yields zeroed structures, never
// an error, and percentage sentinels replace division-by-zero cases.
package report

import (
	"sort"

	"boutique/internal/core"
)

// Totals are the summed derived values over a record slice.
type Totals struct {
	TotalPurchase core.Money
	TotalSale     core.Money
	TotalGain     core.Money
	TotalQuantity int64
	// MarginPercent is gain/purchase*100, or 0 when nothing was purchased
	// so the UI stays deterministic.
	MarginPercent float64
}

// GroupTotal is one row of an ordered grouping.
type GroupTotal struct {
	Key   string
	Total core.Money
}

// DayTotal is one point of a zero-filled daily series.
type DayTotal struct {
	Date  core.Date
	Total core.Money
}

// Change compares two period totals. Applicable is false when the previous
// total was zero: the percentage is "not applicable" rather than infinite.
type Change struct {
	Delta      core.Money
	Percent    float64
	Applicable bool
}

type (
	// KeyFunc extracts the grouping key from a record.
	KeyFunc func(core.PurchaseRecord) string
	// MetricFunc extracts the summed metric from a record.
	MetricFunc func(core.PurchaseRecord) core.Money
)

// Grouping keys.
func ByCategory(r core.PurchaseRecord) string { return r.Category }
func BySupplier(r core.PurchaseRecord) string { return r.Supplier }
func ByProduct(r core.PurchaseRecord) string  { return r.Product }
func ByMonth(r core.PurchaseRecord) string    { return r.Date.MonthKey() }

// Summable metrics.
func MetricPurchase(r core.PurchaseRecord) core.Money { return r.TotalPurchase() }
func MetricSale(r core.PurchaseRecord) core.Money     { return r.TotalSale() }
func MetricGain(r core.PurchaseRecord) core.Money     { return r.Gain() }

// ComputeTotals sums the derived per-row values.
func ComputeTotals(records []core.PurchaseRecord) Totals {
	var t Totals
	for _, r := range records {
		t.TotalPurchase.Cents += r.TotalPurchase().Cents
		t.TotalSale.Cents += r.TotalSale().Cents
		t.TotalQuantity += r.Quantity
	}
	t.TotalGain.Cents = t.TotalSale.Cents - t.TotalPurchase.Cents
	if t.TotalPurchase.Cents > 0 {
		t.MarginPercent = float64(t.TotalGain.Cents) / float64(t.TotalPurchase.Cents) * 100
	}
	return t
}

// GroupBy sums metric per key and orders the result descending by the
// summed metric, ties broken by key ascending for determinism.
func GroupBy(records []core.PurchaseRecord, key KeyFunc, metric MetricFunc) []GroupTotal {
	sums := make(map[string]int64)
	for _, r := range records {
		sums[key(r)] += metric(r).Cents
	}
	out := make([]GroupTotal, 0, len(sums))
	for k, cents := range sums {
		out = append(out, GroupTotal{Key: k, Total: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// DailySeries sums metric per calendar day over [start, end] inclusive.
// Every day appears exactly once; days without records carry a zero total,
// so line charts never silently skip quiet days. A start after end yields
// an empty series.
func DailySeries(records []core.PurchaseRecord, start, end core.Date, metric MetricFunc) []DayTotal {
	if start.Time.After(end.Time) {
		return nil
	}
	sums := make(map[string]int64)
	for _, r := range records {
		sums[r.Date.String()] += metric(r).Cents
	}
	var series []DayTotal
	for d := start; !d.Time.After(end.Time); d = d.Next() {
		series = append(series, DayTotal{Date: d, Total: core.Money{Cents: sums[d.String()]}})
	}
	return series
}

// WeekOverWeek compares a period total against the preceding one.
func WeekOverWeek(current, previous core.Money) Change {
	c := Change{Delta: core.Money{Cents: current.Cents - previous.Cents}}
	if previous.Cents != 0 {
		c.Percent = float64(c.Delta.Cents) / float64(previous.Cents) * 100
		c.Applicable = true
	}
	return c
}
