package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"boutique/internal/core"
)

// Columns is the fixed export layout, shared by the CSV and PDF writers.
// Derived totals are recomputed at export time, never read from storage.
var Columns = []string{
	"date",
	"product",
	"category",
	"subcategory",
	"supplier",
	"quantity",
	"purchase_price",
	"sale_price",
	"total_purchase",
	"total_sale",
	"gain",
}

// WriteCSV streams the records as UTF-8 CSV with a header row. Prices are
// decimal strings with two fraction digits.
func WriteCSV(w io.Writer, records []core.PurchaseRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Date.String(),
			rec.Product,
			rec.Category,
			rec.Subcategory,
			rec.Supplier,
			fmt.Sprintf("%d", rec.Quantity),
			rec.PurchasePrice.String(),
			rec.SalePrice.String(),
			rec.TotalPurchase().String(),
			rec.TotalSale().String(),
			rec.Gain().String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// CashColumns is the export layout for till entries.
var CashColumns = []string{"date", "period", "amount"}

// WriteCashCSV streams till entries as UTF-8 CSV with a header row.
func WriteCashCSV(w io.Writer, entries []core.CashEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CashColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, e := range entries {
		row := []string{
			e.Date.String(),
			string(e.Period),
			e.Amount.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
