package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"boutique/internal/core"
	"boutique/internal/report"
)

// WritePDF renders the records as a landscape A4 table with a totals
// banner. The core fonts are cp1252 only, so text goes through the
// unicode translator; characters outside the codepage degrade rather
// than abort the export.
func WritePDF(w io.Writer, title string, records []core.PurchaseRecord) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	totals := report.ComputeTotals(records)
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Records: %d", len(records)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Total purchase: %s   Total sale: %s   Gain: %s   Margin: %.1f%%",
		totals.TotalPurchase, totals.TotalSale, totals.TotalGain, totals.MarginPercent), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	type column struct {
		header string
		width  float64
		align  string
	}
	columns := []column{
		{"Date", 24, "C"},
		{"Product", 46, "L"},
		{"Category", 32, "L"},
		{"Subcategory", 32, "L"},
		{"Supplier", 30, "L"},
		{"Qty", 14, "C"},
		{"Purchase", 22, "R"},
		{"Sale", 22, "R"},
		{"Tot. Purchase", 25, "R"},
		{"Tot. Sale", 25, "R"},
		{"Gain", 22, "R"},
	}

	header := func() {
		pdf.SetFont("Arial", "B", 10)
		for _, col := range columns {
			pdf.CellFormat(col.width, 8, col.header, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottomMargin := pdf.GetMargins()

	for _, rec := range records {
		if pdf.GetY()+7 > pageHeight-bottomMargin {
			pdf.AddPage()
			header()
		}
		cells := []string{
			rec.Date.String(),
			tr(rec.Product),
			tr(rec.Category),
			tr(rec.Subcategory),
			tr(rec.Supplier),
			fmt.Sprintf("%d", rec.Quantity),
			rec.PurchasePrice.String(),
			rec.SalePrice.String(),
			rec.TotalPurchase().String(),
			rec.TotalSale().String(),
			rec.Gain().String(),
		}
		for i, col := range columns {
			pdf.CellFormat(col.width, 7, cells[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// WriteCashPDF renders till entries as a portrait A4 table with the
// collected total on top.
func WriteCashPDF(w io.Writer, title string, entries []core.CashEntry) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	var total core.Money
	for _, e := range entries {
		total.Cents += e.Amount.Cents
	}
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Entries: %d   Total collected: %s", len(entries), total), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	header := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 8, "Date", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 8, "Period", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 8, "Amount", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottomMargin := pdf.GetMargins()

	for _, e := range entries {
		if pdf.GetY()+7 > pageHeight-bottomMargin {
			pdf.AddPage()
			header()
		}
		pdf.CellFormat(40, 7, e.Date.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, string(e.Period), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, e.Amount.String(), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
