package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"boutique/internal/export"
)

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.ledger.ListPurchases(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, r, err, "list purchases for export")
		return
	}

	// Build in memory first so a mid-export failure never sends a
	// truncated file with a 200 status.
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, records); err != nil {
		s.writeDomainError(w, r, err, "export csv")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=ledger_%s.csv", time.Now().Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.ledger.ListPurchases(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, r, err, "list purchases for export")
		return
	}

	title := "Ledger export"
	if !filter.Start.IsZero() && !filter.End.IsZero() {
		title = fmt.Sprintf("Ledger export %s to %s", filter.Start, filter.End)
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, title, records); err != nil {
		s.writeDomainError(w, r, err, "export pdf")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=ledger_%s.pdf", time.Now().Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportCashCSV(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := s.repo.ListCashEntries(r.Context(), start, end)
	if err != nil {
		s.writeDomainError(w, r, err, "list cash entries for export")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCashCSV(&buf, entries); err != nil {
		s.writeDomainError(w, r, err, "export cash csv")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=cash_%s.csv", time.Now().Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportCashPDF(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := s.repo.ListCashEntries(r.Context(), start, end)
	if err != nil {
		s.writeDomainError(w, r, err, "list cash entries for export")
		return
	}

	title := fmt.Sprintf("Cash register %s to %s", start, end)

	var buf bytes.Buffer
	if err := export.WriteCashPDF(&buf, title, entries); err != nil {
		s.writeDomainError(w, r, err, "export cash pdf")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=cash_%s.pdf", time.Now().Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
