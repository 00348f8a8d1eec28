package http

import (
	"encoding/json"
	"net/http"

	"boutique/internal/core"
	"boutique/internal/report"
	"boutique/internal/storage"
)

// serveCached writes a cached report response if present, otherwise runs
// build, caches its JSON and writes it. Cache keys are the full request
// URL, so every filter combination caches independently.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, build func() (any, error)) {
	key := r.URL.String()
	if data, ok := s.reportCache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	v, err := build()
	if err != nil {
		s.writeDomainError(w, r, err, "build report")
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.writeDomainError(w, r, err, "encode report")
		return
	}
	s.reportCache.Set(key, data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "miss")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type changeResponse struct {
	Delta      string  `json:"delta"`
	Percent    float64 `json:"percent"`
	Applicable bool    `json:"applicable"`
}

func toChangeResponse(c report.Change) changeResponse {
	return changeResponse{
		Delta:      c.Delta.String(),
		Percent:    c.Percent,
		Applicable: c.Applicable,
	}
}

type totalsResponse struct {
	TotalPurchase string          `json:"total_purchase"`
	TotalSale     string          `json:"total_sale"`
	TotalGain     string          `json:"total_gain"`
	TotalQuantity int64           `json:"total_quantity"`
	MarginPercent float64         `json:"margin_percent"`
	Change        *changeResponse `json:"change,omitempty"`
}

// handleReportTotals sums the filtered slice of the ledger. When a date
// range is given, it also compares the gain against the preceding period
// of the same length.
func (s *Server) handleReportTotals(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.serveCached(w, r, func() (any, error) {
		records, err := s.ledger.ListPurchases(r.Context(), filter)
		if err != nil {
			return nil, err
		}
		totals := report.ComputeTotals(records)

		resp := totalsResponse{
			TotalPurchase: totals.TotalPurchase.String(),
			TotalSale:     totals.TotalSale.String(),
			TotalGain:     totals.TotalGain.String(),
			TotalQuantity: totals.TotalQuantity,
			MarginPercent: totals.MarginPercent,
		}

		if !filter.Start.IsZero() && !filter.End.IsZero() {
			days := int(filter.End.Sub(filter.Start.Time).Hours()/24) + 1
			prev := filter
			prev.End = core.Date{Time: filter.Start.AddDate(0, 0, -1)}
			prev.Start = core.Date{Time: filter.Start.AddDate(0, 0, -days)}

			prevRecords, err := s.ledger.ListPurchases(r.Context(), prev)
			if err != nil {
				return nil, err
			}
			prevTotals := report.ComputeTotals(prevRecords)
			change := report.WeekOverWeek(totals.TotalGain, prevTotals.TotalGain)
			cr := toChangeResponse(change)
			resp.Change = &cr
		}

		return resp, nil
	})
}

type groupTotalResponse struct {
	Key   string `json:"key"`
	Total string `json:"total"`
}

func (s *Server) handleReportGroupBy(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var key report.KeyFunc
	switch dim := r.URL.Query().Get("dim"); dim {
	case "category", "":
		key = report.ByCategory
	case "supplier":
		key = report.BySupplier
	case "product":
		key = report.ByProduct
	case "month":
		key = report.ByMonth
	default:
		writeError(w, http.StatusBadRequest, "invalid dim, want category, supplier, product or month")
		return
	}

	metric, ok := parseMetric(r.URL.Query().Get("metric"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid metric, want purchase, sale or gain")
		return
	}

	s.serveCached(w, r, func() (any, error) {
		records, err := s.ledger.ListPurchases(r.Context(), filter)
		if err != nil {
			return nil, err
		}
		groups := report.GroupBy(records, key, metric)
		out := make([]groupTotalResponse, 0, len(groups))
		for _, g := range groups {
			out = append(out, groupTotalResponse{Key: g.Key, Total: g.Total.String()})
		}
		return out, nil
	})
}

type dayTotalResponse struct {
	Date  string `json:"date"`
	Total string `json:"total"`
}

func (s *Server) handleReportDailySeries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("start") == "" || query.Get("end") == "" {
		writeError(w, http.StatusBadRequest, "start and end are required")
		return
	}
	start, end, err := parseRange(query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if end.Before(start.Time) {
		writeError(w, http.StatusBadRequest, "end is before start")
		return
	}

	metric, ok := parseMetric(query.Get("metric"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid metric, want purchase, sale or gain")
		return
	}

	filter := storage.Filter{Start: start, End: end, Ascending: true}
	filter.Category = sanitizeInput(query.Get("category"))
	filter.Search = sanitizeInput(query.Get("q"))

	s.serveCached(w, r, func() (any, error) {
		records, err := s.ledger.ListPurchases(r.Context(), filter)
		if err != nil {
			return nil, err
		}
		series := report.DailySeries(records, start, end, metric)
		out := make([]dayTotalResponse, 0, len(series))
		for _, day := range series {
			out = append(out, dayTotalResponse{Date: day.Date.String(), Total: day.Total.String()})
		}
		return out, nil
	})
}

type monthSummaryResponse struct {
	Month          string         `json:"month"`
	TotalPurchase  string         `json:"total_purchase"`
	TotalSale      string         `json:"total_sale"`
	GrossGain      string         `json:"gross_gain"`
	Cash           string         `json:"cash"`
	Credits        string         `json:"credits"`
	Expenses       string         `json:"expenses"`
	NetGain        string         `json:"net_gain"`
	GrossEvolution changeResponse `json:"gross_evolution"`
	NetEvolution   changeResponse `json:"net_evolution"`
}

func (s *Server) handleReportMonthly(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.serveCached(w, r, func() (any, error) {
		records, err := s.ledger.ListPurchases(r.Context(), storage.Filter{Start: start, End: end, Ascending: true})
		if err != nil {
			return nil, err
		}
		finance, err := s.repo.FinanceByDay(r.Context(), start, end)
		if err != nil {
			return nil, err
		}

		summaries := report.MonthlySummaries(records, finance)
		out := make([]monthSummaryResponse, 0, len(summaries))
		for _, m := range summaries {
			out = append(out, monthSummaryResponse{
				Month:          m.Month,
				TotalPurchase:  m.TotalPurchase.String(),
				TotalSale:      m.TotalSale.String(),
				GrossGain:      m.GrossGain.String(),
				Cash:           m.Cash.String(),
				Credits:        m.Credits.String(),
				Expenses:       m.Expenses.String(),
				NetGain:        m.NetGain.String(),
				GrossEvolution: toChangeResponse(m.GrossEvolution),
				NetEvolution:   toChangeResponse(m.NetEvolution),
			})
		}
		return out, nil
	})
}

func parseMetric(name string) (report.MetricFunc, bool) {
	switch name {
	case "purchase":
		return report.MetricPurchase, true
	case "sale":
		return report.MetricSale, true
	case "gain", "":
		return report.MetricGain, true
	}
	return nil, false
}
