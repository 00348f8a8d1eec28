package http

import (
	"net/http"

	"boutique/internal/core"
)

type categoryResponse struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
	Suppliers     []string `json:"suppliers,omitempty"`
}

type taxonomyResponse struct {
	Categories   []categoryResponse `json:"categories"`
	ExpenseTypes []string           `json:"expense_types"`
	Periods      []string           `json:"periods"`
}

func (s *Server) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	resp := taxonomyResponse{
		ExpenseTypes: core.ExpenseTypes,
		Periods: []string{
			string(core.PeriodMorning),
			string(core.PeriodAfternoon),
			string(core.PeriodNight),
		},
	}
	for _, name := range s.taxonomy.Categories() {
		resp.Categories = append(resp.Categories, categoryResponse{
			Name:          name,
			Subcategories: s.taxonomy.SubcategoriesFor(name),
			Suppliers:     s.taxonomy.SuppliersFor(name),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
