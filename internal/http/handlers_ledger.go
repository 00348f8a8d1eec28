package http

import (
	"errors"
	"log/slog"
	"net/http"

	"boutique/internal/core"
	"boutique/internal/inventory"
)

type purchaseResponse struct {
	ID            int64  `json:"id"`
	Product       string `json:"product"`
	Category      string `json:"category"`
	Subcategory   string `json:"subcategory,omitempty"`
	Supplier      string `json:"supplier,omitempty"`
	Quantity      int64  `json:"quantity"`
	PurchasePrice string `json:"purchase_price"`
	SalePrice     string `json:"sale_price"`
	Date          string `json:"date"`
	TotalPurchase string `json:"total_purchase"`
	TotalSale     string `json:"total_sale"`
	Gain          string `json:"gain"`
	MarginWarning bool   `json:"margin_warning,omitempty"`
}

func toPurchaseResponse(rec core.PurchaseRecord) purchaseResponse {
	return purchaseResponse{
		ID:            rec.ID,
		Product:       rec.Product,
		Category:      rec.Category,
		Subcategory:   rec.Subcategory,
		Supplier:      rec.Supplier,
		Quantity:      rec.Quantity,
		PurchasePrice: rec.PurchasePrice.String(),
		SalePrice:     rec.SalePrice.String(),
		Date:          rec.Date.String(),
		TotalPurchase: rec.TotalPurchase().String(),
		TotalSale:     rec.TotalSale().String(),
		Gain:          rec.Gain().String(),
		MarginWarning: rec.MarginWarning(),
	}
}

func (s *Server) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	rec, err := parsePurchasePayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.ledger.CreatePurchase(r.Context(), rec)
	if err != nil {
		s.writeDomainError(w, r, err, "create purchase")
		return
	}
	s.reportCache.Clear()

	rec.ID = id
	writeJSON(w, http.StatusCreated, toPurchaseResponse(rec))
}

func (s *Server) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.ledger.ListPurchases(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, r, err, "list purchases")
		return
	}

	out := make([]purchaseResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toPurchaseResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	rec, err := s.ledger.GetPurchase(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err, "get purchase")
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseResponse(rec))
}

func (s *Server) handleUpdatePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	rec, err := parsePurchasePayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.UpdatePurchase(r.Context(), id, rec); err != nil {
		s.writeDomainError(w, r, err, "update purchase")
		return
	}
	s.reportCache.Clear()

	rec.ID = id
	writeJSON(w, http.StatusOK, toPurchaseResponse(rec))
}

func (s *Server) handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.ledger.DeletePurchase(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err, "delete purchase")
		return
	}
	s.reportCache.Clear()

	w.WriteHeader(http.StatusNoContent)
}

type idResponse struct {
	ID int64 `json:"id"`
}

func (s *Server) handleCreateCashEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := parseCashEntryPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.ledger.AddCashEntry(r.Context(), entry)
	if err != nil {
		s.writeDomainError(w, r, err, "create cash entry")
		return
	}
	s.reportCache.Clear()
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

type cashEntryResponse struct {
	ID     int64  `json:"id"`
	Amount string `json:"amount"`
	Period string `json:"period"`
	Date   string `json:"date"`
}

func (s *Server) handleListCashEntries(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	entries, err := s.repo.ListCashEntries(r.Context(), start, end)
	if err != nil {
		s.writeDomainError(w, r, err, "list cash entries")
		return
	}
	out := make([]cashEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, cashEntryResponse{
			ID:     e.ID,
			Amount: e.Amount.String(),
			Period: string(e.Period),
			Date:   e.Date.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCredit(w http.ResponseWriter, r *http.Request) {
	credit, err := parseCreditPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.ledger.AddCredit(r.Context(), credit)
	if err != nil {
		s.writeDomainError(w, r, err, "create credit")
		return
	}
	s.reportCache.Clear()
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

type creditResponse struct {
	ID     int64  `json:"id"`
	Amount string `json:"amount"`
	Note   string `json:"note,omitempty"`
	Date   string `json:"date"`
}

func (s *Server) handleListCredits(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	credits, err := s.repo.ListCredits(r.Context(), start, end)
	if err != nil {
		s.writeDomainError(w, r, err, "list credits")
		return
	}
	out := make([]creditResponse, 0, len(credits))
	for _, c := range credits {
		out = append(out, creditResponse{
			ID:     c.ID,
			Amount: c.Amount.String(),
			Note:   c.Note,
			Date:   c.Date.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := parseExpensePayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.ledger.AddExpense(r.Context(), expense)
	if err != nil {
		s.writeDomainError(w, r, err, "create expense")
		return
	}
	s.reportCache.Clear()
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

type expenseResponse struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	expenses, err := s.repo.ListExpenses(r.Context(), start, end)
	if err != nil {
		s.writeDomainError(w, r, err, "list expenses")
		return
	}
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseResponse{
			ID:          e.ID,
			Type:        e.Type,
			Description: e.Description,
			Amount:      e.Amount.String(),
			Date:        e.Date.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateMovement(w http.ResponseWriter, r *http.Request) {
	movement, err := parseMovementPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.ledger.AddMovement(r.Context(), movement)
	if err != nil {
		s.writeDomainError(w, r, err, "create movement")
		return
	}
	s.reportCache.Clear()
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

type lotResponse struct {
	EntryDate string `json:"entry_date"`
	Remaining int64  `json:"remaining"`
	Price     string `json:"price"`
}

type positionResponse struct {
	Product string        `json:"product"`
	Depot   string        `json:"depot"`
	OnHand  int64         `json:"on_hand"`
	Lots    []lotResponse `json:"lots"`
}

type inventoryResponse struct {
	Positions         []positionResponse `json:"positions"`
	AverageDaysInShop float64            `json:"average_days_in_depot"`
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	movements, err := s.repo.ListMovements(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err, "list movements")
		return
	}

	matches, positions, err := inventory.Reconcile(movements)
	if err != nil {
		if errors.Is(err, inventory.ErrInsufficientStock) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.writeDomainError(w, r, err, "reconcile inventory")
		return
	}

	resp := inventoryResponse{
		Positions:         make([]positionResponse, 0, len(positions)),
		AverageDaysInShop: inventory.AverageDaysInDepot(matches),
	}
	for _, p := range positions {
		lots := make([]lotResponse, 0, len(p.Lots))
		for _, lot := range p.Lots {
			lots = append(lots, lotResponse{
				EntryDate: lot.EntryDate.String(),
				Remaining: lot.Remaining,
				Price:     lot.Price.String(),
			})
		}
		resp.Positions = append(resp.Positions, positionResponse{
			Product: p.Product,
			Depot:   p.Depot,
			OnHand:  p.OnHand,
			Lots:    lots,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeDomainError maps domain sentinels to HTTP statuses and logs the
// rest as internal errors.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, core.ErrEmptyProduct),
		errors.Is(err, core.ErrInvalidQuantity),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrNegativePrice),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidPeriod),
		errors.Is(err, core.ErrEmptyType),
		errors.Is(err, core.ErrEmptyDepot),
		errors.Is(err, core.ErrInvalidMovement):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed", "operation", op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
