// Package http provides the JSON API over the ledger.
//
// This file implements parsing and validation of request payloads and
// query strings. Prices travel as decimal strings and are converted to
// cents at the boundary; everything past this layer works in cents.

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"boutique/internal/core"
	"boutique/internal/storage"
)

type purchasePayload struct {
	Product       string `json:"product"`
	Category      string `json:"category"`
	Subcategory   string `json:"subcategory"`
	Supplier      string `json:"supplier"`
	Quantity      int64  `json:"quantity"`
	PurchasePrice string `json:"purchase_price"`
	SalePrice     string `json:"sale_price"`
	Date          string `json:"date"`
}

func parsePurchasePayload(r *http.Request) (core.PurchaseRecord, error) {
	var p purchasePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return core.PurchaseRecord{}, fmt.Errorf("invalid JSON body: %w", err)
	}

	purchase, err := parsePrice(p.PurchasePrice, "purchase_price")
	if err != nil {
		return core.PurchaseRecord{}, err
	}
	sale, err := parsePrice(p.SalePrice, "sale_price")
	if err != nil {
		return core.PurchaseRecord{}, err
	}
	date, err := parseDateOrToday(p.Date)
	if err != nil {
		return core.PurchaseRecord{}, err
	}

	return core.PurchaseRecord{
		Product:       sanitizeInput(p.Product),
		Category:      sanitizeInput(p.Category),
		Subcategory:   sanitizeInput(p.Subcategory),
		Supplier:      sanitizeInput(p.Supplier),
		Quantity:      p.Quantity,
		PurchasePrice: purchase,
		SalePrice:     sale,
		Date:          date,
	}, nil
}

type cashEntryPayload struct {
	Amount string `json:"amount"`
	Period string `json:"period"`
	Date   string `json:"date"`
}

func parseCashEntryPayload(r *http.Request) (core.CashEntry, error) {
	var p cashEntryPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return core.CashEntry{}, fmt.Errorf("invalid JSON body: %w", err)
	}
	amount, err := parsePrice(p.Amount, "amount")
	if err != nil {
		return core.CashEntry{}, err
	}
	date, err := parseDateOrToday(p.Date)
	if err != nil {
		return core.CashEntry{}, err
	}
	return core.CashEntry{
		Amount: amount,
		Period: core.Period(p.Period),
		Date:   date,
	}, nil
}

type creditPayload struct {
	Amount string `json:"amount"`
	Note   string `json:"note"`
	Date   string `json:"date"`
}

func parseCreditPayload(r *http.Request) (core.Credit, error) {
	var p creditPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return core.Credit{}, fmt.Errorf("invalid JSON body: %w", err)
	}
	amount, err := parsePrice(p.Amount, "amount")
	if err != nil {
		return core.Credit{}, err
	}
	date, err := parseDateOrToday(p.Date)
	if err != nil {
		return core.Credit{}, err
	}
	return core.Credit{
		Amount: amount,
		Note:   sanitizeInput(p.Note),
		Date:   date,
	}, nil
}

type expensePayload struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
}

func parseExpensePayload(r *http.Request) (core.OverheadExpense, error) {
	var p expensePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return core.OverheadExpense{}, fmt.Errorf("invalid JSON body: %w", err)
	}
	amount, err := parsePrice(p.Amount, "amount")
	if err != nil {
		return core.OverheadExpense{}, err
	}
	date, err := parseDateOrToday(p.Date)
	if err != nil {
		return core.OverheadExpense{}, err
	}
	return core.OverheadExpense{
		Type:        sanitizeInput(p.Type),
		Description: sanitizeInput(p.Description),
		Amount:      amount,
		Date:        date,
	}, nil
}

type movementPayload struct {
	Product   string `json:"product"`
	Depot     string `json:"depot"`
	Direction string `json:"direction"`
	Quantity  int64  `json:"quantity"`
	Price     string `json:"price"`
	Date      string `json:"date"`
}

func parseMovementPayload(r *http.Request) (core.InventoryMovement, error) {
	var p movementPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return core.InventoryMovement{}, fmt.Errorf("invalid JSON body: %w", err)
	}
	price, err := parsePrice(p.Price, "price")
	if err != nil {
		return core.InventoryMovement{}, err
	}
	date, err := parseDateOrToday(p.Date)
	if err != nil {
		return core.InventoryMovement{}, err
	}
	return core.InventoryMovement{
		Product:   sanitizeInput(p.Product),
		Depot:     sanitizeInput(p.Depot),
		Direction: core.MovementDirection(p.Direction),
		Quantity:  p.Quantity,
		Price:     price,
		Date:      date,
	}, nil
}

// parseFilter builds a purchase filter from query parameters: start, end
// (inclusive YYYY-MM-DD), category, q (substring search), order=asc.
func parseFilter(query url.Values) (storage.Filter, error) {
	var f storage.Filter

	if v := query.Get("start"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, fmt.Errorf("invalid start date %q, want YYYY-MM-DD", v)
		}
		f.Start = d
	}
	if v := query.Get("end"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, fmt.Errorf("invalid end date %q, want YYYY-MM-DD", v)
		}
		f.End = d
	}
	f.Category = sanitizeInput(query.Get("category"))
	f.Search = sanitizeInput(query.Get("q"))
	f.Ascending = query.Get("order") == "asc"

	return f, nil
}

// parseRange reads start and end query parameters, defaulting to the
// current month when absent.
func parseRange(query url.Values) (start, end core.Date, err error) {
	now := time.Now()
	start = core.NewDate(now.Year(), int(now.Month()), 1)
	end = core.NewDate(now.Year(), int(now.Month()), 1)
	end = core.Date{Time: end.AddDate(0, 1, -1)}

	if v := query.Get("start"); v != "" {
		if start, err = core.ParseDate(v); err != nil {
			return start, end, fmt.Errorf("invalid start date %q, want YYYY-MM-DD", v)
		}
	}
	if v := query.Get("end"); v != "" {
		if end, err = core.ParseDate(v); err != nil {
			return start, end, fmt.Errorf("invalid end date %q, want YYYY-MM-DD", v)
		}
	}
	return start, end, nil
}

func parsePrice(value, field string) (core.Money, error) {
	if value == "" {
		return core.Money{}, nil
	}
	m, err := core.ParseDecimalToCents(value)
	if err != nil {
		return core.Money{}, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return core.Money{Cents: m}, nil
}

func parseDateOrToday(value string) (core.Date, error) {
	if value == "" {
		now := time.Now()
		return core.NewDate(now.Year(), int(now.Month()), now.Day()), nil
	}
	d, err := core.ParseDate(value)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", value)
	}
	return d, nil
}
