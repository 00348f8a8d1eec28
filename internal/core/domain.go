package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// Till shifts used by the cash register.
	PeriodMorning   Period = "04-14"
	PeriodAfternoon Period = "14-17"
	PeriodNight     Period = "17-02"

	EntryMovement MovementDirection = "entry"
	ExitMovement  MovementDirection = "exit"
)

type (
	Period string

	MovementDirection string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// PurchaseRecord is one row of the purchase/sale ledger.
	PurchaseRecord struct {
		ID            int64
		Product       string
		Category      string
		Subcategory   string
		Supplier      string
		Quantity      int64
		PurchasePrice Money // unit price
		SalePrice     Money // unit price
		Date          Date
	}

	// CashEntry is a till amount collected during one shift.
	CashEntry struct {
		ID     int64
		Amount Money
		Date   Date
		Period Period
	}

	// Credit is money owed to the shop, recorded with a free-text note.
	Credit struct {
		ID     int64
		Amount Money
		Date   Date
		Note   string
	}

	// OverheadExpense is a running cost (rent, utilities, ...).
	OverheadExpense struct {
		ID          int64
		Type        string
		Description string
		Amount      Money
		Date        Date
	}

	// InventoryMovement records stock entering or leaving a depot.
	InventoryMovement struct {
		ID        int64
		Product   string
		Depot     string
		Direction MovementDirection
		Quantity  int64
		Price     Money
		Date      Date
	}
)

var (
	ErrEmptyProduct    = errors.New("empty product name")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativePrice   = errors.New("price cannot be negative")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidPeriod   = errors.New("invalid time period")
	ErrEmptyType       = errors.New("empty expense type")
	ErrEmptyDepot      = errors.New("empty depot name")
	ErrInvalidMovement = errors.New("invalid movement direction")

	// ErrNotFound is returned for updates and deletes against an absent id.
	ErrNotFound = errors.New("record not found")
)

// NewDate creates a Date from year, month, day (UTC, midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthKey returns the YYYY-MM bucket the date belongs to.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// String renders the canonical YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Next returns the following calendar day.
func (d Date) Next() Date {
	return Date{Time: d.AddDate(0, 0, 1)}
}

func (p Period) Validate() error {
	switch p {
	case PeriodMorning, PeriodAfternoon, PeriodNight:
		return nil
	}
	return ErrInvalidPeriod
}

func (r PurchaseRecord) Validate() error {
	if strings.TrimSpace(r.Product) == "" {
		return ErrEmptyProduct
	}
	if r.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if r.PurchasePrice.Cents < 0 || r.SalePrice.Cents < 0 {
		return ErrNegativePrice
	}
	return r.Date.Validate()
}

// MarginWarning reports a sale price below the purchase price. Soft
// condition: callers log or display it but never reject the record.
func (r PurchaseRecord) MarginWarning() bool {
	return r.SalePrice.Cents < r.PurchasePrice.Cents
}

// TotalPurchase is quantity times unit purchase price. Derived values are
// always computed from the stored fields, never persisted.
func (r PurchaseRecord) TotalPurchase() Money {
	return Money{Cents: r.Quantity * r.PurchasePrice.Cents}
}

func (r PurchaseRecord) TotalSale() Money {
	return Money{Cents: r.Quantity * r.SalePrice.Cents}
}

func (r PurchaseRecord) Gain() Money {
	return Money{Cents: r.TotalSale().Cents - r.TotalPurchase().Cents}
}

func (c CashEntry) Validate() error {
	if c.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if err := c.Period.Validate(); err != nil {
		return err
	}
	return c.Date.Validate()
}

func (c Credit) Validate() error {
	if c.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return c.Date.Validate()
}

func (e OverheadExpense) Validate() error {
	if strings.TrimSpace(e.Type) == "" {
		return ErrEmptyType
	}
	if e.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return e.Date.Validate()
}

func (m InventoryMovement) Validate() error {
	if strings.TrimSpace(m.Product) == "" {
		return ErrEmptyProduct
	}
	if strings.TrimSpace(m.Depot) == "" {
		return ErrEmptyDepot
	}
	if m.Direction != EntryMovement && m.Direction != ExitMovement {
		return ErrInvalidMovement
	}
	if m.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if m.Price.Cents < 0 {
		return ErrNegativePrice
	}
	return m.Date.Validate()
}
