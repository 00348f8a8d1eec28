package storage

import (
	"context"
	"database/sql"
	"strings"
)

// DBTX is the subset of database/sql used by Queries, so the same code
// runs against a *sql.DB or a *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// Row types mirror the persisted schema. Dates are stored as YYYY-MM-DD
// text, which sorts and range-compares correctly.
type (
	Purchase struct {
		ID                 int64
		Product            string
		Category           string
		Subcategory        string
		Supplier           string
		Quantity           int64
		PurchasePriceCents int64
		SalePriceCents     int64
		Date               string
	}

	CashRegisterEntry struct {
		ID          int64
		AmountCents int64
		Date        string
		Periode     string
	}

	CreditRow struct {
		ID          int64
		AmountCents int64
		Date        string
		Note        string
	}

	ExpenseRow struct {
		ID          int64
		Type        string
		Description string
		AmountCents int64
		Date        string
	}

	MovementRow struct {
		ID         int64
		Product    string
		Depot      string
		Direction  string
		Quantity   int64
		PriceCents int64
		Date       string
	}

	FinanceDayRow struct {
		Date         string
		CashCents    int64
		CreditCents  int64
		ExpenseCents int64
	}
)

type CreatePurchaseParams struct {
	Product            string
	Category           string
	Subcategory        string
	Supplier           string
	Quantity           int64
	PurchasePriceCents int64
	SalePriceCents     int64
	Date               string
}

const createPurchase = `
INSERT INTO purchases (product, category, subcategory, supplier, quantity, purchase_price_cents, sale_price_cents, date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, product, category, subcategory, supplier, quantity, purchase_price_cents, sale_price_cents, date`

func (q *Queries) CreatePurchase(ctx context.Context, arg CreatePurchaseParams) (Purchase, error) {
	row := q.db.QueryRowContext(ctx, createPurchase,
		arg.Product, arg.Category, arg.Subcategory, arg.Supplier,
		arg.Quantity, arg.PurchasePriceCents, arg.SalePriceCents, arg.Date)
	var p Purchase
	err := row.Scan(&p.ID, &p.Product, &p.Category, &p.Subcategory, &p.Supplier,
		&p.Quantity, &p.PurchasePriceCents, &p.SalePriceCents, &p.Date)
	return p, err
}

const getPurchase = `
SELECT id, product, category, subcategory, supplier, quantity, purchase_price_cents, sale_price_cents, date
FROM purchases WHERE id = ?`

func (q *Queries) GetPurchase(ctx context.Context, id int64) (Purchase, error) {
	row := q.db.QueryRowContext(ctx, getPurchase, id)
	var p Purchase
	err := row.Scan(&p.ID, &p.Product, &p.Category, &p.Subcategory, &p.Supplier,
		&p.Quantity, &p.PurchasePriceCents, &p.SalePriceCents, &p.Date)
	return p, err
}

type UpdatePurchaseParams struct {
	ID int64
	CreatePurchaseParams
}

const updatePurchase = `
UPDATE purchases
SET product = ?, category = ?, subcategory = ?, supplier = ?, quantity = ?, purchase_price_cents = ?, sale_price_cents = ?, date = ?
WHERE id = ?`

func (q *Queries) UpdatePurchase(ctx context.Context, arg UpdatePurchaseParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updatePurchase,
		arg.Product, arg.Category, arg.Subcategory, arg.Supplier,
		arg.Quantity, arg.PurchasePriceCents, arg.SalePriceCents, arg.Date, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deletePurchase = `DELETE FROM purchases WHERE id = ?`

func (q *Queries) DeletePurchase(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deletePurchase, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListPurchasesParams narrows the ledger slice. Start and End are
// inclusive YYYY-MM-DD bounds; empty strings disable a clause.
type ListPurchasesParams struct {
	Start     string
	End       string
	Category  string
	Search    string
	Ascending bool
}

func (q *Queries) ListPurchases(ctx context.Context, arg ListPurchasesParams) ([]Purchase, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, product, category, subcategory, supplier, quantity, purchase_price_cents, sale_price_cents, date
FROM purchases WHERE 1=1`)
	var args []any
	if arg.Start != "" {
		sb.WriteString(" AND date >= ?")
		args = append(args, arg.Start)
	}
	if arg.End != "" {
		sb.WriteString(" AND date <= ?")
		args = append(args, arg.End)
	}
	if arg.Category != "" {
		sb.WriteString(" AND category = ?")
		args = append(args, arg.Category)
	}
	if arg.Search != "" {
		// LIKE is case-insensitive for ASCII in sqlite; lower() covers the rest
		sb.WriteString(" AND lower(product) LIKE ?")
		args = append(args, "%"+strings.ToLower(arg.Search)+"%")
	}
	if arg.Ascending {
		sb.WriteString(" ORDER BY date ASC, id ASC")
	} else {
		sb.WriteString(" ORDER BY date DESC, id DESC")
	}

	rows, err := q.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.Product, &p.Category, &p.Subcategory, &p.Supplier,
			&p.Quantity, &p.PurchasePriceCents, &p.SalePriceCents, &p.Date); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const countPurchases = `SELECT COUNT(*) FROM purchases`

func (q *Queries) CountPurchases(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countPurchases).Scan(&n)
	return n, err
}

type CreateCashEntryParams struct {
	AmountCents int64
	Date        string
	Periode     string
}

const createCashEntry = `
INSERT INTO cash_register (amount_cents, date, periode)
VALUES (?, ?, ?)
RETURNING id, amount_cents, date, periode`

func (q *Queries) CreateCashEntry(ctx context.Context, arg CreateCashEntryParams) (CashRegisterEntry, error) {
	row := q.db.QueryRowContext(ctx, createCashEntry, arg.AmountCents, arg.Date, arg.Periode)
	var e CashRegisterEntry
	err := row.Scan(&e.ID, &e.AmountCents, &e.Date, &e.Periode)
	return e, err
}

func (q *Queries) ListCashEntries(ctx context.Context, start, end string) ([]CashRegisterEntry, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT id, amount_cents, date, periode FROM cash_register
WHERE date >= ? AND date <= ? ORDER BY date DESC, id DESC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CashRegisterEntry
	for rows.Next() {
		var e CashRegisterEntry
		if err := rows.Scan(&e.ID, &e.AmountCents, &e.Date, &e.Periode); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type CreateCreditParams struct {
	AmountCents int64
	Date        string
	Note        string
}

const createCredit = `
INSERT INTO credits (amount_cents, date, note)
VALUES (?, ?, ?)
RETURNING id, amount_cents, date, note`

func (q *Queries) CreateCredit(ctx context.Context, arg CreateCreditParams) (CreditRow, error) {
	row := q.db.QueryRowContext(ctx, createCredit, arg.AmountCents, arg.Date, arg.Note)
	var c CreditRow
	err := row.Scan(&c.ID, &c.AmountCents, &c.Date, &c.Note)
	return c, err
}

func (q *Queries) ListCredits(ctx context.Context, start, end string) ([]CreditRow, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT id, amount_cents, date, note FROM credits
WHERE date >= ? AND date <= ? ORDER BY date DESC, id DESC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CreditRow
	for rows.Next() {
		var c CreditRow
		if err := rows.Scan(&c.ID, &c.AmountCents, &c.Date, &c.Note); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type CreateExpenseParams struct {
	Type        string
	Description string
	AmountCents int64
	Date        string
}

const createExpense = `
INSERT INTO expenses (type, description, amount_cents, date)
VALUES (?, ?, ?, ?)
RETURNING id, type, description, amount_cents, date`

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (ExpenseRow, error) {
	row := q.db.QueryRowContext(ctx, createExpense, arg.Type, arg.Description, arg.AmountCents, arg.Date)
	var e ExpenseRow
	err := row.Scan(&e.ID, &e.Type, &e.Description, &e.AmountCents, &e.Date)
	return e, err
}

func (q *Queries) ListExpenses(ctx context.Context, start, end string) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT id, type, description, amount_cents, date FROM expenses
WHERE date >= ? AND date <= ? ORDER BY date DESC, id DESC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ExpenseRow
	for rows.Next() {
		var e ExpenseRow
		if err := rows.Scan(&e.ID, &e.Type, &e.Description, &e.AmountCents, &e.Date); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type CreateMovementParams struct {
	Product    string
	Depot      string
	Direction  string
	Quantity   int64
	PriceCents int64
	Date       string
}

const createMovement = `
INSERT INTO inventory_movements (product, depot, direction, quantity, price_cents, date)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, product, depot, direction, quantity, price_cents, date`

func (q *Queries) CreateMovement(ctx context.Context, arg CreateMovementParams) (MovementRow, error) {
	row := q.db.QueryRowContext(ctx, createMovement,
		arg.Product, arg.Depot, arg.Direction, arg.Quantity, arg.PriceCents, arg.Date)
	var m MovementRow
	err := row.Scan(&m.ID, &m.Product, &m.Depot, &m.Direction, &m.Quantity, &m.PriceCents, &m.Date)
	return m, err
}

// ListMovements returns every movement ordered by date then id ascending,
// which is the insertion order the FIFO matcher relies on.
func (q *Queries) ListMovements(ctx context.Context) ([]MovementRow, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT id, product, depot, direction, quantity, price_cents, date
FROM inventory_movements ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MovementRow
	for rows.Next() {
		var m MovementRow
		if err := rows.Scan(&m.ID, &m.Product, &m.Depot, &m.Direction, &m.Quantity, &m.PriceCents, &m.Date); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// FinanceByDay sums the three sibling tables per calendar day over an
// inclusive range, feeding the monthly reconciliation.
func (q *Queries) FinanceByDay(ctx context.Context, start, end string) ([]FinanceDayRow, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT d.date,
       COALESCE((SELECT SUM(amount_cents) FROM cash_register WHERE date = d.date), 0),
       COALESCE((SELECT SUM(amount_cents) FROM credits WHERE date = d.date), 0),
       COALESCE((SELECT SUM(amount_cents) FROM expenses WHERE date = d.date), 0)
FROM (
    SELECT date FROM cash_register WHERE date >= ? AND date <= ?
    UNION SELECT date FROM credits WHERE date >= ? AND date <= ?
    UNION SELECT date FROM expenses WHERE date >= ? AND date <= ?
) d
ORDER BY d.date ASC`, start, end, start, end, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FinanceDayRow
	for rows.Next() {
		var f FinanceDayRow
		if err := rows.Scan(&f.Date, &f.CashCents, &f.CreditCents, &f.ExpenseCents); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
