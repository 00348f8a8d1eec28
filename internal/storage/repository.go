package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"boutique/internal/core"
	"boutique/internal/report"

	_ "modernc.org/sqlite"
)

// ErrStoreUnavailable wraps failures to reach the backing store. Callers
// may attempt a one-time restore-from-snapshot before giving up.
var ErrStoreUnavailable = errors.New("store unavailable")

// Repository owns the single database handle for the whole process. No
// other component opens its own connection. The mutex guards the handle
// swap during Reload; normal queries only take the read side.
type Repository struct {
	mu      sync.RWMutex
	db      *sql.DB
	path    string
	queries *Queries
}

// Open creates the database file if needed, runs migrations and returns a
// ready repository. WAL mode plus a busy timeout gives the
// shared-read/serialized-write semantics the single-shop workload needs.
func Open(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := openHandle(dbPath)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		db:      db,
		path:    dbPath,
		queries: New(db),
	}, nil
}

func openHandle(dbPath string) (*sql.DB, error) {
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %v", ErrStoreUnavailable, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", ErrStoreUnavailable, err)
	}
	return db, nil
}

func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ExecContext runs a statement on the live handle. The snapshot manager
// uses it for VACUUM INTO.
func (r *Repository) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.db.ExecContext(ctx, query, args...)
}

// Reload closes the handle, runs fn while nothing holds the database
// file, then reopens the same path. Used to restore a snapshot over the
// live database without restarting the process. The old handle is closed
// even when fn fails, and the reopen happens regardless so the service
// keeps serving whatever state the file is in.
func (r *Repository) Reload(fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close database for reload: %w", err)
	}

	fnErr := fn()

	db, err := openHandle(r.path)
	if err != nil {
		return fmt.Errorf("reopen after reload: %w", err)
	}
	r.db = db
	r.queries = New(db)

	return fnErr
}

func (r *Repository) q() *Queries {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.queries
}

// Path is the location of the database file on disk.
func (r *Repository) Path() string { return r.path }

// Filter narrows ListPurchases. Zero-value dates disable the bound;
// Category is an equality match and Search a case-insensitive substring
// match on the product name.
type Filter struct {
	Start     core.Date
	End       core.Date
	Category  string
	Search    string
	Ascending bool
}

// InsertPurchase validates and appends one ledger row, returning the
// store-assigned id. The date is taken as given: defaulting to "today" is
// the entry form's job, not the repository's.
func (r *Repository) InsertPurchase(ctx context.Context, rec core.PurchaseRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	p, err := r.q().CreatePurchase(ctx, CreatePurchaseParams{
		Product:            rec.Product,
		Category:           rec.Category,
		Subcategory:        rec.Subcategory,
		Supplier:           rec.Supplier,
		Quantity:           rec.Quantity,
		PurchasePriceCents: rec.PurchasePrice.Cents,
		SalePriceCents:     rec.SalePrice.Cents,
		Date:               rec.Date.String(),
	})
	if err != nil {
		return 0, fmt.Errorf("create purchase: %w", err)
	}

	slog.InfoContext(ctx, "Purchase saved",
		"id", p.ID,
		"product", p.Product,
		"quantity", p.Quantity,
		"date", p.Date)

	return p.ID, nil
}

// UpdatePurchase replaces every field of an existing row.
func (r *Repository) UpdatePurchase(ctx context.Context, id int64, rec core.PurchaseRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	affected, err := r.q().UpdatePurchase(ctx, UpdatePurchaseParams{
		ID: id,
		CreatePurchaseParams: CreatePurchaseParams{
			Product:            rec.Product,
			Category:           rec.Category,
			Subcategory:        rec.Subcategory,
			Supplier:           rec.Supplier,
			Quantity:           rec.Quantity,
			PurchasePriceCents: rec.PurchasePrice.Cents,
			SalePriceCents:     rec.SalePrice.Cents,
			Date:               rec.Date.String(),
		},
	})
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeletePurchase removes a row; core.ErrNotFound when the id is absent,
// leaving the store untouched either way.
func (r *Repository) DeletePurchase(ctx context.Context, id int64) error {
	affected, err := r.q().DeletePurchase(ctx, id)
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) GetPurchase(ctx context.Context, id int64) (core.PurchaseRecord, error) {
	p, err := r.q().GetPurchase(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PurchaseRecord{}, core.ErrNotFound
	}
	if err != nil {
		return core.PurchaseRecord{}, fmt.Errorf("get purchase: %w", err)
	}
	return purchaseToRecord(p)
}

func (r *Repository) ListPurchases(ctx context.Context, f Filter) ([]core.PurchaseRecord, error) {
	params := ListPurchasesParams{
		Category:  f.Category,
		Search:    f.Search,
		Ascending: f.Ascending,
	}
	if !f.Start.IsZero() {
		params.Start = f.Start.String()
	}
	if !f.End.IsZero() {
		params.End = f.End.String()
	}

	rows, err := r.q().ListPurchases(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}

	records := make([]core.PurchaseRecord, 0, len(rows))
	for _, p := range rows {
		rec, err := purchaseToRecord(p)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *Repository) CountPurchases(ctx context.Context) (int64, error) {
	return r.q().CountPurchases(ctx)
}

func (r *Repository) InsertCashEntry(ctx context.Context, e core.CashEntry) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	row, err := r.q().CreateCashEntry(ctx, CreateCashEntryParams{
		AmountCents: e.Amount.Cents,
		Date:        e.Date.String(),
		Periode:     string(e.Period),
	})
	if err != nil {
		return 0, fmt.Errorf("create cash entry: %w", err)
	}
	return row.ID, nil
}

func (r *Repository) ListCashEntries(ctx context.Context, start, end core.Date) ([]core.CashEntry, error) {
	rows, err := r.q().ListCashEntries(ctx, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("list cash entries: %w", err)
	}
	out := make([]core.CashEntry, 0, len(rows))
	for _, row := range rows {
		d, err := core.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("cash entry %d: %w", row.ID, err)
		}
		out = append(out, core.CashEntry{
			ID:     row.ID,
			Amount: core.Money{Cents: row.AmountCents},
			Date:   d,
			Period: core.Period(row.Periode),
		})
	}
	return out, nil
}

func (r *Repository) InsertCredit(ctx context.Context, c core.Credit) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	row, err := r.q().CreateCredit(ctx, CreateCreditParams{
		AmountCents: c.Amount.Cents,
		Date:        c.Date.String(),
		Note:        c.Note,
	})
	if err != nil {
		return 0, fmt.Errorf("create credit: %w", err)
	}
	return row.ID, nil
}

func (r *Repository) ListCredits(ctx context.Context, start, end core.Date) ([]core.Credit, error) {
	rows, err := r.q().ListCredits(ctx, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	out := make([]core.Credit, 0, len(rows))
	for _, row := range rows {
		d, err := core.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("credit %d: %w", row.ID, err)
		}
		out = append(out, core.Credit{
			ID:     row.ID,
			Amount: core.Money{Cents: row.AmountCents},
			Date:   d,
			Note:   row.Note,
		})
	}
	return out, nil
}

func (r *Repository) InsertExpense(ctx context.Context, e core.OverheadExpense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	row, err := r.q().CreateExpense(ctx, CreateExpenseParams{
		Type:        e.Type,
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		Date:        e.Date.String(),
	})
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}
	return row.ID, nil
}

func (r *Repository) ListExpenses(ctx context.Context, start, end core.Date) ([]core.OverheadExpense, error) {
	rows, err := r.q().ListExpenses(ctx, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.OverheadExpense, 0, len(rows))
	for _, row := range rows {
		d, err := core.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("expense %d: %w", row.ID, err)
		}
		out = append(out, core.OverheadExpense{
			ID:          row.ID,
			Type:        row.Type,
			Description: row.Description,
			Amount:      core.Money{Cents: row.AmountCents},
			Date:        d,
		})
	}
	return out, nil
}

func (r *Repository) InsertMovement(ctx context.Context, m core.InventoryMovement) (int64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	row, err := r.q().CreateMovement(ctx, CreateMovementParams{
		Product:    m.Product,
		Depot:      m.Depot,
		Direction:  string(m.Direction),
		Quantity:   m.Quantity,
		PriceCents: m.Price.Cents,
		Date:       m.Date.String(),
	})
	if err != nil {
		return 0, fmt.Errorf("create movement: %w", err)
	}
	return row.ID, nil
}

func (r *Repository) ListMovements(ctx context.Context) ([]core.InventoryMovement, error) {
	rows, err := r.q().ListMovements(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	out := make([]core.InventoryMovement, 0, len(rows))
	for _, row := range rows {
		d, err := core.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("movement %d: %w", row.ID, err)
		}
		out = append(out, core.InventoryMovement{
			ID:        row.ID,
			Product:   row.Product,
			Depot:     row.Depot,
			Direction: core.MovementDirection(row.Direction),
			Quantity:  row.Quantity,
			Price:     core.Money{Cents: row.PriceCents},
			Date:      d,
		})
	}
	return out, nil
}

// FinanceByDay feeds the monthly reconciliation with daily sums of cash,
// credits and overhead expenses.
func (r *Repository) FinanceByDay(ctx context.Context, start, end core.Date) ([]report.FinanceDay, error) {
	rows, err := r.q().FinanceByDay(ctx, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("finance by day: %w", err)
	}
	out := make([]report.FinanceDay, 0, len(rows))
	for _, row := range rows {
		d, err := core.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("finance day %q: %w", row.Date, err)
		}
		out = append(out, report.FinanceDay{
			Date:    d,
			Cash:    core.Money{Cents: row.CashCents},
			Credit:  core.Money{Cents: row.CreditCents},
			Expense: core.Money{Cents: row.ExpenseCents},
		})
	}
	return out, nil
}

func purchaseToRecord(p Purchase) (core.PurchaseRecord, error) {
	d, err := core.ParseDate(p.Date)
	if err != nil {
		return core.PurchaseRecord{}, fmt.Errorf("purchase %d: %w", p.ID, err)
	}
	return core.PurchaseRecord{
		ID:            p.ID,
		Product:       p.Product,
		Category:      p.Category,
		Subcategory:   p.Subcategory,
		Supplier:      p.Supplier,
		Quantity:      p.Quantity,
		PurchasePrice: core.Money{Cents: p.PurchasePriceCents},
		SalePrice:     core.Money{Cents: p.SalePriceCents},
		Date:          d,
	}, nil
}
