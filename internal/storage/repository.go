package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"daybook/internal/core"
	"daybook/internal/ledger"
	"daybook/internal/log"

	_ "modernc.org/sqlite"
)

const (
	existsQuery = `SELECT 1 FROM finance WHERE date = ? LIMIT 1`

	getQuery = `SELECT date, expectedIncome, heldFund, expectedExpenditure, customNotes
FROM finance WHERE date = ?`

	upsertQuery = `INSERT INTO finance (date, expectedIncome, heldFund, expectedExpenditure, customNotes)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(date) DO UPDATE SET
    expectedIncome = excluded.expectedIncome,
    heldFund = excluded.heldFund,
    expectedExpenditure = excluded.expectedExpenditure,
    customNotes = excluded.customNotes`

	rangeQuery = `SELECT date, expectedIncome, heldFund, expectedExpenditure, customNotes
FROM finance WHERE date BETWEEN ? AND ? ORDER BY date ASC`

	updateEditableQuery = `UPDATE finance
SET expectedIncome = ?, expectedExpenditure = ?, customNotes = ?
WHERE date = ?`
)

// SQLiteRepository is the on-disk ledger.Store.
// Dates are stored as YYYY-MM-DD text, which sorts and compares chronologically.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Single writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection, used by readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Exists(ctx context.Context, date core.Date) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, existsQuery, date.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, ledger.NewStorageError("exists", err)
	}
	return true, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, date core.Date) (core.LedgerEntry, bool, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, getQuery, date.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return core.LedgerEntry{}, false, nil
	}
	if err != nil {
		return core.LedgerEntry{}, false, ledger.NewStorageError("get", err)
	}
	return e, true, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, e core.LedgerEntry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validate entry: %w", err)
	}

	_, err := r.db.ExecContext(ctx, upsertQuery,
		e.Date.String(),
		e.ExpectedIncome.Amount.String(),
		e.HeldFund.Amount.String(),
		e.ExpectedExpenditure.Amount.String(),
		e.CustomNotes,
	)
	if err != nil {
		return ledger.NewStorageError("upsert", err)
	}

	logger(ctx).DebugContext(ctx, "Ledger entry upserted", "date", e.Date.String())
	return nil
}

func (r *SQLiteRepository) GetRange(ctx context.Context, start, end core.Date) ([]core.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, rangeQuery, start.String(), end.String())
	if err != nil {
		return nil, ledger.NewStorageError("range", err)
	}
	defer rows.Close()

	entries := make([]core.LedgerEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, ledger.NewStorageError("range", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.NewStorageError("range", err)
	}
	return entries, nil
}

func (r *SQLiteRepository) UpdateEditableFields(ctx context.Context, date core.Date, income, expenditure core.Money, notes string) (int64, error) {
	res, err := r.db.ExecContext(ctx, updateEditableQuery,
		income.Amount.String(),
		expenditure.Amount.String(),
		notes,
		date.String(),
	)
	if err != nil {
		return 0, ledger.NewStorageError("update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, ledger.NewStorageError("update", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (core.LedgerEntry, error) {
	var (
		date                      string
		income, held, expenditure string
		notes                     string
	)
	if err := row.Scan(&date, &income, &held, &expenditure, &notes); err != nil {
		return core.LedgerEntry{}, err
	}

	d, err := core.ParseDate(date)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("corrupt date column: %w", err)
	}
	e := core.LedgerEntry{Date: d, CustomNotes: notes}
	for _, f := range []struct {
		raw string
		dst *core.Money
	}{
		{income, &e.ExpectedIncome},
		{held, &e.HeldFund},
		{expenditure, &e.ExpectedExpenditure},
	} {
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return core.LedgerEntry{}, fmt.Errorf("corrupt amount %q for %s: %w", f.raw, date, err)
		}
		f.dst.Amount = v.Round(core.AmountPlaces)
	}
	return e, nil
}

func logger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentStorage)
}
